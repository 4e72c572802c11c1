// Package config holds the ground station's configuration registry: the
// radio parameters and debug switches resolved once from the selected
// hardware variant and shared by every service for the process lifetime.
package config

import (
	"errors"
	"strconv"
	"sync"

	"groundstation-go/errcode"
	"groundstation-go/variant"
	"groundstation-go/x/mathx"
)

// Fixed defaults.
const (
	HighBandwidthKHz      = 62.5
	ConnectedBandwidthKHz = 7.8

	DefaultSpreadingFactor = 7
	DefaultCodingRate      = 8
	DefaultSyncWord        = byte(0x13)
	DefaultOutputPowerDbm  = 17

	TransmissionSignature = "FOSSASAT-1"

	// RemoteLogTopic is where debug lines go when remote debugging is on.
	RemoteLogTopic = "/fossasat-1/logging"

	// RemoteCommandPrefix roots the command topics accepted from the remote
	// channel, e.g. /fossasat-1/radio/tune.
	RemoteCommandPrefix = "/fossasat-1"
)

// Legal ranges shared by the SX1278 and RFM95 (SX1276) on PA_BOOST.
const (
	MinSpreadingFactor = 6
	MaxSpreadingFactor = 12
	MinCodingRate      = 5 // 4/5
	MaxCodingRate      = 8 // 4/8
	MinOutputPowerDbm  = 2
	MaxOutputPowerDbm  = 17
)

// Params is a consistent copy of the registry, handed to radio collaborators.
type Params struct {
	Variant                    variant.Variant
	CarrierFrequencyMHz        float64
	DefaultCarrierFrequencyMHz float64
	HighBandwidthKHz           float64
	ConnectedBandwidthKHz      float64
	SpreadingFactor            int
	CodingRate                 int
	SyncWord                   byte
	OutputPowerDbm             int
	TransmissionSignature      string
	DebugToSerial              bool
	DebugToRemoteChannel       bool
	AutomaticTuning            bool
}

// Registry is the process-wide configuration. All methods are safe for
// concurrent use.
type Registry struct {
	profile variant.Profile

	// Set once by Initialize.
	defaultFreq float64

	mu              sync.RWMutex
	freq            float64
	spreadingFactor int
	codingRate      int
	syncWord        byte
	outputPower     int
	debugSerial     bool
	debugRemote     bool
	autoTuning      bool
}

// Initialize builds the registry for exactly one selected variant.
// Repeats of the same variant count once; nothing, several distinct
// variants or an unknown value yield a configuration error.
func Initialize(selected ...variant.Variant) (*Registry, error) {
	const op = "config.Initialize"

	var picked []variant.Variant
	for _, v := range selected {
		if !v.Valid() {
			return nil, errcode.New(errcode.UnknownVariant, op, v.String())
		}
		dup := false
		for _, p := range picked {
			if p == v {
				dup = true
				break
			}
		}
		if !dup {
			picked = append(picked, v)
		}
	}

	switch len(picked) {
	case 0:
		return nil, errcode.New(errcode.NoVariant, op, "no hardware variant selected")
	case 1:
	default:
		msg := ""
		for i, v := range picked {
			if i > 0 {
				msg += ", "
			}
			msg += v.String()
		}
		return nil, errcode.New(errcode.AmbiguousVariant, op, "several hardware variants selected: "+msg)
	}

	prof, _ := variant.Lookup(picked[0])
	return &Registry{
		profile:         prof,
		defaultFreq:     prof.DefaultFrequencyMHz,
		freq:            prof.DefaultFrequencyMHz,
		spreadingFactor: DefaultSpreadingFactor,
		codingRate:      DefaultCodingRate,
		syncWord:        DefaultSyncWord,
		outputPower:     DefaultOutputPowerDbm,
		debugSerial:     true,
		debugRemote:     false,
		autoTuning:      true,
	}, nil
}

// IsConfigurationError reports whether err is a fatal variant/config error.
func IsConfigurationError(err error) bool {
	if err == nil {
		return false
	}
	for _, c := range []errcode.Code{errcode.NoVariant, errcode.AmbiguousVariant, errcode.UnknownVariant, errcode.InvalidConfig} {
		if errors.Is(err, c) || errcode.Of(err) == c {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------
// Fixed fields
// -----------------------------------------------------------------------------

func (r *Registry) Variant() variant.Variant            { return r.profile.Variant }
func (r *Registry) Profile() variant.Profile            { return r.profile }
func (r *Registry) DefaultCarrierFrequencyMHz() float64 { return r.defaultFreq }
func (r *Registry) HighBandwidthKHz() float64           { return HighBandwidthKHz }
func (r *Registry) ConnectedBandwidthKHz() float64      { return ConnectedBandwidthKHz }
func (r *Registry) TransmissionSignature() string       { return TransmissionSignature }

// Bandwidth returns the narrow bandwidth once a satellite has been found,
// the wide listening bandwidth otherwise.
func (r *Registry) Bandwidth(connected bool) float64 {
	if connected {
		return ConnectedBandwidthKHz
	}
	return HighBandwidthKHz
}

// -----------------------------------------------------------------------------
// Mutable fields
// -----------------------------------------------------------------------------

func (r *Registry) CarrierFrequencyMHz() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.freq
}

// SetCarrierFrequencyMHz is used by the tuning collaborator; the default is untouched.
func (r *Registry) SetCarrierFrequencyMHz(mhz float64) {
	r.mu.Lock()
	r.freq = mhz
	r.mu.Unlock()
}

// RestoreDefaultFrequency switches back to the wide-listening carrier.
func (r *Registry) RestoreDefaultFrequency() {
	r.mu.Lock()
	r.freq = r.defaultFreq
	r.mu.Unlock()
}

func (r *Registry) SpreadingFactor() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.spreadingFactor
}

func (r *Registry) SetSpreadingFactor(sf int) error {
	if err := checkRange("config.SetSpreadingFactor", sf, MinSpreadingFactor, MaxSpreadingFactor); err != nil {
		return err
	}
	r.mu.Lock()
	r.spreadingFactor = sf
	r.mu.Unlock()
	return nil
}

func (r *Registry) CodingRate() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.codingRate
}

func (r *Registry) SetCodingRate(cr int) error {
	if err := checkRange("config.SetCodingRate", cr, MinCodingRate, MaxCodingRate); err != nil {
		return err
	}
	r.mu.Lock()
	r.codingRate = cr
	r.mu.Unlock()
	return nil
}

func (r *Registry) SyncWord() byte {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.syncWord
}

func (r *Registry) SetSyncWord(w byte) {
	r.mu.Lock()
	r.syncWord = w
	r.mu.Unlock()
}

func (r *Registry) OutputPowerDbm() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.outputPower
}

func (r *Registry) SetOutputPowerDbm(dbm int) error {
	if err := checkRange("config.SetOutputPowerDbm", dbm, MinOutputPowerDbm, MaxOutputPowerDbm); err != nil {
		return err
	}
	r.mu.Lock()
	r.outputPower = dbm
	r.mu.Unlock()
	return nil
}

func (r *Registry) DebugToSerial() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.debugSerial
}

func (r *Registry) SetDebugToSerial(on bool) {
	r.mu.Lock()
	r.debugSerial = on
	r.mu.Unlock()
}

func (r *Registry) DebugToRemoteChannel() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.debugRemote
}

func (r *Registry) SetDebugToRemoteChannel(on bool) {
	r.mu.Lock()
	r.debugRemote = on
	r.mu.Unlock()
}

func (r *Registry) AutomaticTuning() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.autoTuning
}

func (r *Registry) SetAutomaticTuning(on bool) {
	r.mu.Lock()
	r.autoTuning = on
	r.mu.Unlock()
}

// Snapshot returns every field under one lock.
func (r *Registry) Snapshot() Params {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Params{
		Variant:                    r.profile.Variant,
		CarrierFrequencyMHz:        r.freq,
		DefaultCarrierFrequencyMHz: r.defaultFreq,
		HighBandwidthKHz:           HighBandwidthKHz,
		ConnectedBandwidthKHz:      ConnectedBandwidthKHz,
		SpreadingFactor:            r.spreadingFactor,
		CodingRate:                 r.codingRate,
		SyncWord:                   r.syncWord,
		OutputPowerDbm:             r.outputPower,
		TransmissionSignature:      TransmissionSignature,
		DebugToSerial:              r.debugSerial,
		DebugToRemoteChannel:       r.debugRemote,
		AutomaticTuning:            r.autoTuning,
	}
}

// ReviewNotes lists settings an operator should look at before deployment.
// SX1278 stations still run SF7 because SF12 misbehaved on the ESP8266
// prototype; the production ground station is meant to use 12.
func (r *Registry) ReviewNotes() []string {
	var notes []string
	sf := r.SpreadingFactor()
	if r.profile.Module == variant.SX1278 && sf != MaxSpreadingFactor {
		notes = append(notes, "spreading factor is "+strconv.Itoa(sf)+
			" on "+r.profile.Name+"; production ground station expects "+strconv.Itoa(MaxSpreadingFactor))
	}
	return notes
}

func checkRange(op string, v, lo, hi int) error {
	if mathx.Between(v, lo, hi) {
		return nil
	}
	return errcode.New(errcode.OutOfRange, op,
		strconv.Itoa(v)+" not in ["+strconv.Itoa(lo)+","+strconv.Itoa(hi)+"]")
}
