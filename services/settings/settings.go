// services/settings/settings.go
package settings

import (
	"context"
	"fmt"
	"time"

	"groundstation-go/bus"
	"groundstation-go/config"
	"groundstation-go/debuglog"
	"groundstation-go/errcode"
	"groundstation-go/x/payload"
)

// -----------------------------------------------------------------------------
// Topics
// -----------------------------------------------------------------------------

var (
	TopicDebug   = bus.T("config", "debug")
	TopicTune    = bus.T("radio", "tune")
	TopicRestore = bus.T("radio", "restore")
	TopicState   = bus.T("settings", "state")
)

// -----------------------------------------------------------------------------
// Payloads
// -----------------------------------------------------------------------------

// DebugUpdate changes any subset of the runtime switches.
type DebugUpdate struct {
	Serial          *bool `json:"serial,omitempty"`
	Remote          *bool `json:"remote,omitempty"`
	AutomaticTuning *bool `json:"automatic_tuning,omitempty"`
}

// TuneCommand retunes the carrier, as sent by the transceiver-settings frame.
type TuneCommand struct {
	FrequencyMHz float64 `json:"frequency_mhz"`
}

// State is published retained on settings/state after every change.
type State struct {
	Variant             string  `json:"variant"`
	FrequencyMHz        float64 `json:"frequency_mhz"`
	DefaultFrequencyMHz float64 `json:"default_frequency_mhz"`
	DebugSerial         bool    `json:"debug_serial"`
	DebugRemote         bool    `json:"debug_remote"`
	AutomaticTuning     bool    `json:"automatic_tuning"`
	Status              string  `json:"status"`
	Error               string  `json:"error,omitempty"`
	TsMs                int64   `json:"ts_ms"`
}

// Status strings.
const (
	StatusReady          = "ready"
	StatusDebugUpdated   = "debug_updated"
	StatusTuned          = "tuned"
	StatusTuningDisabled = "tuning_disabled"
	StatusRestored       = "restored"
	StatusDecodeFailed   = "decode_failed"
	StatusRejected       = "rejected"
)

// -----------------------------------------------------------------------------
// Service
// -----------------------------------------------------------------------------

// Service applies settings updates from the bus to the registry. It is the
// only writer of the carrier frequency and the debug switches at runtime.
type Service struct {
	reg *config.Registry
	dbg *debuglog.Logger
}

// New returns a service; dbg may be nil.
func New(reg *config.Registry, dbg *debuglog.Logger) *Service {
	return &Service{reg: reg, dbg: dbg}
}

// Start subscribes before returning, then serves until ctx is cancelled.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	subDebug := conn.Subscribe(TopicDebug)
	subTune := conn.Subscribe(TopicTune)
	subRestore := conn.Subscribe(TopicRestore)

	s.publishState(conn, StatusReady, nil)

	go func() {
		defer conn.Unsubscribe(subDebug)
		defer conn.Unsubscribe(subTune)
		defer conn.Unsubscribe(subRestore)

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-subDebug.Channel():
				if !ok {
					return
				}
				s.handleDebug(conn, msg)
			case msg, ok := <-subTune.Channel():
				if !ok {
					return
				}
				s.handleTune(conn, msg)
			case _, ok := <-subRestore.Channel():
				if !ok {
					return
				}
				s.reg.RestoreDefaultFrequency()
				s.logf("restored default carrier %.2f MHz", s.reg.DefaultCarrierFrequencyMHz())
				s.publishState(conn, StatusRestored, nil)
			}
		}
	}()
	return nil
}

func (s *Service) handleDebug(conn *bus.Connection, msg *bus.Message) {
	u, err := payload.Decode[DebugUpdate](msg.Payload)
	if err != nil {
		s.publishState(conn, StatusDecodeFailed, err)
		return
	}
	if u.Serial != nil {
		s.reg.SetDebugToSerial(*u.Serial)
	}
	if u.Remote != nil {
		s.reg.SetDebugToRemoteChannel(*u.Remote)
	}
	if u.AutomaticTuning != nil {
		s.reg.SetAutomaticTuning(*u.AutomaticTuning)
	}
	s.publishState(conn, StatusDebugUpdated, nil)
}

func (s *Service) handleTune(conn *bus.Connection, msg *bus.Message) {
	cmd, err := payload.Decode[TuneCommand](msg.Payload)
	if err != nil {
		s.publishState(conn, StatusDecodeFailed, err)
		return
	}
	if !s.reg.AutomaticTuning() {
		s.logf("tuning command ignored, automatic tuning is off")
		s.publishState(conn, StatusTuningDisabled, nil)
		return
	}
	if cmd.FrequencyMHz <= 0 {
		s.publishState(conn, StatusRejected,
			errcode.New(errcode.InvalidParams, "settings.tune", fmt.Sprintf("frequency %.3f MHz", cmd.FrequencyMHz)))
		return
	}
	s.reg.SetCarrierFrequencyMHz(cmd.FrequencyMHz)
	s.logf("tuned carrier to %.3f MHz", cmd.FrequencyMHz)
	s.publishState(conn, StatusTuned, nil)
}

func (s *Service) logf(format string, args ...any) {
	if s.dbg != nil {
		s.dbg.Logf(format, args...)
	}
}

func (s *Service) publishState(conn *bus.Connection, status string, err error) {
	p := s.reg.Snapshot()
	st := State{
		Variant:             p.Variant.String(),
		FrequencyMHz:        p.CarrierFrequencyMHz,
		DefaultFrequencyMHz: p.DefaultCarrierFrequencyMHz,
		DebugSerial:         p.DebugToSerial,
		DebugRemote:         p.DebugToRemoteChannel,
		AutomaticTuning:     p.AutomaticTuning,
		Status:              status,
		TsMs:                time.Now().UnixMilli(),
	}
	if err != nil {
		st.Error = err.Error()
	}
	conn.Publish(conn.NewMessage(TopicState, st, true))
}
