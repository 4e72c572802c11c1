// Package radio turns registry parameters into transceiver settings and
// handles the transmission signature. The transceiver driver itself comes
// from tinygo.org/x/drivers.
package radio

import (
	"bytes"
	"math"
	"strconv"

	"tinygo.org/x/drivers/lora"

	"groundstation-go/config"
	"groundstation-go/errcode"
)

const (
	preambleLength = 8

	// Symbols longer than this need low-data-rate optimisation.
	ldrSymbolMs = 16.0
)

// BandwidthIndex maps a bandwidth in kHz to the driver's bandwidth setting.
func BandwidthIndex(khz float64) (uint8, error) {
	table := []struct {
		khz float64
		idx uint8
	}{
		{7.8, lora.Bandwidth_7_8},
		{10.4, lora.Bandwidth_10_4},
		{15.6, lora.Bandwidth_15_6},
		{20.8, lora.Bandwidth_20_8},
		{31.25, lora.Bandwidth_31_25},
		{41.7, lora.Bandwidth_41_7},
		{62.5, lora.Bandwidth_62_5},
		{125.0, lora.Bandwidth_125_0},
		{250.0, lora.Bandwidth_250_0},
		{500.0, lora.Bandwidth_500_0},
	}
	for _, e := range table {
		if math.Abs(e.khz-khz) < 0.05 {
			return e.idx, nil
		}
	}
	return 0, errcode.New(errcode.OutOfRange, "radio.BandwidthIndex", strconv.FormatFloat(khz, 'f', -1, 64)+" kHz")
}

// CodingRateIndex maps the 4/x denominator to the driver's coding rate.
func CodingRateIndex(denom int) (uint8, error) {
	switch denom {
	case 5:
		return lora.CodingRate4_5, nil
	case 6:
		return lora.CodingRate4_6, nil
	case 7:
		return lora.CodingRate4_7, nil
	case 8:
		return lora.CodingRate4_8, nil
	}
	return 0, errcode.New(errcode.OutOfRange, "radio.CodingRateIndex", "4/"+strconv.Itoa(denom))
}

// LoRaConfig builds the driver configuration. connected selects the narrow
// bandwidth used once a satellite has been found.
func LoRaConfig(p config.Params, connected bool) (lora.Config, error) {
	bwKHz := p.HighBandwidthKHz
	if connected {
		bwKHz = p.ConnectedBandwidthKHz
	}
	bw, err := BandwidthIndex(bwKHz)
	if err != nil {
		return lora.Config{}, err
	}
	cr, err := CodingRateIndex(p.CodingRate)
	if err != nil {
		return lora.Config{}, err
	}

	ldr := uint8(lora.LowDataRateOptimizeOff)
	if symbolMs(p.SpreadingFactor, bwKHz) > ldrSymbolMs {
		ldr = lora.LowDataRateOptimizeOn
	}

	return lora.Config{
		Freq:           uint32(math.Round(p.CarrierFrequencyMHz * 1e6)),
		Cr:             cr,
		Sf:             uint8(p.SpreadingFactor),
		Bw:             bw,
		Ldr:            ldr,
		Preamble:       preambleLength,
		SyncWord:       uint16(p.SyncWord),
		HeaderType:     lora.HeaderExplicit,
		Crc:            lora.CRCOn,
		Iq:             lora.IQStandard,
		LoraTxPowerDBm: int8(p.OutputPowerDbm),
	}, nil
}

func symbolMs(sf int, bwKHz float64) float64 {
	return float64(uint(1)<<uint(sf)) / bwKHz
}

// Sign prefixes payload with the station signature.
func Sign(signature string, payload []byte) []byte {
	out := make([]byte, 0, len(signature)+len(payload))
	out = append(out, signature...)
	return append(out, payload...)
}

// Verify strips the signature from frame. ok is false when the frame was
// not sent by a station using signature.
func Verify(signature string, frame []byte) (payload []byte, ok bool) {
	if !bytes.HasPrefix(frame, []byte(signature)) {
		return nil, false
	}
	return frame[len(signature):], true
}
