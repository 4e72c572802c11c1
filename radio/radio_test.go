package radio

import (
	"bytes"
	"errors"
	"testing"

	"tinygo.org/x/drivers/lora"

	"groundstation-go/config"
	"groundstation-go/errcode"
	"groundstation-go/variant"
)

func snapshot(t *testing.T, v variant.Variant) config.Params {
	t.Helper()
	r, err := config.Initialize(v)
	if err != nil {
		t.Fatal(err)
	}
	return r.Snapshot()
}

func TestLoRaConfig_Listening(t *testing.T) {
	cfg, err := LoRaConfig(snapshot(t, variant.Variant3), false)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Freq != 868_500_000 {
		t.Fatalf("Freq = %d", cfg.Freq)
	}
	if cfg.Bw != lora.Bandwidth_62_5 || cfg.Sf != 7 || cfg.Cr != lora.CodingRate4_8 {
		t.Fatalf("bw/sf/cr = %d/%d/%d", cfg.Bw, cfg.Sf, cfg.Cr)
	}
	if cfg.SyncWord != 0x13 || cfg.LoraTxPowerDBm != 17 {
		t.Fatalf("sync/power = %#x/%d", cfg.SyncWord, cfg.LoraTxPowerDBm)
	}
	if cfg.Ldr != lora.LowDataRateOptimizeOff {
		t.Fatal("SF7 at 62.5 kHz does not need LDR optimisation")
	}
}

func TestLoRaConfig_ConnectedUsesNarrowBandwidth(t *testing.T) {
	p := snapshot(t, variant.Variant1)
	p.CarrierFrequencyMHz = 434.25 // tuned away from default

	cfg, err := LoRaConfig(p, true)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Bw != lora.Bandwidth_7_8 {
		t.Fatalf("Bw = %d", cfg.Bw)
	}
	if cfg.Freq != 434_250_000 {
		t.Fatalf("Freq = %d", cfg.Freq)
	}
	if cfg.Ldr != lora.LowDataRateOptimizeOn {
		t.Fatal("SF7 at 7.8 kHz needs LDR optimisation")
	}
}

func TestLoRaConfig_RejectsUnmappableValues(t *testing.T) {
	p := snapshot(t, variant.Variant0)
	p.CodingRate = 12
	if _, err := LoRaConfig(p, false); !errors.Is(err, errcode.OutOfRange) {
		t.Fatalf("coding rate 12: %v", err)
	}
	if _, err := BandwidthIndex(100); !errors.Is(err, errcode.OutOfRange) {
		t.Fatalf("100 kHz: %v", err)
	}
}

func TestSignVerify(t *testing.T) {
	frame := Sign(config.TransmissionSignature, []byte{0x0a, 0x01})
	if !bytes.Equal(frame, append([]byte("FOSSASAT-1"), 0x0a, 0x01)) {
		t.Fatalf("frame = %q", frame)
	}
	payload, ok := Verify(config.TransmissionSignature, frame)
	if !ok || !bytes.Equal(payload, []byte{0x0a, 0x01}) {
		t.Fatalf("Verify = %v, %v", payload, ok)
	}
	if _, ok := Verify(config.TransmissionSignature, []byte("FOSSASAT-2\x0a")); ok {
		t.Fatal("foreign signature accepted")
	}
}
