//go:build rp2040

package radio

import (
	"machine"

	"tinygo.org/x/drivers/lora"
	"tinygo.org/x/drivers/sx127x"

	"groundstation-go/errcode"
	"groundstation-go/variant"
)

// BringUp wires an SX127x-family transceiver (SX1278 or RFM95) on SPI0
// using the board's control pins and applies cfg.
func BringUp(p variant.Profile, rst machine.Pin, cfg lora.Config) (*sx127x.Device, error) {
	const op = "radio.BringUp"

	if err := machine.SPI0.Configure(machine.SPIConfig{Frequency: 500_000, Mode: 0}); err != nil {
		return nil, errcode.Wrap(errcode.Error, op, err)
	}
	dev := sx127x.New(machine.SPI0, rst)
	rc := sx127x.NewRadioControl(machine.Pin(p.Pins.NSS), machine.Pin(p.Pins.DIO0), machine.Pin(p.Pins.DIO1))
	if err := dev.SetRadioController(rc); err != nil {
		return nil, errcode.Wrap(errcode.Error, op, err)
	}

	dev.Reset()
	if !dev.Detect() {
		return nil, errcode.New(errcode.Unsupported, op, "no "+string(p.Module)+" answered on SPI0")
	}
	dev.LoraConfig(cfg)
	return dev, nil
}
