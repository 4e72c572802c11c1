//go:build rp2040

package sink

import (
	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
)

// UARTConfig selects the MCU UART used as the debug console.
type UARTConfig struct {
	ID   string // "uart0" or "uart1"
	Baud uint32
	TX   int
	RX   int
}

// OpenUART configures the UART and returns it as a console sink and as the
// command line source.
func OpenUART(c UARTConfig) (*Writer, Receiver) {
	hw := uartx.UART0
	if c.ID == "uart1" {
		hw = uartx.UART1
	}
	// Defaults inside uartx apply when zero.
	_ = hw.Configure(uartx.UARTConfig{
		BaudRate: c.Baud,
		TX:       machine.Pin(c.TX),
		RX:       machine.Pin(c.RX),
	})
	return NewSerialWriter(hw), hw
}
