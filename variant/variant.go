// Package variant describes the supported ground-station boards and which of
// them were compiled in.
//
// A board is chosen with exactly one radiotypeN build tag, e.g.
//
//	tinygo build -tags radiotype3 ./cmd/pico-groundstation
//
// Selection is not validated here; config.Initialize rejects zero or several.
package variant

import (
	"strconv"
	"strings"

	"groundstation-go/errcode"
)

// Variant identifies a board + radio module combination.
type Variant uint8

const (
	Variant0 Variant = iota // original SX1278 wiring
	Variant1                // Arduino UNO + Dragino SX1278 shield
	Variant2                // Wemos D1 R1 (Hallard) + RFM95
	Variant3                // NodeMCU 1.0 + RFM95

	count
)

// All lists every known variant in order.
func All() []Variant { return []Variant{Variant0, Variant1, Variant2, Variant3} }

func (v Variant) Valid() bool { return v < count }

func (v Variant) String() string {
	if !v.Valid() {
		return "variant(" + strconv.Itoa(int(v)) + ")"
	}
	return profiles[v].Name
}

// Module is the LoRa transceiver fitted to a board.
type Module string

const (
	SX1278 Module = "sx1278"
	RFM95  Module = "rfm95"
)

// Pins holds the transceiver control lines (board GPIO numbers).
type Pins struct {
	NSS  int
	DIO0 int
	DIO1 int
}

// Profile describes what a variant is wired as. It must not carry operating
// parameters; those live in the config registry.
type Profile struct {
	Variant Variant
	Name    string
	Board   string
	Module  Module
	Pins    Pins

	// DefaultFrequencyMHz is the carrier the board is built for.
	DefaultFrequencyMHz float64

	// RemoteSink reports whether the board can reach a pub/sub broker.
	RemoteSink bool
}

var profiles = [count]Profile{
	Variant0: {
		Variant: Variant0, Name: "original", Board: "original",
		Module: SX1278, Pins: Pins{NSS: 10, DIO0: 7, DIO1: 6},
		DefaultFrequencyMHz: 434.0, RemoteSink: true,
	},
	Variant1: {
		Variant: Variant1, Name: "arduino_uno", Board: "Arduino UNO",
		Module: SX1278, Pins: Pins{NSS: 10, DIO0: 2, DIO1: 6},
		DefaultFrequencyMHz: 434.0, RemoteSink: false, // no network stack
	},
	Variant2: {
		Variant: Variant2, Name: "wemos_d1_r1", Board: "Wemos D1 R1",
		// Hallard board shares DIO0/DIO1/DIO2 on GPIO15.
		Module: RFM95, Pins: Pins{NSS: 16, DIO0: 15, DIO1: 15},
		DefaultFrequencyMHz: 868.50, RemoteSink: true,
	},
	Variant3: {
		Variant: Variant3, Name: "nodemcu", Board: "NodeMCU 1.0",
		Module: RFM95, Pins: Pins{NSS: 2, DIO0: 5, DIO1: 4},
		DefaultFrequencyMHz: 868.50, RemoteSink: true,
	},
}

// Lookup returns the profile for v.
func Lookup(v Variant) (Profile, bool) {
	if !v.Valid() {
		return Profile{}, false
	}
	return profiles[v], true
}

// Parse accepts a profile name ("nodemcu"), a bare index ("3") or
// "radiotype3" / "variant3".
func Parse(s string) (Variant, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, p := range profiles {
		if s == p.Name {
			return p.Variant, nil
		}
	}
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "radiotype"), "variant")
	if n, err := strconv.Atoi(digits); err == nil && n >= 0 && n < int(count) {
		return Variant(n), nil
	}
	return 0, errcode.New(errcode.UnknownVariant, "variant.Parse", strconv.Quote(s))
}

// compiled is filled by the selected_radiotypeN.go files.
var compiled []Variant

// Compiled returns the variants selected by build tags, in tag order.
// It may be empty or hold several entries.
func Compiled() []Variant {
	out := make([]Variant, 0, len(compiled))
	for v := Variant0; v < count; v++ {
		for _, c := range compiled {
			if c == v {
				out = append(out, v)
				break
			}
		}
	}
	return out
}
