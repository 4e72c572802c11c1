package payload

import (
	"testing"

	"groundstation-go/errcode"
)

type tune struct {
	FrequencyMHz float64 `json:"frequency_mhz"`
}

func TestDecode_Forms(t *testing.T) {
	want := tune{FrequencyMHz: 436.7}
	cases := map[string]any{
		"typed":   want,
		"pointer": &want,
		"bytes":   []byte(`{"frequency_mhz":436.7}`),
		"string":  `{"frequency_mhz":436.7}`,
		"map":     map[string]any{"frequency_mhz": 436.7},
	}
	for name, p := range cases {
		got, err := Decode[tune](p)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got != want {
			t.Fatalf("%s: got %+v", name, got)
		}
	}

	if got, err := Decode[tune](nil); err != nil || got != (tune{}) {
		t.Fatalf("nil: %+v, %v", got, err)
	}
}

func TestDecode_Errors(t *testing.T) {
	for name, p := range map[string]any{
		"bad json":    []byte(`{"frequency_mhz":`),
		"wrong type":  42,
		"nil pointer": (*tune)(nil),
	} {
		if _, err := Decode[tune](p); errcode.Of(err) != errcode.InvalidPayload {
			t.Fatalf("%s: err = %v", name, err)
		}
	}
}
