// Package payload decodes bus message payloads into typed commands.
package payload

import (
	"encoding/json"
	"fmt"

	"groundstation-go/errcode"
)

const op = "payload.Decode"

// Decode accepts the typed value, a pointer to it, JSON as bytes or a
// string, or an already decoded JSON object. A nil payload decodes to the
// zero value.
func Decode[T any](p any) (T, error) {
	var out T
	switch v := p.(type) {
	case T:
		return v, nil
	case *T:
		if v == nil {
			return out, errcode.New(errcode.InvalidPayload, op, "nil payload")
		}
		return *v, nil
	case []byte:
		return out, wrap(json.Unmarshal(v, &out))
	case string:
		return out, wrap(json.Unmarshal([]byte(v), &out))
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return out, wrap(err)
		}
		return out, wrap(json.Unmarshal(b, &out))
	case nil:
		return out, nil
	default:
		return out, errcode.New(errcode.InvalidPayload, op, fmt.Sprintf("unsupported payload type %T", p))
	}
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	return errcode.Wrap(errcode.InvalidPayload, op, err)
}
