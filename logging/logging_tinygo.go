//go:build tinygo

package logging

// L prints through the runtime's println to keep fmt out of MCU images.
var L Logger = printLogger{}

type printLogger struct{}

func (printLogger) log(level string, msg any, keyvals []any) {
	print(level)
	if s, ok := msg.(string); ok {
		print(s)
	}
	for i := 0; i+1 < len(keyvals); i += 2 {
		k, _ := keyvals[i].(string)
		print(" ", k, "=")
		switch v := keyvals[i+1].(type) {
		case string:
			print(v)
		case int:
			print(v)
		case bool:
			print(v)
		case float64:
			print(v)
		case error:
			print(v.Error())
		default:
			print("?")
		}
	}
	println()
}

func (p printLogger) Debug(msg any, kv ...any) { p.log("[DEBUG] ", msg, kv) }
func (p printLogger) Info(msg any, kv ...any)  { p.log("[INFO]  ", msg, kv) }
func (p printLogger) Warn(msg any, kv ...any)  { p.log("[WARN]  ", msg, kv) }
func (p printLogger) Error(msg any, kv ...any) { p.log("[ERROR] ", msg, kv) }
