//go:build radiotype3

package variant

func init() { compiled = append(compiled, Variant3) }
