//go:build radiotype2

package variant

func init() { compiled = append(compiled, Variant2) }
