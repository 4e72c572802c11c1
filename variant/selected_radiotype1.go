//go:build radiotype1

package variant

func init() { compiled = append(compiled, Variant1) }
