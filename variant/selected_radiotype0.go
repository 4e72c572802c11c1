//go:build radiotype0

package variant

func init() { compiled = append(compiled, Variant0) }
