package comparator

import (
	"math"
	"slices"

	"github.com/SmirnovGrigory/openvino/ir"
	"github.com/chewxy/math32"
)

// Tolerances for elementwise comparison of constant floating-point data.
// Reconstructed constants may have been round-tripped through a lower
// precision representation, so exact bit equality is too strict.
const (
	float32Tolerance float32 = 1e-5
	float64Tolerance         = 1e-8
)

// constValuesEqual compares two materialized constant values elementwise.
// Integer and boolean data must match exactly; floating-point data within
// the tolerance above.
func constValuesEqual(a, b *ir.ConstValue) bool {
	if a.DType != b.DType || !slices.Equal(a.Dims, b.Dims) {
		return false
	}
	switch dataA := a.Data.(type) {
	case []float32:
		dataB, ok := b.Data.([]float32)
		if !ok || len(dataA) != len(dataB) {
			return false
		}
		for i, v := range dataA {
			if math32.Abs(v-dataB[i]) > float32Tolerance {
				return false
			}
		}
		return true
	case []float64:
		dataB, ok := b.Data.([]float64)
		if !ok || len(dataA) != len(dataB) {
			return false
		}
		for i, v := range dataA {
			if math.Abs(v-dataB[i]) > float64Tolerance {
				return false
			}
		}
		return true
	case []int32:
		dataB, ok := b.Data.([]int32)
		return ok && slices.Equal(dataA, dataB)
	case []int64:
		dataB, ok := b.Data.([]int64)
		return ok && slices.Equal(dataA, dataB)
	case []uint8:
		dataB, ok := b.Data.([]uint8)
		return ok && slices.Equal(dataA, dataB)
	case []bool:
		dataB, ok := b.Data.([]bool)
		return ok && slices.Equal(dataA, dataB)
	default:
		// No equality defined for this payload: cannot disprove equality.
		return true
	}
}
