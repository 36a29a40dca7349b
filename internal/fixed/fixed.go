// Package fixed implements scaled-integer vector arithmetic. All embedding
// values are fractions multiplied by Scale; products are divided back down
// per term, before summation, so truncation happens exactly once per pair
// of components regardless of vector length.
package fixed

// #region scale

// Scale is the fixed-point divisor: a stored value of 1000 reads as 1.0.
const Scale = 1000

// #endregion scale

// #region dot

// Dot computes the scaled dot product of two int32 vectors. Each term is
// divided by Scale before summing (truncating toward zero), which is the
// canonical order for this engine: summing first and dividing once gives
// different results and must not be used.
func Dot(a, b []int32) int64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum int64
	for i := 0; i < n; i++ {
		sum += int64(a[i]) * int64(b[i]) / Scale
	}
	return sum
}

// DotInt64 is Dot for an int64 accumulator vector against int32 weights.
// Used when scoring aggregated embeddings against class weight vectors.
func DotInt64(a []int64, b []int32) int64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum int64
	for i := 0; i < n; i++ {
		sum += a[i] * int64(b[i]) / Scale
	}
	return sum
}

// #endregion dot
