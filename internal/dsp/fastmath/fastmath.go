// Package fastmath collects the handful of transcendental helpers the
// DSP layer calls per-sample. The original engine routes these through
// a NEON intrinsics binding on ARM and the platform libm everywhere
// else; this module keeps a single generic implementation on top of
// the standard math package. Callers must tolerate sub-ulp divergence
// across architectures and across this port versus the source.
package fastmath

import "math"

func Sin(x float32) float32  { return float32(math.Sin(float64(x))) }
func Cos(x float32) float32  { return float32(math.Cos(float64(x))) }
func Tan(x float32) float32  { return float32(math.Tan(float64(x))) }
func Tanh(x float32) float32 { return float32(math.Tanh(float64(x))) }
func Atan(x float32) float32 { return float32(math.Atan(float64(x))) }
func Exp(x float32) float32  { return float32(math.Exp(float64(x))) }
func Log10(x float32) float32 { return float32(math.Log10(float64(x))) }
func Sqrt(x float32) float32 { return float32(math.Sqrt(float64(x))) }

// Modf splits v into integer and fractional parts, both float32, the
// way the source's vmodf does (integer part returned first).
func Modf(v float32) (ipart int32, fpart float32) {
	i, f := math.Modf(float64(v))
	return int32(i), float32(f)
}

// NextAfter steps a toward b by one float32 ULP.
func NextAfter(a, b float32) float32 {
	return math.Nextafter32(a, b)
}
