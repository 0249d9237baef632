package dsp

import "github.com/tginick/otters/internal/dsp/fastmath"

// Lerp interpolates x -> y with t in [0, 1].
func Lerp(x, y, t float32) float32 {
	return x + t*(y-x)
}

// BipolarLerp interpolates x -> y with t in [-1, 1], centered on the
// midpoint rather than on x.
func BipolarLerp(x, y, t float32) float32 {
	half := (y - x) / 2.0
	mid := x + half
	return t*half + mid
}

// DBToLinear converts a decibel value to a linear amplitude multiplier.
func DBToLinear(db float32) float32 {
	return pow10(db / 20.0)
}

func pow10(x float32) float32 {
	// 10^x = e^(x*ln10)
	const ln10 = 2.302585092994046
	return fastmath.Exp(x * ln10)
}

// IsPowerOfTwo reports whether v is a positive power of two.
func IsPowerOfTwo(v int) bool {
	if v <= 0 {
		return false
	}
	return v&(v-1) == 0
}
