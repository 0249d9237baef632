package fx

import (
	"math"
	"testing"
)

func TestWhisperPreservesMagnitudeRandomizesPhase(t *testing.T) {
	w := NewWhisper()
	fft := []complex128{complex(3, 4), complex(0, 0), complex(-2, 2)}
	output := make([]complex128, len(fft))

	w.Execute(fft, output)

	for i, bin := range fft {
		wantMag := math.Sqrt(real(bin)*real(bin) + imag(bin)*imag(bin))
		gotMag := math.Sqrt(real(output[i])*real(output[i]) + imag(output[i])*imag(output[i]))
		if math.Abs(gotMag-wantMag) > 1e-6 {
			t.Errorf("output[%d] magnitude = %v, want %v", i, gotMag, wantMag)
		}
	}
}
