package fx

import (
	"math"
	"testing"
)

func TestRobotizeKeepsMagnitudeDropsPhase(t *testing.T) {
	r := NewRobotize()
	fft := []complex128{complex(3, 4), complex(-1, 1)}
	output := make([]complex128, len(fft))

	r.Execute(fft, output)

	if math.Abs(real(output[0])-5) > 1e-9 || imag(output[0]) != 0 {
		t.Errorf("output[0] = %v, want (5, 0)", output[0])
	}
	wantMag := math.Sqrt(2)
	if math.Abs(real(output[1])-wantMag) > 1e-9 || imag(output[1]) != 0 {
		t.Errorf("output[1] = %v, want (%v, 0)", output[1], wantMag)
	}
}
