package fx

import (
	"math"
	"testing"

	"github.com/tginick/otters/internal/config"
	"github.com/tginick/otters/internal/vocoder"
)

func TestOceanPitchShifterUnityShiftPassesBinsThrough(t *testing.T) {
	e := NewOceanPitchShifter()

	frameSize := 8
	window := make([]float32, frameSize)
	for i := range window {
		window[i] = 1
	}
	e.PostInitialize(vocoder.Context{FrameSize: frameSize, HopSize: 2, AnalysisWindow: window})

	fft := make([]complex128, frameSize)
	for i := range fft {
		fft[i] = complex(float64(i+1), 0)
	}
	output := make([]complex128, frameSize)

	e.Execute(fft, output)

	for i := 1; i < frameSize/2+1; i++ {
		if math.Abs(real(output[i])-real(fft[i])) > 1e-9 {
			t.Errorf("output[%d] = %v, want passthrough of fft[%d] = %v at unity shift", i, output[i], i, fft[i])
		}
	}
}

func TestOceanPitchShifterSetEffectParameterChangesFrequencyMultiplier(t *testing.T) {
	e := NewOceanPitchShifter()
	before := e.frequencyMultiplier

	e.SetEffectParameter(oceanParamSemitoneDifference, config.IntValue(12)) // one octave up

	if e.frequencyMultiplier == before {
		t.Error("frequencyMultiplier unchanged after SetEffectParameter")
	}
	if math.Abs(e.frequencyMultiplier-2.0) > 1e-9 {
		t.Errorf("frequencyMultiplier after +12 semitones = %v, want 2.0", e.frequencyMultiplier)
	}
}
