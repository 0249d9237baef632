package fx

import (
	"testing"

	"github.com/tginick/otters/internal/config"
)

func TestMonoDelayBasicEchoesAfterDelayTime(t *testing.T) {
	e := NewMonoDelayBasic(testAudioConfig())
	e.SetEffectParameter(delayParamTimeMS, config.FloatValue(1)) // ~44 samples at 44.1kHz
	e.SetEffectParameter(delayParamFeedback, config.FloatValue(0))
	e.SetEffectParameter(delayParamWetDryPct, config.FloatValue(1)) // fully wet

	ctx := singleInOutBoard(t, e)

	in := make([]float32, 100)
	in[0] = 1.0
	writeInput(ctx, in)
	e.Execute(ctx, 0, len(in))

	out := readOutput(ctx, len(in))

	var sawNonZero bool
	for i := 1; i < len(out); i++ {
		if out[i] != 0 {
			sawNonZero = true
			break
		}
	}
	if !sawNonZero {
		t.Error("expected the impulse to reappear somewhere after the delay line fills")
	}
}

func TestMonoDelayBasicDryOnlyPassesInputThrough(t *testing.T) {
	e := NewMonoDelayBasic(testAudioConfig())
	e.SetEffectParameter(delayParamWetDryPct, config.FloatValue(0)) // fully dry

	ctx := singleInOutBoard(t, e)

	in := []float32{0.25, -0.5, 0.75}
	writeInput(ctx, in)
	e.Execute(ctx, 0, len(in))

	out := readOutput(ctx, len(in))
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("output[%d] = %v, want %v (dry pass-through)", i, out[i], in[i])
		}
	}
}
