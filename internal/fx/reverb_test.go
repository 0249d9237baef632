package fx

import (
	"testing"

	"github.com/tginick/otters/internal/config"
)

func TestCalculateCombGainShrinksWithShorterRT60(t *testing.T) {
	longTail := calculateCombGain(1687, 44100, 3000)
	shortTail := calculateCombGain(1687, 44100, 300)

	if !(shortTail < longTail) {
		t.Errorf("calculateCombGain(rt60=300) = %v, want smaller than rt60=3000 gain %v", shortTail, longTail)
	}
	if longTail <= 0 || longTail >= 1 {
		t.Errorf("calculateCombGain(rt60=3000) = %v, want in (0, 1)", longTail)
	}
}

func TestReverbDryOnlyPassesInputThrough(t *testing.T) {
	e := NewReverb(testAudioConfig())
	e.SetEffectParameter(reverbParamWetDryPct, config.FloatValue(0))

	ctx := singleInOutBoard(t, e)

	in := []float32{0.2, -0.3, 0.4, 0}
	writeInput(ctx, in)
	e.Execute(ctx, 0, len(in))

	out := readOutput(ctx, len(in))
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("output[%d] = %v, want %v (dry-only)", i, out[i], in[i])
		}
	}
}

func TestReverbProducesFiniteOutputForImpulse(t *testing.T) {
	e := NewReverb(testAudioConfig())
	ctx := singleInOutBoard(t, e)

	n := 4096
	in := make([]float32, n)
	in[0] = 1.0
	writeInput(ctx, in)
	e.Execute(ctx, 0, n)
	out := readOutput(ctx, n)

	var sawTail bool
	for i, v := range out {
		if v != v {
			t.Fatalf("output[%d] is NaN", i)
		}
		if i > 2000 && v != 0 {
			sawTail = true
		}
	}
	if !sawTail {
		t.Error("expected an audible reverb tail long after the impulse")
	}
}
