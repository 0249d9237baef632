package fx

import (
	"testing"

	"github.com/tginick/otters/internal/config"
)

func TestNewFlangerBakesInFeedbackAtConstruction(t *testing.T) {
	m := NewFlanger(testAudioConfig())
	before := m.derived.feedbackPct

	// Flanger's feedback_pct param is captured once at construction and
	// never refreshed by SetEffectParameter (the other variants ignore
	// feedback_pct altogether).
	m.SetEffectParameter(modDelayParamFeedback, config.FloatValue(99))

	if m.derived.feedbackPct != before {
		t.Errorf("derived.feedbackPct changed to %v after SetEffectParameter, want unchanged %v", m.derived.feedbackPct, before)
	}
}

func TestModulatedDelayVariantsProduceFiniteOutput(t *testing.T) {
	ctors := []func() *ModulatedDelay{
		func() *ModulatedDelay { return NewFlanger(testAudioConfig()) },
		func() *ModulatedDelay { return NewChorus(testAudioConfig()) },
		func() *ModulatedDelay { return NewVibrato(testAudioConfig()) },
		func() *ModulatedDelay { return NewWhiteChorus(testAudioConfig()) },
	}

	for _, ctor := range ctors {
		e := ctor()
		ctx := singleInOutBoard(t, e)

		n := 128
		in := make([]float32, n)
		for i := range in {
			in[i] = 0.4
		}
		writeInput(ctx, in)
		e.Execute(ctx, 0, n)
		out := readOutput(ctx, n)

		for i, v := range out {
			if v != v {
				t.Fatalf("output[%d] is NaN", i)
			}
		}
	}
}
