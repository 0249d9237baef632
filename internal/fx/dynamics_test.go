package fx

import (
	"testing"

	"github.com/tginick/otters/internal/config"
)

func TestDynCompressorHardKneeLeavesSignalBelowThresholdUnchanged(t *testing.T) {
	params := config.DefaultParams(dynamicsParams)
	params[dynamicsParamThresholdDB] = config.FloatValue(-10)
	params[dynamicsParamRatio] = config.FloatValue(4)

	got := dynCompressorHardKnee(-20, params)
	if got != -20 {
		t.Errorf("dynCompressorHardKnee(-20) = %v, want -20 (below threshold)", got)
	}
}

func TestDynCompressorHardKneeCompressesAboveThreshold(t *testing.T) {
	params := config.DefaultParams(dynamicsParams)
	params[dynamicsParamThresholdDB] = config.FloatValue(-10)
	params[dynamicsParamRatio] = config.FloatValue(4)

	got := dynCompressorHardKnee(-2, params)
	want := float32(-10 + (-2-(-10))/4.0)
	if got != want {
		t.Errorf("dynCompressorHardKnee(-2) = %v, want %v", got, want)
	}
}

func TestDynGateHardKneeSilencesBelowThreshold(t *testing.T) {
	params := config.DefaultParams(dynamicsParams)
	params[dynamicsParamThresholdDB] = config.FloatValue(-30)

	got := dynGateHardKnee(-50, params)
	if got != -96.0 {
		t.Errorf("dynGateHardKnee(-50) = %v, want -96", got)
	}
}

func TestDynamicsExecuteAttenuatesLoudSignal(t *testing.T) {
	e := NewCompressor(testAudioConfig())
	e.SetEffectParameter(dynamicsParamThresholdDB, config.FloatValue(-30))
	e.SetEffectParameter(dynamicsParamRatio, config.FloatValue(10))
	e.SetEffectParameter(dynamicsParamAttackMS, config.FloatValue(1))

	ctx := singleInOutBoard(t, e)

	n := 2000
	in := make([]float32, n)
	for i := range in {
		in[i] = 0.9
	}
	writeInput(ctx, in)
	e.Execute(ctx, 0, n)
	out := readOutput(ctx, n)

	if out[n-1] >= in[n-1] {
		t.Errorf("steady-state compressed output = %v, want attenuated below input %v", out[n-1], in[n-1])
	}
}
