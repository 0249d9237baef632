package vocoder

import (
	"math"
	"testing"

	"github.com/tginick/otters/internal/config"
)

// identityEffect leaves the spectrum untouched, so the vocoder's
// overlap-add round trip should reproduce the input after the
// pipeline's startup latency (one frame of prebuffered silence).
type identityEffect struct{}

func (identityEffect) AdvertiseParameters() []config.AdvertisedParameter { return nil }
func (identityEffect) PostInitialize(Context)                            {}
func (identityEffect) SetEffectParameter(int, config.ParameterValue)     {}
func (identityEffect) Execute(fft []complex128, output []complex128) {
	copy(output, fft)
}
func (identityEffect) PostProcess([]complex128) {}

func TestPhaseVocoderIdentityReproducesConstantSignal(t *testing.T) {
	pv := NewPhaseVocoder(64, 16, Hann, identityEffect{})

	const amplitude = 0.5
	var last float32
	for i := 0; i < 64*8; i++ {
		last = pv.executeOne(amplitude)
	}

	if math.Abs(float64(last-amplitude)) > 0.2 {
		t.Errorf("executeOne settled at %v, want close to %v once warmed up", last, amplitude)
	}
}

func TestCreateWindowHammingSumsToPositiveGainCorrection(t *testing.T) {
	_, invGain := createWindow(Hamming, 0.75, 64)
	if invGain <= 0 {
		t.Errorf("invGainCorrection = %v, want > 0", invGain)
	}
}

func TestCreateWindowHannMatchesNonstandardFormula(t *testing.T) {
	w, _ := createWindow(Hann, 0.75, 64)
	// At n=0, cos(0)=1, so 0.5 - (1 - 1) = 0.5.
	if w[0] < 0.49 || w[0] > 0.51 {
		t.Errorf("Hann window at n=0 = %v, want ~0.5", w[0])
	}
}

func TestNewPhaseVocoderCallsPostInitializeWithFrameGeometry(t *testing.T) {
	captured := make(chan Context, 1)
	eff := &recordingEffect{captured: captured}

	NewPhaseVocoder(128, 32, Hamming, eff)

	select {
	case ctx := <-captured:
		if ctx.FrameSize != 128 || ctx.HopSize != 32 {
			t.Errorf("PostInitialize context = %+v, want FrameSize=128 HopSize=32", ctx)
		}
	default:
		t.Fatal("PostInitialize was not called")
	}
}

type recordingEffect struct {
	identityEffect
	captured chan Context
}

func (r *recordingEffect) PostInitialize(ctx Context) {
	r.captured <- ctx
}
