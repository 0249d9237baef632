package fx

import (
	"math"
	"time"

	"github.com/tginick/otters/internal/config"
	"github.com/tginick/otters/internal/dsp"
	"github.com/tginick/otters/internal/vocoder"
)

const whisperRandMax = 0x7fff

// Whisper keeps each bin's magnitude but replaces its phase with a
// uniformly random one, producing a breathy, whispered timbre.
type Whisper struct {
	prng *dsp.WyHashPRNG
}

func NewWhisper() *Whisper {
	return &Whisper{prng: dsp.NewWyHashPRNG(uint64(time.Now().Unix()))}
}

func (*Whisper) AdvertiseParameters() []config.AdvertisedParameter { return nil }
func (*Whisper) PostInitialize(vocoder.Context)                    {}
func (*Whisper) SetEffectParameter(int, config.ParameterValue)     {}

func (w *Whisper) Execute(fft []complex128, output []complex128) {
	for i, bin := range fft {
		amplitude := math.Sqrt(real(bin)*real(bin) + imag(bin)*imag(bin))

		nextRand := float64(w.prng.Next() % whisperRandMax)
		phase := (nextRand / whisperRandMax) * 2 * math.Pi

		output[i] = complex(math.Cos(phase)*amplitude, math.Sin(phase)*amplitude)
	}
}

func (*Whisper) PostProcess([]complex128) {}
