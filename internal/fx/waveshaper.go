package fx

import (
	"math"

	"github.com/tginick/otters/internal/board"
	"github.com/tginick/otters/internal/config"
	"github.com/tginick/otters/internal/dsp/fastmath"
)

const (
	waveshaperParamFunction = 0
	waveshaperParamGain     = 1
)

// WaveShaperFunction selects the nonlinearity a WaveShaper applies.
// Names carry the same NG/X annotations as the reference functions
// they're ported from: NG means the function ignores the gain
// parameter, X means it produces exotic/extreme results.
type WaveShaperFunction int

const (
	Identity WaveShaperFunction = iota
	Arraya                      // NG
	Sigmoid
	HyperbolicTangent
	InverseTangent
	FuzzExponential
	FuzzExponential2 // NG, X
	ArctangentSquareRoot // NG, X
	SquareSign           // NG, X
	HardClip             // X
	HalfRectifier        // NG, X
	FullRectifier        // NG, X
	numWaveShaperFunctions
)

var waveShaperParams = []config.AdvertisedParameter{
	{
		Name:    "waveshaper_function",
		Range:   config.IntRange(0, int32(numWaveShaperFunctions)),
		Default: config.IntValue(0),
	},
	{
		Name:    "gain",
		Range:   config.FloatRange(1, 64),
		Default: config.FloatValue(4),
	},
}

// WaveShaper applies one of a fixed catalog of saturating
// nonlinearities to every sample, clamped to [-1, 1] afterward.
type WaveShaper struct {
	params   []config.ParameterValue
	function WaveShaperFunction
}

func NewWaveShaper() *WaveShaper {
	return &WaveShaper{
		params:   config.DefaultParams(waveShaperParams),
		function: Identity,
	}
}

func (*WaveShaper) AdvertiseParameters() []config.AdvertisedParameter { return waveShaperParams }
func (*WaveShaper) SetAudioParameters(config.AudioConfig)             {}

func (e *WaveShaper) SetEffectParameter(paramIdx int, value config.ParameterValue) {
	e.params[paramIdx] = value
	if paramIdx == waveshaperParamFunction {
		e.function = WaveShaperFunction(value.AsEnum(int(numWaveShaperFunctions)))
	}
}

func (e *WaveShaper) Execute(ctx *board.Context, connectionIdx int, numSamples int) {
	reader, writer, ok := singleInSingleOut(ctx, connectionIdx)
	if !ok {
		return
	}

	gain := e.params[waveshaperParamGain].AsFloat()
	for i := 0; i < numSamples; i++ {
		writer.BufWrite(i, executeWaveShaperFunction(e.function, gain, reader.BufRead(i)))
	}
}

func signum(x float32) float32 {
	if x > 0 {
		return 1
	}
	if x < 0 {
		return -1
	}
	if math.Signbit(float64(x)) {
		return -1
	}
	return 1
}

func executeWaveShaperFunction(function WaveShaperFunction, gain, sample float32) float32 {
	var v float32
	switch function {
	case Identity:
		v = sample
	case Arraya:
		v = (3.0 * sample / 2.0) * (1.0 - sample*sample/3.0)
	case Sigmoid:
		v = 2.0*(1.0/(1.0+fastmath.Exp(-gain*sample))) - 1.0
	case HyperbolicTangent:
		v = fastmath.Tanh(gain*sample) / fastmath.Tanh(gain)
	case InverseTangent:
		v = fastmath.Atan(gain*sample) / fastmath.Atan(gain)
	case FuzzExponential:
		v = signum(sample) * (1.0 - fastmath.Exp(-abs32(gain*sample))) / (1.0 - fastmath.Exp(-gain))
	case FuzzExponential2:
		v = signum(-sample) * (1.0 - abs32(sample)) / (float32(math.E) - 1.0)
	case ArctangentSquareRoot:
		v = wsArctangentSquareRoot(sample, 2.5, 0.9, 2.5, 0.9)
	case SquareSign:
		v = sample * sample * signum(sample)
	case HardClip:
		v = wsHardClip(gain, sample, 0.5)
	case HalfRectifier:
		v = 0.5 * (sample + abs32(sample))
	case FullRectifier:
		v = abs32(sample)
	default:
		v = 0
	}

	if v < -1.0 {
		return -1.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}

func wsArctangentSquareRoot(sample, alpha, beta, psi, zeta float32) float32 {
	return alpha*fastmath.Atan(beta*sample) + psi*fastmath.Sqrt(1.0-(zeta*zeta*sample*sample)) - psi
}

func wsHardClip(gain, sample, clipAt float32) float32 {
	if gain*abs32(sample) > clipAt {
		return clipAt * signum(sample)
	}
	return gain * sample
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
