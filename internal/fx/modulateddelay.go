package fx

import (
	"github.com/tginick/otters/internal/board"
	"github.com/tginick/otters/internal/config"
	"github.com/tginick/otters/internal/dsp"
)

const (
	modDelayParamRateHz     = 0
	modDelayParamDepthPct   = 1
	modDelayParamFeedback   = 2
)

var modulatedDelayParams = []config.AdvertisedParameter{
	{
		Name:    "mod_rate_hz",
		Range:   config.FloatRange(0.02, 20),
		Default: config.FloatValue(0.2),
	},
	{
		Name:    "depth_pct",
		Range:   config.FloatRange(0, 1),
		Default: config.FloatValue(0.5),
	},
	{
		Name:    "feedback_pct",
		Range:   config.FloatRange(0, 1),
		Default: config.FloatValue(0.5),
	},
}

// ModulatedDelayVariant selects one of the four fixed characters a
// ModulatedDelay can be built as. Each bakes in its own min/max delay
// range, dry/wet balance, and a fixed feedback amount (Flanger takes
// feedback_pct's default at construction); setting feedback_pct later
// does not change the feedback of any variant.
type ModulatedDelayVariant int

const (
	Flanger ModulatedDelayVariant = iota
	Chorus
	Vibrato
	WhiteChorus
)

type modulatedDelayDerived struct {
	minDelay      float32
	maxDelayDepth float32
	drynessDB     float32
	wetnessDB     float32
	feedbackPct   float32
	variant       ModulatedDelayVariant
}

// ModulatedDelay is a delay line whose delay time is swept by an LFO:
// a flanger sweeps bipolar-to-unipolar between min and min+depth, the
// others sweep bipolar around the midpoint directly.
type ModulatedDelay struct {
	params  []config.ParameterValue
	derived modulatedDelayDerived

	delayBuf *dsp.DelayBuffer
	lfo      *dsp.LowFrequencyOscillator
}

func newModulatedDelay(ac config.AudioConfig, waveform dsp.LFOWaveform, derived modulatedDelayDerived) *ModulatedDelay {
	params := config.DefaultParams(modulatedDelayParams)
	return &ModulatedDelay{
		params:   params,
		derived:  derived,
		delayBuf: dsp.NewDelayBufferWithSampleRate(ac.SampleRate),
		lfo:      dsp.NewLowFrequencyOscillator(waveform, params[modDelayParamRateHz].AsFloat(), ac.SampleRate),
	}
}

func NewFlanger(ac config.AudioConfig) *ModulatedDelay {
	m := newModulatedDelay(ac, dsp.Triangle, modulatedDelayDerived{
		minDelay: 0.1, maxDelayDepth: 7, drynessDB: -3, wetnessDB: -3, variant: Flanger,
	})
	m.derived.feedbackPct = m.params[modDelayParamFeedback].AsFloat()
	return m
}

func NewVibrato(ac config.AudioConfig) *ModulatedDelay {
	return newModulatedDelay(ac, dsp.Sine, modulatedDelayDerived{
		minDelay: 0, maxDelayDepth: 7, drynessDB: -96, wetnessDB: 0, feedbackPct: 0, variant: Vibrato,
	})
}

func NewChorus(ac config.AudioConfig) *ModulatedDelay {
	return newModulatedDelay(ac, dsp.Triangle, modulatedDelayDerived{
		minDelay: 10, maxDelayDepth: 30, drynessDB: 0, wetnessDB: -3, feedbackPct: 0, variant: Chorus,
	})
}

func NewWhiteChorus(ac config.AudioConfig) *ModulatedDelay {
	return newModulatedDelay(ac, dsp.Triangle, modulatedDelayDerived{
		minDelay: 7, maxDelayDepth: 30, drynessDB: 0, wetnessDB: -3, feedbackPct: -0.7, variant: WhiteChorus,
	})
}

func (*ModulatedDelay) AdvertiseParameters() []config.AdvertisedParameter {
	return modulatedDelayParams
}

func (e *ModulatedDelay) SetAudioParameters(ac config.AudioConfig) {
	e.lfo.ChangeSampleRate(ac.SampleRate)
	e.delayBuf.ChangeSampleRate(ac.SampleRate)
}

func (e *ModulatedDelay) SetEffectParameter(paramIdx int, value config.ParameterValue) {
	e.params[paramIdx] = value
}

func (e *ModulatedDelay) Execute(ctx *board.Context, connectionIdx int, numSamples int) {
	reader, writer, ok := singleInSingleOut(ctx, connectionIdx)
	if !ok {
		return
	}

	delayMinMS := e.derived.minDelay
	delayMaxMS := e.derived.minDelay + e.derived.maxDelayDepth
	depth := e.params[modDelayParamDepthPct].AsFloat()
	feedback := e.derived.feedbackPct
	dryness := dsp.DBToLinear(e.derived.drynessDB)
	wetness := dsp.DBToLinear(e.derived.wetnessDB)

	for i := 0; i < numSamples; i++ {
		var realDelayMS float32
		if e.derived.variant == Flanger {
			realDelayMS = dsp.Lerp(delayMinMS, delayMaxMS, dsp.BipolarToUnipolar(depth*e.lfo.CurrentSample()))
		} else {
			realDelayMS = dsp.BipolarLerp(delayMinMS, delayMaxMS, depth*e.lfo.CurrentSample())
		}

		e.lfo.Oscillate()
		e.delayBuf.SetDelayTimeMS(realDelayMS, true)

		xn := reader.BufRead(i)
		yn := e.delayBuf.ReadDelayedSample()
		dn := xn + feedback*yn

		e.delayBuf.WriteSample(dn)

		on := dryness*xn + wetness*yn
		writer.BufWrite(i, on)
	}
}
