package fx

import (
	"github.com/tginick/otters/internal/board"
	"github.com/tginick/otters/internal/config"
	"github.com/tginick/otters/internal/dsp"
)

const (
	phaserParamRateHz      = 0
	phaserParamDepthPct    = 1
	phaserParamIntensity   = 2
)

var phaserParams = []config.AdvertisedParameter{
	{
		Name:    "mod_rate_hz",
		Range:   config.FloatRange(0.02, 10),
		Default: config.FloatValue(0.5),
	},
	{
		Name:    "depth_pct",
		Range:   config.FloatRange(0, 1),
		Default: config.FloatValue(0.5),
	},
	{
		Name:    "intensity_pct",
		Range:   config.FloatRange(0, 0.99),
		Default: config.FloatValue(0.5),
	},
}

type modulatedAPF struct {
	minFreq, maxFreq, sampleRate float32
	filter                       *dsp.Biquad
}

func newModulatedAPF(minFreq, maxFreq, sampleRate float32) *modulatedAPF {
	return &modulatedAPF{
		minFreq:    minFreq,
		maxFreq:    maxFreq,
		sampleRate: sampleRate,
		filter:     dsp.NewBiquad(dsp.FirstOrderAPF(minFreq, sampleRate)),
	}
}

func (a *modulatedAPF) updateCutoff(lfoSample float32) {
	newFreq := dsp.BipolarLerp(a.minFreq, a.maxFreq, lfoSample)
	a.filter.ChangeParams(dsp.FirstOrderAPF(newFreq, a.sampleRate))
}

func (a *modulatedAPF) executeFilter(input float32) float32 { return a.filter.Filter(input) }
func (a *modulatedAPF) g() float32                           { return a.filter.G() }
func (a *modulatedAPF) s() float32                           { return a.filter.S() }

// MonoPhaser cascades six modulated first-order allpass stages and
// mixes a feedback path through them using the classic direct-form
// alpha0/gamma feedback-loop solution rather than iterating the
// feedback path sample-by-sample.
type MonoPhaser struct {
	params []config.ParameterValue
	apfs   [6]*modulatedAPF
	lfo    *dsp.LowFrequencyOscillator
}

func NewMonoPhaser(ac config.AudioConfig) *MonoPhaser {
	params := config.DefaultParams(phaserParams)
	return &MonoPhaser{
		params: params,
		apfs: [6]*modulatedAPF{
			newModulatedAPF(32, 1500, ac.SampleRate),
			newModulatedAPF(68, 3400, ac.SampleRate),
			newModulatedAPF(96, 4800, ac.SampleRate),
			newModulatedAPF(212, 10000, ac.SampleRate),
			newModulatedAPF(320, 16000, ac.SampleRate),
			newModulatedAPF(636, 20400, ac.SampleRate),
		},
		lfo: dsp.NewLowFrequencyOscillator(dsp.Sine, params[phaserParamRateHz].AsFloat(), ac.SampleRate),
	}
}

func (*MonoPhaser) AdvertiseParameters() []config.AdvertisedParameter { return phaserParams }

func (e *MonoPhaser) SetAudioParameters(ac config.AudioConfig) {
	e.lfo.ChangeSampleRate(ac.SampleRate)
	for _, apf := range e.apfs {
		apf.filter.ChangeSampleRate(ac.SampleRate)
	}
}

func (e *MonoPhaser) SetEffectParameter(paramIdx int, value config.ParameterValue) {
	e.params[paramIdx] = value
	if paramIdx == phaserParamRateHz {
		e.lfo.ChangeOscillationFreq(value.AsFloat())
	}
}

func (e *MonoPhaser) Execute(ctx *board.Context, connectionIdx int, numSamples int) {
	reader, writer, ok := singleInSingleOut(ctx, connectionIdx)
	if !ok {
		return
	}

	depth := e.params[phaserParamDepthPct]
	intensity := e.params[phaserParamIntensity]

	for i := 0; i < numSamples; i++ {
		currentLFOSample := e.lfo.CurrentSample()
		for _, apf := range e.apfs {
			apf.updateCutoff(currentLFOSample * depth.AsFloat())
		}
		e.lfo.Oscillate()

		gamma1 := e.apfs[5].g()
		gamma2 := e.apfs[4].g() * gamma1
		gamma3 := e.apfs[3].g() * gamma2
		gamma4 := e.apfs[2].g() * gamma3
		gamma5 := e.apfs[1].g() * gamma4
		gamma6 := e.apfs[0].g() * gamma5

		k := intensity.AsFloat()
		alpha0 := 1.0 / (1.0 + k*gamma6)

		sN := gamma5*e.apfs[0].s() +
			gamma4*e.apfs[1].s() +
			gamma3*e.apfs[2].s() +
			gamma2*e.apfs[3].s() +
			gamma1*e.apfs[4].s() +
			e.apfs[5].s()

		xN := reader.BufRead(i)
		u := alpha0 * (xN + k*sN)
		for _, apf := range e.apfs {
			u = apf.executeFilter(u)
		}

		writer.BufWrite(i, 0.125*xN+1.25*u)
	}
}
