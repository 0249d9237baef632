package fx

import (
	"github.com/tginick/otters/internal/board"
	"github.com/tginick/otters/internal/config"
	"github.com/tginick/otters/internal/dsp"
)

const (
	reverbParamRoomSizePct = 0
	reverbParamDampingPct  = 1
	reverbParamWetDryPct   = 2
)

var reverbParams = []config.AdvertisedParameter{
	{Name: "room_size_pct", Range: config.FloatRange(0, 1), Default: config.FloatValue(0.5)},
	{Name: "damping_pct", Range: config.FloatRange(0, 1), Default: config.FloatValue(0.5)},
	{Name: "wet_dry_pct", Range: config.FloatRange(0, 1), Default: config.FloatValue(0.3)},
}

// lpfCombFilter is a delay line with feedback run through a one-pole
// lowpass, the feedback gain derived from a target RT60 so the tail
// decays to -60dB after roughly rt60Ms regardless of delay length.
type lpfCombFilter struct {
	delayBuf *dsp.DelayBuffer
	combG    float32
	lpfG     float32
	lpfState float32
	rt60MS   float32
}

func newLPFCombFilter(delayTimeMS, sampleRate, rt60MS, lpfG float32) *lpfCombFilter {
	delayBuf := dsp.NewDelayBufferWithSampleRate(sampleRate)
	delayBuf.SetDelayTimeMS(delayTimeMS, true)

	return &lpfCombFilter{
		delayBuf: delayBuf,
		combG:    calculateCombGain(delayBuf.DelaySampleCount(), sampleRate, rt60MS),
		lpfG:     lpfG,
		rt60MS:   rt60MS,
	}
}

func (c *lpfCombFilter) changeSampleRate(newSampleRate float32) {
	c.delayBuf.ChangeSampleRate(newSampleRate)
	c.combG = calculateCombGain(c.delayBuf.DelaySampleCount(), newSampleRate, c.rt60MS)
	c.lpfState = 0
}

func (c *lpfCombFilter) setRT60MS(rt60MS float32) {
	c.rt60MS = rt60MS
	c.combG = calculateCombGain(c.delayBuf.DelaySampleCount(), c.delayBuf.SampleRate(), rt60MS)
}

func (c *lpfCombFilter) process(xn float32) float32 {
	yn := c.delayBuf.ReadDelayedSample()

	g2 := c.lpfG * (1.0 - c.combG)
	lpfSample := yn + g2*c.lpfState

	delayInput := xn + c.combG*lpfSample
	c.lpfState = lpfSample

	c.delayBuf.WriteSample(delayInput)

	return yn
}

// calculateCombGain derives the comb filter's feedback gain from a
// target RT60: the time for the delay's repeated feedback to decay to
// -60dB, independent of the delay length itself.
func calculateCombGain(delaySampleCount, sampleRate, rt60MS float32) float32 {
	rt60S := rt60MS / 1000.0
	delayTimeS := delaySampleCount / sampleRate
	exponentDB := -60.0 * (delayTimeS / rt60S)
	return dsp.DBToLinear(exponentDB)
}

// delayAPF is an LFO-modulated delay line wrapped in an allpass
// structure with a one-pole lowpass in its feedback path, used to
// diffuse the comb bank's output.
type delayAPF struct {
	lfo                *dsp.LowFrequencyOscillator
	lfoDepth           float32
	lfoMaxModulationMS float32

	delayTimeMS float32
	delayBuf    *dsp.DelayBuffer

	apfG     float32
	lpfG     float32
	lpfState float32
}

func newDelayAPF(sampleRate, delayTimeMS, lfoMaxModulationMS, lfoRateHz, lfoDepth, apfG, lpfG float32) *delayAPF {
	return &delayAPF{
		lfo:                dsp.NewLowFrequencyOscillator(dsp.Sine, lfoRateHz, sampleRate),
		lfoDepth:           lfoDepth,
		lfoMaxModulationMS: lfoMaxModulationMS,
		delayTimeMS:        delayTimeMS,
		delayBuf:           dsp.NewDelayBufferWithSampleRate(sampleRate),
		apfG:               apfG,
		lpfG:               lpfG,
	}
}

func (a *delayAPF) process(xn float32) float32 {
	minDelay := a.delayTimeMS
	maxDelay := minDelay + a.lfoMaxModulationMS

	modulatedDelay := dsp.Lerp(minDelay, maxDelay, dsp.BipolarToUnipolar(a.lfo.CurrentSample()*a.lfoDepth))
	a.lfo.Oscillate()

	a.delayBuf.SetDelayTimeMS(modulatedDelay, true)
	wnD := a.delayBuf.ReadDelayedSample()

	wnD = wnD*(1.0-a.lpfG) + a.lpfG*a.lpfState
	a.lpfState = wnD

	wn := xn + a.apfG*wnD
	yn := -a.apfG*wn + wnD

	a.delayBuf.WriteSample(yn)

	return yn
}

// Reverb is a Schroeder reverberator: four parallel lowpass comb
// filters summed together, then diffused through two series
// LFO-modulated allpass stages, matching the comb/allpass bank shape
// of classic digital reverb designs.
type Reverb struct {
	params []config.ParameterValue

	combs [4]*lpfCombFilter
	apfs  [2]*delayAPF

	sampleRate float32
}

var (
	reverbCombDelaysMS = [4]float32{38.29, 36.31, 46.56, 51.06}
	reverbAPFDelaysMS  = [2]float32{8.82, 6.96}
)

func NewReverb(ac config.AudioConfig) *Reverb {
	r := &Reverb{
		params:     config.DefaultParams(reverbParams),
		sampleRate: ac.SampleRate,
	}

	rt60 := roomSizeToRT60MS(r.params[reverbParamRoomSizePct].AsFloat())
	lpfG := r.params[reverbParamDampingPct].AsFloat()

	for i, d := range reverbCombDelaysMS {
		r.combs[i] = newLPFCombFilter(d, ac.SampleRate, rt60, lpfG)
	}
	for i, d := range reverbAPFDelaysMS {
		r.apfs[i] = newDelayAPF(ac.SampleRate, d, 1.0, 0.3+float32(i)*0.1, 0.3, 0.5, 0.2)
	}

	return r
}

func (*Reverb) AdvertiseParameters() []config.AdvertisedParameter { return reverbParams }

func (r *Reverb) SetAudioParameters(ac config.AudioConfig) {
	r.sampleRate = ac.SampleRate
	for _, c := range r.combs {
		c.changeSampleRate(ac.SampleRate)
	}
	for _, a := range r.apfs {
		a.delayBuf.ChangeSampleRate(ac.SampleRate)
		a.lfo.ChangeSampleRate(ac.SampleRate)
	}
}

func (r *Reverb) SetEffectParameter(paramIdx int, value config.ParameterValue) {
	r.params[paramIdx] = value

	switch paramIdx {
	case reverbParamRoomSizePct:
		rt60 := roomSizeToRT60MS(value.AsFloat())
		for _, c := range r.combs {
			c.setRT60MS(rt60)
		}
	case reverbParamDampingPct:
		for _, c := range r.combs {
			c.lpfG = value.AsFloat()
		}
	}
}

func roomSizeToRT60MS(roomSizePct float32) float32 {
	return 300.0 + roomSizePct*2700.0
}

func (r *Reverb) Execute(ctx *board.Context, connectionIdx int, numSamples int) {
	reader, writer, ok := singleInSingleOut(ctx, connectionIdx)
	if !ok {
		return
	}

	wetness := r.params[reverbParamWetDryPct].AsFloat()
	dryness := 1.0 - wetness

	for i := 0; i < numSamples; i++ {
		xn := reader.BufRead(i)

		var combSum float32
		for _, c := range r.combs {
			combSum += c.process(xn)
		}
		combSum *= 0.25

		diffused := combSum
		for _, a := range r.apfs {
			diffused = a.process(diffused)
		}

		writer.BufWrite(i, dryness*xn+wetness*diffused)
	}
}
