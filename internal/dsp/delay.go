package dsp

import "github.com/tginick/otters/internal/dsp/fastmath"

// MaxDelayMS bounds how large a delay line any effect may request.
const MaxDelayMS = 2000.0

// DelayBuffer is a circular buffer sized to sampleRate*maxDelayMs/1000
// slots plus a tunable delay expressed as a whole-sample count and a
// fractional component. Reads linearly interpolate; writes advance
// the underlying buffer's cursor.
type DelayBuffer struct {
	buf                  *SimpleFloatBuffer
	sampleRate           float32
	maxDelayMS           float32
	delayTimeMS          float32
	wholeDelaySamples    int32
	fractDelaySamples    float32
}

func NewDelayBufferWithSampleRate(sampleRate float32) *DelayBuffer {
	return NewDelayBufferWithSampleRateAndMaxDelay(sampleRate, MaxDelayMS)
}

func NewDelayBufferWithSampleRateAndMaxDelay(sampleRate, maxDelayMS float32) *DelayBuffer {
	return &DelayBuffer{
		buf:        NewSimpleFloatBuffer(int(sampleRate * maxDelayMS / 1000.0)),
		sampleRate: sampleRate,
		maxDelayMS: maxDelayMS,
	}
}

func (d *DelayBuffer) ChangeSampleRate(newSampleRate float32) {
	d.sampleRate = newSampleRate
	d.buf = NewSimpleFloatBuffer(int(d.sampleRate * d.maxDelayMS / 1000.0))
	d.SetDelayTimeMS(d.delayTimeMS, true)
}

// SetDelayTimeMS recomputes the whole/fractional split for a new delay
// time. If the requested delay exceeds capacity and shouldClampIfHigh
// is false, the call is a no-op; otherwise the delay saturates.
func (d *DelayBuffer) SetDelayTimeMS(delayTimeMS float32, shouldClampIfHigh bool) {
	if delayTimeMS < 0 {
		return
	}

	realDelayTime := delayTimeMS * d.sampleRate / 1000.0

	if int(realDelayTime) >= d.buf.Capacity() {
		if shouldClampIfHigh {
			realDelayTime = float32(d.buf.Capacity() - 1)
		} else {
			return
		}
	}

	d.delayTimeMS = delayTimeMS

	ipart, fpart := fastmath.Modf(realDelayTime)
	d.fractDelaySamples = fpart
	d.wholeDelaySamples = clampI32(ipart, 0, int32(d.buf.Capacity()))

	d.clampDelaySampleCount()
}

// SetDelaySampleCountDirectly sets the whole/fractional split without
// going through a millisecond time, e.g. for modulated delay lines
// that compute sample counts themselves.
func (d *DelayBuffer) SetDelaySampleCountDirectly(whole int32, frac float32) {
	d.wholeDelaySamples = whole
	d.fractDelaySamples = frac
	d.clampDelaySampleCount()
}

func (d *DelayBuffer) DelaySampleCount() float32 {
	return float32(d.wholeDelaySamples) + d.fractDelaySamples
}

func (d *DelayBuffer) SampleRate() float32 { return d.sampleRate }

func (d *DelayBuffer) ReadDelayedSample() float32 {
	sample1 := d.buf.Read(d.buf.Limit() - int(d.wholeDelaySamples) - 1)
	sample2 := d.buf.Read(d.buf.Limit() - int(d.wholeDelaySamples) - 2)
	return Lerp(sample1, sample2, d.fractDelaySamples)
}

func (d *DelayBuffer) WriteSample(sample float32) {
	d.buf.Write(sample)
}

// clampDelaySampleCount saturates the whole/fractional split when the
// whole count lands exactly on the last valid slot, producing a
// deliberate discontinuity at the delay-line boundary. Kept as-is
// rather than smoothed: downstream effects already treat it as part
// of the delay line's character.
func (d *DelayBuffer) clampDelaySampleCount() {
	if d.wholeDelaySamples == int32(d.buf.Capacity())-1 {
		d.wholeDelaySamples = int32(d.buf.Capacity()) - 2
		d.fractDelaySamples = fastmath.NextAfter(1.0, 0.0)
	}
}

func clampI32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
