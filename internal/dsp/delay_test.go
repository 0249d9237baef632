package dsp

import "testing"

func TestDelayBufferReadsBackWrittenSampleAfterWholeDelay(t *testing.T) {
	d := NewDelayBufferWithSampleRateAndMaxDelay(1000, 100)
	d.SetDelayTimeMS(5, false) // 5 whole samples at 1kHz

	for i := 0; i < 10; i++ {
		d.WriteSample(float32(i))
	}

	got := d.ReadDelayedSample()
	if got < 3.9 || got > 4.1 {
		t.Errorf("ReadDelayedSample() = %v, want ~4", got)
	}
}

func TestDelayBufferSetDelayTimeMSNoOpWhenTooHighAndNotClamped(t *testing.T) {
	d := NewDelayBufferWithSampleRateAndMaxDelay(1000, 10)
	d.SetDelayTimeMS(5, false)
	before := d.DelaySampleCount()

	d.SetDelayTimeMS(1000, false)

	if got := d.DelaySampleCount(); got != before {
		t.Errorf("DelaySampleCount() = %v, want unchanged %v", got, before)
	}
}

func TestDelayBufferSetDelayTimeMSClampsWhenRequested(t *testing.T) {
	d := NewDelayBufferWithSampleRateAndMaxDelay(1000, 10)
	d.SetDelayTimeMS(1000, true)

	if d.DelaySampleCount() <= 0 {
		t.Errorf("DelaySampleCount() = %v, want clamped to near capacity", d.DelaySampleCount())
	}
}

func TestDelayBufferRejectsNegativeDelayTime(t *testing.T) {
	d := NewDelayBufferWithSampleRateAndMaxDelay(1000, 10)
	d.SetDelayTimeMS(5, false)
	before := d.DelaySampleCount()

	d.SetDelayTimeMS(-1, false)

	if got := d.DelaySampleCount(); got != before {
		t.Errorf("DelaySampleCount() = %v, want unchanged %v", got, before)
	}
}
