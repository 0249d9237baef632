package dsp

import "testing"

func TestEnvelopeDetectorAttacksTowardsPeak(t *testing.T) {
	e := NewEnvelopeDetector(44100)
	e.ShouldReturnDB = false
	e.SetAttackTimeMS(1)
	e.SetReleaseTimeMS(100)

	var last float32
	for i := 0; i < 1000; i++ {
		last = e.Process(1.0)
	}

	if last < 0.99 {
		t.Errorf("Process settled at %v, want close to 1.0", last)
	}
}

func TestEnvelopeDetectorReleasesTowardsZero(t *testing.T) {
	e := NewEnvelopeDetector(44100)
	e.ShouldReturnDB = false
	e.SetAttackTimeMS(1)
	e.SetReleaseTimeMS(1)

	for i := 0; i < 1000; i++ {
		e.Process(1.0)
	}

	var last float32
	for i := 0; i < 1000; i++ {
		last = e.Process(0.0)
	}

	if last > 0.01 {
		t.Errorf("Process settled at %v, want close to 0.0", last)
	}
}

func TestEnvelopeDetectorClampsToUnityWhenEnabled(t *testing.T) {
	e := NewEnvelopeDetector(44100)
	e.ShouldReturnDB = false
	e.ShouldClamp = true
	e.SetAttackTimeMS(1)
	e.SetReleaseTimeMS(100)

	for i := 0; i < 1000; i++ {
		if got := e.Process(2.0); got > 1.0 {
			t.Errorf("Process(2.0) = %v, want clamped to <= 1.0", got)
		}
	}
}

func TestEnvelopeDetectorDBOutputIsNegativeForSmallSignal(t *testing.T) {
	e := NewEnvelopeDetector(44100)
	e.SetAttackTimeMS(1)
	e.SetReleaseTimeMS(1)

	var last float32
	for i := 0; i < 1000; i++ {
		last = e.Process(0.1)
	}

	if last >= 0 {
		t.Errorf("Process(0.1) in dB mode = %v, want < 0", last)
	}
}
