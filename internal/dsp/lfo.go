package dsp

const lfoPi = 3.14159265358979323846

// LFOWaveform selects the shape LowFrequencyOscillator.CurrentSample
// reads off of the running phase.
type LFOWaveform int

const (
	Triangle LFOWaveform = iota
	Sine
	Sawtooth
)

// LowFrequencyOscillator accumulates phase as a [0, 1) modulo counter
// and reads waveform samples off of it, used to modulate delay time,
// filter cutoff, and similar slow-moving parameters.
type LowFrequencyOscillator struct {
	moduloCounter float32
	moduloInc     float32

	oscillationFreq float32
	sampleRate      float32
	waveform        LFOWaveform
}

func NewLowFrequencyOscillator(waveform LFOWaveform, oscillationFreq, sampleRate float32) *LowFrequencyOscillator {
	return &LowFrequencyOscillator{
		moduloInc:       oscillationFreq / sampleRate,
		oscillationFreq: oscillationFreq,
		sampleRate:      sampleRate,
		waveform:        waveform,
	}
}

func (l *LowFrequencyOscillator) ChangeOscillationFreq(newFreq float32) {
	l.oscillationFreq = newFreq
	l.moduloInc = l.oscillationFreq / l.sampleRate
}

func (l *LowFrequencyOscillator) ChangeSampleRate(newSampleRate float32) {
	l.sampleRate = newSampleRate
	l.moduloInc = l.oscillationFreq / newSampleRate
	l.moduloCounter = 0.0
}

func (l *LowFrequencyOscillator) Oscillate() {
	l.moduloCounter += l.moduloInc
	if l.moduloCounter >= 1.0 {
		l.moduloCounter -= 1.0
	}
}

func (l *LowFrequencyOscillator) CurrentSample() float32 {
	switch l.waveform {
	case Triangle:
		return triangleWave(l.moduloCounter)
	case Sawtooth:
		return sawtoothWave(l.moduloCounter)
	default:
		return sineWave(l.moduloCounter)
	}
}

// BipolarToUnipolar maps a [-1, 1] LFO sample to [0, 1].
func BipolarToUnipolar(v float32) float32 {
	return (v + 1.0) / 2.0
}

const parabolicB = 4.0 / lfoPi
const parabolicC = -4.0 / (lfoPi * lfoPi)
const parabolicP = 0.225

// parabolicSine is a cheap parabolic approximation of sin(phase) over
// phase in [-pi, pi], used instead of a real sine call on the hot path.
func parabolicSine(phase float32) float32 {
	absPhase := phase
	if absPhase < 0 {
		absPhase = -absPhase
	}
	y := parabolicB*phase + parabolicC*phase*absPhase

	absY := y
	if absY < 0 {
		absY = -absY
	}
	y = parabolicP*(y*absY-y) + y
	return y
}

func sineWave(v float32) float32 {
	angle := v*TwoPi - lfoPi
	return parabolicSine(-angle)
}

func triangleWave(v float32) float32 {
	bipolarV := 2.0*v - 1.0
	absBipolarV := bipolarV
	if absBipolarV < 0 {
		absBipolarV = -absBipolarV
	}
	return 2.0*absBipolarV - 1.0
}

func sawtoothWave(v float32) float32 {
	return 2.0*v - 1.0
}
