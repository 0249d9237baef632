package dsp

import "github.com/tginick/otters/internal/dsp/fastmath"

// analogRCTimeConstant is ln(0.368), the standard one-pole envelope
// follower time constant.
const analogRCTimeConstant = -0.999672340813206123

// EnvelopeDetectMode selects how EnvelopeDetector rectifies its input
// before applying the attack/release coefficients.
type EnvelopeDetectMode int

const (
	Peak EnvelopeDetectMode = iota
	MeanSquare
	RootMeanSquare
)

// EnvelopeDetector is a one-pole attack/release follower used by the
// dynamics effects to track signal level.
type EnvelopeDetector struct {
	sampleRate float32

	DetectMode    EnvelopeDetectMode
	ShouldClamp   bool
	ShouldReturnDB bool

	lastEnvelope float32

	attackTimeCoefficient  float32
	releaseTimeCoefficient float32
}

func NewEnvelopeDetector(sampleRate float32) *EnvelopeDetector {
	return &EnvelopeDetector{
		sampleRate:     sampleRate,
		DetectMode:     Peak,
		ShouldClamp:    true,
		ShouldReturnDB: true,
	}
}

func (e *EnvelopeDetector) SetAttackTimeMS(attackTimeMS float32) {
	if attackTimeMS <= 0.0 {
		return
	}
	e.attackTimeCoefficient = fastmath.Exp(analogRCTimeConstant / (attackTimeMS * e.sampleRate * 0.001))
}

func (e *EnvelopeDetector) SetReleaseTimeMS(releaseTimeMS float32) {
	if releaseTimeMS <= 0.0 {
		return
	}
	e.releaseTimeCoefficient = fastmath.Exp(analogRCTimeConstant / (releaseTimeMS * e.sampleRate * 0.001))
}

func (e *EnvelopeDetector) Process(x float32) float32 {
	absX := x
	if absX < 0 {
		absX = -absX
	}

	if e.DetectMode == MeanSquare || e.DetectMode == RootMeanSquare {
		absX *= absX
	}

	lastEnvelope := e.lastEnvelope
	var currentEnvelope float32
	if absX > lastEnvelope {
		currentEnvelope = e.attackTimeCoefficient*(lastEnvelope-absX) + absX
	} else {
		currentEnvelope = e.releaseTimeCoefficient*(lastEnvelope-absX) + absX
	}

	if e.ShouldClamp && currentEnvelope > 1.0 {
		currentEnvelope = 1.0
	}
	if currentEnvelope < 0.0 {
		currentEnvelope = 0.0
	}

	e.lastEnvelope = currentEnvelope

	if e.DetectMode == RootMeanSquare {
		currentEnvelope = fastmath.Sqrt(currentEnvelope)
	}

	if e.ShouldReturnDB {
		return 20.0 * fastmath.Log10(currentEnvelope)
	}
	return currentEnvelope
}
