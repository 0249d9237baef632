package dsp

import "github.com/tginick/otters/internal/dsp/fastmath"

// TwoPi is used throughout the coefficient formulas below and is
// exported because the LFO and the vocoder's window builders use it too.
const TwoPi = 2.0 * 3.14159265358979323846
const piConst = 3.14159265358979323846

// DefaultQ is used whenever a filter kind takes a Q but the caller
// doesn't supply one.
const DefaultQ = 0.707

// IIRFilterType selects which of the ten coefficient formulas a Biquad
// recomputes on ChangeType/ChangeCutoff/ChangeQ/ChangeShelfGain.
type IIRFilterType int

const (
	FirstOrderLowPass IIRFilterType = iota
	SecondOrderLowPass
	FirstOrderHighPass
	SecondOrderHighPass
	SecondOrderBandPass
	SecondOrderBandStop
	FirstOrderAllPass
	SecondOrderAllPass
	FirstOrderLowShelf
	FirstOrderHighShelf

	NumIIRFilterTypes
)

// BiquadCoefficients holds a Direct Form I coefficient set plus the
// parameters used to derive it, so it can be recomputed in place when
// one parameter changes without needing the others again.
type BiquadCoefficients struct {
	A0, A1, A2 float32
	B1, B2     float32
	C0, D0     float32

	cutoff      float32
	q           float32
	sampleRate  float32
	shelfGainDB float32
	iirType     IIRFilterType
}

func (c BiquadCoefficients) recreate() BiquadCoefficients {
	switch c.iirType {
	case FirstOrderLowPass:
		return FirstOrderLPF(c.cutoff, c.sampleRate)
	case SecondOrderLowPass:
		return SecondOrderLPF(c.cutoff, c.sampleRate, c.q)
	case FirstOrderHighPass:
		return FirstOrderHPF(c.cutoff, c.sampleRate)
	case SecondOrderHighPass:
		return SecondOrderHPF(c.cutoff, c.sampleRate, c.q)
	case SecondOrderBandPass:
		return SecondOrderBPF(c.cutoff, c.sampleRate, c.q)
	case SecondOrderBandStop:
		return SecondOrderBSF(c.cutoff, c.sampleRate, c.q)
	case FirstOrderAllPass:
		return FirstOrderAPF(c.cutoff, c.sampleRate)
	case SecondOrderAllPass:
		return SecondOrderAPF(c.cutoff, c.sampleRate, c.q)
	case FirstOrderLowShelf:
		return FirstOrderLSF(c.cutoff, c.sampleRate, c.shelfGainDB)
	case FirstOrderHighShelf:
		return FirstOrderHSF(c.cutoff, c.sampleRate, c.shelfGainDB)
	default:
		panic("otters/dsp: unknown IIRFilterType")
	}
}

func (c BiquadCoefficients) SetCutoff(newCutoff float32) BiquadCoefficients {
	c.cutoff = newCutoff
	return c.recreate()
}

func (c BiquadCoefficients) SetSampleRate(newSampleRate float32) BiquadCoefficients {
	c.sampleRate = newSampleRate
	return c.recreate()
}

func (c BiquadCoefficients) SetQ(newQ float32) BiquadCoefficients {
	c.q = newQ
	return c.recreate()
}

func (c BiquadCoefficients) SetShelfGainDB(newGainDB float32) BiquadCoefficients {
	c.shelfGainDB = newGainDB
	return c.recreate()
}

func (c BiquadCoefficients) ChangeType(newType IIRFilterType) BiquadCoefficients {
	c.iirType = newType
	return c.recreate()
}

func FirstOrderLPF(cutoff, sampleRate float32) BiquadCoefficients {
	thetaC := TwoPi * cutoff / sampleRate
	gamma := fastmath.Cos(thetaC) / (1.0 + fastmath.Sin(thetaC))

	a0 := (1.0 - gamma) / 2.0

	return BiquadCoefficients{
		A0: a0, A1: a0, A2: 0, B1: -gamma, B2: 0,
		C0: 1.0, D0: 0,
		cutoff: cutoff, sampleRate: sampleRate, q: DefaultQ,
		iirType: FirstOrderLowPass,
	}
}

func SecondOrderLPF(cutoff, sampleRate, q float32) BiquadCoefficients {
	if q == 0 {
		q = DefaultQ
	}

	thetaC := TwoPi * cutoff / sampleRate
	d2 := 1.0 / q / 2.0
	sinThetaC := fastmath.Sin(thetaC)
	beta := 0.5 * (1.0 - d2*sinThetaC) / (1.0 + d2*sinThetaC)
	gamma := (0.5 + beta) * fastmath.Cos(thetaC)

	a0 := (0.5 + beta - gamma) / 2.0

	return BiquadCoefficients{
		A0: a0, A1: 2.0 * a0, A2: a0, B1: -2.0 * gamma, B2: 2.0 * beta,
		C0: 1.0, D0: 0,
		cutoff: cutoff, sampleRate: sampleRate, q: q,
		iirType: SecondOrderLowPass,
	}
}

func FirstOrderHPF(cutoff, sampleRate float32) BiquadCoefficients {
	thetaC := TwoPi * cutoff / sampleRate
	gamma := fastmath.Cos(thetaC) / (1.0 + fastmath.Sin(thetaC))

	a0 := (1.0 + gamma) / 2.0

	return BiquadCoefficients{
		A0: a0, A1: -a0, A2: 0, B1: -gamma, B2: 0,
		C0: 1.0, D0: 0,
		cutoff: cutoff, sampleRate: sampleRate, q: DefaultQ,
		iirType: FirstOrderHighPass,
	}
}

func SecondOrderHPF(cutoff, sampleRate, q float32) BiquadCoefficients {
	if q == 0 {
		q = DefaultQ
	}

	thetaC := TwoPi * cutoff / sampleRate
	d2 := 1.0 / q / 2.0
	sinThetaC := fastmath.Sin(thetaC)
	beta := 0.5 * (1.0 - d2*sinThetaC) / (1.0 + d2*sinThetaC)
	gamma := (0.5 + beta) * fastmath.Cos(thetaC)

	a0 := (0.5 + beta + gamma) / 2.0

	return BiquadCoefficients{
		A0: a0, A1: -2.0 * a0, A2: a0, B1: -2.0 * gamma, B2: 2.0 * beta,
		C0: 1.0, D0: 0,
		cutoff: cutoff, sampleRate: sampleRate, q: q,
		iirType: SecondOrderHighPass,
	}
}

func SecondOrderBPF(corner, sampleRate, q float32) BiquadCoefficients {
	if q == 0 {
		q = DefaultQ
	}

	k := fastmath.Tan(piConst * corner / sampleRate)
	delta := k*k*q + k + q

	a0 := k / delta
	b1 := (2.0 * q * (k*k - 1.0)) / delta
	b2 := (k*k*q - k + q) / delta

	return BiquadCoefficients{
		A0: a0, A1: 0, A2: -a0, B1: b1, B2: b2,
		C0: 1.0, D0: 0,
		cutoff: corner, sampleRate: sampleRate, q: q,
		iirType: SecondOrderBandPass,
	}
}

func SecondOrderBSF(corner, sampleRate, q float32) BiquadCoefficients {
	if q == 0 {
		q = DefaultQ
	}

	k := fastmath.Tan(piConst * corner / sampleRate)
	delta := k*k*q + k + q

	a0 := (q * (k*k + 1.0)) / delta
	a1 := (2.0 * q * (k*k - 1.0)) / delta
	b2 := (k*k*q - k + q) / delta

	return BiquadCoefficients{
		A0: a0, A1: a1, A2: a0, B1: a1, B2: b2,
		C0: 1.0, D0: 0,
		cutoff: corner, sampleRate: sampleRate, q: q,
		iirType: SecondOrderBandStop,
	}
}

func FirstOrderAPF(corner, sampleRate float32) BiquadCoefficients {
	thetaC := piConst * corner / sampleRate
	tanThetaC := fastmath.Tan(thetaC)
	alpha := (tanThetaC - 1.0) / (tanThetaC + 1.0)

	return BiquadCoefficients{
		A0: alpha, A1: 1.0, A2: 0, B1: alpha, B2: 0,
		C0: 1.0, D0: 0,
		cutoff: corner, sampleRate: sampleRate, q: DefaultQ,
		iirType: FirstOrderAllPass,
	}
}

func SecondOrderAPF(corner, sampleRate, q float32) BiquadCoefficients {
	if q == 0 {
		q = DefaultQ
	}

	w := corner * piConst / q / sampleRate
	tanW := fastmath.Tan(w)

	alpha := (tanW - 1.0) / (tanW + 1.0)
	beta := -fastmath.Cos(TwoPi * corner / sampleRate)

	a0 := -alpha
	a1 := beta * (1.0 - alpha)

	return BiquadCoefficients{
		A0: a0, A1: a1, A2: 1.0, B1: a1, B2: a0,
		C0: 1.0, D0: 0,
		cutoff: corner, sampleRate: sampleRate, q: q,
		iirType: SecondOrderAllPass,
	}
}

func FirstOrderLSF(shelfFreq, sampleRate, gainDB float32) BiquadCoefficients {
	thetaC := TwoPi * shelfFreq / sampleRate
	mu := DBToLinear(gainDB)
	beta := 4.0 / (1.0 + mu)
	delta := beta * fastmath.Tan(thetaC/2.0)
	gamma := (1.0 - delta) / (1.0 + delta)

	a0 := (1.0 - gamma) / 2.0

	return BiquadCoefficients{
		A0: a0, A1: a0, A2: 0, B1: -gamma, B2: 0,
		C0: mu - 1.0, D0: 1.0,
		cutoff: shelfFreq, sampleRate: sampleRate, q: DefaultQ, shelfGainDB: gainDB,
		iirType: FirstOrderLowShelf,
	}
}

func FirstOrderHSF(shelfFreq, sampleRate, gainDB float32) BiquadCoefficients {
	thetaC := TwoPi * shelfFreq / sampleRate
	mu := DBToLinear(gainDB)
	beta := (1.0 + mu) / 4.0
	delta := beta * fastmath.Tan(thetaC/2.0)
	gamma := (1.0 - delta) / (1.0 + delta)

	a0 := (1.0 + gamma) / 2.0

	return BiquadCoefficients{
		A0: a0, A1: -a0, A2: 0, B1: -gamma, B2: 0,
		C0: mu - 1.0, D0: 1.0,
		cutoff: shelfFreq, sampleRate: sampleRate, q: DefaultQ, shelfGainDB: gainDB,
		iirType: FirstOrderHighShelf,
	}
}

// Biquad is a Direct Form I filter carrying its own two-sample input
// and output history, so ChangeParams/ChangeType can swap coefficient
// sets without disturbing the running history.
type Biquad struct {
	coefficients BiquadCoefficients
	x            TinyFloatBuffer
	y            TinyFloatBuffer
}

func NewBiquad(coeff BiquadCoefficients) *Biquad {
	return &Biquad{coefficients: coeff}
}

func (b *Biquad) ChangeSampleRate(newSampleRate float32) {
	b.coefficients = b.coefficients.SetSampleRate(newSampleRate)
}

func (b *Biquad) ChangeType(newType IIRFilterType) {
	b.coefficients = b.coefficients.ChangeType(newType)
}

func (b *Biquad) ChangeCutoff(newCutoff float32) {
	b.coefficients = b.coefficients.SetCutoff(newCutoff)
}

func (b *Biquad) ChangeShelfGain(newGain float32) {
	b.coefficients = b.coefficients.SetShelfGainDB(newGain)
}

func (b *Biquad) ChangeQ(newQ float32) {
	b.coefficients = b.coefficients.SetQ(newQ)
}

func (b *Biquad) ChangeParams(newParams BiquadCoefficients) {
	b.coefficients = newParams
}

func (b *Biquad) Coefficients() BiquadCoefficients { return b.coefficients }

// Filter computes y(n) = c0*(a0*x(n) + a1*x(n-1) + a2*x(n-2) -
// b1*y(n-1) - b2*y(n-2)) + d0*x(n) and advances the history buffers.
func (b *Biquad) Filter(input float32) float32 {
	c := &b.coefficients
	result := c.C0*(c.A0*input+c.A1*b.x.Z1()+c.A2*b.x.Z2()-c.B1*b.y.Z1()-c.B2*b.y.Z2()) + c.D0*input

	b.x.Write(input)
	b.y.Write(result)

	return result
}

// G returns a0, the direct feed-forward coefficient, used by the
// phaser's all-pass cascade to fold gamma products into a single gain.
func (b *Biquad) G() float32 {
	return b.coefficients.A0
}

// S returns the filter's output contribution with the current input
// term omitted, the other half of the phaser's g()/s() split.
func (b *Biquad) S() float32 {
	c := &b.coefficients
	return c.A1*b.x.Z1() + c.A2*b.x.Z2() - c.B1*b.y.Z1() - c.B2*b.y.Z2()
}
