package fx

import (
	"math"

	"github.com/tginick/otters/internal/board"
	"github.com/tginick/otters/internal/config"
	"github.com/tginick/otters/internal/dsp"
)

const (
	dynamicsParamThresholdDB  = 0
	dynamicsParamKneeWidthDB  = 1
	dynamicsParamRatio        = 2
	dynamicsParamAttackMS     = 3
	dynamicsParamReleaseMS    = 4
	dynamicsParamOutputGainDB = 5
	dynamicsParamSoftKnee     = 6
	dynamicsParamDelayMS      = 7
)

var dynamicsParams = []config.AdvertisedParameter{
	{Name: "threshold_db", Range: config.FloatRange(-40, 0), Default: config.FloatValue(-10)},
	{Name: "knee_width_db", Range: config.FloatRange(0, 20), Default: config.FloatValue(5)},
	{Name: "ratio", Range: config.FloatRange(1, 20), Default: config.FloatValue(1)},
	{Name: "attack_time_ms", Range: config.FloatRange(1, 100), Default: config.FloatValue(5)},
	{Name: "release_time_ms", Range: config.FloatRange(1, 5000), Default: config.FloatValue(500)},
	{Name: "output_gain_db", Range: config.FloatRange(-20, 20), Default: config.FloatValue(0)},
	{Name: "soft_knee?", Range: config.IntRange(0, 1), Default: config.IntValue(1)},
	{Name: "delay_ms", Range: config.FloatRange(0, float32(dsp.MaxDelayMS)), Default: config.FloatValue(0)},
}

// DynamicsProcessorType selects which of the four gain curves a
// Dynamics instance evaluates. The hard/soft knee variant is chosen
// at runtime by the soft_knee? parameter, not baked in at construction.
type DynamicsProcessorType int

const (
	DynamicsCompressor DynamicsProcessorType = iota
	DynamicsLimiter
	DynamicsExpander
	DynamicsGate
)

type gainFunc func(detectDB float32, params []config.ParameterValue) float32

var dynamicsGainFns = [8]gainFunc{
	dynCompressorHardKnee,
	dynLimiterHardKnee,
	dynExpanderHardKnee,
	dynGateHardKnee,
	dynCompressorSoftKnee,
	dynLimiterSoftKnee,
	dynExpanderSoftKnee,
	dynGateSoftKnee,
}

// Dynamics feeds a delayed copy of its input through a gain-reduction
// curve derived from an envelope follower running on the live
// (undelayed) signal, so the delay_ms parameter can supply lookahead.
type Dynamics struct {
	params           []config.ParameterValue
	envelopeDetector *dsp.EnvelopeDetector
	realOutputGain   float32
	processorType    DynamicsProcessorType
	delay            *dsp.DelayBuffer
}

func newDynamics(ac config.AudioConfig, processorType DynamicsProcessorType) *Dynamics {
	params := config.DefaultParams(dynamicsParams)

	ed := dsp.NewEnvelopeDetector(ac.SampleRate)
	ed.SetAttackTimeMS(params[dynamicsParamAttackMS].AsFloat())
	ed.SetReleaseTimeMS(params[dynamicsParamReleaseMS].AsFloat())

	return &Dynamics{
		params:           params,
		envelopeDetector: ed,
		realOutputGain:   dsp.DBToLinear(params[dynamicsParamOutputGainDB].AsFloat()),
		processorType:    processorType,
		delay:            dsp.NewDelayBufferWithSampleRate(ac.SampleRate),
	}
}

func NewCompressor(ac config.AudioConfig) *Dynamics { return newDynamics(ac, DynamicsCompressor) }
func NewLimiter(ac config.AudioConfig) *Dynamics    { return newDynamics(ac, DynamicsLimiter) }
func NewExpander(ac config.AudioConfig) *Dynamics   { return newDynamics(ac, DynamicsExpander) }
func NewGate(ac config.AudioConfig) *Dynamics       { return newDynamics(ac, DynamicsGate) }

func (*Dynamics) AdvertiseParameters() []config.AdvertisedParameter { return dynamicsParams }

func (e *Dynamics) SetAudioParameters(ac config.AudioConfig) {
	e.envelopeDetector = dsp.NewEnvelopeDetector(ac.SampleRate)
	e.delay.ChangeSampleRate(ac.SampleRate)
}

func (e *Dynamics) SetEffectParameter(paramIdx int, value config.ParameterValue) {
	e.params[paramIdx] = value

	switch paramIdx {
	case dynamicsParamAttackMS:
		e.envelopeDetector.SetAttackTimeMS(value.AsFloat())
	case dynamicsParamReleaseMS:
		e.envelopeDetector.SetReleaseTimeMS(value.AsFloat())
	case dynamicsParamOutputGainDB:
		e.realOutputGain = dsp.DBToLinear(value.AsFloat())
	case dynamicsParamDelayMS:
		e.delay.SetDelayTimeMS(value.AsFloat(), true)
	}
}

func (e *Dynamics) Execute(ctx *board.Context, connectionIdx int, numSamples int) {
	reader, writer, ok := singleInSingleOut(ctx, connectionIdx)
	if !ok {
		return
	}

	for i := 0; i < numSamples; i++ {
		xn := reader.BufRead(i)
		x := e.delay.ReadDelayedSample()

		detectDB := e.envelopeDetector.Process(xn)

		fnIdx := int(e.processorType)
		if e.params[dynamicsParamSoftKnee].AsInt() != 0 {
			fnIdx += 4
		}

		gainDB := dynamicsGainFns[fnIdx](detectDB, e.params)
		gainReductionDB := gainDB - detectDB
		gainReduction := dsp.DBToLinear(gainReductionDB)

		e.delay.WriteSample(xn)
		writer.BufWrite(i, x*gainReduction*e.realOutputGain)
	}
}

func dynCompressorHardKnee(detectDB float32, params []config.ParameterValue) float32 {
	thresholdDB := params[dynamicsParamThresholdDB].AsFloat()
	if detectDB <= thresholdDB {
		return detectDB
	}
	ratio := params[dynamicsParamRatio].AsFloat()
	return thresholdDB + (detectDB-thresholdDB)/ratio
}

func dynLimiterHardKnee(detectDB float32, params []config.ParameterValue) float32 {
	thresholdDB := params[dynamicsParamThresholdDB].AsFloat()
	if detectDB <= thresholdDB {
		return detectDB
	}
	return thresholdDB
}

func dynExpanderHardKnee(detectDB float32, params []config.ParameterValue) float32 {
	thresholdDB := params[dynamicsParamThresholdDB].AsFloat()
	if detectDB >= thresholdDB {
		return detectDB
	}
	ratio := params[dynamicsParamRatio].AsFloat()
	return thresholdDB + ratio*(detectDB-thresholdDB)
}

func dynGateHardKnee(detectDB float32, params []config.ParameterValue) float32 {
	thresholdDB := params[dynamicsParamThresholdDB].AsFloat()
	if detectDB >= thresholdDB {
		return detectDB
	}
	return -96.0
}

func dynCompressorSoftKnee(detectDB float32, params []config.ParameterValue) float32 {
	thresholdDB := params[dynamicsParamThresholdDB].AsFloat()
	kneeWidth := params[dynamicsParamKneeWidthDB].AsFloat()

	diff := detectDB - thresholdDB
	absDiff := abs32(diff)

	ratio := params[dynamicsParamRatio].AsFloat()
	switch {
	case 2.0*diff < -kneeWidth:
		return detectDB
	case 2.0*absDiff <= kneeWidth:
		return detectDB + ((1.0/ratio-1.0)*powf32(diff+kneeWidth/2.0, 2.0))/(2.0*kneeWidth)
	default:
		return thresholdDB + diff/ratio
	}
}

func dynLimiterSoftKnee(detectDB float32, params []config.ParameterValue) float32 {
	thresholdDB := params[dynamicsParamThresholdDB].AsFloat()
	kneeWidth := params[dynamicsParamKneeWidthDB].AsFloat()

	diff := detectDB - thresholdDB
	absDiff := abs32(diff)

	switch {
	case 2.0*diff < -kneeWidth:
		return detectDB
	case 2.0*absDiff <= kneeWidth:
		return detectDB - powf32(diff+kneeWidth/2.0, 2.0)/(2.0*kneeWidth)
	default:
		return thresholdDB
	}
}

func dynExpanderSoftKnee(detectDB float32, params []config.ParameterValue) float32 {
	thresholdDB := params[dynamicsParamThresholdDB].AsFloat()
	kneeWidth := params[dynamicsParamKneeWidthDB].AsFloat()

	diff := detectDB - thresholdDB
	absDiff := abs32(diff)

	ratio := params[dynamicsParamRatio].AsFloat()
	switch {
	case 2.0*diff > kneeWidth:
		return detectDB
	case 2.0*absDiff > -kneeWidth:
		return detectDB - ((1.0/ratio)*powf32(diff-kneeWidth/2.0, 2.0))/(2.0*kneeWidth)
	default:
		return thresholdDB + ratio*diff
	}
}

func dynGateSoftKnee(detectDB float32, params []config.ParameterValue) float32 {
	thresholdDB := params[dynamicsParamThresholdDB].AsFloat()
	kneeWidth := params[dynamicsParamKneeWidthDB].AsFloat()

	diff := detectDB - thresholdDB
	absDiff := abs32(diff)

	// Widened 20x from the nominal ratio parameter so the gate's soft
	// knee actually reaches silence instead of just attenuating.
	ratio := params[dynamicsParamRatio].AsFloat() * 20.0
	switch {
	case 2.0*diff > kneeWidth:
		return detectDB
	case 2.0*absDiff <= kneeWidth:
		return detectDB - ((1.0/ratio)*powf32(diff-kneeWidth/2.0, 2.0))/(2.0*kneeWidth)
	default:
		return thresholdDB + ratio*diff
	}
}

func powf32(x, y float32) float32 {
	return float32(math.Pow(float64(x), float64(y)))
}
