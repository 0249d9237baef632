package fx

import (
	"github.com/tginick/otters/internal/board"
	"github.com/tginick/otters/internal/config"
	"github.com/tginick/otters/internal/dsp"
)

const (
	delayParamTimeMS    = 0
	delayParamFeedback  = 1
	delayParamWetDryPct = 2
)

var delayParams = []config.AdvertisedParameter{
	{
		Name:    "delay_time_ms",
		Range:   config.FloatRange(0, float32(dsp.MaxDelayMS)),
		Default: config.FloatValue(1000),
	},
	{
		Name:    "feedback_pct",
		Range:   config.FloatRange(-1, 1),
		Default: config.FloatValue(0),
	},
	{
		Name:    "wet_dry_pct",
		Range:   config.FloatRange(0, 1),
		Default: config.FloatValue(0.5),
	},
}

// MonoDelayBasic is a single feedback delay line: the delayed sample
// is fed back into the write path before the dry/wet mix is formed,
// rather than mixed in only at the output.
type MonoDelayBasic struct {
	params   []config.ParameterValue
	delayBuf *dsp.DelayBuffer
}

func NewMonoDelayBasic(ac config.AudioConfig) *MonoDelayBasic {
	params := config.DefaultParams(delayParams)
	delayBuf := dsp.NewDelayBufferWithSampleRate(ac.SampleRate)
	delayBuf.SetDelayTimeMS(params[delayParamTimeMS].AsFloat(), true)

	return &MonoDelayBasic{
		params:   params,
		delayBuf: delayBuf,
	}
}

func (*MonoDelayBasic) AdvertiseParameters() []config.AdvertisedParameter { return delayParams }

func (e *MonoDelayBasic) SetAudioParameters(ac config.AudioConfig) {
	e.delayBuf.ChangeSampleRate(ac.SampleRate)
}

func (e *MonoDelayBasic) SetEffectParameter(paramIdx int, value config.ParameterValue) {
	e.params[paramIdx] = value
	if paramIdx == delayParamTimeMS {
		e.delayBuf.SetDelayTimeMS(value.AsFloat(), true)
	}
}

func (e *MonoDelayBasic) Execute(ctx *board.Context, connectionIdx int, numSamples int) {
	reader, writer, ok := singleInSingleOut(ctx, connectionIdx)
	if !ok {
		return
	}

	wetness := e.params[delayParamWetDryPct].AsFloat()
	dryness := 1.0 - wetness
	feedback := e.params[delayParamFeedback].AsFloat()

	for i := 0; i < numSamples; i++ {
		xn := reader.BufRead(i)
		yn := e.delayBuf.ReadDelayedSample()
		dn := xn + feedback*yn

		e.delayBuf.WriteSample(dn)

		on := dryness*xn + wetness*yn
		writer.BufWrite(i, on)
	}
}
