package fx

import (
	"github.com/tginick/otters/internal/board"
	"github.com/tginick/otters/internal/config"
	"github.com/tginick/otters/internal/dsp"
)

const (
	biquadParamFilterType  = 0
	biquadParamCornerFreq  = 1
	biquadParamBoostCutDB  = 2
	biquadParamQ           = 3
)

var biquadFilterParams = []config.AdvertisedParameter{
	{
		Name:    "filter_type",
		Range:   config.IntRange(0, int32(dsp.NumIIRFilterTypes)),
		Default: config.IntValue(int32(dsp.FirstOrderLowPass)),
	},
	{
		// corner_freq_hz needs adjusting based on sample rate; the
		// range itself is fixed regardless of configured audio rate.
		Name:    "corner_freq_hz",
		Range:   config.FloatRange(0, 20480),
		Default: config.FloatValue(1024),
	},
	{
		Name:    "boost_cut_db",
		Range:   config.FloatRange(-20, 20),
		Default: config.FloatValue(0),
	},
	{
		Name:    "q",
		Range:   config.FloatRange(0.707, 20),
		Default: config.FloatValue(0.707),
	},
}

// BiquadFilter hosts a single reconfigurable biquad: changing
// filter_type, corner_freq_hz, boost_cut_db, or q recomputes the
// underlying coefficients in place without reallocating.
type BiquadFilter struct {
	params []config.ParameterValue
	biquad *dsp.Biquad
}

func NewBiquadFilter(ac config.AudioConfig) *BiquadFilter {
	params := config.DefaultParams(biquadFilterParams)
	return &BiquadFilter{
		params: params,
		biquad: dsp.NewBiquad(dsp.FirstOrderLPF(params[biquadParamCornerFreq].AsFloat(), ac.SampleRate)),
	}
}

func (*BiquadFilter) AdvertiseParameters() []config.AdvertisedParameter { return biquadFilterParams }

func (e *BiquadFilter) SetAudioParameters(ac config.AudioConfig) {
	e.biquad.ChangeSampleRate(ac.SampleRate)
}

func (e *BiquadFilter) SetEffectParameter(paramIdx int, value config.ParameterValue) {
	e.params[paramIdx] = value

	switch paramIdx {
	case biquadParamCornerFreq:
		e.biquad.ChangeCutoff(value.AsFloat())
	case biquadParamFilterType:
		e.biquad.ChangeType(dsp.IIRFilterType(value.AsEnum(int(dsp.NumIIRFilterTypes))))
	case biquadParamBoostCutDB:
		e.biquad.ChangeShelfGain(value.AsFloat())
	case biquadParamQ:
		e.biquad.ChangeQ(value.AsFloat())
	}
}

func (e *BiquadFilter) Execute(ctx *board.Context, connectionIdx int, numSamples int) {
	reader, writer, ok := singleInSingleOut(ctx, connectionIdx)
	if !ok {
		return
	}

	for i := 0; i < numSamples; i++ {
		writer.BufWrite(i, e.biquad.Filter(reader.BufRead(i)))
	}
}
