package fx

import (
	"math"

	"github.com/tginick/otters/internal/board"
	"github.com/tginick/otters/internal/config"
)

const bitCrusherParamBitDepth = 0

var bitCrusherParams = []config.AdvertisedParameter{
	{
		Name:    "quantized_bit_depth",
		Range:   config.IntRange(1, 15),
		Default: config.IntValue(6),
	},
}

// BitCrusher quantizes samples onto a staircase of 2^bit_depth - 1
// levels by flooring each sample to the nearest quantization step.
type BitCrusher struct {
	params []config.ParameterValue
	ql     float32
}

func NewBitCrusher() *BitCrusher {
	params := config.DefaultParams(bitCrusherParams)
	return &BitCrusher{
		params: params,
		ql:     quantizationStep(params[bitCrusherParamBitDepth].AsFloat()),
	}
}

func quantizationStep(bitDepth float32) float32 {
	return 2.0 / (float32(math.Pow(2, float64(bitDepth))) - 1.0)
}

func (*BitCrusher) AdvertiseParameters() []config.AdvertisedParameter { return bitCrusherParams }
func (*BitCrusher) SetAudioParameters(config.AudioConfig)             {}

func (e *BitCrusher) SetEffectParameter(paramIdx int, value config.ParameterValue) {
	e.params[paramIdx] = value
	if paramIdx == bitCrusherParamBitDepth {
		e.ql = quantizationStep(value.AsFloat())
	}
}

func (e *BitCrusher) Execute(ctx *board.Context, connectionIdx int, numSamples int) {
	reader, writer, ok := singleInSingleOut(ctx, connectionIdx)
	if !ok {
		return
	}

	for i := 0; i < numSamples; i++ {
		s := e.ql * float32(math.Floor(float64(reader.BufRead(i)/e.ql)))
		writer.BufWrite(i, s)
	}
}
