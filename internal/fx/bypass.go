package fx

import (
	"github.com/tginick/otters/internal/board"
	"github.com/tginick/otters/internal/config"
	"github.com/tginick/otters/internal/vocoder"
)

// MonoBypass copies its single input straight to its single output.
type MonoBypass struct{}

func NewMonoBypass() *MonoBypass { return &MonoBypass{} }

func (*MonoBypass) AdvertiseParameters() []config.AdvertisedParameter { return nil }
func (*MonoBypass) SetAudioParameters(config.AudioConfig)             {}
func (*MonoBypass) SetEffectParameter(int, config.ParameterValue)     {}

func (*MonoBypass) Execute(ctx *board.Context, connectionIdx int, numSamples int) {
	reader, writer, ok := singleInSingleOut(ctx, connectionIdx)
	if !ok {
		return
	}
	for i := 0; i < numSamples; i++ {
		writer.BufWrite(i, reader.BufRead(i))
	}
}

// GenericBypass copies as many input/output pairs as it has, in
// declaration order. When it has more outputs than inputs the extras
// are zeroed rather than left untouched; when it has more inputs than
// outputs, the surplus inputs are simply never read.
type GenericBypass struct{}

func NewGenericBypass() *GenericBypass { return &GenericBypass{} }

func (*GenericBypass) AdvertiseParameters() []config.AdvertisedParameter { return nil }
func (*GenericBypass) SetAudioParameters(config.AudioConfig)             {}
func (*GenericBypass) SetEffectParameter(int, config.ParameterValue)     {}

func (*GenericBypass) Execute(ctx *board.Context, connectionIdx int, numSamples int) {
	inputs := ctx.InputsForConnection(connectionIdx)
	outputs := ctx.OutputsForConnection(connectionIdx)

	minEnd := len(inputs)
	if len(outputs) < minEnd {
		minEnd = len(outputs)
	}

	for i := 0; i < minEnd; i++ {
		reader := ctx.GetBufferForRead(inputs[i])
		writer := ctx.GetBufferForWrite(outputs[i])
		for j := 0; j < numSamples; j++ {
			writer.BufWrite(j, reader.BufRead(j))
		}
	}

	if len(inputs) == minEnd {
		for i := minEnd; i < len(outputs); i++ {
			writer := ctx.GetBufferForWrite(outputs[i])
			for j := 0; j < numSamples; j++ {
				writer.BufWrite(j, 0)
			}
		}
	}
}

// VocoderBypass is the identity FrequencyDomainEffect: it exercises
// the phase vocoder's overlap-add machinery without altering the
// spectrum, used to check the vocoder's round trip in isolation.
type VocoderBypass struct{}

func NewVocoderBypass() *VocoderBypass { return &VocoderBypass{} }

func (*VocoderBypass) AdvertiseParameters() []config.AdvertisedParameter { return nil }
func (*VocoderBypass) PostInitialize(vocoder.Context)                    {}
func (*VocoderBypass) SetEffectParameter(int, config.ParameterValue)     {}

func (*VocoderBypass) Execute(fft []complex128, output []complex128) {
	copy(output, fft)
}

func (*VocoderBypass) PostProcess([]complex128) {}

// singleInSingleOut resolves the one input/one output buffer pair a
// connection was given, matching the board's own single-in/single-out
// helper semantics: zero outputs means nothing to do, and zero inputs
// (but at least one output) means the output is simply silenced.
func singleInSingleOut(ctx *board.Context, connectionIdx int) (board.Reader, board.Writer, bool) {
	inputs := ctx.InputsForConnection(connectionIdx)
	outputs := ctx.OutputsForConnection(connectionIdx)

	if len(outputs) < 1 {
		return nil, nil, false
	}
	writer := ctx.GetBufferForWrite(outputs[0])

	if len(inputs) < 1 {
		return silentReader{}, writer, true
	}

	return ctx.GetBufferForRead(inputs[0]), writer, true
}

type silentReader struct{}

func (silentReader) BufRead(int) float32 { return 0 }
