// Package vocoder hosts a frequency-domain effect inside an STFT
// overlap-add loop: it collects samples into analysis frames, takes
// an effect's spectrum transform, and spreads the resynthesized
// frames back out sample by sample.
package vocoder

import (
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/tginick/otters/internal/board"
	"github.com/tginick/otters/internal/config"
	"github.com/tginick/otters/internal/dsp"
	"github.com/tginick/otters/internal/dsp/fastmath"
)

// WindowType selects the analysis window shape a PhaseVocoder applies
// before each forward transform.
type WindowType int

const (
	Hamming WindowType = iota
	Hann
	BlackmanHarris
)

// Context describes the frame geometry a FrequencyDomainEffect was
// built for, handed to it once at construction so it can size its own
// per-bin state.
type Context struct {
	FrameSize      int
	HopSize        int
	AnalysisWindow []float32
}

// FrequencyDomainEffect transforms one analysis frame's spectrum.
// Execute reads the forward FFT's bins from fft and writes the
// transformed spectrum into output; PostProcess then runs on the
// inverse FFT's time-domain result before overlap-add.
type FrequencyDomainEffect interface {
	AdvertiseParameters() []config.AdvertisedParameter
	PostInitialize(ctx Context)
	SetEffectParameter(paramIdx int, value config.ParameterValue)
	Execute(fft []complex128, output []complex128)
	PostProcess(ifft []complex128)
}

// createWindow builds the analysis window and its inverse gain
// correction factor for the given overlap fraction and frame size.
func createWindow(windowType WindowType, overlapPct float32, frameSize int) ([]float32, float32) {
	w := make([]float32, frameSize)
	for i := 0; i < frameSize; i++ {
		n := float32(i)
		switch windowType {
		case Hamming:
			w[i] = 0.54 - 0.46*fastmath.Cos(n*dsp.TwoPi/float32(frameSize))
		case Hann:
			// Kept in its non-standard form (0.5 - (1 - cos(...)))
			// rather than the textbook 0.5*(1-cos(...)): this is what
			// the reference implementation actually computes, and the
			// vocoder's round trip depends on this exact window.
			w[i] = 0.5 - (1.0 - fastmath.Cos(n*dsp.TwoPi/float32(frameSize)))
		case BlackmanHarris:
			c := fastmath.Cos(n * dsp.TwoPi / float32(frameSize))
			w[i] = 0.42323 - (0.49755 * c) + 0.07922*c
		}
	}

	var sum float32
	for _, v := range w {
		sum += v
	}

	return w, (1.0 - overlapPct) / sum
}

// PhaseVocoder wraps a FrequencyDomainEffect in the STFT overlap-add
// machinery: collecting samples into frames, running the forward and
// inverse FFT around the effect's spectrum transform, and spreading
// the resynthesized frame back out one sample per call.
type PhaseVocoder struct {
	frameSize int
	hopSize   int

	analysisWindow    []float32
	overlapFactor     float32
	invGainCorrection float32

	inputCollectionBuf  *dsp.FFTCollectionBuffer
	outputCollectionBuf *dsp.FFTCollectionBuffer
	accumulatedSamples  int

	fft          *fourier.CmplxFFT
	fftInputBuf  []complex128
	fftOutputBuf []complex128

	freqProcessor FrequencyDomainEffect
}

// NewPhaseVocoder constructs a vocoder for the given frame/hop sizes
// and window, hosting freqProcessor as its spectral effect.
func NewPhaseVocoder(frameSize, hopSize int, windowType WindowType, freqProcessor FrequencyDomainEffect) *PhaseVocoder {
	overlapFactor := 1.0 - (float32(hopSize) / float32(frameSize))
	window, invGainCorrection := createWindow(windowType, overlapFactor, frameSize)

	inputBuf := dsp.NewFFTCollectionBuffer(frameSize << 2)
	outputBuf := dsp.NewFFTCollectionBuffer(frameSize << 2)
	outputBuf.SetWriteIdx(frameSize)

	freqProcessor.PostInitialize(Context{FrameSize: frameSize, HopSize: hopSize, AnalysisWindow: window})

	return &PhaseVocoder{
		frameSize:           frameSize,
		hopSize:             hopSize,
		analysisWindow:      window,
		overlapFactor:       overlapFactor,
		invGainCorrection:   invGainCorrection,
		inputCollectionBuf:  inputBuf,
		outputCollectionBuf: outputBuf,
		fft:                 fourier.NewCmplxFFT(frameSize),
		fftInputBuf:         make([]complex128, frameSize),
		fftOutputBuf:        make([]complex128, frameSize),
		freqProcessor:       freqProcessor,
	}
}

func (p *PhaseVocoder) AdvertiseParameters() []config.AdvertisedParameter {
	return p.freqProcessor.AdvertiseParameters()
}

func (p *PhaseVocoder) SetAudioParameters(config.AudioConfig) {}

func (p *PhaseVocoder) SetEffectParameter(paramIdx int, value config.ParameterValue) {
	p.freqProcessor.SetEffectParameter(paramIdx, value)
}

func (p *PhaseVocoder) executeOne(sample float32) float32 {
	inBuf := p.inputCollectionBuf
	outBuf := p.outputCollectionBuf

	readIdx := outBuf.ReadIdx()
	result := outBuf.At(readIdx)
	outBuf.SetAt(readIdx, 0)
	outBuf.AdvanceReadIdx()

	writeIdx := inBuf.WriteIdx()
	inBuf.SetAt(writeIdx, sample)
	inBuf.AdvanceWriteIdx()

	p.accumulatedSamples++
	if p.accumulatedSamples == p.frameSize {
		for i := 0; i < p.frameSize; i++ {
			s := inBuf.AtReadIdx()
			inBuf.AdvanceReadIdx()
			p.fftInputBuf[i] = complex(float64(s*p.analysisWindow[i]), 0)
		}
		// overlap the read frames for the next collection pass
		inBuf.RewindReadIdx(p.frameSize - p.hopSize)

		p.fft.Coefficients(p.fftOutputBuf, p.fftInputBuf)

		// fftOutputBuf now holds the forward transform. The effect
		// reads it and writes its transformed spectrum back into
		// fftInputBuf, which is then fed to the inverse transform.
		p.freqProcessor.Execute(p.fftOutputBuf, p.fftInputBuf)

		// gonum's Sequence, like an FFTW backward plan, does not apply
		// the 1/n inverse-transform normalization; invGainCorrection
		// below absorbs the scale.
		p.fft.Sequence(p.fftOutputBuf, p.fftInputBuf)

		p.freqProcessor.PostProcess(p.fftOutputBuf)

		for i := 0; i < p.frameSize; i++ {
			current := outBuf.At(outBuf.WriteIdx())
			re := float32(real(p.fftOutputBuf[i])) * p.invGainCorrection
			outBuf.SetAtWriteIdx(re + current)
			outBuf.AdvanceWriteIdx()
		}
		outBuf.RewindWriteIdx(p.frameSize - p.hopSize)

		p.accumulatedSamples -= p.hopSize
	}

	return result
}

// Execute implements board.Effect: a single-in, single-out pass that
// runs every sample of the block through the overlap-add pipeline.
func (p *PhaseVocoder) Execute(ctx *board.Context, connectionIdx int, numSamples int) {
	inputs := ctx.InputsForConnection(connectionIdx)
	outputs := ctx.OutputsForConnection(connectionIdx)

	if len(outputs) < 1 {
		return
	}
	writer := ctx.GetBufferForWrite(outputs[0])

	if len(inputs) < 1 {
		for i := 0; i < numSamples; i++ {
			writer.BufWrite(i, p.executeOne(0))
		}
		return
	}

	reader := ctx.GetBufferForRead(inputs[0])
	for i := 0; i < numSamples; i++ {
		writer.BufWrite(i, p.executeOne(reader.BufRead(i)))
	}
}
