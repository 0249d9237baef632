package fx

import (
	"math"

	"github.com/tginick/otters/internal/config"
	"github.com/tginick/otters/internal/vocoder"
)

const oceanParamSemitoneDifference = 0

var oceanPitchParams = []config.AdvertisedParameter{
	{
		// TODO: microtones
		Name:    "semitone_difference",
		Range:   config.IntRange(-12, 12),
		Default: config.IntValue(0),
	},
}

type oceanExtraParams struct {
	overlapFactor   int
	overlapFactorSq int
	outputHopIndex  int
	frameSize       int
	hopSize         int
	numInputBins    int
	numOutputBins   int
	zeroPadFactor   int

	copiedWindow []float32
	unityRoots   []complex128
}

// OceanPitchShifter shifts pitch by remapping each analysis bin to a
// new bin index scaled by the frequency multiplier, phase-corrected
// by a unity root so overlapping frames resynthesize coherently, and
// demodulated in post-processing by a window matched to the shift.
//
// Grounded on the reference "phase vocoder done right" pitch shifter
// (credited there to a Java implementation by Nicolas Juillerat).
type OceanPitchShifter struct {
	params               []config.ParameterValue
	frequencyMultiplier  float64
	extra                *oceanExtraParams
}

func NewOceanPitchShifter() *OceanPitchShifter {
	params := config.DefaultParams(oceanPitchParams)
	return &OceanPitchShifter{
		params:              params,
		frequencyMultiplier: semitonesToFreq(params[oceanParamSemitoneDifference].AsInt()),
	}
}

func (*OceanPitchShifter) AdvertiseParameters() []config.AdvertisedParameter {
	return oceanPitchParams
}

func (e *OceanPitchShifter) PostInitialize(ctx vocoder.Context) {
	overlapFactor := ctx.FrameSize / ctx.HopSize
	overlapFactorSq := 1 << overlapFactor

	e.extra = &oceanExtraParams{
		overlapFactor:   overlapFactor,
		overlapFactorSq: overlapFactorSq,
		outputHopIndex:  -overlapFactor - 1,
		hopSize:         ctx.HopSize,
		frameSize:       ctx.FrameSize,
		zeroPadFactor:   1,
		numInputBins:    ctx.FrameSize/2 + 1,
		numOutputBins:   ctx.FrameSize/2 + 1,
		copiedWindow:    ctx.AnalysisWindow,
		unityRoots:      generateUnityRoots(overlapFactorSq),
	}
}

func (e *OceanPitchShifter) SetEffectParameter(paramIdx int, value config.ParameterValue) {
	e.params[paramIdx] = value
	if paramIdx == oceanParamSemitoneDifference {
		e.frequencyMultiplier = semitonesToFreq(value.AsInt())
	}
}

func (e *OceanPitchShifter) Execute(fft []complex128, output []complex128) {
	if e.extra == nil {
		return
	}
	extra := e.extra

	output[0] = fft[0]
	for i := 1; i < len(output); i++ {
		output[i] = 0
	}

	cycleLength := extra.overlapFactorSq * extra.zeroPadFactor
	cycleIdx := (extra.outputHopIndex + cycleLength*2) % cycleLength

	for srcBinIdx := 1; srcBinIdx < extra.numInputBins; srcBinIdx++ {
		paddedSrcBinIdx := srcBinIdx * extra.zeroPadFactor

		dstBinIdx := int(float64(paddedSrcBinIdx)*e.frequencyMultiplier + 0.5)

		if dstBinIdx <= 0 || dstBinIdx >= extra.numOutputBins {
			continue
		}

		work := fft[srcBinIdx]

		var cycleShift int
		if dstBinIdx >= paddedSrcBinIdx {
			cycleShift = (dstBinIdx - paddedSrcBinIdx) % cycleLength
		} else {
			cycleShift = cycleLength - (paddedSrcBinIdx-dstBinIdx)%cycleLength
		}

		phaseShift := (cycleIdx * cycleShift) % cycleLength
		if phaseShift != 0 {
			work *= extra.unityRoots[(cycleLength-phaseShift)%cycleLength]
		}

		output[dstBinIdx] += work
	}

	extra.outputHopIndex++
}

func (e *OceanPitchShifter) PostProcess(ifft []complex128) {
	if e.extra == nil {
		return
	}
	extra := e.extra

	for i := 0; i < extra.hopSize; i++ {
		scale := sampleDemodulationWindow(extra.copiedWindow, i, extra.outputHopIndex,
			extra.frameSize, extra.overlapFactor, extra.zeroPadFactor, e.frequencyMultiplier)
		ifft[i] = complex(real(ifft[i])*scale, imag(ifft[i]))
	}
}

func semitonesToFreq(semitones int) float64 {
	return math.Pow(2, float64(semitones)/12.0)
}

func generateUnityRoots(cycleLength int) []complex128 {
	if cycleLength <= 0 {
		return make([]complex128, 1)
	}

	roots := make([]complex128, cycleLength)
	cosInc := math.Cos(2 * math.Pi / float64(cycleLength))
	sinInc := math.Sin(2 * math.Pi / float64(cycleLength))

	roots[0] = complex(1, 0)

	lre, lim := 1.0, 0.0
	for i := 1; i < cycleLength; i++ {
		re := cosInc*lre - sinInc*lim
		im := sinInc*lre + cosInc*lim
		lre, lim = re, im
		roots[i] = complex(re, im)
	}

	return roots
}

func sampleDemodulationWindow(window []float32, frameIdx int, hopIdx int, frameSize int, overlapFactor int, zeroPadFactor int, frequencyMultiplier float64) float64 {
	var r float64
	hopSize := frameSize / overlapFactor
	for k := 0; k < overlapFactor; k++ {
		offset := k*hopSize + frameIdx
		r += sampleModifiedAnalysisWindow(window, offset, hopIdx-k, frameSize, overlapFactor, zeroPadFactor, frequencyMultiplier) * float64(window[offset%len(window)])
	}

	const threshold = 0.1
	if r <= threshold {
		return 1.0 / threshold
	}
	return 1.0 / r
}

func sampleModifiedAnalysisWindow(window []float32, frameIdx int, hopIdx int, frameSize int, overlapFactor int, zeroPadFactor int, frequencyMultiplier float64) float64 {
	paddedFreqMultiplier := frequencyMultiplier * float64(zeroPadFactor)
	flooredFreqMultiplier := int(math.Floor(paddedFreqMultiplier))
	ceilFreqMultiplier := flooredFreqMultiplier + 1

	distFromCeil := paddedFreqMultiplier - float64(flooredFreqMultiplier)
	distFromFloor := 1.0 - distFromCeil

	floorPSR := sampleModifiedAnalysisWindowIntPSR(window, frameIdx, hopIdx, frameSize, overlapFactor, zeroPadFactor, flooredFreqMultiplier)
	ceilPSR := sampleModifiedAnalysisWindowIntPSR(window, frameIdx, hopIdx, frameSize, overlapFactor, zeroPadFactor, ceilFreqMultiplier)

	return floorPSR*distFromFloor + ceilPSR*distFromCeil
}

func sampleModifiedAnalysisWindowIntPSR(window []float32, frameIdx int, hopIdx int, frameSize int, overlapFactor int, zeroPadFactor int, freqRatio int) float64 {
	cycleLength := overlapFactor * zeroPadFactor
	cycleIdx := maxInt(2*cycleLength+hopIdx, 0) % cycleLength

	psrMinusPad := mod(freqRatio+(cycleLength-zeroPadFactor), cycleLength)

	shift := frameSize * cycleIdx * psrMinusPad / cycleLength

	offset := mod(frameIdx*freqRatio/zeroPadFactor+shift, frameSize)

	return float64(window[offset])
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
