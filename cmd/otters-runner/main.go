// Command otters-runner processes a mono 32-bit float WAV file through
// a board config offline, one block at a time, and writes the result
// to another WAV file.
package main

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	flag "github.com/spf13/pflag"

	"github.com/tginick/otters"
	"github.com/tginick/otters/internal/config"
)

const maxBlockSize = 1024

const wavAudioFormatIEEEFloat = 3

func main() {
	var (
		printAvailable = flag.BoolP("print-available-effects", "p", false, "do nothing except print available effects")
		configFile     = flag.StringP("config", "c", "", "board configuration file")
		wavFile        = flag.StringP("wavfile", "f", "", "wave file to process")
		outFile        = flag.StringP("outfile", "o", "", "output wave file")
	)
	flag.Parse()

	logger := log.New(os.Stderr)

	if *printAvailable {
		printAvailableUnits(logger)
		return
	}

	if *configFile == "" || *wavFile == "" || *outFile == "" {
		fmt.Fprintln(os.Stderr, "error: -c, -f, and -o are all required unless -p is given")
		flag.Usage()
		os.Exit(1)
	}

	samples, spec, err := loadWav(*wavFile)
	if err != nil {
		logger.Error("failed to load input wav", "file", *wavFile, "err", err)
		os.Exit(1)
	}
	logger.Info("loaded input wav", "file", *wavFile, "sample_rate", spec.SampleRate, "samples", len(samples))

	engine, err := otters.CreateDefault(config.AudioConfig{
		SampleRate:   float32(spec.SampleRate),
		MaxBlockSize: maxBlockSize,
	}, *configFile)
	if err != nil {
		logger.Error("failed to initialize engine", "err", err)
		os.Exit(1)
	}

	output := process(engine, samples, logger)

	if err := writeWav(*outFile, output, spec); err != nil {
		logger.Error("failed to write output wav", "file", *outFile, "err", err)
		os.Exit(1)
	}
	logger.Info("wrote output wav", "file", *outFile, "samples", len(output))
}

func printAvailableUnits(logger *log.Logger) {
	infos, err := otters.GetEffectInfoJSON(true)
	if err != nil {
		logger.Error("failed to get effect info", "err", err)
		os.Exit(1)
	}
	fmt.Println(infos)
}

type wavSpec struct {
	SampleRate int
}

func loadWav(path string) ([]float32, wavSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wavSpec{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, wavSpec{}, fmt.Errorf("%s is not a valid wav file", path)
	}
	dec.ReadInfo()

	if dec.NumChans != 1 {
		return nil, wavSpec{}, fmt.Errorf("only 1 channel is supported, got %d", dec.NumChans)
	}
	if dec.WavAudioFormat != wavAudioFormatIEEEFloat || dec.BitDepth != 32 {
		return nil, wavSpec{}, fmt.Errorf("only 32-bit float wav is supported, got format %d bit depth %d", dec.WavAudioFormat, dec.BitDepth)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, wavSpec{}, fmt.Errorf("reading pcm data: %w", err)
	}

	samples := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = math.Float32frombits(uint32(int32(v)))
	}

	return samples, wavSpec{SampleRate: int(dec.SampleRate)}, nil
}

func writeWav(path string, samples []float32, spec wavSpec) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, spec.SampleRate, 32, 1, wavAudioFormatIEEEFloat)
	defer enc.Close()

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(int32(math.Float32bits(s)))
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: spec.SampleRate},
		Data:           data,
		SourceBitDepth: 32,
	}

	return enc.Write(buf)
}

func process(engine *otters.Engine, input []float32, logger *log.Logger) []float32 {
	inputBuf := make([]float32, maxBlockSize)
	outputBuf := make([]float32, maxBlockSize)

	engine.BindInput(0, &inputBuf[0])
	engine.BindOutput(0, &outputBuf[0])

	output := make([]float32, 0, len(input))
	processed := 0

	start := time.Now()
	for processed < len(input) {
		take := maxBlockSize
		if remaining := len(input) - processed; remaining < take {
			take = remaining
		}

		copy(inputBuf[:take], input[processed:processed+take])

		engine.Frolic(take)

		output = append(output, outputBuf[:take]...)
		processed += take
	}
	elapsed := time.Since(start)

	samplesPerSecond := -1.0
	if elapsed.Seconds() > 0 {
		samplesPerSecond = float64(processed) / elapsed.Seconds()
	}
	logger.Info("processing complete", "samples", processed, "elapsed_ms", elapsed.Milliseconds(), "samples_per_second", int64(samplesPerSecond))

	return output
}
