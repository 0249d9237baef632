// Command otters-play streams a mono 32-bit float WAV file through a
// board config and out to the system's audio device in real time,
// using oto as the low-latency output backend.
package main

import (
	"fmt"
	"math"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
	"github.com/go-audio/wav"
	flag "github.com/spf13/pflag"

	"github.com/tginick/otters"
	"github.com/tginick/otters/internal/config"
)

const playerBlockSize = 512

func main() {
	var (
		configFile = flag.StringP("config", "c", "", "board configuration file")
		wavFile    = flag.StringP("wavfile", "f", "", "wave file to play")
	)
	flag.Parse()

	logger := log.New(os.Stderr)

	if *configFile == "" || *wavFile == "" {
		fmt.Fprintln(os.Stderr, "error: -c and -f are both required")
		flag.Usage()
		os.Exit(1)
	}

	samples, sampleRate, err := loadMonoFloatWav(*wavFile)
	if err != nil {
		logger.Error("failed to load input wav", "file", *wavFile, "err", err)
		os.Exit(1)
	}

	engine, err := otters.CreateDefault(config.AudioConfig{
		SampleRate:   float32(sampleRate),
		MaxBlockSize: playerBlockSize,
	}, *configFile)
	if err != nil {
		logger.Error("failed to initialize engine", "err", err)
		os.Exit(1)
	}

	player, err := newLivePlayer(sampleRate)
	if err != nil {
		logger.Error("failed to open audio output", "err", err)
		os.Exit(1)
	}
	defer player.Close()

	player.SetupPlayer(engine, samples)
	player.Start()

	logger.Info("playing", "file", *wavFile, "sample_rate", sampleRate, "samples", len(samples))

	for player.IsRunning() {
		time.Sleep(50 * time.Millisecond)
	}
}

func loadMonoFloatWav(path string) ([]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("%s is not a valid wav file", path)
	}
	dec.ReadInfo()

	if dec.NumChans != 1 {
		return nil, 0, fmt.Errorf("only 1 channel is supported, got %d", dec.NumChans)
	}
	if dec.WavAudioFormat != 3 || dec.BitDepth != 32 {
		return nil, 0, fmt.Errorf("only 32-bit float wav is supported, got format %d bit depth %d", dec.WavAudioFormat, dec.BitDepth)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("reading pcm data: %w", err)
	}

	samples := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = math.Float32frombits(uint32(int32(v)))
	}

	return samples, int(dec.SampleRate), nil
}

// livePlayer runs the engine one block ahead of the oto player's pull:
// a generator goroutine processes the next block and publishes it
// atomically, so Read (called from oto's own mixing goroutine) never
// blocks on or locks against the engine.
type livePlayer struct {
	ctx    *oto.Context
	player *oto.Player

	engine *otters.Engine
	input  []float32

	current atomic.Pointer[[]float32]
	readPos int

	running atomic.Bool
	mutex   sync.Mutex
}

func newLivePlayer(sampleRate int) (*livePlayer, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   4,
	})
	if err != nil {
		return nil, fmt.Errorf("creating oto context: %w", err)
	}
	<-ready

	return &livePlayer{ctx: ctx}, nil
}

func (p *livePlayer) SetupPlayer(engine *otters.Engine, input []float32) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.engine = engine
	p.input = input
	p.player = p.ctx.NewPlayer(p)

	empty := make([]float32, playerBlockSize)
	p.current.Store(&empty)
}

func (p *livePlayer) Start() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.player == nil || p.running.Load() {
		return
	}

	p.running.Store(true)
	go p.generate()
	p.player.Play()
}

func (p *livePlayer) IsRunning() bool { return p.running.Load() }

func (p *livePlayer) Close() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.running.Store(false)
	if p.player != nil {
		p.player.Close()
		p.player = nil
	}
}

// generate runs one block ahead of playback: bind the next input
// slice, run the engine, and publish a fresh snapshot of its output.
func (p *livePlayer) generate() {
	inputBuf := make([]float32, playerBlockSize)
	outputBuf := make([]float32, playerBlockSize)

	p.engine.BindInput(0, &inputBuf[0])
	p.engine.BindOutput(0, &outputBuf[0])

	processed := 0
	for p.running.Load() && processed < len(p.input) {
		take := playerBlockSize
		if remaining := len(p.input) - processed; remaining < take {
			take = remaining
		}

		for i := 0; i < playerBlockSize; i++ {
			inputBuf[i] = 0
		}
		copy(inputBuf[:take], p.input[processed:processed+take])

		p.engine.Frolic(take)

		snapshot := make([]float32, take)
		copy(snapshot, outputBuf[:take])
		p.current.Store(&snapshot)

		processed += take
	}

	p.running.Store(false)
}

// Read implements io.Reader for oto.NewPlayer: it drains whatever
// block generate() most recently published, reading across block
// boundaries without ever taking a lock shared with the generator.
func (p *livePlayer) Read(b []byte) (int, error) {
	block := p.current.Load()
	if block == nil || len(*block) == 0 {
		for i := range b {
			b[i] = 0
		}
		return len(b), nil
	}

	written := 0
	for written+4 <= len(b) {
		if p.readPos >= len(*block) {
			break
		}
		bits := math.Float32bits((*block)[p.readPos])
		b[written] = byte(bits)
		b[written+1] = byte(bits >> 8)
		b[written+2] = byte(bits >> 16)
		b[written+3] = byte(bits >> 24)
		p.readPos++
		written += 4
	}

	for i := written; i < len(b); i++ {
		b[i] = 0
	}

	if p.readPos >= len(*block) {
		p.readPos = 0
	}

	return len(b), nil
}
