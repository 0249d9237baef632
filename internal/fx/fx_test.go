package fx

import (
	"testing"

	"github.com/tginick/otters/internal/board"
	"github.com/tginick/otters/internal/config"
)

func testAudioConfig() config.AudioConfig {
	return config.AudioConfig{SampleRate: 44100, MaxBlockSize: 4096}
}

// singleInOutBoard builds a one-buffer-in, one-buffer-out board
// context wired to a single connection at index 0, suitable for
// driving any board.Effect under test with Execute(ctx, 0, n).
func singleInOutBoard(t *testing.T, e board.Effect) *board.Context {
	t.Helper()

	bc := config.BoardConfig{
		Buffers: []string{"in", "out"},
		Effects: []config.BoardEffectDeclaration{{EffectName: "under_test", BindName: "n1", Enabled: true}},
		Connections: []config.BoardConnectionDeclaration{
			{Effect: "n1", Reads: []string{"in"}, Writes: []string{"out"}},
		},
	}

	effects := map[string]board.LoadedEffect{"n1": {Ordinal: 0, Effect: e, Enabled: true}}

	ctx, err := board.InitializeContext(bc, testAudioConfig(), effects)
	if err != nil {
		t.Fatalf("InitializeContext() error = %v", err)
	}
	return ctx
}

// multiBufferBoard builds a board with one connection reading reads
// and writing writes, buffers declared reads-then-writes so a read
// buffer named reads[i] sits at index i and a write buffer named
// writes[j] sits at index len(reads)+j.
func multiBufferBoard(t *testing.T, e board.Effect, reads, writes []string) *board.Context {
	t.Helper()

	bc := config.BoardConfig{
		Buffers: append(append([]string{}, reads...), writes...),
		Effects: []config.BoardEffectDeclaration{{EffectName: "under_test", BindName: "n1", Enabled: true}},
		Connections: []config.BoardConnectionDeclaration{
			{Effect: "n1", Reads: reads, Writes: writes},
		},
	}

	effects := map[string]board.LoadedEffect{"n1": {Ordinal: 0, Effect: e, Enabled: true}}

	ctx, err := board.InitializeContext(bc, testAudioConfig(), effects)
	if err != nil {
		t.Fatalf("InitializeContext() error = %v", err)
	}
	return ctx
}

// Internal board buffers are write-cursor rings of MaxBlockSize slots:
// a write lands at the cursor and advances it, and BufRead(i) reads the
// slot i places past the cursor. writeInput pads the input with zeros
// to a full ring so the cursor is back at slot 0 and BufRead(i) returns
// samples[i] when the effect runs.
func writeInput(ctx *board.Context, samples []float32) {
	w := ctx.GetBufferForWrite(0)
	for i, s := range samples {
		w.BufWrite(i, s)
	}
	for i := len(samples); i < testAudioConfig().MaxBlockSize; i++ {
		w.BufWrite(i, 0)
	}
}

// readOutput returns the last n samples written to the output buffer,
// oldest first, for n up to MaxBlockSize.
func readOutput(ctx *board.Context, n int) []float32 {
	r := ctx.GetBufferForRead(1)
	size := testAudioConfig().MaxBlockSize
	out := make([]float32, n)
	for i := range out {
		out[i] = r.BufRead(size - n%size + i)
	}
	return out
}
