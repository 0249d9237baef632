package fx

import "testing"

func TestMonoBypassCopiesInputToOutput(t *testing.T) {
	e := NewMonoBypass()
	ctx := singleInOutBoard(t, e)

	in := []float32{0.1, -0.2, 0.3, 0}
	writeInput(ctx, in)
	e.Execute(ctx, 0, len(in))

	got := readOutput(ctx, len(in))
	for i := range in {
		if got[i] != in[i] {
			t.Errorf("output[%d] = %v, want %v", i, got[i], in[i])
		}
	}
}

func TestGenericBypassZeroesSurplusOutputs(t *testing.T) {
	e := NewGenericBypass()

	// one input, two outputs: the surplus output must be zeroed, not
	// left untouched with stale buffer contents.
	ctx := multiBufferBoard(t, e, []string{"in"}, []string{"out0", "out1"})

	out1Writer := ctx.GetBufferForWrite(2)
	out1Writer.BufWrite(0, 9.0)

	writeInput(ctx, []float32{0.5})
	e.Execute(ctx, 0, 1)

	if got := readOutput(ctx, 1)[0]; got != 0.5 {
		t.Errorf("out0[0] = %v, want 0.5", got)
	}
	// the most recent write to out1 sits one slot before its cursor
	if got := ctx.GetBufferForRead(2).BufRead(testAudioConfig().MaxBlockSize - 1); got != 0 {
		t.Errorf("out1[0] = %v, want 0 (zeroed surplus)", got)
	}
}
