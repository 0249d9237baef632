package fx

import "testing"

func TestMonoPhaserProducesFiniteBoundedOutput(t *testing.T) {
	e := NewMonoPhaser(testAudioConfig())
	ctx := singleInOutBoard(t, e)

	n := 512
	in := make([]float32, n)
	for i := range in {
		in[i] = 0.5
	}
	writeInput(ctx, in)
	e.Execute(ctx, 0, n)
	out := readOutput(ctx, n)

	for i, v := range out {
		if v != v { // NaN check
			t.Fatalf("output[%d] is NaN", i)
		}
		if v > 10 || v < -10 {
			t.Fatalf("output[%d] = %v, suspiciously unbounded for a 0.5 constant input", i, v)
		}
	}
}
