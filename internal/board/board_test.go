package board

import (
	"testing"

	"github.com/tginick/otters/internal/config"
)

type stubEffect struct{}

func (stubEffect) AdvertiseParameters() []config.AdvertisedParameter { return nil }
func (stubEffect) SetAudioParameters(config.AudioConfig)             {}
func (stubEffect) SetEffectParameter(int, config.ParameterValue)     {}
func (stubEffect) Execute(*Context, int, int)                        {}

func testAudioConfig() config.AudioConfig {
	return config.AudioConfig{SampleRate: 44100, MaxBlockSize: 64}
}

func TestInitializeContextResolvesInternalBuffers(t *testing.T) {
	bc := config.BoardConfig{
		Buffers: []string{"a", "b"},
		Effects: []config.BoardEffectDeclaration{{EffectName: "Bypass/Mono", BindName: "n1", Enabled: true}},
		Connections: []config.BoardConnectionDeclaration{
			{Effect: "n1", Reads: []string{"a"}, Writes: []string{"b"}},
		},
	}

	effects := map[string]LoadedEffect{"n1": {Ordinal: 0, Effect: stubEffect{}, Enabled: true}}

	ctx, err := InitializeContext(bc, testAudioConfig(), effects)
	if err != nil {
		t.Fatalf("InitializeContext() error = %v", err)
	}

	if len(ctx.Connections()) != 1 {
		t.Fatalf("Connections() len = %d, want 1", len(ctx.Connections()))
	}
}

func TestInitializeContextRejectsRedeclaredBuffer(t *testing.T) {
	bc := config.BoardConfig{
		Buffers: []string{"a", "a"},
	}

	_, err := InitializeContext(bc, testAudioConfig(), map[string]LoadedEffect{})
	if err == nil {
		t.Fatal("InitializeContext() error = nil, want redeclaration error")
	}
}

func TestInitializeContextRejectsDoubleUseOfSameBufferInOneConnection(t *testing.T) {
	bc := config.BoardConfig{
		Buffers: []string{"a", "b"},
		Effects: []config.BoardEffectDeclaration{{EffectName: "Bypass/Mono", BindName: "n1", Enabled: true}},
		Connections: []config.BoardConnectionDeclaration{
			{Effect: "n1", Reads: []string{"a", "a"}, Writes: []string{"b"}},
		},
	}

	effects := map[string]LoadedEffect{"n1": {Ordinal: 0, Effect: stubEffect{}, Enabled: true}}

	_, err := InitializeContext(bc, testAudioConfig(), effects)
	if err == nil {
		t.Fatal("InitializeContext() error = nil, want buffer-already-used error")
	}
}

func TestInitializeContextRejectsConnectionToUnknownEffect(t *testing.T) {
	bc := config.BoardConfig{
		Buffers: []string{"a", "b"},
		Connections: []config.BoardConnectionDeclaration{
			{Effect: "ghost", Reads: []string{"a"}, Writes: []string{"b"}},
		},
	}

	_, err := InitializeContext(bc, testAudioConfig(), map[string]LoadedEffect{})
	if err == nil {
		t.Fatal("InitializeContext() error = nil, want nonexistent-node error")
	}
}

func TestSourceAndSinkBufferNamesResolveToExternalSlots(t *testing.T) {
	bc := config.BoardConfig{
		Buffers: []string{"@SOURCE_0", "@SINK_0"},
		Effects: []config.BoardEffectDeclaration{{EffectName: "Bypass/Mono", BindName: "n1", Enabled: true}},
		Connections: []config.BoardConnectionDeclaration{
			{Effect: "n1", Reads: []string{"@SOURCE_0"}, Writes: []string{"@SINK_0"}},
		},
	}

	effects := map[string]LoadedEffect{"n1": {Ordinal: 0, Effect: stubEffect{}, Enabled: true}}

	ctx, err := InitializeContext(bc, testAudioConfig(), effects)
	if err != nil {
		t.Fatalf("InitializeContext() error = %v", err)
	}

	var in float32 = 1.5
	ctx.BindSource(0, &in)

	reader := ctx.GetBufferForRead(firstInputIdx)
	if got := reader.BufRead(0); got != 1.5 {
		t.Errorf("BufRead(0) via @SOURCE_0 = %v, want 1.5", got)
	}
}

func TestGetBufferForReadReturnsNullForUnboundSource(t *testing.T) {
	bc := config.BoardConfig{Buffers: []string{"@SOURCE_0"}}
	ctx, err := InitializeContext(bc, testAudioConfig(), map[string]LoadedEffect{})
	if err != nil {
		t.Fatalf("InitializeContext() error = %v", err)
	}

	reader := ctx.GetBufferForRead(firstInputIdx)
	if got := reader.BufRead(0); got != 0 {
		t.Errorf("BufRead(0) on unbound source = %v, want 0", got)
	}
}

func TestInitializeContextRejectsTooManyBuffers(t *testing.T) {
	names := make([]string, MaxAllowableBufDecls+1)
	for i := range names {
		names[i] = "buf"
	}
	names[0] = "unique"

	bc := config.BoardConfig{Buffers: names}
	_, err := InitializeContext(bc, testAudioConfig(), map[string]LoadedEffect{})
	if err == nil {
		t.Fatal("InitializeContext() error = nil, want too-many-buffers error")
	}
}
