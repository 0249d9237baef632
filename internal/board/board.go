// Package board resolves a declared graph of buffers and effect
// connections into a runtime structure that can be walked once per
// audio block with no further lookups or allocation.
package board

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tginick/otters/internal/config"
	"github.com/tginick/otters/internal/dsp"
)

const (
	// MaxAllowableBufDecls bounds how many named buffers a board may
	// declare before construction is rejected outright.
	MaxAllowableBufDecls = 1024

	// MaxAllowableInputs and MaxAllowableOutputs bound the @SOURCE_n /
	// @SINK_n indices a board may reference.
	MaxAllowableInputs  = 10
	MaxAllowableOutputs = 10

	maxExternalIns  = 6
	maxExternalOuts = 6

	firstInputIdx  = MaxAllowableBufDecls
	firstOutputIdx = firstInputIdx + 1024
)

// Effect is the contract every registered audio effect implements.
// Execute must be real-time safe: no allocation, no blocking.
type Effect interface {
	AdvertiseParameters() []config.AdvertisedParameter
	SetAudioParameters(cfg config.AudioConfig)
	SetEffectParameter(paramIdx int, value config.ParameterValue)
	Execute(ctx *Context, connectionIdx int, numSamples int)
}

// InitError aggregates every buffer/connection problem found while
// resolving a BoardConfig, so the caller sees all of them at once
// instead of failing on the first.
type InitError struct {
	Problems []string
}

func (e *InitError) Error() string {
	return fmt.Sprintf("board init: %s", strings.Join(e.Problems, "; "))
}

// Connection is one resolved effect hookup: which buffer indices feed
// its inputs and receive its outputs, keyed by the effect's ordinal
// position among the loaded effects.
type Connection struct {
	Ordinal    int
	InputIdxs  []int
	OutputIdxs []int
}

// LoadedEffect pairs a constructed effect with the ordinal it was
// assigned and whether the board config marked it enabled.
type LoadedEffect struct {
	Ordinal int
	Effect  Effect
	Enabled bool
}

// Context is the resolved runtime graph: internal buffers, effect
// connections, and the external source/sink pointer tables that
// BindInput/BindOutput fill in.
type Context struct {
	buffers     []*dsp.SimpleFloatBuffer
	connections []Connection

	externalIns  []*float32
	externalOuts []*float32
}

type constructionState struct {
	bufNameToIdx      map[string]int
	numExternalBuffers int
}

func (s *constructionState) idxForBufName(name string) (int, bool) {
	switch {
	case strings.HasPrefix(name, "@SOURCE_") && len(name) > 8:
		n, err := strconv.Atoi(name[8:])
		if err != nil || n >= MaxAllowableInputs {
			return 0, false
		}
		s.numExternalBuffers++
		return n + firstInputIdx, true
	case strings.HasPrefix(name, "@SINK_") && len(name) > 6:
		n, err := strconv.Atoi(name[6:])
		if err != nil || n >= MaxAllowableOutputs {
			return 0, false
		}
		s.numExternalBuffers++
		return n + firstOutputIdx, true
	default:
		return len(s.bufNameToIdx) - s.numExternalBuffers, true
	}
}

// InitializeContext performs the two-pass construction: buffers first
// (so names resolve to indices), then connections (so effect hookups
// can reference those indices), aggregating every error found in
// either pass.
func InitializeContext(boardConfig config.BoardConfig, audioConfig config.AudioConfig, effects map[string]LoadedEffect) (*Context, error) {
	state := &constructionState{bufNameToIdx: make(map[string]int)}

	buffers, bufErrs := createMemBuffers(state, boardConfig.Buffers, audioConfig.MaxBlockSize)
	if bufErrs != nil {
		return nil, bufErrs
	}

	connections, connErrs := createConnections(state, boardConfig.Connections, effects)
	if connErrs != nil {
		return nil, connErrs
	}

	return &Context{
		buffers:      buffers,
		connections:  connections,
		externalIns:  make([]*float32, maxExternalIns),
		externalOuts: make([]*float32, maxExternalOuts),
	}, nil
}

func createMemBuffers(state *constructionState, bufNames []string, maxBlockSize int) ([]*dsp.SimpleFloatBuffer, error) {
	if len(bufNames) > MaxAllowableBufDecls {
		return nil, &InitError{Problems: []string{
			fmt.Sprintf("too many buffers: requested %d, max %d", len(bufNames), MaxAllowableBufDecls),
		}}
	}

	var result []*dsp.SimpleFloatBuffer
	var errs []string

	for _, name := range bufNames {
		if _, exists := state.bufNameToIdx[name]; exists {
			errs = append(errs, fmt.Sprintf("redeclaration of buffer %s", name))
		}

		idx, ok := state.idxForBufName(name)
		if !ok {
			errs = append(errs, fmt.Sprintf("failed to generate index for name %s", name))
			continue
		}

		state.bufNameToIdx[name] = idx

		if idx < MaxAllowableBufDecls {
			result = append(result, dsp.NewSimpleFloatBuffer(maxBlockSize))
		}
	}

	if len(errs) > 0 {
		return nil, &InitError{Problems: errs}
	}
	return result, nil
}

func createConnections(state *constructionState, declarations []config.BoardConnectionDeclaration, effects map[string]LoadedEffect) ([]Connection, error) {
	var errs []string
	var connections []Connection

	for _, decl := range declarations {
		effect, ok := effects[decl.Effect]
		if !ok {
			errs = append(errs, fmt.Sprintf("trying to connect nonexistent node %s", decl.Effect))
			continue
		}

		if effect.Ordinal >= len(effects) {
			errs = append(errs, fmt.Sprintf("effect %s has ordinal %d, which is >= the effect count %d", decl.Effect, effect.Ordinal, len(effects)))
			continue
		}

		used := make(map[string]bool)
		inputIdxs := resolveBufferTargets(decl.Reads, state, used, &errs)
		outputIdxs := resolveBufferTargets(decl.Writes, state, used, &errs)

		connections = append(connections, Connection{
			Ordinal:    effect.Ordinal,
			InputIdxs:  inputIdxs,
			OutputIdxs: outputIdxs,
		})
	}

	if len(errs) > 0 {
		return nil, &InitError{Problems: errs}
	}
	return connections, nil
}

func resolveBufferTargets(targets []string, state *constructionState, used map[string]bool, errs *[]string) []int {
	var result []int
	for _, target := range targets {
		idx, ok := state.bufNameToIdx[target]
		if !ok {
			*errs = append(*errs, fmt.Sprintf("no such buffer %s", target))
			continue
		}
		if used[target] {
			*errs = append(*errs, fmt.Sprintf("buffer already used %s", target))
			continue
		}
		used[target] = true
		result = append(result, idx)
	}
	return result
}

func (c *Context) BindSource(sourceIdx int, ptr *float32) {
	if sourceIdx < 0 || sourceIdx >= len(c.externalIns) {
		return
	}
	c.externalIns[sourceIdx] = ptr
}

func (c *Context) BindSink(sinkIdx int, ptr *float32) {
	if sinkIdx < 0 || sinkIdx >= len(c.externalOuts) {
		return
	}
	c.externalOuts[sinkIdx] = ptr
}

// GetBufferForRead dispatches buf_idx to an internal buffer or an
// external source slot, returning a no-op Null reader if neither
// resolves (unbound slot, out of range, or malformed connection).
func (c *Context) GetBufferForRead(bufIdx int) Reader {
	if bufIdx >= firstInputIdx {
		if bufIdx >= firstInputIdx+MaxAllowableInputs {
			return nullReader{}
		}
		norm := bufIdx - firstInputIdx
		if norm >= len(c.externalIns) || c.externalIns[norm] == nil {
			return nullReader{}
		}
		return externalReader{ptr: c.externalIns[norm]}
	}

	if bufIdx >= len(c.buffers) {
		return nullReader{}
	}
	return internalReader{buf: c.buffers[bufIdx]}
}

func (c *Context) GetBufferForWrite(bufIdx int) Writer {
	if bufIdx >= firstOutputIdx {
		if bufIdx >= firstOutputIdx+MaxAllowableOutputs {
			return nullWriter{}
		}
		norm := bufIdx - firstOutputIdx
		if norm >= len(c.externalOuts) || c.externalOuts[norm] == nil {
			return nullWriter{}
		}
		return externalWriter{ptr: c.externalOuts[norm]}
	}

	if bufIdx >= len(c.buffers) {
		return nullWriter{}
	}
	return internalWriter{buf: c.buffers[bufIdx]}
}

func (c *Context) InputsForConnection(connectionIdx int) []int {
	return c.connections[connectionIdx].InputIdxs
}

func (c *Context) OutputsForConnection(connectionIdx int) []int {
	return c.connections[connectionIdx].OutputIdxs
}

func (c *Context) Connections() []Connection {
	return c.connections
}
