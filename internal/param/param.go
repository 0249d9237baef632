// Package param tracks the global parameter-index namespace a board
// flattens its effects' per-effect parameters into, and hosts the
// single-producer/single-consumer channel an outside controller uses
// to push parameter changes at the audio thread without blocking it.
package param

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/tginick/otters/internal/config"
)

var paramLog = log.New(os.Stderr)

// ParamNameAndIndex names one parameter at its global index, the unit
// a session info listing and an FFI-style caller both deal in.
type ParamNameAndIndex struct {
	Name      string `json:"name"`
	GlobalIdx int    `json:"global_idx"`
}

// effectParameterMapping is one global index's resolution: which
// bound effect it belongs to and which of that effect's own
// parameter slots it maps to.
type effectParameterMapping struct {
	bindName  string
	effectIdx int
	paramIdx  int
}

// AsyncParamUpdate is one control-thread write in flight to the audio
// thread: a global parameter index and the new value to apply.
type AsyncParamUpdate struct {
	GlobalIdx int
	Value     config.ParameterValue
}

// SessionInfoEntry is one bound effect's parameter listing, as served
// up by GetSessionInfoJSON.
type SessionInfoEntry struct {
	EffectName string              `json:"effect_name"`
	GlobalIdxs []ParamNameAndIndex `json:"global_idxs"`
}

// SessionInfo is the full board session listing, keyed by bind name.
type SessionInfo struct {
	Infos map[string]SessionInfoEntry `json:"infos"`
}

// OttersParamModifierContext is the handle an external controller
// (CLI, FFI caller, UI) holds to push parameter changes. Every setter
// is non-blocking: if the audio thread hasn't drained the channel yet,
// the write is dropped rather than stalling the caller.
type OttersParamModifierContext struct {
	updates     chan<- AsyncParamUpdate
	sessionInfo SessionInfo
}

// GetSessionInfoJSON serializes the bind-name-to-parameter-listing map
// a controller needs to know what global indices are addressable.
func (c *OttersParamModifierContext) GetSessionInfoJSON() (string, error) {
	data, err := json.Marshal(c.sessionInfo)
	if err != nil {
		return "", fmt.Errorf("marshaling session info: %w", err)
	}
	return string(data), nil
}

// SetFltParamValue queues a float parameter update. Dropped silently
// if the channel is full.
func (c *OttersParamModifierContext) SetFltParamValue(globalIdx int, value float32) {
	c.send(AsyncParamUpdate{GlobalIdx: globalIdx, Value: config.FloatValue(value)})
}

// SetIntParamValue queues an int parameter update. Dropped silently if
// the channel is full.
func (c *OttersParamModifierContext) SetIntParamValue(globalIdx int, value int32) {
	c.send(AsyncParamUpdate{GlobalIdx: globalIdx, Value: config.IntValue(value)})
}

func (c *OttersParamModifierContext) send(update AsyncParamUpdate) {
	select {
	case c.updates <- update:
	default:
		paramLog.Debug("dropping parameter update, channel full", "global_idx", update.GlobalIdx)
	}
}

// ParameterMappingManager owns the board-wide mapping from global
// parameter indices (what a controller addresses by) to the
// bind-name/effect-index/param-index triples an effect board resolves
// SetEffectParameter calls through.
type ParameterMappingManager struct {
	mappings             []effectParameterMapping
	bindNameToGlobIdxs   map[string][]ParamNameAndIndex
	bindNameToEffectType map[string]string
}

func NewParameterMappingManager() *ParameterMappingManager {
	return &ParameterMappingManager{
		bindNameToGlobIdxs:   make(map[string][]ParamNameAndIndex),
		bindNameToEffectType: make(map[string]string),
	}
}

// NewParameter registers one effect parameter and returns the global
// index it was assigned; indices are handed out in registration order
// and never reused.
func (m *ParameterMappingManager) NewParameter(bindName string, effectIdx, paramIdx int) int {
	globalIdx := len(m.mappings)
	m.mappings = append(m.mappings, effectParameterMapping{
		bindName:  bindName,
		effectIdx: effectIdx,
		paramIdx:  paramIdx,
	})
	paramLog.Debug("registered parameter", "bind_name", bindName, "effect_idx", effectIdx, "param_idx", paramIdx, "global_idx", globalIdx)
	return globalIdx
}

// SetGlobalIdxsForBindName records the full name-to-global-index
// listing for one bound effect, used later to build session info.
func (m *ParameterMappingManager) SetGlobalIdxsForBindName(bindName string, idxs []ParamNameAndIndex) {
	m.bindNameToGlobIdxs[bindName] = idxs
	paramLog.Debug("global indices for bind name", "bind_name", bindName, "count", len(idxs))
}

func (m *ParameterMappingManager) SetEffectTypeForBindName(bindName, effectName string) {
	m.bindNameToEffectType[bindName] = effectName
}

func (m *ParameterMappingManager) EffectTypeForBindName(bindName string) string {
	return m.bindNameToEffectType[bindName]
}

func (m *ParameterMappingManager) GlobIdxsForBindName(bindName string) []ParamNameAndIndex {
	return m.bindNameToGlobIdxs[bindName]
}

// EffectAndParamIdx resolves a global parameter index back to the
// effect ordinal and that effect's own parameter slot.
func (m *ParameterMappingManager) EffectAndParamIdx(globalIdx int) (effectIdx, paramIdx int) {
	mapping := m.mappings[globalIdx]
	return mapping.effectIdx, mapping.paramIdx
}

// CreateAsyncParamUpdateContext builds the controller-facing context
// plus the receive end of its update channel, buffered to bufferSize
// updates so a burst of control-thread writes doesn't require the
// audio thread to drain on every block.
func (m *ParameterMappingManager) CreateAsyncParamUpdateContext(bufferSize int) (*OttersParamModifierContext, <-chan AsyncParamUpdate) {
	updates := make(chan AsyncParamUpdate, bufferSize)

	infos := make(map[string]SessionInfoEntry, len(m.bindNameToEffectType))
	for bindName, effectName := range m.bindNameToEffectType {
		infos[bindName] = SessionInfoEntry{
			EffectName: effectName,
			GlobalIdxs: m.bindNameToGlobIdxs[bindName],
		}
	}

	ctx := &OttersParamModifierContext{
		updates:     updates,
		sessionInfo: SessionInfo{Infos: infos},
	}

	return ctx, updates
}
