// Package otters assembles a board config and an effect catalog into
// a runnable engine: Frolic walks every connection once per audio
// block, running each bound effect or, if disabled, a transparent
// bypass in its place.
package otters

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/tginick/otters/internal/board"
	"github.com/tginick/otters/internal/config"
	"github.com/tginick/otters/internal/factory"
	"github.com/tginick/otters/internal/fx"
	"github.com/tginick/otters/internal/param"
)

var engineLog = log.New(os.Stderr)

// identifiedEffect is one constructed effect instance tagged with the
// bind name's ordinal position and the catalog name it was built
// from, before the board config is resolved into a runtime Context.
type identifiedEffect struct {
	ordinal    int
	effectName string
	effect     board.Effect
	enabled    bool
}

type configuredState struct {
	parsedConfig config.BoardConfig
	factory      *factory.EffectFactory
}

// Engine is a fully resolved board: its effect instances, their
// enabled/disabled state, the buffer/connection graph they run
// against, and the global parameter index table an external
// controller addresses them by.
type Engine struct {
	audioConfig config.AudioConfig
	context     *board.Context

	effects    []board.Effect
	enableInfo []bool

	configuredState configuredState

	globalParamManager   *param.ParameterMappingManager
	disabledEffectBypass *fx.GenericBypass

	// asyncParamUpdates is the audio side of the channel handed out by
	// SetupAsyncParamUpdater, drained at the top of every Frolic call.
	// Nil until SetupAsyncParamUpdater is called.
	asyncParamUpdates <-chan param.AsyncParamUpdate
}

// GetAvailableEffectNames lists every effect name the default catalog
// registers, independent of any particular board config.
func GetAvailableEffectNames() []string {
	f := factory.AssembleFactory(mockAudioConfig(), factory.LoadedSet())
	return f.GetLoadedEffectNames()
}

// GetEffectInfoJSON serializes the default catalog's advertised
// parameter lists, keyed by effect name.
func GetEffectInfoJSON(formatPrettily bool) (string, error) {
	f := factory.AssembleFactory(mockAudioConfig(), factory.LoadedSet())
	return f.GetEffectInfosJSON(formatPrettily)
}

func mockAudioConfig() config.AudioConfig {
	return config.AudioConfig{SampleRate: 1, MaxBlockSize: 1}
}

// CreateDefault reads a board config from disk and builds an Engine
// against the default effect catalog.
func CreateDefault(ac config.AudioConfig, configFileName string) (*Engine, error) {
	data, err := os.ReadFile(configFileName)
	if err != nil {
		return nil, fmt.Errorf("reading board config %s: %w", configFileName, err)
	}
	return CreateDefaultFromString(ac, string(data))
}

// CreateDefaultFromString builds an Engine from an in-memory board
// config string against the default effect catalog.
func CreateDefaultFromString(ac config.AudioConfig, configStr string) (*Engine, error) {
	return Create(ac, factory.LoadedSet(), configStr)
}

// Create builds an Engine from a board config string against an
// explicit set of effect catalog extensions, so a caller can opt out
// of families it doesn't want loaded.
func Create(ac config.AudioConfig, extensions []factory.Extension, configStr string) (*Engine, error) {
	parsedConfig, err := config.ParseBoardConfig([]byte(configStr))
	if err != nil {
		return nil, fmt.Errorf("parsing board config: %w", err)
	}

	fac := factory.AssembleFactory(ac, extensions)

	effects, err := createEffectUnits(fac, parsedConfig.Effects)
	if err != nil {
		return nil, err
	}

	ctx, err := initializeBoardContext(parsedConfig, ac, effects)
	if err != nil {
		return nil, err
	}

	effectsArr, enabledArr, pm := effectMapToVec(effects)
	setInitialConfigOnEffects(parsedConfig, pm, effectsArr)
	debugPrintLoadedEffects(effects)

	return &Engine{
		audioConfig: ac,
		context:     ctx,
		effects:     effectsArr,
		enableInfo:  enabledArr,
		configuredState: configuredState{
			parsedConfig: parsedConfig,
			factory:      fac,
		},
		globalParamManager:   pm,
		disabledEffectBypass: fx.NewGenericBypass(),
	}, nil
}

// UpdateAudioConfig rebuilds every sample-rate-dependent piece of the
// engine in place: the factory's config, every effect instance, and
// the board's buffer/connection graph. The previous async param
// updater context (if any) still points at the old parameter manager
// and must be re-created via SetupAsyncParamUpdater afterward.
func (e *Engine) UpdateAudioConfig(ac config.AudioConfig) error {
	e.audioConfig = ac
	e.configuredState.factory.ChangeAudioConfig(ac)

	effects, err := createEffectUnits(e.configuredState.factory, e.configuredState.parsedConfig.Effects)
	if err != nil {
		return err
	}

	ctx, err := initializeBoardContext(e.configuredState.parsedConfig, ac, effects)
	if err != nil {
		return err
	}

	effectsArr, enabledArr, pm := effectMapToVec(effects)
	debugPrintLoadedEffects(effects)

	e.context = ctx
	e.effects = effectsArr
	e.enableInfo = enabledArr
	e.globalParamManager = pm

	return nil
}

// SetEffectParameter applies an update addressed by global parameter
// index, resolving it to the owning effect and its local parameter
// slot. Safe to call from a non-audio thread between blocks; real-time
// callers should instead route through the async updater.
func (e *Engine) SetEffectParameter(globalIdx int, value config.ParameterValue) {
	effectIdx, paramIdx := e.globalParamManager.EffectAndParamIdx(globalIdx)
	e.effects[effectIdx].SetEffectParameter(paramIdx, value)
}

// BindInput points external source slot inputIdx at ptr, read by any
// connection wired to @SOURCE_<inputIdx>.
func (e *Engine) BindInput(inputIdx int, ptr *float32) {
	e.context.BindSource(inputIdx, ptr)
}

// BindOutput points external sink slot outputIdx at ptr, written by
// any connection wired to @SINK_<outputIdx>.
func (e *Engine) BindOutput(outputIdx int, ptr *float32) {
	e.context.BindSink(outputIdx, ptr)
}

// Frolic runs one audio block: any parameter updates queued by a
// controller since the last block are applied first, then every
// connection's effect executes in declaration order, or a transparent
// bypass runs in its place if the board config marked it disabled.
// Must be real-time safe: draining the update channel never blocks.
func (e *Engine) Frolic(numSamples int) {
	e.drainAsyncParamUpdates()

	for i, connection := range e.context.Connections() {
		if e.enableInfo[connection.Ordinal] {
			e.effects[connection.Ordinal].Execute(e.context, i, numSamples)
		} else {
			e.disabledEffectBypass.Execute(e.context, i, numSamples)
		}
	}
}

// drainAsyncParamUpdates applies every update queued since the last
// block, before this block's effects run. Non-blocking: stops as soon
// as the channel has nothing buffered. Safe to call even when
// SetupAsyncParamUpdater was never invoked (nil channel never selects).
func (e *Engine) drainAsyncParamUpdates() {
	for {
		select {
		case u := <-e.asyncParamUpdates:
			e.SetEffectParameter(u.GlobalIdx, u.Value)
		default:
			return
		}
	}
}

// SetupAsyncParamUpdater hands back a controller context a non-audio
// thread can push parameter changes through; the engine retains the
// receive side itself and drains it at the top of every Frolic call,
// so no caller needs to remember to service the channel.
func (e *Engine) SetupAsyncParamUpdater(bufferSize int) *param.OttersParamModifierContext {
	ctx, updates := e.globalParamManager.CreateAsyncParamUpdateContext(bufferSize)
	e.asyncParamUpdates = updates
	return ctx
}

func initializeBoardContext(parsedConfig config.BoardConfig, ac config.AudioConfig, effects map[string]identifiedEffect) (*board.Context, error) {
	boardEffects := make(map[string]board.LoadedEffect, len(effects))
	for name, ie := range effects {
		boardEffects[name] = board.LoadedEffect{Ordinal: ie.ordinal, Effect: ie.effect, Enabled: ie.enabled}
	}

	ctx, err := board.InitializeContext(parsedConfig, ac, boardEffects)
	if err != nil {
		return nil, fmt.Errorf("initializing board: %w", err)
	}
	return ctx, nil
}

func createEffectUnits(f *factory.EffectFactory, declarations []config.BoardEffectDeclaration) (map[string]identifiedEffect, error) {
	result := make(map[string]identifiedEffect, len(declarations))
	var errs []string

	for ordinal, decl := range declarations {
		unit, ok := f.CreateEffectUnit(decl.EffectName)
		if !ok {
			engineLog.Error("no such effect unit", "name", decl.EffectName, "bind_name", decl.BindName)
			errs = append(errs, fmt.Sprintf("no such effect unit %s", decl.EffectName))
			continue
		}
		engineLog.Debug("constructed effect unit", "name", decl.EffectName, "bind_name", decl.BindName, "ordinal", ordinal)
		result[decl.BindName] = identifiedEffect{
			ordinal:    ordinal,
			effectName: decl.EffectName,
			effect:     unit,
			enabled:    decl.Enabled,
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("constructing effect units: %s", strings.Join(errs, "; "))
	}
	return result, nil
}

// debugPrintLoadedEffects logs the fully resolved board at construction
// time, one line per bound effect.
func debugPrintLoadedEffects(effects map[string]identifiedEffect) {
	for bindName, ie := range effects {
		engineLog.Debug("loaded effect", "bind_name", bindName, "effect_name", ie.effectName, "ordinal", ie.ordinal, "enabled", ie.enabled)
	}
}

func effectMapToVec(effects map[string]identifiedEffect) ([]board.Effect, []bool, *param.ParameterMappingManager) {
	type bound struct {
		bindName string
		ie       identifiedEffect
	}

	ordered := make([]bound, 0, len(effects))
	for name, ie := range effects {
		ordered = append(ordered, bound{bindName: name, ie: ie})
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ie.ordinal < ordered[j].ie.ordinal })

	pm := param.NewParameterMappingManager()
	effectsArr := make([]board.Effect, len(ordered))
	enabledArr := make([]bool, len(ordered))

	for i, b := range ordered {
		effectsArr[i] = b.ie.effect
		enabledArr[i] = b.ie.enabled

		advertised := b.ie.effect.AdvertiseParameters()
		globalIdxs := make([]param.ParamNameAndIndex, len(advertised))
		for paramIdx, p := range advertised {
			globalIdx := pm.NewParameter(b.bindName, i, paramIdx)
			globalIdxs[paramIdx] = param.ParamNameAndIndex{Name: p.Name, GlobalIdx: globalIdx}
		}

		pm.SetGlobalIdxsForBindName(b.bindName, globalIdxs)
		pm.SetEffectTypeForBindName(b.bindName, b.ie.effectName)
	}

	return effectsArr, enabledArr, pm
}

func setInitialConfigOnEffects(boardConfig config.BoardConfig, pm *param.ParameterMappingManager, effects []board.Effect) {
	for _, decl := range boardConfig.Effects {
		paramNameToIdx := make(map[string]int)
		for _, p := range pm.GlobIdxsForBindName(decl.BindName) {
			paramNameToIdx[p.Name] = p.GlobalIdx
		}

		for _, cfgParam := range decl.Config {
			globalIdx, ok := paramNameToIdx[cfgParam.Name]
			if !ok {
				continue
			}
			effectIdx, paramIdx := pm.EffectAndParamIdx(globalIdx)
			effects[effectIdx].SetEffectParameter(paramIdx, cfgParam.Value)
		}
	}
}
