// Package factory assembles the catalog of effect constructors a
// board can name by string, grouped into extensions by family so a
// caller can opt a subset of the catalog in or out.
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/tginick/otters/internal/board"
	"github.com/tginick/otters/internal/config"
	"github.com/tginick/otters/internal/fx"
	"github.com/tginick/otters/internal/vocoder"
)

// ConstructionInfo pairs a named effect's constructor with a way to
// fetch its advertised parameter list without necessarily running the
// constructor against the board's real audio config (info queries use
// a throwaway instance, built the same way, whenever the list isn't
// static across sample rates).
type ConstructionInfo struct {
	Constructor func(config.AudioConfig) board.Effect
	Info        func(config.AudioConfig) []config.AdvertisedParameter
}

// Extension is one named family of effects, merged together with the
// rest of the loaded set into a single factory.
type Extension struct {
	FactoryFns map[string]ConstructionInfo
}

func newVocoderEffect(frameSize, hopSize int, windowType vocoder.WindowType, inner vocoder.FrequencyDomainEffect) board.Effect {
	return vocoder.NewPhaseVocoder(frameSize, hopSize, windowType, inner)
}

func BypassEffects() Extension {
	return Extension{FactoryFns: map[string]ConstructionInfo{
		"Bypass/Mono": {
			Constructor: func(config.AudioConfig) board.Effect { return fx.NewMonoBypass() },
			Info:        func(config.AudioConfig) []config.AdvertisedParameter { return fx.NewMonoBypass().AdvertiseParameters() },
		},
	}}
}

func DelayEffects() Extension {
	return Extension{FactoryFns: map[string]ConstructionInfo{
		"Delay/Basic": {
			Constructor: func(ac config.AudioConfig) board.Effect { return fx.NewMonoDelayBasic(ac) },
			Info:        func(ac config.AudioConfig) []config.AdvertisedParameter { return fx.NewMonoDelayBasic(ac).AdvertiseParameters() },
		},
	}}
}

func ModulationEffects() Extension {
	fns := map[string]ConstructionInfo{
		"Modulation/Phaser": {
			Constructor: func(ac config.AudioConfig) board.Effect { return fx.NewMonoPhaser(ac) },
			Info:        func(ac config.AudioConfig) []config.AdvertisedParameter { return fx.NewMonoPhaser(ac).AdvertiseParameters() },
		},
	}

	modulatedDelayVariants := map[string]func(config.AudioConfig) *fx.ModulatedDelay{
		"Modulation/Flanger":     fx.NewFlanger,
		"Modulation/Chorus":      fx.NewChorus,
		"Modulation/Vibrato":     fx.NewVibrato,
		"Modulation/WhiteChorus": fx.NewWhiteChorus,
	}
	for name, ctor := range modulatedDelayVariants {
		ctor := ctor
		fns[name] = ConstructionInfo{
			Constructor: func(ac config.AudioConfig) board.Effect { return ctor(ac) },
			Info:        func(ac config.AudioConfig) []config.AdvertisedParameter { return ctor(ac).AdvertiseParameters() },
		}
	}

	return Extension{FactoryFns: fns}
}

func NonlinearProcessingEffects() Extension {
	return Extension{FactoryFns: map[string]ConstructionInfo{
		"NonLinear/BitCrusher": {
			Constructor: func(config.AudioConfig) board.Effect { return fx.NewBitCrusher() },
			Info:        func(config.AudioConfig) []config.AdvertisedParameter { return fx.NewBitCrusher().AdvertiseParameters() },
		},
		"NonLinear/WaveShaper": {
			Constructor: func(config.AudioConfig) board.Effect { return fx.NewWaveShaper() },
			Info:        func(config.AudioConfig) []config.AdvertisedParameter { return fx.NewWaveShaper().AdvertiseParameters() },
		},
	}}
}

func MiscEffects() Extension {
	return Extension{FactoryFns: map[string]ConstructionInfo{
		"Filter/Biquad": {
			Constructor: func(ac config.AudioConfig) board.Effect { return fx.NewBiquadFilter(ac) },
			Info:        func(ac config.AudioConfig) []config.AdvertisedParameter { return fx.NewBiquadFilter(ac).AdvertiseParameters() },
		},
	}}
}

func DynamicsEffects() Extension {
	dynamicsVariants := map[string]func(config.AudioConfig) *fx.Dynamics{
		"Dynamics/BasicCompressor":       fx.NewCompressor,
		"Dynamics/BasicDownwardExpander": fx.NewExpander,
		"Dynamics/BasicLimiter":          fx.NewLimiter,
		"Dynamics/BasicNoiseGate":        fx.NewGate,
	}

	fns := make(map[string]ConstructionInfo, len(dynamicsVariants))
	for name, ctor := range dynamicsVariants {
		ctor := ctor
		fns[name] = ConstructionInfo{
			Constructor: func(ac config.AudioConfig) board.Effect { return ctor(ac) },
			Info:        func(ac config.AudioConfig) []config.AdvertisedParameter { return ctor(ac).AdvertiseParameters() },
		}
	}

	return Extension{FactoryFns: fns}
}

func VocoderEffects() Extension {
	return Extension{FactoryFns: map[string]ConstructionInfo{
		"PitchShifter/Ocean": {
			Constructor: func(config.AudioConfig) board.Effect {
				return newVocoderEffect(1024, 256, vocoder.Hann, fx.NewOceanPitchShifter())
			},
			Info: func(config.AudioConfig) []config.AdvertisedParameter { return fx.NewOceanPitchShifter().AdvertiseParameters() },
		},
		"Vocoder/Bypass": {
			Constructor: func(config.AudioConfig) board.Effect {
				return newVocoderEffect(1024, 256, vocoder.Hamming, fx.NewVocoderBypass())
			},
			Info: func(config.AudioConfig) []config.AdvertisedParameter { return fx.NewVocoderBypass().AdvertiseParameters() },
		},
		"Vocoder/Robotize": {
			Constructor: func(config.AudioConfig) board.Effect {
				return newVocoderEffect(1024, 256, vocoder.Hamming, fx.NewRobotize())
			},
			Info: func(config.AudioConfig) []config.AdvertisedParameter { return fx.NewRobotize().AdvertiseParameters() },
		},
		"Vocoder/Whisper": {
			Constructor: func(config.AudioConfig) board.Effect {
				return newVocoderEffect(1024, 256, vocoder.Hamming, fx.NewWhisper())
			},
			Info: func(config.AudioConfig) []config.AdvertisedParameter { return fx.NewWhisper().AdvertiseParameters() },
		},
	}}
}

// ReverbEffects registers the Schroeder reverberator. Left unregistered
// upstream, its parts (comb/allpass primitives) existed unwired; here
// it's assembled and given a name on the board.
func ReverbEffects() Extension {
	return Extension{FactoryFns: map[string]ConstructionInfo{
		"Reverb/Schroeder": {
			Constructor: func(ac config.AudioConfig) board.Effect { return fx.NewReverb(ac) },
			Info:        func(ac config.AudioConfig) []config.AdvertisedParameter { return fx.NewReverb(ac).AdvertiseParameters() },
		},
	}}
}

// LoadedSet is the full default catalog, in the order extensions are
// searched when resolving a name.
func LoadedSet() []Extension {
	return []Extension{
		BypassEffects(),
		DelayEffects(),
		MiscEffects(),
		ModulationEffects(),
		NonlinearProcessingEffects(),
		DynamicsEffects(),
		VocoderEffects(),
		ReverbEffects(),
	}
}

// EffectFactory resolves a board's named effect declarations into
// constructed board.Effect instances, tracking the audio config every
// subsequent construction should use.
type EffectFactory struct {
	audioConfig config.AudioConfig
	extensions  []Extension
}

func AssembleFactory(ac config.AudioConfig, extensions []Extension) *EffectFactory {
	return &EffectFactory{audioConfig: ac, extensions: extensions}
}

// CreateEffectUnit looks up name across every loaded extension in
// order and constructs it against the factory's current audio config.
func (f *EffectFactory) CreateEffectUnit(name string) (board.Effect, bool) {
	for _, ext := range f.extensions {
		if info, ok := ext.FactoryFns[name]; ok {
			return info.Constructor(f.audioConfig), true
		}
	}
	return nil, false
}

func (f *EffectFactory) ChangeAudioConfig(ac config.AudioConfig) {
	f.audioConfig = ac
}

func (f *EffectFactory) GetLoadedEffectNames() []string {
	var result []string
	for _, ext := range f.extensions {
		for name := range ext.FactoryFns {
			result = append(result, name)
		}
	}
	return result
}

func (f *EffectFactory) getEffectInfo(name string) ([]config.AdvertisedParameter, bool) {
	for _, ext := range f.extensions {
		if info, ok := ext.FactoryFns[name]; ok {
			return info.Info(f.audioConfig), true
		}
	}
	return nil, false
}

// GetEffectInfosJSON serializes every loaded effect's advertised
// parameter list, keyed by effect name.
func (f *EffectFactory) GetEffectInfosJSON(formatPrettily bool) (string, error) {
	result := make(map[string][]config.AdvertisedParameter)
	for _, name := range f.GetLoadedEffectNames() {
		info, ok := f.getEffectInfo(name)
		if !ok {
			continue
		}
		result[name] = info
	}

	var data []byte
	var err error
	if formatPrettily {
		data, err = json.MarshalIndent(result, "", "  ")
	} else {
		data, err = json.Marshal(result)
	}
	if err != nil {
		return "", fmt.Errorf("marshaling effect infos: %w", err)
	}
	return string(data), nil
}
