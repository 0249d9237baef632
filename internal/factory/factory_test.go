package factory

import (
	"encoding/json"
	"testing"

	"github.com/tginick/otters/internal/config"
)

func testAudioConfig() config.AudioConfig {
	return config.AudioConfig{SampleRate: 44100, MaxBlockSize: 256}
}

func TestCreateEffectUnitConstructsKnownEffect(t *testing.T) {
	f := AssembleFactory(testAudioConfig(), LoadedSet())

	e, ok := f.CreateEffectUnit("Delay/Basic")
	if !ok {
		t.Fatal("CreateEffectUnit(\"Delay/Basic\") ok = false, want true")
	}
	if e == nil {
		t.Fatal("CreateEffectUnit(\"Delay/Basic\") returned nil effect")
	}
}

func TestCreateEffectUnitReportsUnknownEffect(t *testing.T) {
	f := AssembleFactory(testAudioConfig(), LoadedSet())

	_, ok := f.CreateEffectUnit("NoSuchEffect/Ever")
	if ok {
		t.Error("CreateEffectUnit(\"NoSuchEffect/Ever\") ok = true, want false")
	}
}

func TestGetLoadedEffectNamesIncludesEveryRegisteredFamily(t *testing.T) {
	f := AssembleFactory(testAudioConfig(), LoadedSet())
	names := f.GetLoadedEffectNames()

	want := []string{
		"Bypass/Mono", "Delay/Basic", "Filter/Biquad", "Modulation/Phaser",
		"Modulation/Flanger", "Modulation/Chorus", "Modulation/Vibrato", "Modulation/WhiteChorus",
		"NonLinear/BitCrusher", "NonLinear/WaveShaper",
		"Dynamics/BasicCompressor", "Dynamics/BasicDownwardExpander", "Dynamics/BasicLimiter", "Dynamics/BasicNoiseGate",
		"PitchShifter/Ocean", "Vocoder/Bypass", "Vocoder/Robotize", "Vocoder/Whisper",
		"Reverb/Schroeder",
	}

	got := make(map[string]bool, len(names))
	for _, n := range names {
		got[n] = true
	}

	for _, w := range want {
		if !got[w] {
			t.Errorf("GetLoadedEffectNames() missing %q", w)
		}
	}
}

func TestGetEffectInfosJSONProducesValidJSONForEveryEffect(t *testing.T) {
	f := AssembleFactory(testAudioConfig(), LoadedSet())

	jsonStr, err := f.GetEffectInfosJSON(false)
	if err != nil {
		t.Fatalf("GetEffectInfosJSON() error = %v", err)
	}

	var decoded map[string][]config.AdvertisedParameter
	if err := json.Unmarshal([]byte(jsonStr), &decoded); err != nil {
		t.Fatalf("unmarshaling effect infos: %v", err)
	}

	if len(decoded) != len(f.GetLoadedEffectNames()) {
		t.Errorf("decoded %d effect infos, want %d", len(decoded), len(f.GetLoadedEffectNames()))
	}
}

func TestChangeAudioConfigAffectsSubsequentConstruction(t *testing.T) {
	f := AssembleFactory(testAudioConfig(), LoadedSet())
	f.ChangeAudioConfig(config.AudioConfig{SampleRate: 48000, MaxBlockSize: 512})

	e, ok := f.CreateEffectUnit("Reverb/Schroeder")
	if !ok || e == nil {
		t.Fatal("CreateEffectUnit(\"Reverb/Schroeder\") failed after ChangeAudioConfig")
	}
}
