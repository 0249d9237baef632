package param

import (
	"encoding/json"
	"testing"
)

func TestNewParameterAssignsSequentialGlobalIndices(t *testing.T) {
	m := NewParameterMappingManager()

	first := m.NewParameter("delay1", 0, 0)
	second := m.NewParameter("delay1", 0, 1)
	third := m.NewParameter("reverb1", 1, 0)

	if first != 0 || second != 1 || third != 2 {
		t.Fatalf("global indices = %d, %d, %d, want 0, 1, 2", first, second, third)
	}
}

func TestEffectAndParamIdxResolvesBackToRegisteredMapping(t *testing.T) {
	m := NewParameterMappingManager()
	globalIdx := m.NewParameter("reverb1", 3, 2)

	effectIdx, paramIdx := m.EffectAndParamIdx(globalIdx)
	if effectIdx != 3 || paramIdx != 2 {
		t.Errorf("EffectAndParamIdx() = (%d, %d), want (3, 2)", effectIdx, paramIdx)
	}
}

func TestCreateAsyncParamUpdateContextDeliversQueuedUpdates(t *testing.T) {
	m := NewParameterMappingManager()
	globalIdx := m.NewParameter("delay1", 0, 0)
	m.SetEffectTypeForBindName("delay1", "Delay/Mono")
	m.SetGlobalIdxsForBindName("delay1", []ParamNameAndIndex{{Name: "delay_time_ms", GlobalIdx: globalIdx}})

	ctx, updates := m.CreateAsyncParamUpdateContext(4)
	ctx.SetFltParamValue(globalIdx, 250)

	select {
	case u := <-updates:
		if u.GlobalIdx != globalIdx || u.Value.AsFloat() != 250 {
			t.Errorf("received update = %+v, want global idx %d, value 250", u, globalIdx)
		}
	default:
		t.Fatal("expected an update to be queued")
	}
}

func TestSetParamValueDropsUpdateWhenChannelFull(t *testing.T) {
	m := NewParameterMappingManager()
	globalIdx := m.NewParameter("gate1", 0, 0)

	ctx, updates := m.CreateAsyncParamUpdateContext(1)
	ctx.SetIntParamValue(globalIdx, 1)
	ctx.SetIntParamValue(globalIdx, 2) // channel already full, should drop silently rather than block

	u := <-updates
	if u.Value.AsInt() != 1 {
		t.Errorf("first drained update = %v, want the first queued value 1", u.Value.AsInt())
	}
}

func TestGetSessionInfoJSONListsBoundEffectsAndGlobalIndices(t *testing.T) {
	m := NewParameterMappingManager()
	globalIdx := m.NewParameter("delay1", 0, 0)
	m.SetEffectTypeForBindName("delay1", "Delay/Mono")
	m.SetGlobalIdxsForBindName("delay1", []ParamNameAndIndex{{Name: "delay_time_ms", GlobalIdx: globalIdx}})

	ctx, _ := m.CreateAsyncParamUpdateContext(1)

	jsonStr, err := ctx.GetSessionInfoJSON()
	if err != nil {
		t.Fatalf("GetSessionInfoJSON() error = %v", err)
	}

	var decoded SessionInfo
	if err := json.Unmarshal([]byte(jsonStr), &decoded); err != nil {
		t.Fatalf("unmarshaling session info: %v", err)
	}

	entry, ok := decoded.Infos["delay1"]
	if !ok {
		t.Fatal("session info missing bind name \"delay1\"")
	}
	if entry.EffectName != "Delay/Mono" {
		t.Errorf("EffectName = %q, want \"Delay/Mono\"", entry.EffectName)
	}
	if len(entry.GlobalIdxs) != 1 || entry.GlobalIdxs[0].GlobalIdx != globalIdx {
		t.Errorf("GlobalIdxs = %+v, want one entry with global idx %d", entry.GlobalIdxs, globalIdx)
	}
}
