// Command otters-ffi is the cgo-exported C ABI surface: every handle
// crossing the boundary is a runtime/cgo.Handle disguised as a
// uintptr_t, so the Go runtime keeps the underlying object alive for
// exactly as long as the C caller holds the handle.
package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"

	"github.com/tginick/otters"
	"github.com/tginick/otters/internal/config"
	"github.com/tginick/otters/internal/param"
)

//export otters_hello
func otters_hello(sampleRate C.float, maxBlockSize C.uint, configFileName *C.char) C.uintptr_t {
	if sampleRate <= 0 || maxBlockSize == 0 || configFileName == nil {
		return 0
	}

	engine, err := otters.CreateDefault(config.AudioConfig{
		SampleRate:   float32(sampleRate),
		MaxBlockSize: int(maxBlockSize),
	}, C.GoString(configFileName))
	if err != nil {
		return 0
	}

	return C.uintptr_t(cgo.NewHandle(engine))
}

//export otters_bye
func otters_bye(handle C.uintptr_t) {
	if handle == 0 {
		return
	}
	cgo.Handle(handle).Delete()
}

//export otters_update_audio_parameters
func otters_update_audio_parameters(handle C.uintptr_t, newSampleRate C.float, newMaxBlockSize C.uint) {
	engine, ok := engineFromHandle(handle)
	if !ok {
		return
	}
	_ = engine.UpdateAudioConfig(config.AudioConfig{
		SampleRate:   float32(newSampleRate),
		MaxBlockSize: int(newMaxBlockSize),
	})
}

//export otters_bind_input
func otters_bind_input(handle C.uintptr_t, inputNum C.uint, inputPtr *C.float) {
	engine, ok := engineFromHandle(handle)
	if !ok {
		return
	}
	engine.BindInput(int(inputNum), (*float32)(unsafe.Pointer(inputPtr)))
}

//export otters_bind_output
func otters_bind_output(handle C.uintptr_t, outputNum C.uint, outputPtr *C.float) {
	engine, ok := engineFromHandle(handle)
	if !ok {
		return
	}
	engine.BindOutput(int(outputNum), (*float32)(unsafe.Pointer(outputPtr)))
}

//export otters_frolic
func otters_frolic(handle C.uintptr_t, blockSize C.uint) {
	engine, ok := engineFromHandle(handle)
	if !ok {
		return
	}
	engine.Frolic(int(blockSize))
}

// otters_setup_async_param_updater hands back a second handle, to an
// OttersParamModifierContext, independent of the engine's own
// lifetime: a UI thread may keep pushing parameter updates through it
// even after the engine handle it was created from has been freed.
//
//export otters_setup_async_param_updater
func otters_setup_async_param_updater(handle C.uintptr_t) C.uintptr_t {
	engine, ok := engineFromHandle(handle)
	if !ok {
		return 0
	}

	ctx := engine.SetupAsyncParamUpdater(64)
	return C.uintptr_t(cgo.NewHandle(ctx))
}

//export otters_free_async_param_updater
func otters_free_async_param_updater(handle C.uintptr_t) {
	if handle == 0 {
		return
	}
	cgo.Handle(handle).Delete()
}

//export otters_free_string
func otters_free_string(s *C.char) {
	C.free(unsafe.Pointer(s))
}

//export param_get_session_info_json
func param_get_session_info_json(handle C.uintptr_t) *C.char {
	ctx, ok := paramCtxFromHandle(handle)
	if !ok {
		return nil
	}
	jsonStr, err := ctx.GetSessionInfoJSON()
	if err != nil {
		return nil
	}
	return C.CString(jsonStr)
}

//export otters_get_capabilities_json
func otters_get_capabilities_json(formatPrettily C.int) *C.char {
	jsonStr, err := otters.GetEffectInfoJSON(formatPrettily != 0)
	if err != nil {
		return nil
	}
	return C.CString(jsonStr)
}

//export param_set_flt_param_value
func param_set_flt_param_value(handle C.uintptr_t, globalParamIdx C.uint, value C.float) {
	ctx, ok := paramCtxFromHandle(handle)
	if !ok {
		return
	}
	ctx.SetFltParamValue(int(globalParamIdx), float32(value))
}

//export param_set_int_param_value
func param_set_int_param_value(handle C.uintptr_t, globalParamIdx C.uint, value C.int) {
	ctx, ok := paramCtxFromHandle(handle)
	if !ok {
		return
	}
	ctx.SetIntParamValue(int(globalParamIdx), int32(value))
}

func engineFromHandle(handle C.uintptr_t) (*otters.Engine, bool) {
	if handle == 0 {
		return nil, false
	}
	engine, ok := cgo.Handle(handle).Value().(*otters.Engine)
	return engine, ok
}

func paramCtxFromHandle(handle C.uintptr_t) (*param.OttersParamModifierContext, bool) {
	if handle == 0 {
		return nil, false
	}
	ctx, ok := cgo.Handle(handle).Value().(*param.OttersParamModifierContext)
	return ctx, ok
}

func main() {}
