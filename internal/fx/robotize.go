package fx

import (
	"math"

	"github.com/tginick/otters/internal/config"
	"github.com/tginick/otters/internal/vocoder"
)

// Robotize throws away each bin's phase and keeps only its magnitude,
// the classic "robot voice" vocoder effect.
type Robotize struct{}

func NewRobotize() *Robotize { return &Robotize{} }

func (*Robotize) AdvertiseParameters() []config.AdvertisedParameter { return nil }
func (*Robotize) PostInitialize(vocoder.Context)                    {}
func (*Robotize) SetEffectParameter(int, config.ParameterValue)     {}

func (*Robotize) Execute(fft []complex128, output []complex128) {
	for i, bin := range fft {
		magnitude := math.Sqrt(real(bin)*real(bin) + imag(bin)*imag(bin))
		output[i] = complex(magnitude, 0)
	}
}

func (*Robotize) PostProcess([]complex128) {}
