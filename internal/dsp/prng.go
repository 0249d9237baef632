package dsp

import "math/bits"

// WyHashPRNG is a small non-cryptographic generator used by the
// whisper effect to synthesize random phases. Based on
// https://github.com/lemire/testingRNG/blob/master/source/wyhash.h,
// used under the Apache license.
type WyHashPRNG struct {
	state uint64
}

func NewWyHashPRNG(seed uint64) *WyHashPRNG {
	return &WyHashPRNG{state: seed}
}

func (p *WyHashPRNG) State() uint64     { return p.state }
func (p *WyHashPRNG) SetState(s uint64) { p.state = s }

func (p *WyHashPRNG) Next() uint64 {
	p.state += 0x60bee2bee120fc15

	hi, lo := bits.Mul64(p.state, 0xa3b195354a39b70d)
	m1 := hi ^ lo

	hi, lo = bits.Mul64(m1, 0x1b03738712fad5c9)
	m2 := hi ^ lo

	return m2
}
