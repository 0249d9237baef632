package dsp

// SimpleFloatBuffer is a write-cursor circular buffer: every slot is
// zero-initialized and always valid to read, indexed relative to the
// current write cursor.
type SimpleFloatBuffer struct {
	data     []float32
	capacity int
	limit    int
	writeIdx int
}

func NewSimpleFloatBuffer(capacity int) *SimpleFloatBuffer {
	return &SimpleFloatBuffer{
		data:     make([]float32, capacity),
		capacity: capacity,
		limit:    capacity,
	}
}

func (b *SimpleFloatBuffer) Capacity() int { return b.capacity }
func (b *SimpleFloatBuffer) Limit() int    { return b.limit }

func (b *SimpleFloatBuffer) SetLimit(newLimit int) {
	if newLimit > b.capacity {
		newLimit = b.capacity
	}
	b.limit = newLimit
}

func (b *SimpleFloatBuffer) Write(value float32) {
	b.data[b.writeIdx] = value
	b.writeIdx = (b.writeIdx + 1) % b.limit
}

func (b *SimpleFloatBuffer) Clear() {
	for i := range b.data {
		b.data[i] = 0
	}
	b.writeIdx = 0
}

func (b *SimpleFloatBuffer) Read(idx int) float32 {
	return b.data[(b.writeIdx+idx)%b.limit]
}

// TinyFloatBuffer is a two-slot IIR history buffer exposing the last
// two written samples as z1 (most recent) / z2 (one before that).
type TinyFloatBuffer struct {
	x       [2]float32
	nextIdx int
}

func (t *TinyFloatBuffer) Z2() float32 { return t.x[t.nextIdx] }
func (t *TinyFloatBuffer) Z1() float32 {
	prevIdx := (t.nextIdx + 1) % 2
	return t.x[prevIdx]
}

func (t *TinyFloatBuffer) Write(v float32) {
	t.x[t.nextIdx] = v
	t.nextIdx = (t.nextIdx + 1) % 2
}

// FFTCollectionBuffer is a power-of-two masked ring with independent
// read and write cursors plus rewind, used to collect samples into
// STFT frames and spread overlap-added output back out.
type FFTCollectionBuffer struct {
	data          []float32
	indexWrapMask int
	readIdx       int
	writeIdx      int
}

// NewFFTCollectionBuffer returns nil if length is not a power of two.
func NewFFTCollectionBuffer(length int) *FFTCollectionBuffer {
	if !IsPowerOfTwo(length) {
		return nil
	}
	return &FFTCollectionBuffer{
		data:          make([]float32, length),
		indexWrapMask: length - 1,
	}
}

func (b *FFTCollectionBuffer) ReadIdx() int  { return b.readIdx }
func (b *FFTCollectionBuffer) WriteIdx() int { return b.writeIdx }

func (b *FFTCollectionBuffer) SetReadIdx(idx int) {
	b.readIdx = idx
	if b.readIdx >= len(b.data) {
		b.readIdx = len(b.data) - 1
	}
}

func (b *FFTCollectionBuffer) SetWriteIdx(idx int) {
	b.writeIdx = idx
	if b.writeIdx >= len(b.data) {
		b.writeIdx = len(b.data) - 1
	}
}

func (b *FFTCollectionBuffer) AdvanceReadIdx() {
	b.readIdx = (b.readIdx + 1) & b.indexWrapMask
}

func (b *FFTCollectionBuffer) RewindReadIdx(count int) {
	if count <= b.readIdx {
		b.readIdx -= count
	} else {
		newCount := count - b.readIdx - 1
		b.readIdx = len(b.data) - 1 - newCount
	}
}

func (b *FFTCollectionBuffer) AdvanceWriteIdx() {
	b.writeIdx = (b.writeIdx + 1) & b.indexWrapMask
}

func (b *FFTCollectionBuffer) RewindWriteIdx(count int) {
	if count <= b.writeIdx {
		b.writeIdx -= count
	} else {
		newCount := count - b.writeIdx - 1
		b.writeIdx = len(b.data) - 1 - newCount
	}
}

func (b *FFTCollectionBuffer) AdvanceBothIdx() {
	b.AdvanceReadIdx()
	b.AdvanceWriteIdx()
}

func (b *FFTCollectionBuffer) At(idx int) float32         { return b.data[idx] }
func (b *FFTCollectionBuffer) SetAt(idx int, value float32) { b.data[idx] = value }

func (b *FFTCollectionBuffer) AtReadIdx() float32 { return b.At(b.readIdx) }
func (b *FFTCollectionBuffer) SetAtWriteIdx(v float32) { b.SetAt(b.writeIdx, v) }
// The board's internal buffer shape (spec.md's "AudioBuffer") is
// SimpleFloatBuffer itself, sized to max_block_size: buf_read(i) is a
// read-by-offset from the write cursor, buf_write ignores the offset
// and advances the cursor on every call, exactly as the source's
// AudioBufferReader/AudioBufferWriter dispatch onto it (see
// internal/board).
