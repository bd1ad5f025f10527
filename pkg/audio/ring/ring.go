// ABOUTME: Lock-free single-producer single-consumer ring buffer of float32 samples
// ABOUTME: Carries decoded PCM from the engine worker to the audio callback
package ring

import "sync/atomic"

// Buffer is a bounded sample FIFO. Write and Clear belong to the producer;
// Read, Peek and Skip belong to the consumer. Both sides are non-blocking and
// never allocate.
type Buffer struct {
	// Separate cache lines so the producer and consumer do not false-share.
	write atomic.Uint64
	_     [56]byte
	read  atomic.Uint64
	_     [56]byte

	data []float32
	mask uint64
}

// New creates a buffer holding at least capacity samples, rounded up to a power of two
func New(capacity int) *Buffer {
	size := 1
	for size < capacity {
		size <<= 1
	}
	return &Buffer{
		data: make([]float32, size),
		mask: uint64(size - 1),
	}
}

// Capacity returns the total number of samples the buffer holds
func (b *Buffer) Capacity() int {
	return len(b.data)
}

// Write copies as many samples as fit and returns the count written
func (b *Buffer) Write(samples []float32) int {
	w := b.write.Load()
	r := b.read.Load()

	free := uint64(len(b.data)) - (w - r)
	n := uint64(len(samples))
	if n > free {
		n = free
	}
	if n == 0 {
		return 0
	}

	pos := w & b.mask
	first := uint64(len(b.data)) - pos
	if first >= n {
		copy(b.data[pos:pos+n], samples[:n])
	} else {
		copy(b.data[pos:], samples[:first])
		copy(b.data[:n-first], samples[first:n])
	}

	b.write.Store(w + n)
	return int(n)
}

// Read copies up to len(dst) samples out and returns the count read.
// A read that races with Clear reports 0 and leaves the cleared buffer empty.
func (b *Buffer) Read(dst []float32) int {
	r := b.read.Load()
	n := b.copyOut(dst, r)
	if n == 0 {
		return 0
	}
	if !b.read.CompareAndSwap(r, r+uint64(n)) {
		return 0
	}
	return n
}

// Peek copies up to len(dst) samples out without consuming them
func (b *Buffer) Peek(dst []float32) int {
	return b.copyOut(dst, b.read.Load())
}

// Skip discards up to n samples and returns the count discarded
func (b *Buffer) Skip(n int) int {
	if n <= 0 {
		return 0
	}
	r := b.read.Load()
	avail := b.write.Load() - r
	k := uint64(n)
	if k > avail {
		k = avail
	}
	if k == 0 || !b.read.CompareAndSwap(r, r+k) {
		return 0
	}
	return int(k)
}

func (b *Buffer) copyOut(dst []float32, r uint64) int {
	avail := b.write.Load() - r
	n := uint64(len(dst))
	if n > avail {
		n = avail
	}
	if n == 0 {
		return 0
	}

	pos := r & b.mask
	first := uint64(len(b.data)) - pos
	if first >= n {
		copy(dst[:n], b.data[pos:pos+n])
	} else {
		copy(dst[:first], b.data[pos:])
		copy(dst[first:n], b.data[:n-first])
	}
	return int(n)
}

// Available returns the number of samples ready to read, clamped to [0, Capacity]
func (b *Buffer) Available() int {
	r := b.read.Load()
	w := b.write.Load()
	if w < r {
		return 0
	}
	if d := w - r; d < uint64(len(b.data)) {
		return int(d)
	}
	return len(b.data)
}

// Free returns the number of samples that can be written
func (b *Buffer) Free() int {
	return len(b.data) - b.Available()
}

// Empty reports whether nothing is ready to read
func (b *Buffer) Empty() bool {
	return b.Available() == 0
}

// Full reports whether no space is left to write
func (b *Buffer) Full() bool {
	return b.Available() == len(b.data)
}

// Fill returns the fraction of capacity in use
func (b *Buffer) Fill() float32 {
	return float32(b.Available()) / float32(len(b.data))
}

// Clear discards everything buffered. Producer side only.
func (b *Buffer) Clear() {
	w := b.write.Load()
	for {
		r := b.read.Load()
		if r == w || b.read.CompareAndSwap(r, w) {
			return
		}
	}
}
