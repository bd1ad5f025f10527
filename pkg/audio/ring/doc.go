// ABOUTME: Sample ring buffer package
// ABOUTME: Wait-free SPSC FIFO of float32 samples
// Package ring provides the lock-free sample buffer between the decode worker
// and the real-time audio callback.
//
// Capacity is rounded up to a power of two so positions map to slots with a
// mask. Read and write counters only grow; their difference is the fill
// level. Exactly one goroutine may write and exactly one may read.
//
// Example:
//
//	buf := ring.New(48000 * 2 * 4)
//	n := buf.Write(chunk)
//	got := buf.Read(out)
package ring
