// ABOUTME: Audio fundamentals package providing core types and shared engine state
// ABOUTME: Defines the fixed stream layout, state cells and sentinel errors
// Package audio provides the fundamental types shared by the playback engine.
//
// Every decoded stream is interleaved float32 stereo at 48 kHz. This package
// defines that layout, the conversions from float samples to the integer
// formats an output device may require, the shared state cells read by the
// output callback and the engine handle, and the sentinel errors callers
// match with errors.Is.
//
// Example:
//
//	state := audio.NewStateCell()
//	state.Store(audio.StatePlaying)
//
//	vol := audio.NewVolumeCell(0.85)
//	s16 := audio.FloatToInt16(sample * vol.Load())
package audio
