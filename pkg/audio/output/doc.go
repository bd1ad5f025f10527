// ABOUTME: Audio output package for playing audio
// ABOUTME: Provides the Sink interface, the real-time renderer and malgo, oto and null backends
// Package output plays samples from the engine's ring buffer.
//
// Every backend drives the same Renderer from the device's pull callback.
// The renderer reads the shared playback state and volume atomically, emits
// silence unless playing, applies volume and a tanh soft limiter above 0.9,
// and encodes into the device's native format. Partly filled periods are
// counted, never logged, from the callback.
//
// Backends: malgo (miniaudio, default, named device selection), oto
// (default device only) and null (no hardware, used by tests and headless runs).
//
// Example:
//
//	sink, err := output.Open(output.BackendMalgo, output.Params{
//	    Ring:   buf,
//	    State:  state,
//	    Volume: volume,
//	})
//	defer sink.Close()
package output
