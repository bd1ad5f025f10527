// ABOUTME: Playback engine package
// ABOUTME: Worker goroutine, command and event queues, and the caller-side handle
// Package engine runs audio playback on a dedicated worker goroutine.
//
// The caller owns an Engine and talks to it only through commands and
// events; shared state (playback state, volume, position, duration) is
// readable at any time without waiting on the worker. The worker decodes
// into a ring buffer that the output device drains from its real-time
// callback.
//
// Example:
//
//	eng, err := engine.New(engine.Config{})
//	if err != nil {
//		return err
//	}
//	defer eng.Close()
//
//	eng.LoadURL("https://example.com/track.opus")
//	for {
//		ev, err := eng.RecvEvent(ctx)
//		if err != nil {
//			return err
//		}
//		if ev.Kind == engine.EventTrackLoaded {
//			eng.Play()
//		}
//	}
package engine
