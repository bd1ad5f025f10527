// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts float32 audio between sample rates
// Package resample provides audio sample rate conversion.
//
// Uses linear interpolation for converting between sample rates.
// Handles both upsampling and downsampling. The engine uses it to bring
// natively decoded streams (44.1 kHz MP3, 96 kHz FLAC, and so on) to 48 kHz.
//
// Example:
//
//	out := resample.Convert(samples, 44100, 48000, 2)
package resample
