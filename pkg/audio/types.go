// ABOUTME: Audio type definitions
// ABOUTME: Defines the engine's fixed PCM layout and float sample conversions
package audio

const (
	// SampleRate is the rate every decoded stream is normalised to
	SampleRate = 48000

	// Channels is the interleaved channel count of every decoded stream
	Channels = 2

	// SamplesPerSecond is samples per second of interleaved stereo audio
	SamplesPerSecond = SampleRate * Channels

	// ChunkSamples is the size of one decoded chunk (1024 stereo frames)
	ChunkSamples = 2048
)

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23
)

// clamp limits a float sample to [-1, 1]
func clamp(s float32) float32 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}

// FloatToInt16 converts a float sample in [-1, 1] to int16
func FloatToInt16(s float32) int16 {
	return int16(clamp(s) * 32767)
}

// FloatToInt24 converts a float sample in [-1, 1] to a 24-bit value held in int32
func FloatToInt24(s float32) int32 {
	return int32(clamp(s) * Max24Bit)
}

// FloatToInt32 converts a float sample in [-1, 1] to int32
func FloatToInt32(s float32) int32 {
	return int32(float64(clamp(s)) * 2147483647)
}

// FloatToUint8 converts a float sample in [-1, 1] to unsigned 8-bit (silence is 128)
func FloatToUint8(s float32) uint8 {
	return uint8(int(clamp(s)*127) + 128)
}

// Int16ToFloat converts int16 PCM to a float sample
func Int16ToFloat(s int16) float32 {
	return float32(s) / 32768
}

// IntToFloat normalises an integer PCM sample of the given bit depth.
// Depths outside 1..32 are treated as 16-bit.
func IntToFloat(s int, bitDepth int) float32 {
	if bitDepth < 1 || bitDepth > 32 {
		bitDepth = 16
	}
	return float32(float64(s) / float64(int64(1)<<(bitDepth-1)))
}

// SampleTo24Bit converts int32 to 24-bit packed bytes (little-endian)
func SampleTo24Bit(sample int32) [3]byte {
	return [3]byte{
		byte(sample),
		byte(sample >> 8),
		byte(sample >> 16),
	}
}

// SamplesToSeconds converts an interleaved stereo sample count to seconds
func SamplesToSeconds(samples int64) float64 {
	return float64(samples) / SamplesPerSecond
}

// SecondsToFrame converts seconds to a stereo frame index, rounding down
func SecondsToFrame(seconds float64) int64 {
	if seconds <= 0 {
		return 0
	}
	return int64(seconds * SampleRate)
}
