// ABOUTME: Simple linear resampler for converting audio sample rates
// ABOUTME: Brings natively decoded float32 audio to the engine's 48 kHz rate
package resample

// Convert resamples a complete interleaved buffer in one pass using linear
// interpolation. The final input frame is held so the output covers the whole
// input duration.
func Convert(input []float32, inputRate, outputRate, channels int) []float32 {
	if inputRate == outputRate || len(input) == 0 || channels <= 0 || inputRate <= 0 || outputRate <= 0 {
		return input
	}

	inputFrames := len(input) / channels
	ratio := float64(inputRate) / float64(outputRate)
	outputFrames := int(int64(inputFrames) * int64(outputRate) / int64(inputRate))
	output := make([]float32, outputFrames*channels)

	for i := 0; i < outputFrames; i++ {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= inputFrames-1 {
			copy(output[i*channels:(i+1)*channels], input[(inputFrames-1)*channels:inputFrames*channels])
			continue
		}
		frac := float32(pos - float64(idx))
		for ch := 0; ch < channels; ch++ {
			s1 := input[idx*channels+ch]
			s2 := input[(idx+1)*channels+ch]
			output[i*channels+ch] = s1*(1-frac) + s2*frac
		}
	}

	return output
}
