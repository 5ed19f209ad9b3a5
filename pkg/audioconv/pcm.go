package audioconv

import "math"

// IntsToFloat scales signed integer samples of the given bit depth to [-1, 1].
func IntsToFloat(data []int, bitDepth int) []float32 {
	scale := 1.0 / float64(int64(1)<<(bitDepth-1))
	out := make([]float32, len(data))
	for i, v := range data {
		out[i] = float32(math.Max(-1, math.Min(1, float64(v)*scale)))
	}
	return out
}

func Int16ToFloat(data []int16) []float32 {
	out := make([]float32, len(data))
	for i, v := range data {
		out[i] = float32(v) / 32768
	}
	return out
}

// Downmix averages interleaved channels into mono.
func Downmix(in []float32, channels int) []float32 {
	if channels <= 1 {
		return in
	}
	out := make([]float32, len(in)/channels)
	for i := range out {
		var sum float64
		for _, s := range in[i*channels : (i+1)*channels] {
			sum += float64(s)
		}
		out[i] = float32(sum / float64(channels))
	}
	return out
}

// Resample converts between sample rates with linear interpolation.
func Resample(in []float32, from, to int) []float32 {
	if from == to || from <= 0 || len(in) == 0 {
		return in
	}
	ratio := float64(to) / float64(from)
	out := make([]float32, int(math.Ceil(float64(len(in))*ratio)))
	last := len(in) - 1
	for i := range out {
		pos := float64(i) / ratio
		i0 := int(pos)
		if i0 >= last {
			out[i] = in[last]
			continue
		}
		frac := float32(pos - float64(i0))
		out[i] = in[i0]*(1-frac) + in[i0+1]*frac
	}
	return out
}
