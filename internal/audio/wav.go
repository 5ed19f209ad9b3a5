package audio

import (
	"fmt"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// EncodeWAV writes mono float32 PCM as 16-bit WAV.
func EncodeWAV(w io.WriteSeeker, pcm []float32, sampleRate int) error {
	data := make([]int, len(pcm))
	for i, x := range pcm {
		v := math.Max(-1, math.Min(1, float64(x)))
		data[i] = int(math.Round(v * math.MaxInt16))
	}

	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}

	enc := wav.NewEncoder(w, sampleRate, 16, 1, 1)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close wav: %w", err)
	}

	return nil
}
