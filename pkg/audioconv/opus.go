//go:build opus

package audioconv

import (
	"fmt"
	"io"

	"github.com/pekim/opus"
)

func readOpus(r io.ReadSeeker) ([]float32, int, int, error) {
	dec, err := opus.NewDecoder(r)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("opus: %w", err)
	}
	defer dec.Destroy()

	ch := dec.ChannelCount()
	if ch <= 0 {
		ch = 1
	}

	var pcm []float32
	buf := make([]int16, 24000*ch)
	for {
		n, err := dec.Read(buf)
		if n > 0 {
			pcm = append(pcm, Int16ToFloat(buf[:n*ch])...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, 0, fmt.Errorf("read opus: %w", err)
		}
	}

	// libopusfile always decodes at 48 kHz
	return pcm, 48000, ch, nil
}
