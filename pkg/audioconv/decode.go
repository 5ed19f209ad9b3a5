// Package audioconv decodes audio files into 16 kHz mono float32 PCM.
package audioconv

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

const TargetRate = 16000

var ErrUnsupported = errors.New("unsupported audio format")

// Extensions lists the file extensions DecodeFile understands.
var Extensions = []string{".wav", ".mp3", ".ogg", ".oga", ".opus"}

type Options struct {
	// MaxSamples truncates the output; 0 keeps everything.
	MaxSamples int
}

func DecodeFile(path string, opt Options) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Decode(f, filepath.Ext(path), opt)
}

// Decode picks a decoder from ext, falling back to the container magic.
func Decode(r io.ReadSeeker, ext string, opt Options) ([]float32, error) {
	format := strings.ToLower(ext)
	switch format {
	case ".wav", ".mp3", ".ogg", ".oga", ".opus":
	default:
		magic := make([]byte, 4)
		if _, err := io.ReadFull(r, magic); err != nil {
			return nil, fmt.Errorf("sniff: %w", err)
		}
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		switch string(magic) {
		case "RIFF":
			format = ".wav"
		case "OggS":
			format = ".ogg"
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
		}
	}

	var (
		pcm      []float32
		rate, ch int
		err      error
	)
	switch format {
	case ".wav":
		pcm, rate, ch, err = readWAV(r)
	case ".mp3":
		pcm, rate, ch, err = readMP3(r)
	case ".opus":
		pcm, rate, ch, err = readOpus(r)
	default:
		pcm, rate, ch, err = readOgg(r)
	}
	if err != nil {
		return nil, err
	}

	out := Resample(Downmix(pcm, ch), rate, TargetRate)
	if opt.MaxSamples > 0 && len(out) > opt.MaxSamples {
		out = out[:opt.MaxSamples]
	}
	return out, nil
}

func readWAV(r io.ReadSeeker) ([]float32, int, int, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, 0, errors.New("invalid wav")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("read wav: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, 0, 0, errors.New("empty wav")
	}

	depth := int(dec.BitDepth)
	if depth == 0 {
		depth = 16
	}
	rate, ch := int(dec.SampleRate), int(dec.NumChans)
	if ch == 0 {
		ch = 1
	}
	return IntsToFloat(buf.Data, depth), rate, ch, nil
}

func readMP3(r io.Reader) ([]float32, int, int, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("mp3: %w", err)
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("read mp3: %w", err)
	}
	samples := make([]int16, len(raw)/2)
	if err := binary.Read(bytes.NewReader(raw[:len(samples)*2]), binary.LittleEndian, samples); err != nil {
		return nil, 0, 0, err
	}
	// go-mp3 always yields interleaved stereo
	return Int16ToFloat(samples), dec.SampleRate(), 2, nil
}

// readOgg tries Vorbis first and falls back to Opus in the same container.
func readOgg(r io.ReadSeeker) ([]float32, int, int, error) {
	pcm, format, err := oggvorbis.ReadAll(r)
	if err == nil && format != nil && format.Channels > 0 {
		return pcm, format.SampleRate, format.Channels, nil
	}
	if _, serr := r.Seek(0, io.SeekStart); serr != nil {
		return nil, 0, 0, serr
	}
	pcm, rate, ch, oerr := readOpus(r)
	if oerr != nil {
		return nil, 0, 0, fmt.Errorf("ogg: not vorbis (%v) nor opus: %w", err, oerr)
	}
	return pcm, rate, ch, nil
}
