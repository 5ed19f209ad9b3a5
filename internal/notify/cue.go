// Package notify plays the short cue that tells the user the assistant is listening.
package notify

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

type Cue struct {
	path string

	once    sync.Once
	initErr error
	rate    beep.SampleRate
}

// NewCue returns a cue for the mp3 at path. An empty path yields a silent cue.
func NewCue(path string) *Cue {
	return &Cue{path: path}
}

// Play blocks until the cue finished playing.
func (c *Cue) Play() error {
	if c == nil || c.path == "" {
		return nil
	}

	f, err := os.Open(c.path)
	if err != nil {
		return fmt.Errorf("open cue: %w", err)
	}

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("decode cue: %w", err)
	}
	defer streamer.Close()

	c.once.Do(func() {
		c.rate = format.SampleRate
		c.initErr = speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10))
	})
	if c.initErr != nil {
		return fmt.Errorf("init speaker: %w", c.initErr)
	}

	var s beep.Streamer = streamer
	if format.SampleRate != c.rate {
		s = beep.Resample(4, format.SampleRate, c.rate, streamer)
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(s, beep.Callback(func() {
		close(done)
	})))
	<-done

	return nil
}
