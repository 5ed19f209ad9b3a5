package audio

import (
	"math"
	"time"
)

// SampleRate is the capture rate expected by every transcriber.
const SampleRate = 16000

// Detector decides where an utterance starts and ends. The first
// Calibration of audio is treated as ambient noise and sets the energy
// threshold; capture ends after TrailingSilence below it or at MaxPhrase.
type Detector struct {
	FrameSize       int
	Calibration     time.Duration
	TrailingSilence time.Duration
	MaxPhrase       time.Duration
	PreRoll         time.Duration
	Ratio           float64
	Floor           float64
}

func DefaultDetector() Detector {
	return Detector{
		FrameSize:       320, // 20ms
		Calibration:     time.Second,
		TrailingSilence: 800 * time.Millisecond,
		MaxPhrase:       15 * time.Second,
		PreRoll:         300 * time.Millisecond,
		Ratio:           1.5,
		Floor:           0.01,
	}
}

func (d Detector) frames(dur time.Duration) int {
	n := int(dur * SampleRate / time.Second / time.Duration(d.FrameSize))
	if n < 1 {
		n = 1
	}
	return n
}

type segmenter struct {
	calFrames     int
	silenceFrames int
	maxSamples    int
	preFrames     int
	ratio         float64
	floor         float64

	seen      int
	ambient   float64
	threshold float64

	speaking bool
	silent   int
	pre      [][]float32
	out      []float32
}

func (d Detector) newSegmenter() *segmenter {
	return &segmenter{
		calFrames:     d.frames(d.Calibration),
		silenceFrames: d.frames(d.TrailingSilence),
		maxSamples:    d.frames(d.MaxPhrase) * d.FrameSize,
		preFrames:     d.frames(d.PreRoll),
		ratio:         d.Ratio,
		floor:         d.Floor,
	}
}

func (s *segmenter) calibrating() bool { return s.seen < s.calFrames }

// push feeds one frame and reports whether the utterance is complete.
func (s *segmenter) push(frame []float32) bool {
	rms := frameRMS(frame)

	if s.calibrating() {
		s.seen++
		s.ambient += rms
		if !s.calibrating() {
			s.threshold = math.Max(s.ambient/float64(s.calFrames)*s.ratio, s.floor)
		}
		return false
	}

	loud := rms > s.threshold

	if !s.speaking {
		if !loud {
			s.pre = append(s.pre, append([]float32(nil), frame...))
			if len(s.pre) > s.preFrames {
				s.pre = s.pre[1:]
			}
			return false
		}
		s.speaking = true
		for _, p := range s.pre {
			s.out = append(s.out, p...)
		}
		s.pre = nil
	}

	s.out = append(s.out, frame...)

	if loud {
		s.silent = 0
	} else {
		s.silent++
		if s.silent >= s.silenceFrames {
			return true
		}
	}

	return len(s.out) >= s.maxSamples
}

func (s *segmenter) samples() []float32 { return s.out }

func frameRMS(f []float32) float64 {
	if len(f) == 0 {
		return 0
	}
	var sum float64
	for _, x := range f {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum / float64(len(f)))
}
