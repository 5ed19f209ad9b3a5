//go:build !portaudio

package audio

import (
	"context"
	"errors"
)

// ErrNoBackend is returned when the binary was built without -tags portaudio.
var ErrNoBackend = errors.New("microphone not available: rebuild with -tags portaudio")

func Init() error { return nil }

func Terminate() {}

func InputDevices() ([]Device, error) { return nil, ErrNoBackend }

func HostDevices() ([]Device, error) { return nil, ErrNoBackend }

func DeviceByIndex(int) (*Device, error) { return nil, ErrNoBackend }

type Microphone struct{}

func NewMicrophone(*Device, Detector) *Microphone { return &Microphone{} }

func (m *Microphone) Name() string { return "microphone" }

func (m *Microphone) Capture(context.Context) ([]float32, error) {
	return nil, ErrNoBackend
}
