//go:build portaudio

package audio

import (
	"context"
	"fmt"
	log "log/slog"

	"github.com/gordonklaus/portaudio"
)

func Init() error {
	return portaudio.Initialize()
}

func Terminate() {
	portaudio.Terminate()
}

// InputDevices lists input-capable devices.
func InputDevices() ([]Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}

	var out []Device
	for i, info := range infos {
		if info.MaxInputChannels <= 0 {
			continue
		}
		out = append(out, Device{Index: i, Name: info.Name, Inputs: info.MaxInputChannels, ref: info})
	}
	return out, nil
}

// HostDevices lists every device of the default host API without filtering.
func HostDevices() ([]Device, error) {
	api, err := portaudio.DefaultHostApi()
	if err != nil {
		return nil, fmt.Errorf("default host api: %w", err)
	}

	all, _ := portaudio.Devices()

	out := make([]Device, 0, len(api.Devices))
	for _, info := range api.Devices {
		out = append(out, Device{
			Index:  globalIndex(all, api, info),
			Name:   info.Name,
			Inputs: info.MaxInputChannels,
			ref:    info,
		})
	}
	return out, nil
}

// globalIndex maps a host API device to its position in portaudio.Devices,
// the numbering DeviceByIndex expects. -1 when it cannot be found.
func globalIndex(all []*portaudio.DeviceInfo, api *portaudio.HostApiInfo, info *portaudio.DeviceInfo) int {
	for i, d := range all {
		if d == info {
			return i
		}
	}
	for i, d := range all {
		if d.Name == info.Name && d.HostApi != nil && d.HostApi.Name == api.Name {
			return i
		}
	}
	return -1
}

// DeviceByIndex resolves a device index as printed by SelectDevice.
func DeviceByIndex(index int) (*Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	if index < 0 || index >= len(infos) {
		return nil, fmt.Errorf("device index %d out of range", index)
	}
	info := infos[index]
	if info.MaxInputChannels <= 0 {
		return nil, fmt.Errorf("device %q has no input channels", info.Name)
	}
	return &Device{Index: index, Name: info.Name, Inputs: info.MaxInputChannels, ref: info}, nil
}

// Microphone captures one utterance per call from a device, or from the
// system default when the device is nil.
type Microphone struct {
	device   *Device
	detector Detector
}

func NewMicrophone(device *Device, detector Detector) *Microphone {
	return &Microphone{device: device, detector: detector}
}

func (m *Microphone) Name() string { return "microphone" }

func (m *Microphone) open(buf []float32) (*portaudio.Stream, error) {
	if m.device == nil {
		return portaudio.OpenDefaultStream(1, 0, SampleRate, len(buf), buf)
	}

	info, ok := m.device.ref.(*portaudio.DeviceInfo)
	if !ok {
		return nil, fmt.Errorf("device %q is not a portaudio device", m.device.Name)
	}

	params := portaudio.LowLatencyParameters(info, nil)
	params.Input.Channels = 1
	params.SampleRate = SampleRate
	params.FramesPerBuffer = len(buf)

	return portaudio.OpenStream(params, buf)
}

// Capture blocks until an utterance was recorded or ctx is done.
func (m *Microphone) Capture(ctx context.Context) ([]float32, error) {
	buf := make([]float32, m.detector.FrameSize)

	stream, err := m.open(buf)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("start stream: %w", err)
	}
	defer stream.Stop()

	seg := m.detector.newSegmenter()

	log.Info("Adjusting for background noise... Please wait")

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		wasCalibrating := seg.calibrating()

		if err := stream.Read(); err != nil {
			return nil, fmt.Errorf("read stream: %w", err)
		}

		done := seg.push(buf)

		if wasCalibrating && !seg.calibrating() {
			log.Info("Listening...")
			log.Debug("Calibrated", "threshold", seg.threshold)
		}

		if done {
			break
		}
	}

	samples := seg.samples()
	log.Debug("Captured", "samples", len(samples))

	return samples, nil
}
