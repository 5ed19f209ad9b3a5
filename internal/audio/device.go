package audio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Device is an audio device as reported by portaudio.
type Device struct {
	// Index is the global portaudio device index, -1 when unknown.
	Index  int
	Name   string
	Inputs int

	// backend handle, *portaudio.DeviceInfo in portaudio builds
	ref any
}

var ErrNoDevices = errors.New("no input-capable audio devices found")

// Enumerators, replaced in tests.
var (
	inputDevices = InputDevices
	hostDevices  = HostDevices
)

// SelectDevice asks the operator to pick a microphone. Input-capable devices
// are offered first; when they cannot be enumerated every host device is listed.
// A nil device with a nil error means the system default should be used.
func SelectDevice(in io.Reader, out io.Writer) (*Device, error) {
	devs, err := inputDevices()
	if err != nil {
		fmt.Fprintln(out, "Input device enumeration unavailable, listing all devices (may include outputs)...")
		devs, err = hostDevices()
		if err != nil {
			return nil, err
		}
		return Choose(in, out, devs, false)
	}

	if len(devs) == 0 {
		fmt.Fprintln(out, "No input-capable audio devices found. Check drivers; using the default device.")
		return nil, nil
	}

	fmt.Fprintln(out, "Available input devices:")
	return Choose(in, out, devs, true)
}

// Choose prints devs and reads indexes from in until a valid one is given.
func Choose(in io.Reader, out io.Writer, devs []Device, filtered bool) (*Device, error) {
	if len(devs) == 0 {
		return nil, ErrNoDevices
	}

	prompt := "Enter the index of the microphone you want to use: "
	for j, d := range devs {
		if filtered {
			fmt.Fprintf(out, "%d: %s (device index %d)\n", j, d.Name, d.Index)
		} else {
			fmt.Fprintf(out, "%d: %s\n", j, d.Name)
		}
	}
	if filtered {
		prompt = "Enter the index of the microphone you want to use (left number): "
	}

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, prompt)
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return nil, fmt.Errorf("read choice: %w", err)
			}
			return nil, io.ErrUnexpectedEOF
		}

		choice, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
		if err != nil {
			fmt.Fprintln(out, "Please enter a valid number.")
			continue
		}
		if choice < 0 || choice >= len(devs) {
			fmt.Fprintln(out, "Invalid index, try again.")
			continue
		}

		d := devs[choice]
		if d.Index >= 0 {
			fmt.Fprintf(out, "Using microphone: %s (device index %d)\n", d.Name, d.Index)
		} else {
			fmt.Fprintf(out, "Using microphone: %s\n", d.Name)
		}
		return &d, nil
	}
}
