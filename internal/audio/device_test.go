package audio

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestChooseRepromptsUntilValid(t *testing.T) {
	devs := []Device{
		{Index: 2, Name: "USB Mic", Inputs: 1},
		{Index: 5, Name: "Webcam", Inputs: 2},
	}
	in := strings.NewReader("abc\n7\n-1\n1\n")
	var out bytes.Buffer

	d, err := Choose(in, &out, devs, true)
	if err != nil {
		t.Fatalf("choose: %v", err)
	}
	if d.Index != 5 || d.Name != "Webcam" {
		t.Fatalf("chose %+v", d)
	}

	text := out.String()
	if strings.Count(text, "Please enter a valid number.") != 1 {
		t.Errorf("missing number warning:\n%s", text)
	}
	if strings.Count(text, "Invalid index, try again.") != 2 {
		t.Errorf("missing range warnings:\n%s", text)
	}
	if !strings.Contains(text, "1: Webcam (device index 5)") {
		t.Errorf("device listing missing:\n%s", text)
	}
	if !strings.Contains(text, "Using microphone: Webcam (device index 5)") {
		t.Errorf("confirmation missing:\n%s", text)
	}
}

func TestChooseUnfilteredListing(t *testing.T) {
	devs := []Device{{Index: 0, Name: "HDMI"}, {Index: 1, Name: "Built-in"}}
	var out bytes.Buffer

	d, err := Choose(strings.NewReader("1\n"), &out, devs, false)
	if err != nil {
		t.Fatalf("choose: %v", err)
	}
	if d.Name != "Built-in" {
		t.Fatalf("chose %+v", d)
	}
	if strings.Contains(out.String(), "(device index") && !strings.Contains(out.String(), "Using microphone") {
		t.Fatalf("unexpected listing:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "0: HDMI\n") {
		t.Fatalf("listing missing:\n%s", out.String())
	}
}

func TestChooseEOF(t *testing.T) {
	devs := []Device{{Index: 0, Name: "Mic"}}
	_, err := Choose(strings.NewReader("x\n"), io.Discard, devs, true)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("err = %v, want unexpected EOF", err)
	}
}

func TestChooseEmpty(t *testing.T) {
	if _, err := Choose(strings.NewReader("0\n"), io.Discard, nil, true); !errors.Is(err, ErrNoDevices) {
		t.Fatalf("err = %v", err)
	}
}

func stubEnumerators(t *testing.T, in, host func() ([]Device, error)) {
	t.Helper()
	prevIn, prevHost := inputDevices, hostDevices
	inputDevices, hostDevices = in, host
	t.Cleanup(func() { inputDevices, hostDevices = prevIn, prevHost })
}

func TestSelectFallsBackToHostDevices(t *testing.T) {
	stubEnumerators(t,
		func() ([]Device, error) { return nil, errors.New("enumeration failed") },
		func() ([]Device, error) {
			return []Device{{Index: 4, Name: "HDMI"}, {Index: -1, Name: "Line In", Inputs: 2}}, nil
		},
	)
	var out bytes.Buffer

	d, err := SelectDevice(strings.NewReader("1\n"), &out)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if d == nil || d.Name != "Line In" {
		t.Fatalf("chose %+v", d)
	}

	text := out.String()
	if !strings.Contains(text, "listing all devices") {
		t.Errorf("fallback notice missing:\n%s", text)
	}
	if !strings.Contains(text, "0: HDMI\n") || strings.Contains(text, "(device index 4)") {
		t.Errorf("unfiltered listing should not print indexes:\n%s", text)
	}
	if !strings.Contains(text, "Using microphone: Line In\n") {
		t.Errorf("confirmation missing:\n%s", text)
	}
}

func TestSelectBothEnumeratorsFail(t *testing.T) {
	hostErr := errors.New("no host api")
	stubEnumerators(t,
		func() ([]Device, error) { return nil, errors.New("enumeration failed") },
		func() ([]Device, error) { return nil, hostErr },
	)

	d, err := SelectDevice(strings.NewReader("0\n"), io.Discard)
	if !errors.Is(err, hostErr) || d != nil {
		t.Fatalf("got %+v, %v", d, err)
	}
}

func TestSelectNoInputDevicesUsesDefault(t *testing.T) {
	stubEnumerators(t,
		func() ([]Device, error) { return nil, nil },
		func() ([]Device, error) {
			t.Fatal("host devices should not be listed")
			return nil, nil
		},
	)
	var out bytes.Buffer

	d, err := SelectDevice(strings.NewReader(""), &out)
	if d != nil || err != nil {
		t.Fatalf("got %+v, %v", d, err)
	}
	if !strings.Contains(out.String(), "using the default device") {
		t.Fatalf("notice missing:\n%s", out.String())
	}
}

func TestSelectInputDevices(t *testing.T) {
	stubEnumerators(t,
		func() ([]Device, error) { return []Device{{Index: 3, Name: "USB Mic", Inputs: 1}}, nil },
		func() ([]Device, error) { return nil, errors.New("unused") },
	)
	var out bytes.Buffer

	d, err := SelectDevice(strings.NewReader("0\n"), &out)
	if err != nil || d == nil || d.Index != 3 {
		t.Fatalf("got %+v, %v", d, err)
	}
	if !strings.Contains(out.String(), "0: USB Mic (device index 3)") {
		t.Fatalf("listing missing:\n%s", out.String())
	}
}
