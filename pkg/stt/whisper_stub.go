//go:build !whisper

package stt

import (
	"context"
	"errors"
)

var errNoWhisper = errors.New("local whisper not available: rebuild with -tags whisper")

type Local struct{}

func NewLocal(string, string) (*Local, error) { return nil, errNoWhisper }

func (l *Local) Close() error { return nil }

func (l *Local) Transcribe(context.Context, []float32) (string, error) {
	return "", errNoWhisper
}
