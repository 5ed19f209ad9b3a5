// Package tts drives espeak-ng for synchronous speech output.
package tts

/*
#cgo LDFLAGS: -lespeak-ng
#include <stdlib.h>
#include <string.h>
#include <espeak-ng/speak_lib.h>

static int initialized = 0;

int
espeak_say(const char *text, const char *lang)
{
	if (!text)
	{ return -1; }

	if (!initialized)
	{
		if (espeak_Initialize(AUDIO_OUTPUT_SYNCH_PLAYBACK, 500, NULL, 0) < 0)
		{ return -2; }
		initialized = 1;
	}

	espeak_VOICE specs = { .languages = lang };
	espeak_SetVoiceByProperties(&specs);

	espeak_Synth(text, strlen(text) + 1, 0, 0, 0, espeakCHARS_AUTO, NULL, NULL);
	espeak_Synchronize();

	return 0;
}
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"
)

// Espeak speaks with a fixed voice language, e.g. "en" or "ru".
type Espeak struct {
	mu   sync.Mutex
	lang string
}

func NewEspeak(lang string) *Espeak {
	if lang == "" {
		lang = "en"
	}
	return &Espeak{lang: lang}
}

// Speak returns once playback is finished.
func (e *Espeak) Speak(text string) error {
	if text == "" {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ctext := C.CString(text)
	defer C.free(unsafe.Pointer(ctext))
	clang := C.CString(e.lang)
	defer C.free(unsafe.Pointer(clang))

	rc := C.espeak_say(ctext, clang)
	if rc != 0 {
		return fmt.Errorf("espeak_say failed: %d", int(rc))
	}

	return nil
}
