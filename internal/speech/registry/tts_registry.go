package registry

import (
	"fmt"

	"github.com/voicetyped/readaloud/internal/speech/engine"
)

// Auto selects the platform's native speech engine.
const Auto = "auto"

// TTS is the global TTS engine registry.
var TTS = New[engine.TTSEngine]()

var platformDefaults = map[string]string{
	"windows": "powershell",
	"darwin":  "say",
	"linux":   "espeak",
	"freebsd": "espeak",
	"openbsd": "espeak",
	"netbsd":  "espeak",
}

// PlatformDefault returns the engine name Auto resolves to on goos.
func PlatformDefault(goos string) (string, bool) {
	name, ok := platformDefaults[goos]
	return name, ok
}

// Resolve maps Auto (or an empty name) to the platform default and leaves
// any other name alone.
func Resolve(name, goos string) (string, error) {
	if name != "" && name != Auto {
		return name, nil
	}
	def, ok := PlatformDefault(goos)
	if !ok {
		return "", fmt.Errorf("no default speech engine for platform %q", goos)
	}
	return def, nil
}
