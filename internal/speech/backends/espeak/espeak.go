// Package espeak speaks text on Linux and the BSDs with espeak-ng or espeak.
package espeak

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/voicetyped/readaloud/internal/speech/engine"
	"github.com/voicetyped/readaloud/internal/speech/escape"
	"github.com/voicetyped/readaloud/internal/speech/registry"
)

// Name is the registry name of this engine.
const Name = "espeak"

// WordsPerMinute is the fixed speaking rate.
const WordsPerMinute = 175

const defaultShell = "/bin/sh"

// candidates are probed in order when no binary is configured.
var candidates = []string{"espeak-ng", "espeak"}

func init() {
	registry.TTS.Register(Name, func(config map[string]string) (engine.TTSEngine, error) {
		bin := config["espeak_binary"]
		if bin == "" {
			bin = probe()
		}
		return NewEspeakTTS(bin, config["shell_binary"]), nil
	})
}

func probe() string {
	for _, bin := range candidates {
		if path, err := exec.LookPath(bin); err == nil {
			return path
		}
	}
	return candidates[0]
}

// EspeakTTS implements TTSEngine using the espeak command line.
type EspeakTTS struct {
	binaryPath string
	shellPath  string
	voice      string
}

// NewEspeakTTS creates an espeak engine run through shellPath.
func NewEspeakTTS(binaryPath, shellPath string) *EspeakTTS {
	if binaryPath == "" {
		binaryPath = candidates[0]
	}
	if shellPath == "" {
		shellPath = defaultShell
	}
	return &EspeakTTS{binaryPath: binaryPath, shellPath: shellPath}
}

func (e *EspeakTTS) Name() string { return Name }

func (e *EspeakTTS) Platforms() []string {
	return []string{"linux", "freebsd", "openbsd", "netbsd"}
}

// WithVoice returns a copy that passes id to espeak's -v option.
func (e *EspeakTTS) WithVoice(id string) engine.TTSEngine {
	c := *e
	c.voice = id
	return &c
}

// Command builds `sh -c '<espeak> -s 175 -- "<text>"'`, with
// `-v "<voice>"` ahead of -s when a voice is set.
func (e *EspeakTTS) Command(text string) (engine.Command, error) {
	voice := ""
	if e.voice != "" {
		voice = "-v " + escape.POSIXQuoted(e.voice) + " "
	}
	script := fmt.Sprintf("%s %s-s %d -- %s",
		escape.POSIXQuoted(e.binaryPath), voice, WordsPerMinute, escape.POSIXQuoted(text))
	return engine.ShellCommand(e.shellPath, script), nil
}

// VoicesCommand runs `<espeak> --voices`.
func (e *EspeakTTS) VoicesCommand() (engine.Command, error) {
	return engine.ShellCommand(e.shellPath, escape.POSIXQuoted(e.binaryPath)+" --voices"), nil
}

// ParseVoices reads the `--voices` table:
//
//	Pty Language       Age/Gender VoiceName          File          Other Languages
//	 5  en-gb           --/M      English_(Great_Britain) gmw/en
//
// The language column doubles as the voice ID.
func (e *EspeakTTS) ParseVoices(output []byte) ([]engine.Voice, error) {
	var voices []engine.Voice
	for _, line := range strings.Split(string(output), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 || fields[0] == "Pty" {
			continue
		}
		voices = append(voices, engine.Voice{
			ID:       fields[1],
			Name:     strings.ReplaceAll(fields[3], "_", " "),
			Language: fields[1],
		})
	}
	if len(voices) == 0 {
		return nil, fmt.Errorf("%s --voices: no voices listed", e.binaryPath)
	}
	return voices, nil
}
