// Package say speaks text on macOS with the say command.
package say

import (
	"fmt"
	"strings"

	"github.com/voicetyped/readaloud/internal/speech/engine"
	"github.com/voicetyped/readaloud/internal/speech/escape"
	"github.com/voicetyped/readaloud/internal/speech/registry"
)

// Name is the registry name of this engine.
const Name = "say"

// WordsPerMinute is the fixed speaking rate.
const WordsPerMinute = 175

func init() {
	registry.TTS.Register(Name, func(config map[string]string) (engine.TTSEngine, error) {
		return NewSayTTS(config["say_binary"], config["shell_binary"]), nil
	})
}

// SayTTS implements TTSEngine using macOS say.
type SayTTS struct {
	binaryPath string
	shellPath  string
	voice      string
}

// NewSayTTS creates a say engine run through shellPath.
func NewSayTTS(binaryPath, shellPath string) *SayTTS {
	if binaryPath == "" {
		binaryPath = "say"
	}
	if shellPath == "" {
		shellPath = "/bin/sh"
	}
	return &SayTTS{binaryPath: binaryPath, shellPath: shellPath}
}

func (s *SayTTS) Name() string { return Name }

func (s *SayTTS) Platforms() []string { return []string{"darwin"} }

func (s *SayTTS) WithVoice(id string) engine.TTSEngine {
	c := *s
	c.voice = id
	return &c
}

func (s *SayTTS) Command(text string) (engine.Command, error) {
	voice := ""
	if s.voice != "" {
		voice = "-v " + escape.POSIXQuoted(s.voice) + " "
	}
	script := fmt.Sprintf("%s %s-r %d -- %s",
		escape.POSIXQuoted(s.binaryPath), voice, WordsPerMinute, escape.POSIXQuoted(text))
	return engine.ShellCommand(s.shellPath, script), nil
}

// VoicesCommand runs `say -v "?"`.
func (s *SayTTS) VoicesCommand() (engine.Command, error) {
	script := escape.POSIXQuoted(s.binaryPath) + " -v " + escape.POSIXQuoted("?")
	return engine.ShellCommand(s.shellPath, script), nil
}

// ParseVoices reads lines like
//
//	Alex                en_US    # Most people recognize me by my voice.
//	Bad News            en_US    # The light you see at the end of the tunnel...
//
// Names may contain spaces; the language is the last field before "#".
func (s *SayTTS) ParseVoices(output []byte) ([]engine.Voice, error) {
	var voices []engine.Voice
	for _, line := range strings.Split(string(output), "\n") {
		left, _, _ := strings.Cut(line, "#")
		fields := strings.Fields(left)
		if len(fields) < 2 {
			continue
		}
		name := strings.Join(fields[:len(fields)-1], " ")
		voices = append(voices, engine.Voice{
			ID:       name,
			Name:     name,
			Language: strings.ReplaceAll(fields[len(fields)-1], "_", "-"),
		})
	}
	if len(voices) == 0 {
		return nil, fmt.Errorf("%s -v ?: no voices listed", s.binaryPath)
	}
	return voices, nil
}
