// Package powershell speaks text on Windows through the System.Speech
// synthesizer, driven by a PowerShell script passed as an encoded command.
package powershell

import (
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/voicetyped/readaloud/internal/speech/engine"
	"github.com/voicetyped/readaloud/internal/speech/escape"
	"github.com/voicetyped/readaloud/internal/speech/registry"
)

// Name is the registry name of this engine.
const Name = "powershell"

// Rate is the fixed SpeechSynthesizer rate (-10..10, 0 is normal).
const Rate = 0

const defaultBinary = "powershell"

func init() {
	registry.TTS.Register(Name, func(config map[string]string) (engine.TTSEngine, error) {
		return NewPowerShellTTS(config["powershell_binary"]), nil
	})
}

// PowerShellTTS implements TTSEngine using Windows PowerShell.
type PowerShellTTS struct {
	binaryPath string
	voice      string
}

// NewPowerShellTTS creates a PowerShell engine. An empty binaryPath uses
// "powershell" from PATH.
func NewPowerShellTTS(binaryPath string) *PowerShellTTS {
	if binaryPath == "" {
		binaryPath = defaultBinary
	}
	return &PowerShellTTS{binaryPath: binaryPath}
}

func (p *PowerShellTTS) Name() string { return Name }

func (p *PowerShellTTS) Platforms() []string { return []string{"windows"} }

// WithVoice returns a copy that selects the installed voice named id.
func (p *PowerShellTTS) WithVoice(id string) engine.TTSEngine {
	c := *p
	c.voice = id
	return &c
}

// Command builds a non-interactive PowerShell invocation whose
// -EncodedCommand argument speaks text.
func (p *PowerShellTTS) Command(text string) (engine.Command, error) {
	return p.command(ScriptWithVoice(text, p.voice))
}

// VoicesCommand lists enabled voices, one "name<TAB>culture" line each.
func (p *PowerShellTTS) VoicesCommand() (engine.Command, error) {
	return p.command(VoicesScript())
}

// ParseVoices reads the output of VoicesScript.
func (p *PowerShellTTS) ParseVoices(output []byte) ([]engine.Voice, error) {
	var voices []engine.Voice
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, culture, _ := strings.Cut(line, "\t")
		name = strings.TrimSpace(name)
		voices = append(voices, engine.Voice{ID: name, Name: name, Language: strings.TrimSpace(culture)})
	}
	return voices, nil
}

func (p *PowerShellTTS) command(script string) (engine.Command, error) {
	encoded, err := EncodeCommand(script)
	if err != nil {
		return engine.Command{}, err
	}
	return engine.Command{
		Path: p.binaryPath,
		Args: []string{
			"-NoProfile",
			"-NonInteractive",
			"-ExecutionPolicy", "Bypass",
			"-EncodedCommand", encoded,
		},
		Script: script,
	}, nil
}

// Script returns the PowerShell script that speaks text with the default
// voice.
func Script(text string) string {
	return ScriptWithVoice(text, "")
}

// ScriptWithVoice is Script with an explicit voice name. An empty voice
// leaves the synthesizer default in place.
func ScriptWithVoice(text, voice string) string {
	lines := []string{
		"Add-Type -AssemblyName System.Speech",
		"$synth = New-Object System.Speech.Synthesis.SpeechSynthesizer",
		fmt.Sprintf("$synth.Rate = %d", Rate),
	}
	if voice != "" {
		lines = append(lines, fmt.Sprintf("$synth.SelectVoice(%s)", escape.PowerShellQuoted(voice)))
	}
	lines = append(lines, fmt.Sprintf("$synth.Speak(%s)", escape.PowerShellQuoted(text)))
	return strings.Join(lines, "; ")
}

// VoicesScript prints each enabled voice as "name<TAB>culture" in UTF-8.
func VoicesScript() string {
	return strings.Join([]string{
		"[Console]::OutputEncoding = [System.Text.Encoding]::UTF8",
		"Add-Type -AssemblyName System.Speech",
		"$synth = New-Object System.Speech.Synthesis.SpeechSynthesizer",
		"$synth.GetInstalledVoices() | Where-Object { $_.Enabled } | ForEach-Object { $_.VoiceInfo.Name + \"`t\" + $_.VoiceInfo.Culture.Name }",
	}, "; ")
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// EncodeCommand encodes script the way -EncodedCommand expects it:
// base64 of the UTF-16LE bytes, no byte order mark.
func EncodeCommand(script string) (string, error) {
	raw, err := utf16le.NewEncoder().String(script)
	if err != nil {
		return "", fmt.Errorf("encode script as UTF-16LE: %w", err)
	}
	return base64.StdEncoding.EncodeToString([]byte(raw)), nil
}

// DecodeCommand reverses EncodeCommand.
func DecodeCommand(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}
	script, err := utf16le.NewDecoder().String(string(raw))
	if err != nil {
		return "", fmt.Errorf("decode UTF-16LE: %w", err)
	}
	return script, nil
}
