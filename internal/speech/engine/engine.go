package engine

import (
	"cmp"
	"runtime"
	"slices"
	"strings"
)

// Command is a fully built child-process invocation for a speech engine.
type Command struct {
	// Path is the program to launch.
	Path string
	// Args are passed to Path as-is, without another shell layer.
	Args []string
	// Script is the engine script the text was embedded into, before any
	// transport encoding.
	Script string
}

// Voice describes an installed voice.
type Voice struct {
	// ID is what WithVoice accepts.
	ID       string
	Name     string
	Language string
}

// TTSEngine turns text into a command for an external speech synthesizer.
type TTSEngine interface {
	// Name is the registry name of the engine.
	Name() string
	// Platforms lists the runtime.GOOS values the engine can run on.
	Platforms() []string
	// Command embeds text into the engine's command template.
	Command(text string) (Command, error)
	// VoicesCommand builds a command that lists installed voices on stdout.
	VoicesCommand() (Command, error)
	// ParseVoices reads the output of VoicesCommand.
	ParseVoices(output []byte) ([]Voice, error)
	// WithVoice returns a copy of the engine that speaks with the voice ID.
	// An empty ID keeps the engine default.
	WithVoice(id string) TTSEngine
}

// Supports reports whether e can run on the given GOOS.
func Supports(e TTSEngine, goos string) bool {
	return slices.Contains(e.Platforms(), goos)
}

// SupportsHost reports whether e can run on the current platform.
func SupportsHost(e TTSEngine) bool {
	return Supports(e, runtime.GOOS)
}

// ShellCommand runs script through a POSIX shell with "-c".
func ShellCommand(shell, script string) Command {
	return Command{
		Path:   shell,
		Args:   []string{"-c", script},
		Script: script,
	}
}

// EnglishVoices returns the English voices in vs, sorted by name.
func EnglishVoices(vs []Voice) []Voice {
	var out []Voice
	for _, v := range vs {
		if IsEnglish(v.Language) {
			out = append(out, v)
		}
	}
	SortVoices(out)
	return out
}

// IsEnglish reports whether lang is an English language tag such as "en",
// "en-US", "en_GB" or "en-029".
func IsEnglish(lang string) bool {
	lang = strings.ToLower(lang)
	return lang == "en" || strings.HasPrefix(lang, "en-") || strings.HasPrefix(lang, "en_")
}

// SortVoices orders vs by name, ignoring case, then by ID.
func SortVoices(vs []Voice) {
	slices.SortStableFunc(vs, func(a, b Voice) int {
		return cmp.Or(
			cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)),
			cmp.Compare(a.ID, b.ID),
		)
	})
}
