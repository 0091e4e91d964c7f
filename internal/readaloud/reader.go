// Package readaloud is the caller side of the speech pipeline: it turns an
// editor selection or typed panel text into one engine invocation.
package readaloud

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/voicetyped/readaloud/internal/speech/normalize"
)

// ErrNoText is returned when a selection is empty after trimming.
var ErrNoText = errors.New("no selected text to speak")

// Speaker speaks text and blocks until done.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Reader reads editor selections aloud.
type Reader struct {
	normalizer *normalize.Normalizer
	speaker    Speaker
}

// NewReader creates a Reader. A nil normalizer uses the built-in token map.
func NewReader(n *normalize.Normalizer, s Speaker) *Reader {
	if n == nil {
		n = normalize.Default()
	}
	return &Reader{normalizer: n, speaker: s}
}

// Normalize returns the text SpeakSelection would send to the engine.
func (r *Reader) Normalize(selection string) string {
	return r.normalizer.Normalize(strings.TrimSpace(selection))
}

// SpeakSelection trims the selection, rewrites code tokens into words and
// speaks the result.
func (r *Reader) SpeakSelection(ctx context.Context, selection string) error {
	text := strings.TrimSpace(selection)
	if text == "" {
		return ErrNoText
	}
	if err := r.speaker.Speak(ctx, r.normalizer.Normalize(text)); err != nil {
		return fmt.Errorf("speak failed: %w", err)
	}
	return nil
}
