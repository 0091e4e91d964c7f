package readaloud

import (
	"context"
	"sync"

	"github.com/voicetyped/readaloud/internal/speech/invoker"
)

// Starter begins speaking text in the background.
type Starter interface {
	Start(ctx context.Context, text string) *invoker.Invocation
}

// Panel speaks typed text. Only one utterance plays at a time: submitting
// new text stops the one in flight first.
type Panel struct {
	starter Starter

	mu      sync.Mutex
	current *invoker.Invocation
}

// NewPanel creates a Panel.
func NewPanel(s Starter) *Panel {
	return &Panel{starter: s}
}

// Submit stops the current utterance, waits for its process to go away and
// starts speaking text as typed. Empty text only stops and returns nil.
func (p *Panel) Submit(ctx context.Context, text string) *invoker.Invocation {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	if text == "" {
		return nil
	}
	p.current = p.starter.Start(ctx, text)
	return p.current
}

// Stop stops the current utterance, if any, and waits for it to end.
func (p *Panel) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Panel) stopLocked() {
	if p.current == nil {
		return
	}
	p.current.Stop()
	<-p.current.Done()
}

// Current returns the most recent invocation, which may have finished.
func (p *Panel) Current() *invoker.Invocation {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}
