package invoker

import (
	"context"
	"sync/atomic"

	"github.com/rs/xid"
)

// State is the lifecycle stage of an Invocation.
type State int32

// Invocation states, in the order they are entered.
const (
	Idle State = iota
	Launching
	Running
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Launching:
		return "launching"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Invocation is a Speak call running in the background.
type Invocation struct {
	id     string
	state  atomic.Int32
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Start speaks text in a new goroutine and returns immediately.
func (inv *Invoker) Start(ctx context.Context, text string) *Invocation {
	ctx, cancel := context.WithCancel(ctx)
	iv := &Invocation{
		id:     xid.New().String(),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer cancel()
		err := inv.speak(ctx, iv.id, text, iv.setState)
		iv.err = err
		if err != nil {
			iv.setState(Failed)
		} else {
			iv.setState(Succeeded)
		}
		close(iv.done)
	}()

	return iv
}

func (iv *Invocation) setState(s State) {
	iv.state.Store(int32(s))
}

// ID identifies the invocation in logs.
func (iv *Invocation) ID() string { return iv.id }

// State returns the current lifecycle stage.
func (iv *Invocation) State() State {
	return State(iv.state.Load())
}

// Done is closed once the invocation reached Succeeded or Failed.
func (iv *Invocation) Done() <-chan struct{} { return iv.done }

// Wait blocks until the invocation finishes and returns its error.
func (iv *Invocation) Wait() error {
	<-iv.done
	return iv.err
}

// Stop kills the engine process if it is still running. It does not wait.
func (iv *Invocation) Stop() {
	iv.cancel()
}
