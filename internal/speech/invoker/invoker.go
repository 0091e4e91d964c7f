// Package invoker drives an external speech engine as a one-shot child
// process and reports how it ended.
//
// Every call is independent: the Invoker holds no per-request state, never
// retries and never queues. Callers that want "stop the previous utterance
// before the next one" track their own Invocation and call Stop on it.
package invoker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/rs/xid"

	"github.com/voicetyped/readaloud/internal/speech/engine"
)

// Invoker speaks text through one engine.
type Invoker struct {
	engine engine.TTSEngine
	runner CommandRunner
	goos   string
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithRunner replaces the process runner, mainly for tests.
func WithRunner(r CommandRunner) Option {
	return func(inv *Invoker) { inv.runner = r }
}

// WithPlatform overrides the detected runtime.GOOS.
func WithPlatform(goos string) Option {
	return func(inv *Invoker) { inv.goos = goos }
}

// New creates an Invoker for e.
func New(e engine.TTSEngine, opts ...Option) *Invoker {
	inv := &Invoker{
		engine: e,
		runner: ExecRunner{},
		goos:   runtime.GOOS,
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Engine returns the engine this Invoker drives.
func (inv *Invoker) Engine() engine.TTSEngine {
	return inv.engine
}

// Speak speaks text and blocks until the engine exits. It returns nil only
// when the engine exited with status zero. Failures are
// ErrUnsupportedPlatform, *LaunchError or *EngineError; a cancelled ctx is
// returned as its own error.
func (inv *Invoker) Speak(ctx context.Context, text string) error {
	return inv.speak(ctx, xid.New().String(), text, func(State) {})
}

func (inv *Invoker) speak(ctx context.Context, id, text string, setState func(State)) error {
	name := inv.engine.Name()
	log := slog.With(slog.String("invocation_id", id), slog.String("engine", name))

	if err := inv.checkPlatform(); err != nil {
		return err
	}

	cmd, err := inv.engine.Command(text)
	if err != nil {
		return &LaunchError{Engine: name, Err: err}
	}

	setState(Launching)
	log.DebugContext(ctx, "launching speech engine", slog.String("path", cmd.Path), slog.Int("text_len", len(text)))

	proc, err := inv.start(ctx, cmd)
	if err != nil {
		return err
	}

	setState(Running)
	status, err := proc.Wait()
	if err != nil && ctx.Err() != nil {
		log.DebugContext(ctx, "speech engine stopped", slog.String("reason", err.Error()))
	} else if err == nil {
		log.DebugContext(ctx, "speech engine exited", slog.Int("exit_code", status.Code))
	}
	return inv.exitError(status, err)
}

// Voices lists the voices installed for the engine, as the engine reports
// them. Failures use the same error types as Speak.
func (inv *Invoker) Voices(ctx context.Context) ([]engine.Voice, error) {
	if err := inv.checkPlatform(); err != nil {
		return nil, err
	}
	name := inv.engine.Name()

	cmd, err := inv.engine.VoicesCommand()
	if err != nil {
		return nil, &LaunchError{Engine: name, Err: err}
	}
	proc, err := inv.start(ctx, cmd)
	if err != nil {
		return nil, err
	}
	status, err := proc.Wait()
	if err := inv.exitError(status, err); err != nil {
		return nil, err
	}

	voices, err := inv.engine.ParseVoices(status.Stdout)
	if err != nil {
		return nil, &EngineError{Engine: name, Diagnostic: err.Error()}
	}
	return voices, nil
}

func (inv *Invoker) checkPlatform() error {
	if engine.Supports(inv.engine, inv.goos) {
		return nil
	}
	return fmt.Errorf("%w: %s runs on %s, not %s",
		ErrUnsupportedPlatform, inv.engine.Name(), strings.Join(inv.engine.Platforms(), ", "), inv.goos)
}

func (inv *Invoker) start(ctx context.Context, cmd engine.Command) (Process, error) {
	proc, err := inv.runner.Start(ctx, cmd)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", inv.engine.Name(), ctxErr)
		}
		return nil, &LaunchError{Engine: inv.engine.Name(), Err: err}
	}
	return proc, nil
}

// exitError turns the result of Process.Wait into the caller-facing error.
func (inv *Invoker) exitError(status ExitStatus, err error) error {
	name := inv.engine.Name()
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%s: %w", name, err)
		}
		return &EngineError{Engine: name, ExitCode: status.Code, Diagnostic: err.Error()}
	}
	if status.Code != 0 {
		return &EngineError{
			Engine:     name,
			ExitCode:   status.Code,
			Diagnostic: strings.TrimSpace(string(status.Stderr)),
		}
	}
	return nil
}
