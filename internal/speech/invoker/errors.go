package invoker

import (
	"errors"
	"fmt"
)

// ErrUnsupportedPlatform is returned when the engine cannot run on the
// current platform. No process is started.
var ErrUnsupportedPlatform = errors.New("speech engine not supported on this platform")

// LaunchError reports that the engine process could not be started.
type LaunchError struct {
	Engine string
	Err    error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s: %v", e.Engine, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// EngineError reports that the engine ran and exited with a non-zero status.
type EngineError struct {
	Engine   string
	ExitCode int
	// Diagnostic is the engine's trimmed error stream, possibly empty.
	Diagnostic string
}

func (e *EngineError) Error() string {
	if e.Diagnostic != "" {
		return e.Diagnostic
	}
	return fmt.Sprintf("%s exited with code %d", e.Engine, e.ExitCode)
}
