package main

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/voicetyped/readaloud/internal/readaloud"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	for _, k := range []string{"TTS_BACKEND", "ESPEAK_BINARY", "SHELL_BINARY", "TOKEN_MAP_FILE", "TOKEN_MAP_WATCH", "LOG_LEVEL", "LOG_COLORED", "LOG_TIME_FORMAT", "LOG_SHOW_STACK_TRACE"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return filepath.Join(t.TempDir(), "none.env")
}

func TestRunNormalize(t *testing.T) {
	envFile := isolateEnv(t)
	var out, errOut bytes.Buffer

	err := run(t.Context(), []string{"-env", envFile, "normalize", "let x = fn(a int, b bool)"}, nil, &out, &errOut)
	if err != nil {
		t.Fatalf("run: %v (%s)", err, errOut.String())
	}
	if got := strings.TrimSpace(out.String()); got != "let x = function(a integer, b boolean)" {
		t.Errorf("output = %q", got)
	}
}

func TestRunNormalizeFromStdinWithTokenFile(t *testing.T) {
	envFile := isolateEnv(t)
	tokens := filepath.Join(t.TempDir(), "tokens.yaml")
	if err := os.WriteFile(tokens, []byte("include_defaults: true\ntokens:\n  - token: ptr\n    spoken: pointer\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TOKEN_MAP_FILE", tokens)

	var out bytes.Buffer
	err := run(t.Context(), []string{"-env", envFile, "normalize"}, strings.NewReader("ptr to int\n"), &out, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "pointer to integer" {
		t.Errorf("output = %q", got)
	}
}

func TestRunEngines(t *testing.T) {
	envFile := isolateEnv(t)
	var out bytes.Buffer
	if err := run(t.Context(), []string{"-env", envFile, "engines"}, nil, &out, &bytes.Buffer{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, name := range []string{"espeak", "powershell", "say"} {
		if !strings.Contains(out.String(), name) {
			t.Errorf("engine %q missing from %q", name, out.String())
		}
	}
	if !strings.Contains(out.String(), "selected") && (runtime.GOOS == "linux" || runtime.GOOS == "windows" || runtime.GOOS == "darwin") {
		t.Errorf("no engine marked selected: %q", out.String())
	}
}

func TestRunUsageErrors(t *testing.T) {
	envFile := isolateEnv(t)
	if err := run(t.Context(), []string{"-env", envFile}, nil, &bytes.Buffer{}, &bytes.Buffer{}); err == nil {
		t.Error("expected error without command")
	}
	if err := run(t.Context(), []string{"-env", envFile, "shout"}, nil, &bytes.Buffer{}, &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown command")
	}
}

func TestRunSpeakEmptySelection(t *testing.T) {
	envFile := isolateEnv(t)
	err := run(t.Context(), []string{"-env", envFile, "speak"}, strings.NewReader("   \n"), &bytes.Buffer{}, &bytes.Buffer{})
	if !errors.Is(err, readaloud.ErrNoText) {
		t.Errorf("err = %v, want ErrNoText", err)
	}
}

// writeEngine writes an executable espeak stand-in. Tests using it only run
// where the espeak engine is supported.
func writeEngine(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS != "linux" {
		t.Skip("espeak engine runs on linux")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not found")
	}
	bin := filepath.Join(t.TempDir(), "espeak-stub")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return bin
}

func stubEngine(t *testing.T) (bin, received string) {
	t.Helper()
	received = filepath.Join(t.TempDir(), "received")
	bin = writeEngine(t, "for last; do :; done\nprintf '%s\\n' \"$last\" >> '"+received+"'")
	return bin, received
}

func TestRunSpeakThroughStubEngine(t *testing.T) {
	envFile := isolateEnv(t)
	bin, received := stubEngine(t)
	t.Setenv("TTS_BACKEND", "espeak")
	t.Setenv("ESPEAK_BINARY", bin)

	err := run(t.Context(), []string{"-env", envFile, "speak", `say "const" $HOME`}, nil, &bytes.Buffer{}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	got, err := os.ReadFile(received)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if want := "say \"constant\" $HOME\n"; string(got) != want {
		t.Errorf("engine received %q, want %q", got, want)
	}
}

func TestRunPanelThroughStubEngine(t *testing.T) {
	envFile := isolateEnv(t)
	bin, received := stubEngine(t)
	t.Setenv("TTS_BACKEND", "espeak")
	t.Setenv("ESPEAK_BINARY", bin)

	err := run(t.Context(), []string{"-env", envFile, "panel"}, strings.NewReader("var a\n"), &bytes.Buffer{}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	got, err := os.ReadFile(received)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "var a\n" {
		t.Errorf("engine received %q, want raw panel text", got)
	}
}

func TestRunUnknownBackend(t *testing.T) {
	envFile := isolateEnv(t)
	t.Setenv("TTS_BACKEND", "festival")
	err := run(t.Context(), []string{"-env", envFile, "speak", "hi"}, nil, &bytes.Buffer{}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "festival") {
		t.Errorf("err = %v", err)
	}
}

func TestRunPanelLogsEngineFailure(t *testing.T) {
	envFile := isolateEnv(t)
	t.Setenv("TTS_BACKEND", "espeak")
	t.Setenv("ESPEAK_BINARY", writeEngine(t, "echo 'no audio device' >&2\nexit 2"))
	t.Setenv("LOG_COLORED", "false")

	var out, errOut bytes.Buffer
	err := run(t.Context(), []string{"-env", envFile, "panel"}, strings.NewReader("hello\n"), &out, &errOut)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"speak failed", "no audio device"} {
		if !strings.Contains(errOut.String(), want) {
			t.Errorf("stderr = %q, want it to contain %q", errOut.String(), want)
		}
	}
	if out.Len() != 0 {
		t.Errorf("stdout = %q, want nothing", out.String())
	}
}

const espeakVoices = `Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  af              --/M      Afrikaans          gmw/af
 5  en-us           --/M      English_(America)  gmw/en-US
 5  en-gb           --/M      English_(Great_Britain) gmw/en
`

func TestRunVoices(t *testing.T) {
	envFile := isolateEnv(t)
	table := filepath.Join(t.TempDir(), "voices.txt")
	if err := os.WriteFile(table, []byte(espeakVoices), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TTS_BACKEND", "espeak")
	t.Setenv("ESPEAK_BINARY", writeEngine(t, `[ "$1" = --voices ] && cat '`+table+`'`))

	var out bytes.Buffer
	if err := run(t.Context(), []string{"-env", envFile, "voices"}, nil, &out, &bytes.Buffer{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "en-us") || !strings.HasPrefix(lines[1], "en-gb") {
		t.Errorf("English voices = %q", lines)
	}

	out.Reset()
	if err := run(t.Context(), []string{"-env", envFile, "voices", "-all"}, nil, &out, &bytes.Buffer{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(out.String()), "\n"); len(lines) != 3 || !strings.HasPrefix(lines[0], "af") {
		t.Errorf("all voices = %q", lines)
	}
}

func TestRunPanelWithVoice(t *testing.T) {
	envFile := isolateEnv(t)
	received := filepath.Join(t.TempDir(), "received")
	t.Setenv("TTS_BACKEND", "espeak")
	t.Setenv("ESPEAK_BINARY", writeEngine(t, `printf '%s|' "$@" > '`+received+`'`))

	err := run(t.Context(), []string{"-env", envFile, "panel", "-voice", "en-gb"}, strings.NewReader("hi\n"), &bytes.Buffer{}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	got, err := os.ReadFile(received)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if want := "-v|en-gb|-s|175|--|hi|"; string(got) != want {
		t.Errorf("engine args = %q, want %q", got, want)
	}
}
