package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"sync"
	"syscall"

	"github.com/pitabwire/util"

	"github.com/voicetyped/readaloud/config"
	"github.com/voicetyped/readaloud/internal/readaloud"
	"github.com/voicetyped/readaloud/internal/speech/engine"
	"github.com/voicetyped/readaloud/internal/speech/invoker"
	"github.com/voicetyped/readaloud/internal/speech/normalize"
	"github.com/voicetyped/readaloud/internal/speech/registry"

	// Register speech backends via init().
	_ "github.com/voicetyped/readaloud/internal/speech/backends/espeak"
	_ "github.com/voicetyped/readaloud/internal/speech/backends/powershell"
	_ "github.com/voicetyped/readaloud/internal/speech/backends/say"
)

const usage = `usage: readaloud [-env file] <command> [text...]

commands:
  speak [text...]      normalize and speak text (stdin when no text is given)
  normalize [text...]  print the text that speak would send to the engine
  panel [-voice id]    speak each line read from stdin, stopping the previous one;
                       an empty line only stops
  voices [-all]        list installed English voices (every language with -all)
  engines              list speech engines
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "readaloud: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("readaloud", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	envFile := fs.String("env", ".env", "dotenv file to load before reading the environment")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}
	command, rest := fs.Arg(0), fs.Args()[1:]

	cfg, err := config.Load(*envFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logOpts := []util.Option{
		util.WithLogOutput(stderr),
		util.WithLogLevel(level),
		util.WithLogTimeFormat(cfg.LoggingTimeFormat()),
		util.WithLogNoColor(!cfg.LoggingColored()),
	}
	if cfg.LoggingShowStackTrace() {
		logOpts = append(logOpts, util.WithLogStackTrace())
	}
	logger := util.NewLogger(ctx, logOpts...)
	ctx = util.ContextWithLogger(ctx, logger)
	slog.SetDefault(logger.SLog())

	switch command {
	case "engines":
		return listEngines(stdout, cfg.TTSBackend)
	case "normalize":
		n, err := newNormalizer(ctx, cfg)
		if err != nil {
			return err
		}
		text, err := textFrom(rest, stdin)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, readaloud.NewReader(n, nil).Normalize(text))
		return err
	case "speak":
		n, err := newNormalizer(ctx, cfg)
		if err != nil {
			return err
		}
		inv, err := newInvoker(cfg, "")
		if err != nil {
			return err
		}
		text, err := textFrom(rest, stdin)
		if err != nil {
			return err
		}
		return readaloud.NewReader(n, inv).SpeakSelection(ctx, text)
	case "panel":
		pfs := flag.NewFlagSet("panel", flag.ContinueOnError)
		pfs.SetOutput(stderr)
		voice := pfs.String("voice", "", "voice ID as listed by readaloud voices; empty uses the engine default")
		if err := pfs.Parse(rest); err != nil {
			return err
		}
		inv, err := newInvoker(cfg, *voice)
		if err != nil {
			return err
		}
		return runPanel(ctx, readaloud.NewPanel(inv), stdin)
	case "voices":
		vfs := flag.NewFlagSet("voices", flag.ContinueOnError)
		vfs.SetOutput(stderr)
		all := vfs.Bool("all", false, "list voices in every language")
		if err := vfs.Parse(rest); err != nil {
			return err
		}
		inv, err := newInvoker(cfg, "")
		if err != nil {
			return err
		}
		return listVoices(ctx, stdout, inv, *all)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func textFrom(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(b), nil
}

func newNormalizer(ctx context.Context, cfg config.ReadAloudConfig) (*normalize.Normalizer, error) {
	if cfg.TokenMapFile == "" {
		return normalize.Default(), nil
	}
	n, err := normalize.NewFromFile(cfg.TokenMapFile)
	if err != nil {
		return nil, err
	}
	if cfg.TokenMapWatch {
		go func() {
			if err := n.WatchAndReload(ctx, cfg.TokenMapFile); err != nil {
				util.Log(ctx).WithError(err).Error("token map watcher stopped")
			}
		}()
	}
	return n, nil
}

func newInvoker(cfg config.ReadAloudConfig, voice string) (*invoker.Invoker, error) {
	name, err := registry.Resolve(cfg.TTSBackend, runtime.GOOS)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", invoker.ErrUnsupportedPlatform, err)
	}
	e, err := registry.TTS.Create(name, cfg.ServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("speech engine: %w", err)
	}
	if voice != "" {
		e = e.WithVoice(voice)
	}
	return invoker.New(e), nil
}

func listVoices(ctx context.Context, w io.Writer, inv *invoker.Invoker, all bool) error {
	voices, err := inv.Voices(ctx)
	if err != nil {
		return fmt.Errorf("list voices: %w", err)
	}
	if all {
		engine.SortVoices(voices)
	} else {
		voices = engine.EnglishVoices(voices)
	}
	for _, v := range voices {
		if _, err := fmt.Fprintf(w, "%-28s %-8s %s\n", v.ID, v.Language, v.Name); err != nil {
			return err
		}
	}
	return nil
}

func listEngines(w io.Writer, configured string) error {
	selected, _ := registry.Resolve(configured, runtime.GOOS)
	for _, name := range registry.TTS.List() {
		e, err := registry.TTS.Create(name, nil)
		if err != nil {
			return err
		}
		marks := []string{strings.Join(e.Platforms(), ",")}
		if engine.SupportsHost(e) {
			marks = append(marks, "supported")
		}
		if name == selected {
			marks = append(marks, "selected")
		}
		if _, err := fmt.Fprintf(w, "%-12s %s\n", name, strings.Join(marks, " ")); err != nil {
			return err
		}
	}
	return nil
}

// runPanel speaks stdin line by line until EOF, then lets the last line
// finish. Cancelling ctx stops whatever is playing.
func runPanel(ctx context.Context, panel *readaloud.Panel, stdin io.Reader) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(stdin)
		for sc.Scan() {
			select {
			case lines <- strings.TrimSuffix(sc.Text(), "\r"):
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	var reports sync.WaitGroup
	defer reports.Wait()

	for {
		select {
		case <-ctx.Done():
			panel.Stop()
			return nil
		case line, ok := <-lines:
			if !ok {
				return finishPanel(ctx, panel, scanErr)
			}
			if iv := panel.Submit(ctx, line); iv != nil {
				reports.Add(1)
				go func() {
					defer reports.Done()
					report(ctx, iv)
				}()
			}
		}
	}
}

func finishPanel(ctx context.Context, panel *readaloud.Panel, scanErr <-chan error) error {
	if cur := panel.Current(); cur != nil {
		select {
		case <-cur.Done():
		case <-ctx.Done():
			panel.Stop()
		}
	}
	select {
	case err := <-scanErr:
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	default:
	}
	return nil
}

func report(ctx context.Context, iv *invoker.Invocation) {
	err := iv.Wait()
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	util.Log(ctx).WithError(err).Error("speak failed")
}
