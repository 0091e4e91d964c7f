package normalize

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// File is the on-disk form of a token map.
type File struct {
	// IncludeDefaults puts the built-in tokens ahead of Tokens.
	IncludeDefaults bool          `yaml:"include_defaults"`
	Tokens          []Replacement `yaml:"tokens"`
}

// LoadFile reads a YAML token map from path.
func LoadFile(path string) (TokenMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a YAML token map.
func Parse(data []byte) (TokenMap, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	var tm TokenMap
	if f.IncludeDefaults {
		tm = append(tm, DefaultTokens()...)
	}
	tm = append(tm, f.Tokens...)
	if len(tm) == 0 {
		return nil, fmt.Errorf("token map is empty")
	}
	return tm, nil
}

// NewFromFile creates a Normalizer from a YAML token map file.
func NewFromFile(path string) (*Normalizer, error) {
	tm, err := LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load token map %q: %w", path, err)
	}
	n, err := New(tm)
	if err != nil {
		return nil, fmt.Errorf("load token map %q: %w", path, err)
	}
	return n, nil
}

// Reload reads path again and swaps it in. A bad file leaves the active map
// in place.
func (n *Normalizer) Reload(path string) error {
	tm, err := LoadFile(path)
	if err != nil {
		return fmt.Errorf("reload token map %q: %w", path, err)
	}
	if err := n.Swap(tm); err != nil {
		return fmt.Errorf("reload token map %q: %w", path, err)
	}
	return nil
}

// WatchAndReload watches the token map file and reloads it whenever it is
// written or recreated. It blocks until ctx is done. The parent directory is
// watched so editors that replace the file by rename are picked up too.
func (n *Normalizer) WatchAndReload(ctx context.Context, path string) error {
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch dir %q: %w", dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := n.Reload(path); err != nil {
				slog.WarnContext(ctx, "token map reload failed, keeping previous map",
					slog.String("path", path), slog.String("error", err.Error()))
				continue
			}
			slog.InfoContext(ctx, "token map reloaded",
				slog.String("path", path), slog.Int("tokens", len(n.Tokens())))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
