package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/pitabwire/frame/config"
)

// ReadAloudConfig holds configuration for the read-aloud tool.
type ReadAloudConfig struct {
	config.ConfigurationDefault
	TTSBackend       string `envDefault:"auto"       env:"TTS_BACKEND"`
	PowerShellBinary string `envDefault:"powershell" env:"POWERSHELL_BINARY"`
	EspeakBinary     string `envDefault:""           env:"ESPEAK_BINARY"`
	SayBinary        string `envDefault:"say"        env:"SAY_BINARY"`
	ShellBinary      string `envDefault:"/bin/sh"    env:"SHELL_BINARY"`
	TokenMapFile     string `envDefault:""           env:"TOKEN_MAP_FILE"`
	TokenMapWatch    bool   `envDefault:"false"      env:"TOKEN_MAP_WATCH"`
}

// Load reads the given dotenv files (".env" when none are named) into the
// process environment, then parses ReadAloudConfig from it. Missing dotenv
// files are skipped; variables already set in the environment win.
func Load(envFiles ...string) (ReadAloudConfig, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return ReadAloudConfig{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg, err := config.FromEnv[ReadAloudConfig]()
	if err != nil {
		return ReadAloudConfig{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// ServiceConfig flattens the engine settings into the map the TTS registry
// factories read.
func (c *ReadAloudConfig) ServiceConfig() map[string]string {
	return map[string]string{
		"powershell_binary": c.PowerShellBinary,
		"espeak_binary":     c.EspeakBinary,
		"say_binary":        c.SayBinary,
		"shell_binary":      c.ShellBinary,
	}
}

// Level parses LOG_LEVEL.
func (c *ReadAloudConfig) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LoggingLevel())); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return lvl, nil
}
