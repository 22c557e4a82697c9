// Package config holds the settings shared by the CLI and the development server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/icakad/icakad-go/client"
)

// Environment variables read by Load.
const (
	EnvConfig          = "ICAKAD_CONFIG"
	EnvShortURLBase    = "ICAKAD_SHORTURL_BASE"
	EnvPasteBase       = "ICAKAD_PASTE_BASE"
	EnvToken           = "ICAKAD_TOKEN"
	EnvShortURLTimeout = "ICAKAD_SHORTURL_TIMEOUT"
	EnvPasteTimeout    = "ICAKAD_PASTE_TIMEOUT"
)

// Settings describes how to reach both services.
type Settings struct {
	ShortURLBase    string
	PasteBase       string
	Token           string
	ShortURLTimeout time.Duration
	PasteTimeout    time.Duration
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		ShortURLBase:    client.DefaultShortURLBaseURL,
		PasteBase:       client.DefaultPasteBaseURL,
		ShortURLTimeout: client.DefaultShortURLTimeout,
		PasteTimeout:    client.DefaultPasteTimeout,
	}
}

// WithOverrides returns a copy where every non-zero field of o replaces
// the current value.
func (s Settings) WithOverrides(o Settings) Settings {
	if o.ShortURLBase != "" {
		s.ShortURLBase = o.ShortURLBase
	}
	if o.PasteBase != "" {
		s.PasteBase = o.PasteBase
	}
	if o.Token != "" {
		s.Token = o.Token
	}
	if o.ShortURLTimeout > 0 {
		s.ShortURLTimeout = o.ShortURLTimeout
	}
	if o.PasteTimeout > 0 {
		s.PasteTimeout = o.PasteTimeout
	}
	return s
}

// ShortURLOptions returns the client options for the short-link service.
func (s Settings) ShortURLOptions() []client.Option {
	return []client.Option{
		client.WithBaseURL(s.ShortURLBase),
		client.WithToken(s.Token),
		client.WithTimeout(s.ShortURLTimeout),
	}
}

// PasteOptions returns the client options for the paste service.
func (s Settings) PasteOptions() []client.Option {
	return []client.Option{
		client.WithBaseURL(s.PasteBase),
		client.WithToken(s.Token),
		client.WithTimeout(s.PasteTimeout),
	}
}

// LoadOptions controls where Load looks.
type LoadOptions struct {
	// ConfigPath is checked before $ICAKAD_CONFIG and the default locations.
	ConfigPath string
	// DotEnv is loaded into the environment when it exists. Variables that
	// are already set are kept.
	DotEnv string
	// Overrides win over everything else.
	Overrides Settings
}

// DefaultLocations lists the config files tried when none is given.
func DefaultLocations() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "icakad", "config.yaml"),
			filepath.Join(home, ".config", "icakad", "config.json"),
		)
	}
	if wd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(wd, "icakad.config.json"))
	}
	return paths
}

// Load resolves settings from defaults, the first config file found, the
// environment and finally opts.Overrides.
func Load(opts LoadOptions) (Settings, error) {
	settings := Default()

	if opts.DotEnv != "" {
		if err := godotenv.Load(opts.DotEnv); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Settings{}, fmt.Errorf("loading %s: %w", opts.DotEnv, err)
		}
	}

	var candidates []string
	if opts.ConfigPath != "" {
		candidates = append(candidates, expandHome(opts.ConfigPath))
	}
	if env := os.Getenv(EnvConfig); env != "" {
		candidates = append(candidates, expandHome(env))
	}
	candidates = append(candidates, DefaultLocations()...)

	for _, path := range candidates {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		fromFile, err := readFile(path)
		if err != nil {
			return Settings{}, err
		}
		settings = settings.WithOverrides(fromFile)
		break
	}

	fromEnv, err := fromEnvironment()
	if err != nil {
		return Settings{}, err
	}
	settings = settings.WithOverrides(fromEnv)

	return settings.WithOverrides(opts.Overrides), nil
}

// fileSettings mirrors Settings with timeouts as strings ("15s") or seconds.
type fileSettings struct {
	ShortURLBase    string `yaml:"shorturl_base"`
	PasteBase       string `yaml:"paste_base"`
	Token           string `yaml:"token"`
	ShortURLTimeout string `yaml:"shorturl_timeout"`
	PasteTimeout    string `yaml:"paste_timeout"`
}

func readFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("unable to read configuration from %s: %w", path, err)
	}

	var raw fileSettings
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Settings{}, fmt.Errorf("unable to read configuration from %s: %w", path, err)
	}

	s := Settings{
		ShortURLBase: raw.ShortURLBase,
		PasteBase:    raw.PasteBase,
		Token:        raw.Token,
	}
	if s.ShortURLTimeout, err = parseTimeout(raw.ShortURLTimeout); err != nil {
		return Settings{}, fmt.Errorf("%s: shorturl_timeout: %w", path, err)
	}
	if s.PasteTimeout, err = parseTimeout(raw.PasteTimeout); err != nil {
		return Settings{}, fmt.Errorf("%s: paste_timeout: %w", path, err)
	}
	return s, nil
}

func fromEnvironment() (Settings, error) {
	s := Settings{
		ShortURLBase: os.Getenv(EnvShortURLBase),
		PasteBase:    os.Getenv(EnvPasteBase),
		Token:        os.Getenv(EnvToken),
	}
	var err error
	if s.ShortURLTimeout, err = parseTimeout(os.Getenv(EnvShortURLTimeout)); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", EnvShortURLTimeout, err)
	}
	if s.PasteTimeout, err = parseTimeout(os.Getenv(EnvPasteTimeout)); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", EnvPasteTimeout, err)
	}
	return s, nil
}

// parseTimeout accepts a Go duration ("1m30s") or a number of seconds.
func parseTimeout(v string) (time.Duration, error) {
	if v == "" {
		return 0, nil
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	seconds, err := strconv.ParseFloat(v, 64)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("invalid timeout %q", v)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func expandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
