package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	VerificationTOFU     = "tofu"
	VerificationInsecure = "insecure"
)

// Settings is the content of config.yaml.
type Settings struct {
	HomeURL        string        `yaml:"home_url"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	MaxRedirects   int           `yaml:"max_redirects"`
	TLS            TLSSettings   `yaml:"tls"`
	Theme          string        `yaml:"theme"`
	LogLevel       string        `yaml:"log_level"`
}

type TLSSettings struct {
	// Verification is "tofu" or "insecure"
	Verification string `yaml:"verification"`
}

func Defaults() Settings {
	return Settings{
		HomeURL:        "gemini://geminiprotocol.net/",
		ConnectTimeout: 4 * time.Second,
		MaxRedirects:   5,
		TLS:            TLSSettings{Verification: VerificationTOFU},
		Theme:          "auto",
		LogLevel:       "info",
	}
}

// Load reads settings from path. A missing file yields the defaults and
// fields absent from the file keep their default values.
func Load(path string) (Settings, error) {
	settings := Defaults()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("failed to read settings: %w", err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return Defaults(), fmt.Errorf("failed to parse settings %s: %w", path, err)
	}

	if err := settings.Validate(); err != nil {
		return Defaults(), fmt.Errorf("invalid settings %s: %w", path, err)
	}
	return settings, nil
}

// Save writes settings to path as YAML.
func Save(path string, settings Settings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, FilePermissions); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

func (s *Settings) Validate() error {
	if s.ConnectTimeout <= 0 {
		return fmt.Errorf("connect_timeout must be positive, got %s", s.ConnectTimeout)
	}
	if s.MaxRedirects < 0 {
		return fmt.Errorf("max_redirects must not be negative, got %d", s.MaxRedirects)
	}

	s.TLS.Verification = strings.ToLower(s.TLS.Verification)
	switch s.TLS.Verification {
	case VerificationTOFU, VerificationInsecure:
	case "":
		s.TLS.Verification = VerificationTOFU
	default:
		return fmt.Errorf("tls.verification must be %q or %q, got %q", VerificationTOFU, VerificationInsecure, s.TLS.Verification)
	}

	switch strings.ToLower(s.Theme) {
	case "", "auto", "dark", "light":
	default:
		return fmt.Errorf("theme must be auto, dark or light, got %q", s.Theme)
	}
	return nil
}

// Insecure reports whether certificate pinning is disabled.
func (s Settings) Insecure() bool {
	return s.TLS.Verification == VerificationInsecure
}
