package shroud

import (
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// DefaultSnippetSize bounds the payload fragment attached to decode errors.
const DefaultSnippetSize = 64

// Config is the environment-driven configuration.
type Config struct {
	// Package-path prefixes of response contract types. Empty means every struct.
	Namespaces []string `envconfig:"NAMESPACES"`

	ElevatedRole  string `envconfig:"ELEVATED_ROLE" default:"IT-DevOps"`
	ExecutiveRole string `envconfig:"EXECUTIVE_ROLE" default:"Executive-Administrator"`

	// Zero disables decode diagnostics.
	SnippetSize int `envconfig:"SNIPPET_SIZE" default:"64"`
}

// LoadConfig reads SHROUD_* environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("shroud", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// RoleNames returns the configured privilege role names.
func (c Config) RoleNames() RoleNames {
	return RoleNames{Elevated: c.ElevatedRole, Executive: c.ExecutiveRole}
}

// settings is the resolved option set for an encode or decode.
type settings struct {
	namespaces  []string
	snippetSize int
}

func defaultSettings() settings {
	return settings{snippetSize: DefaultSnippetSize}
}

func resolve(opts []Option) settings {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// inNamespace reports whether masking rules apply to rt's fields.
func (s settings) inNamespace(pkgPath string) bool {
	if len(s.namespaces) == 0 {
		return true
	}
	for _, ns := range s.namespaces {
		if pkgPath == ns || strings.HasPrefix(pkgPath, strings.TrimSuffix(ns, "/")+"/") {
			return true
		}
	}
	return false
}

// Option configures a Processor or a one-off Marshal.
type Option func(*settings)

// WithNamespaces limits masking rules to types under the given package paths.
// Types elsewhere are still walked so nested contracts are masked.
func WithNamespaces(prefixes ...string) Option {
	return func(s *settings) {
		s.namespaces = append([]string{}, prefixes...)
	}
}

// WithSnippetSize sets the decode diagnostic window. Zero disables it.
func WithSnippetSize(n int) Option {
	return func(s *settings) {
		if n < 0 {
			n = 0
		}
		s.snippetSize = n
	}
}

// WithConfig applies a loaded Config.
func WithConfig(cfg Config) Option {
	return func(s *settings) {
		WithNamespaces(cfg.Namespaces...)(s)
		WithSnippetSize(cfg.SnippetSize)(s)
	}
}
