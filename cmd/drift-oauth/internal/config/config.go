// Package config resolves the OAuth plugin settings of a Drift project.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/drift-oauth/pkg/oauth"
)

// FileName is the optional project configuration file.
const FileName = "drift.yaml"

// Config represents the parts of drift.yaml the plugin reads.
type Config struct {
	App   AppConfig   `yaml:"app"`
	OAuth OAuthConfig `yaml:"oauth"`
}

// AppConfig contains application metadata.
type AppConfig struct {
	Name string `yaml:"name,omitempty"`
	ID   string `yaml:"id,omitempty"`
}

// OAuthConfig is the oauth section of drift.yaml.
type OAuthConfig struct {
	oauth.Config `yaml:",inline"`
	LogLevel     string `yaml:"log_level,omitempty"`
}

// envOverrides are applied on top of drift.yaml.
type envOverrides struct {
	CallbackHost   string `env:"DRIFT_OAUTH_CALLBACK_HOST"`
	CallbackScheme string `env:"DRIFT_OAUTH_CALLBACK_SCHEME"`
	LogLevel       string `env:"DRIFT_OAUTH_LOG_LEVEL"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root       string       `yaml:"root"`
	ModulePath string       `yaml:"module_path,omitempty"`
	AppID      string       `yaml:"app_id"`
	OAuth      oauth.Config `yaml:"oauth"`
	LogLevel   string       `yaml:"log_level"`
}

// LoadOptional reads drift.yaml if present.
func LoadOptional(dir string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	return &cfg, nil
}

// Resolve loads drift.yaml (if present), applies environment overrides and
// fills defaults. Precedence is environment, then drift.yaml, then values
// derived from the project: the callback scheme defaults to the app id,
// which itself defaults to a reversed-domain id built from the go.mod
// module path. A directory without go.mod is allowed.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}

	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	modPath, err := modulePath(dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	appID := strings.TrimSpace(cfg.App.ID)
	if appID == "" {
		appID = defaultAppID(modPath, defaultAppName(modPath, dir, cfg.App.Name))
	}

	oc := cfg.OAuth.Config
	logLevel := strings.TrimSpace(cfg.OAuth.LogLevel)
	if overrides.CallbackHost != "" {
		oc.CallbackHost = overrides.CallbackHost
	}
	if overrides.CallbackScheme != "" {
		oc.CallbackScheme = overrides.CallbackScheme
	}
	if overrides.LogLevel != "" {
		logLevel = overrides.LogLevel
	}
	oc = oc.WithDefaults()
	if oc.CallbackScheme == "" {
		oc.CallbackScheme = appID
	}
	if err := validateScheme(oc.CallbackScheme); err != nil {
		return nil, err
	}
	if logLevel == "" {
		logLevel = "info"
	}

	return &Resolved{
		Root:       dir,
		ModulePath: modPath,
		AppID:      appID,
		OAuth:      oc,
		LogLevel:   logLevel,
	}, nil
}

// FindProjectRoot walks up from dir to the nearest directory holding go.mod.
// It returns dir itself when none is found.
func FindProjectRoot(dir string) string {
	for cur := dir; ; {
		if _, err := os.Stat(filepath.Join(cur, "go.mod")); err == nil {
			return cur
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return dir
		}
		cur = parent
	}
}

func modulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("could not determine module path from go.mod")
	}
	return path, nil
}

func defaultAppName(modulePath, dir, configured string) string {
	if name := strings.TrimSpace(configured); name != "" {
		return name
	}
	base := filepath.Base(dir)
	if modName, _, ok := module.SplitPathVersion(modulePath); ok && modName != "" {
		parts := strings.Split(modName, "/")
		base = parts[len(parts)-1]
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "drift_app"
	}
	return base
}

func defaultAppID(modulePath, appName string) string {
	parts := strings.Split(modulePath, "/")
	if len(parts) < 2 || !strings.Contains(parts[0], ".") {
		return "com.example." + sanitizeSegment(appName, false)
	}

	host := strings.Split(parts[0], ".")
	for i, j := 0, len(host)-1; i < j; i, j = i+1, j-1 {
		host[i], host[j] = host[j], host[i]
	}

	segments := host
	for _, p := range parts[1:] {
		if p != "" {
			segments = append(segments, p)
		}
	}
	for i, segment := range segments {
		segments[i] = sanitizeSegment(segment, i > 0)
	}
	return strings.Join(segments, ".")
}

// sanitizeSegment lowercases segment and keeps only letters and digits.
func sanitizeSegment(segment string, allowLeadingDigit bool) string {
	var out []rune
	for _, r := range strings.TrimSpace(segment) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		}
	}
	if len(out) == 0 {
		out = []rune("app")
	}
	if !allowLeadingDigit && out[0] >= '0' && out[0] <= '9' {
		out = append([]rune{'a'}, out...)
	}
	return string(out)
}

// validateScheme checks RFC 3986 scheme syntax: a letter followed by
// letters, digits, '+', '-' or '.'.
func validateScheme(scheme string) error {
	if scheme == "" {
		return fmt.Errorf("oauth.callback_scheme is empty")
	}
	for i, r := range scheme {
		letter := r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
		if i == 0 && !letter {
			return fmt.Errorf("oauth.callback_scheme must start with a letter (got %q)", scheme)
		}
		if !letter && !(r >= '0' && r <= '9') && r != '+' && r != '-' && r != '.' {
			return fmt.Errorf("oauth.callback_scheme contains invalid character %q in %q", r, scheme)
		}
	}
	return nil
}
