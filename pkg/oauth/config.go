package oauth

import (
	"net/url"
	"strings"
)

// DefaultCallbackHost is the callback host recognized when none is configured.
const DefaultCallbackHost = "oauth_callback"

// Config holds the plugin's runtime settings.
type Config struct {
	// CallbackHost is the host component identifying a callback URI.
	CallbackHost string `yaml:"callback_host,omitempty"`

	// CallbackScheme, when set, must also match the callback URI's scheme.
	// Matching the host alone mirrors Android intent filters, which route
	// only the app's own schemes to it.
	CallbackScheme string `yaml:"callback_scheme,omitempty"`
}

// DefaultConfig returns a Config recognizing DefaultCallbackHost on any scheme.
func DefaultConfig() Config {
	return Config{CallbackHost: DefaultCallbackHost}
}

// WithDefaults returns c with empty fields filled in.
func (c Config) WithDefaults() Config {
	c.CallbackHost = strings.TrimSpace(c.CallbackHost)
	c.CallbackScheme = strings.TrimSpace(c.CallbackScheme)
	if c.CallbackHost == "" {
		c.CallbackHost = DefaultCallbackHost
	}
	return c
}

// Matches reports whether u is a callback URI for this configuration.
// Host and scheme comparisons ignore case.
func (c Config) Matches(u *url.URL) bool {
	if u == nil || !strings.EqualFold(u.Hostname(), c.CallbackHost) {
		return false
	}
	return c.CallbackScheme == "" || strings.EqualFold(u.Scheme, c.CallbackScheme)
}

// RedirectURI returns the redirect URI an authorization request should name,
// e.g. "com.example.app://oauth_callback". It is empty without a scheme.
func (c Config) RedirectURI() string {
	if c.CallbackScheme == "" {
		return ""
	}
	return c.CallbackScheme + "://" + c.CallbackHost
}
