package oauth

import (
	"slices"
	"sync"

	"github.com/rs/zerolog"

	plugerrors "github.com/go-drift/drift-oauth/pkg/errors"
)

// KnownBrowserPackages are the browser-tab providers preferred, in order,
// when neither a single provider nor the default handler decides.
var KnownBrowserPackages = []string{
	"com.android.chrome",
	"com.chrome.beta",
	"com.chrome.dev",
	"com.google.android.apps.chrome",
}

// ProviderInfo describes the browser-tab providers installed on the device.
type ProviderInfo struct {
	Supported           []string
	DefaultHandler      string
	SpecializedHandlers bool
}

// ProviderQuery reports the installed browser-tab providers.
type ProviderQuery interface {
	QueryProviders() (ProviderInfo, error)
}

// SelectProvider picks the package that should host the browser tab.
// An empty result means no preference.
//
//  1. a single supporting package wins;
//  2. otherwise the default URL handler, if it supports tabs and no app
//     claims specific pages;
//  3. otherwise the first supporting entry of KnownBrowserPackages.
func SelectProvider(info ProviderInfo) string {
	supported := make([]string, 0, len(info.Supported))
	for _, pkg := range info.Supported {
		if pkg != "" && !slices.Contains(supported, pkg) {
			supported = append(supported, pkg)
		}
	}

	switch len(supported) {
	case 0:
		return ""
	case 1:
		return supported[0]
	}

	if info.DefaultHandler != "" && !info.SpecializedHandlers &&
		slices.Contains(supported, info.DefaultHandler) {
		return info.DefaultHandler
	}

	for _, pkg := range KnownBrowserPackages {
		if slices.Contains(supported, pkg) {
			return pkg
		}
	}
	return ""
}

// providerResolver queries once and caches the selection.
type providerResolver struct {
	query  ProviderQuery
	logger *zerolog.Logger

	once     sync.Once
	selected string
}

func (r *providerResolver) resolve() string {
	if r.query == nil {
		return ""
	}
	r.once.Do(func() {
		info, err := r.query.QueryProviders()
		if err != nil {
			plugerrors.Report(&plugerrors.PluginError{
				Op:   "oauth.resolveProvider",
				Kind: plugerrors.KindPlatform,
				Err:  err,
			})
			return
		}
		r.selected = SelectProvider(info)
		r.logger.Debug().
			Str("provider", r.selected).
			Int("candidates", len(info.Supported)).
			Msg("browser tab provider resolved")
	})
	return r.selected
}
