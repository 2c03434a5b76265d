package platform

import (
	"fmt"
	"net/url"
)

const browserTabsChannel = "drift/oauth/browser_tabs"

// BrowserTabs opens pages in an in-app browser surface (Custom Tabs on
// Android, an authentication session on iOS).
var BrowserTabs = &BrowserTabService{
	channel: NewMethodChannel(browserTabsChannel),
}

// BrowserTabService manages the external browser surface.
type BrowserTabService struct {
	channel *MethodChannel
}

// ProviderInfo is the native snapshot used to choose a browser-tab provider.
type ProviderInfo struct {
	// Supported lists installed packages implementing the browser-tab service.
	Supported []string
	// DefaultHandler is the package that opens http URLs by default, if any.
	DefaultHandler string
	// SpecializedHandlers is true when some app claims specific web pages
	// (a URL handler with both an authority and a path).
	SpecializedHandlers bool
}

// Launch opens rawURL in a browser tab. A non-empty provider names the
// package that should host the tab; otherwise native picks one.
func (b *BrowserTabService) Launch(rawURL, provider string) error {
	if err := validateURL(rawURL); err != nil {
		return err
	}
	args := map[string]any{"url": rawURL}
	if provider != "" {
		args["package"] = provider
	}
	_, err := b.channel.Invoke("launch", args)
	return err
}

// Close dismisses the browser surface if the platform allows it.
// Android cannot close a Custom Tab from the app; native treats it as a no-op.
func (b *BrowserTabService) Close() error {
	_, err := b.channel.Invoke("close", nil)
	return err
}

// QueryProviders asks native which installed apps can host a browser tab.
func (b *BrowserTabService) QueryProviders() (ProviderInfo, error) {
	result, err := b.channel.Invoke("queryProviders", nil)
	if err != nil {
		return ProviderInfo{}, err
	}
	m := parseMap(result)
	if m == nil {
		return ProviderInfo{}, fmt.Errorf("browser_tabs: unexpected response from queryProviders: %v", result)
	}
	return ProviderInfo{
		Supported:           parseStringSlice(m["providers"]),
		DefaultHandler:      parseString(m["defaultHandler"]),
		SpecializedHandlers: parseBool(m["specializedHandlers"]),
	}, nil
}

func validateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("browser_tabs: empty URL")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("browser_tabs: invalid URL: %w", err)
	}
	if u.Scheme == "" {
		return fmt.Errorf("browser_tabs: URL missing scheme: %q", rawURL)
	}
	return nil
}
