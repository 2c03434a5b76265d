package oauth

import (
	"net/url"
	"sort"
	"strings"
)

// CallbackURLKey is the Params key holding the full callback URI.
const CallbackURLKey = "oauth_callback_url"

// Params holds the parameters collected from a callback URI.
type Params map[string]string

// Keys returns the parameter names in sorted order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseFragment splits a URI fragment into key/value pairs.
//
// The fragment is split on "&" and each piece on "="; only pieces that yield
// exactly two non-empty parts are kept. Values are not decoded. When a key
// repeats, the last occurrence wins. ParseFragment never fails: malformed
// pieces are skipped.
func ParseFragment(fragment string) Params {
	params := make(Params)
	if fragment == "" {
		return params
	}
	for _, piece := range strings.Split(fragment, "&") {
		kv := strings.Split(piece, "=")
		if len(kv) != 2 || kv[0] == "" || kv[1] == "" {
			continue
		}
		params[kv[0]] = kv[1]
	}
	return params
}

// ParseCallbackURI parses the part of raw before the first "#". The fragment
// is left to ParseCallback, so a fragment that is not valid URI syntax (such
// as a bare "%") does not reject the callback.
func ParseCallbackURI(raw string) (*url.URL, error) {
	base, _, _ := strings.Cut(raw, "#")
	return url.Parse(base)
}

// ParseCallback collects the parameters of a callback URI.
//
// raw is recorded under CallbackURLKey first. Fragment pairs, read from the
// raw text after the first "#", are added next, then the query parameters
// of u, each overwriting earlier entries of the same name. Fragment values
// are kept as-is. Query values are decoded; for repeated query keys the
// first value is used.
func ParseCallback(raw string, u *url.URL) Params {
	params := Params{CallbackURLKey: raw}
	_, fragment, _ := strings.Cut(raw, "#")
	for key, value := range ParseFragment(fragment) {
		params[key] = value
	}
	for key, values := range u.Query() {
		if len(values) == 0 {
			continue
		}
		params[key] = values[0]
	}
	return params
}
