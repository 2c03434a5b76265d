package oauth

import (
	"errors"
	"sync"
	"testing"

	plugerrors "github.com/go-drift/drift-oauth/pkg/errors"
)

type launch struct {
	url      string
	provider string
}

type fakeLauncher struct {
	mu       sync.Mutex
	launches []launch
	closes   int
	err      error
}

func (f *fakeLauncher) Launch(url, provider string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.launches = append(f.launches, launch{url, provider})
	return nil
}

func (f *fakeLauncher) Close() error {
	f.mu.Lock()
	f.closes++
	f.mu.Unlock()
	return nil
}

type fakeScripts struct {
	mu      sync.Mutex
	scripts []string
	err     error
}

func (f *fakeScripts) EvaluateScript(script string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts = append(f.scripts, script)
	return f.err
}

func (f *fakeScripts) all() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.scripts...)
}

type fakeQuery struct {
	info  ProviderInfo
	err   error
	calls int
}

func (f *fakeQuery) QueryProviders() (ProviderInfo, error) {
	f.calls++
	return f.info, f.err
}

type recordingResponder struct {
	mu      sync.Mutex
	results []Result
}

func (r *recordingResponder) Send(res Result) {
	r.mu.Lock()
	r.results = append(r.results, res)
	r.mu.Unlock()
}

func (r *recordingResponder) all() []Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Result(nil), r.results...)
}

// captureReports routes reported errors into a slice for the test's duration.
func captureReports(t *testing.T) *[]*plugerrors.PluginError {
	t.Helper()
	var reported []*plugerrors.PluginError
	var mu sync.Mutex
	plugerrors.SetHandler(reportHandler(func(err *plugerrors.PluginError) {
		mu.Lock()
		reported = append(reported, err)
		mu.Unlock()
	}))
	t.Cleanup(func() { plugerrors.SetHandler(nil) })
	return &reported
}

type reportHandler func(*plugerrors.PluginError)

func (h reportHandler) HandleError(err *plugerrors.PluginError) { h(err) }
func (h reportHandler) HandlePanic(*plugerrors.PanicError)      {}

var errBoom = errors.New("boom")
