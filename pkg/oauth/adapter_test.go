package oauth

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/drift-oauth/internal/jsprobe"
	plugerrors "github.com/go-drift/drift-oauth/pkg/errors"
)

const testEndpoint = "https://auth.example.com/authorize?client_id=abc"

func newTestAdapter(cfg Config) (*Adapter, *fakeLauncher, *fakeScripts) {
	l := &fakeLauncher{}
	s := &fakeScripts{}
	return NewAdapter(cfg, l, s), l, s
}

// received decodes every injected script back into the parameters the page
// would see.
func received(t *testing.T, s *fakeScripts) []map[string]string {
	t.Helper()
	var out []map[string]string
	for _, script := range s.all() {
		params, err := jsprobe.Receive(script, MessagePrefix)
		if err != nil {
			t.Fatalf("decode script %q: %v", script, err)
		}
		out = append(out, params)
	}
	return out
}

func TestBeginFlowLaunches(t *testing.T) {
	a, l, _ := newTestAdapter(DefaultConfig())
	r := &recordingResponder{}

	if err := a.BeginFlow(testEndpoint, r); err != nil {
		t.Fatalf("BeginFlow: %v", err)
	}

	if diff := cmp.Diff([]launch{{url: testEndpoint}}, l.launches, cmp.AllowUnexported(launch{})); diff != "" {
		t.Errorf("launches mismatch (-want +got):\n%s", diff)
	}
	if !a.Awaiting() {
		t.Error("adapter should await the callback")
	}
	if len(r.all()) != 0 {
		t.Errorf("no result expected before the surface closes, got %v", r.all())
	}
}

func TestBeginFlowRejectsInvalidEndpoint(t *testing.T) {
	for _, endpoint := range []string{"", "not a url", "auth.example.com/path", "http://[::1"} {
		t.Run(endpoint, func(t *testing.T) {
			a, l, _ := newTestAdapter(DefaultConfig())
			err := a.BeginFlow(endpoint, &recordingResponder{})
			if !errors.Is(err, ErrInvalidEndpoint) {
				t.Fatalf("BeginFlow(%q) error = %v, want ErrInvalidEndpoint", endpoint, err)
			}
			if len(l.launches) != 0 {
				t.Error("nothing should be launched")
			}
			if a.Awaiting() {
				t.Error("adapter should stay idle")
			}
		})
	}
}

func TestBeginFlowLaunchError(t *testing.T) {
	var funcResults []Result
	tests := []struct {
		name      string
		responder Responder
		results   func() []Result
	}{
		{"recording responder", &recordingResponder{}, nil},
		{"func responder", ResponderFunc(func(r Result) { funcResults = append(funcResults, r) }), func() []Result { return funcResults }},
		{"nil responder", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, l, _ := newTestAdapter(DefaultConfig())
			l.err = errBoom

			err := a.BeginFlow(testEndpoint, tt.responder)
			if !errors.Is(err, errBoom) {
				t.Fatalf("BeginFlow error = %v, want wrapped launch error", err)
			}
			if a.Awaiting() {
				t.Error("failed launch should leave the adapter idle")
			}

			a.OnForegroundRegained()
			var got []Result
			switch {
			case tt.results != nil:
				got = tt.results()
			case tt.responder != nil:
				got = tt.responder.(*recordingResponder).all()
			}
			if len(got) != 0 {
				t.Errorf("failed flow must not get a closed signal, got %v", got)
			}
		})
	}
}

func TestFailedRelaunchWithFuncResponder(t *testing.T) {
	a, l, _ := newTestAdapter(DefaultConfig())
	first := ResponderFunc(func(Result) {})
	if err := a.BeginFlow(testEndpoint, first); err != nil {
		t.Fatalf("BeginFlow: %v", err)
	}

	l.err = errBoom
	if err := a.BeginFlow(testEndpoint, first); err == nil {
		t.Fatal("expected launch error")
	}
	if a.Awaiting() {
		t.Error("failed relaunch should leave the adapter idle")
	}
}

func TestClosedSignalExactlyOnce(t *testing.T) {
	a, _, _ := newTestAdapter(DefaultConfig())
	r := &recordingResponder{}
	if err := a.BeginFlow(testEndpoint, r); err != nil {
		t.Fatalf("BeginFlow: %v", err)
	}

	a.OnForegroundRegained()
	a.OnForegroundRegained()

	if diff := cmp.Diff([]Result{{Status: StatusOK}}, r.all()); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
	if a.Awaiting() {
		t.Error("adapter should be idle after the closed signal")
	}
}

func TestForegroundWhileIdleIsNoop(t *testing.T) {
	a, l, s := newTestAdapter(DefaultConfig())
	a.OnForegroundRegained()
	if len(l.launches) != 0 || l.closes != 0 || len(s.all()) != 0 {
		t.Error("idle foreground event should have no effect")
	}
}

func TestSupersededFlowGetsClosedSignal(t *testing.T) {
	a, l, _ := newTestAdapter(DefaultConfig())
	first := &recordingResponder{}
	second := &recordingResponder{}

	if err := a.BeginFlow(testEndpoint, first); err != nil {
		t.Fatalf("BeginFlow: %v", err)
	}
	if err := a.BeginFlow("https://auth.example.com/other", second); err != nil {
		t.Fatalf("BeginFlow: %v", err)
	}

	if diff := cmp.Diff([]Result{{Status: StatusOK}}, first.all()); diff != "" {
		t.Errorf("first responder (-want +got):\n%s", diff)
	}
	if len(second.all()) != 0 {
		t.Errorf("second responder should still be waiting, got %v", second.all())
	}

	a.OnForegroundRegained()
	if len(first.all()) != 1 || len(second.all()) != 1 {
		t.Errorf("each flow gets one closed signal: first=%v second=%v", first.all(), second.all())
	}
	if len(l.launches) != 2 {
		t.Errorf("launches = %d, want 2", len(l.launches))
	}
}

func TestCallbackDeliveredWhenReady(t *testing.T) {
	a, l, s := newTestAdapter(DefaultConfig())
	a.OnContentReady()
	if err := a.BeginFlow(testEndpoint, &recordingResponder{}); err != nil {
		t.Fatalf("BeginFlow: %v", err)
	}

	const uri = "myapp://oauth_callback?code=abc123#state=xyz&code=override"
	if !a.HandleCallbackURI(uri) {
		t.Fatal("callback should be recognized")
	}

	want := []map[string]string{{
		CallbackURLKey: uri,
		"state":        "xyz",
		"code":         "abc123",
	}}
	if diff := cmp.Diff(want, received(t, s)); diff != "" {
		t.Errorf("delivered params (-want +got):\n%s", diff)
	}
	if l.closes != 1 {
		t.Errorf("surface closes = %d, want 1", l.closes)
	}
}

func TestDeliveryScriptShape(t *testing.T) {
	a, _, s := newTestAdapter(DefaultConfig())
	a.OnContentReady()
	a.HandleCallbackURI("app://oauth_callback?code=it's")

	scripts := s.all()
	if len(scripts) != 1 {
		t.Fatalf("scripts = %d, want 1", len(scripts))
	}
	want := `window.dispatchEvent(new MessageEvent('message', { data: 'oauth::{"code":"it\'s","oauth_callback_url":"app://oauth_callback?code=it\'s"}' }));`
	if scripts[0] != want {
		t.Errorf("script =\n%s\nwant\n%s", scripts[0], want)
	}
}

func TestCallbackBufferedUntilReady(t *testing.T) {
	a, _, s := newTestAdapter(DefaultConfig())

	a.HandleCallbackURI("app://oauth_callback?code=first")
	a.HandleCallbackURI("app://oauth_callback?code=second")
	if len(s.all()) != 0 {
		t.Fatalf("nothing should be delivered before the content is ready, got %v", s.all())
	}

	a.OnContentReady()
	got := received(t, s)
	if len(got) != 1 {
		t.Fatalf("deliveries = %d, want exactly the latest callback", len(got))
	}
	if got[0]["code"] != "second" {
		t.Errorf("delivered code = %q, want second", got[0]["code"])
	}

	// The buffer is cleared once flushed.
	a.OnContentReady()
	if len(s.all()) != 1 {
		t.Errorf("buffer flushed twice: %v", s.all())
	}
}

func TestReadinessIsSticky(t *testing.T) {
	a, _, s := newTestAdapter(DefaultConfig())
	a.OnContentReady()

	a.HandleCallbackURI("app://oauth_callback?n=1")
	a.HandleCallbackURI("app://oauth_callback?n=2")

	got := received(t, s)
	if len(got) != 2 || got[0]["n"] != "1" || got[1]["n"] != "2" {
		t.Errorf("expected both callbacks delivered in order, got %v", got)
	}
}

func TestContentLoadingBuffersAgain(t *testing.T) {
	a, _, s := newTestAdapter(DefaultConfig())
	a.OnContentReady()
	a.OnContentLoading()

	a.HandleCallbackURI("app://oauth_callback?code=x")
	if len(s.all()) != 0 {
		t.Fatal("callback should be buffered while a page loads")
	}
	a.OnContentReady()
	if len(s.all()) != 1 {
		t.Errorf("buffered callback not flushed, scripts = %v", s.all())
	}
}

func TestColdStartCallbackWhileIdle(t *testing.T) {
	a, l, s := newTestAdapter(DefaultConfig())

	if !a.HandleCallbackURI("app://oauth_callback?code=cold") {
		t.Fatal("callback should be recognized while idle")
	}
	if l.closes != 0 {
		t.Error("no surface to close without an active flow")
	}

	a.OnContentReady()
	got := received(t, s)
	if len(got) != 1 || got[0]["code"] != "cold" {
		t.Errorf("delivered = %v", got)
	}
}

func TestCallbackWithBarePercentInFragment(t *testing.T) {
	a, _, s := newTestAdapter(DefaultConfig())
	a.OnContentReady()

	const uri = "app://oauth_callback?code=abc#state=50%&token=t"
	if !a.HandleCallbackURI(uri) {
		t.Fatal("callback with an undecodable fragment should still be recognized")
	}
	want := []map[string]string{{
		CallbackURLKey: uri,
		"code":         "abc",
		"state":        "50%",
		"token":        "t",
	}}
	if diff := cmp.Diff(want, received(t, s)); diff != "" {
		t.Errorf("delivered params (-want +got):\n%s", diff)
	}
}

func TestIgnoredURIs(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		uri  string
	}{
		{"other host", DefaultConfig(), "app://somewhere_else?code=1"},
		{"no host", DefaultConfig(), "mailto:someone@example.com"},
		{"unparseable", DefaultConfig(), "app://oauth_callback/%zz"},
		{"scheme mismatch", Config{CallbackScheme: "com.example.app"}, "other://oauth_callback?code=1"},
		{"custom host", Config{CallbackHost: "signin"}, "app://oauth_callback?code=1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, l, s := newTestAdapter(tt.cfg)
			a.OnContentReady()
			if err := a.BeginFlow(testEndpoint, &recordingResponder{}); err != nil {
				t.Fatalf("BeginFlow: %v", err)
			}

			if a.HandleCallbackURI(tt.uri) {
				t.Errorf("HandleCallbackURI(%q) = true, want false", tt.uri)
			}
			if len(s.all()) != 0 || l.closes != 0 {
				t.Error("ignored URI should have no side effects")
			}
			if !a.Awaiting() {
				t.Error("ignored URI must not change flow state")
			}
		})
	}
}

func TestMatchingIgnoresCase(t *testing.T) {
	a, _, s := newTestAdapter(Config{CallbackScheme: "com.example.app"})
	a.OnContentReady()
	if !a.HandleCallbackURI("COM.Example.App://OAUTH_CALLBACK?code=1") {
		t.Fatal("scheme and host should match regardless of case")
	}
	if len(s.all()) != 1 {
		t.Errorf("scripts = %d, want 1", len(s.all()))
	}
}

func TestCallbackSerializationFailure(t *testing.T) {
	reported := captureReports(t)
	a, _, s := newTestAdapter(DefaultConfig())
	a.marshal = func(any) ([]byte, error) { return nil, errBoom }
	a.OnContentReady()

	if !a.HandleCallbackURI("app://oauth_callback?code=1") {
		t.Error("URI was a callback even though it could not be delivered")
	}
	if len(s.all()) != 0 {
		t.Error("nothing should be delivered")
	}
	if len(*reported) != 1 {
		t.Fatalf("reports = %d, want 1", len(*reported))
	}
	got := (*reported)[0]
	if got.Kind != plugerrors.KindSerialization || !strings.Contains(got.Error(), "JSON serialization failed") {
		t.Errorf("unexpected report: %v", got)
	}
}

func TestDeliveryErrorReported(t *testing.T) {
	reported := captureReports(t)
	a, _, s := newTestAdapter(DefaultConfig())
	s.err = errBoom
	a.OnContentReady()

	a.HandleCallbackURI("app://oauth_callback?code=1")

	if len(*reported) != 1 || !errors.Is((*reported)[0], errBoom) {
		t.Errorf("expected the evaluation error to be reported, got %v", *reported)
	}
	if len(s.all()) != 1 {
		t.Errorf("evaluation should not be retried, attempts = %d", len(s.all()))
	}
}

func TestNilResponder(t *testing.T) {
	a, _, _ := newTestAdapter(DefaultConfig())
	if err := a.BeginFlow(testEndpoint, nil); err != nil {
		t.Fatalf("BeginFlow: %v", err)
	}
	a.OnForegroundRegained()
	if a.Awaiting() {
		t.Error("adapter should be idle")
	}
}
