package oauth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/rs/zerolog"

	plugerrors "github.com/go-drift/drift-oauth/pkg/errors"
)

// ErrInvalidEndpoint is returned when the authorization endpoint is missing
// or is not an absolute URL.
var ErrInvalidEndpoint = errors.New("oauth: invalid authorization endpoint")

// Flow is the capability set a platform shim drives.
type Flow interface {
	// BeginFlow opens endpoint in a browser tab and records responder for
	// the flow-closed signal.
	BeginFlow(endpoint string, responder Responder) error
	// HandleCallbackURI processes an inbound navigation. It reports whether
	// the URI was an authorization callback.
	HandleCallbackURI(raw string) bool
	// OnContentReady signals that the web content finished loading.
	OnContentReady()
	// OnForegroundRegained signals that the app is in the foreground again.
	OnForegroundRegained()
}

// Launcher opens and dismisses the external browser surface.
type Launcher interface {
	// Launch opens url. An empty provider lets the platform choose.
	Launch(url, provider string) error
	// Close dismisses the surface where the platform allows it.
	Close() error
}

// ScriptEvaluator injects script into the web content. Evaluation is
// fire-and-forget.
type ScriptEvaluator interface {
	EvaluateScript(script string) error
}

type flowState int

const (
	stateIdle flowState = iota
	stateAwaitingCallback
)

func (s flowState) String() string {
	if s == stateAwaitingCallback {
		return "awaiting_callback"
	}
	return "idle"
}

// Adapter implements Flow.
//
// The flow is either idle or awaiting a callback for a recorded responder.
// Independently, a single-slot buffer holds the latest serialized callback
// until the content reports it is ready. Collaborators are never called with
// the lock held.
type Adapter struct {
	cfg       Config
	launcher  Launcher
	scripts   ScriptEvaluator
	providers *providerResolver
	logger    zerolog.Logger
	marshal   func(any) ([]byte, error)

	mu           sync.Mutex
	state        flowState
	responder    Responder
	flowID       uint64
	contentReady bool
	pending      string
	hasPending   bool
}

var _ Flow = (*Adapter)(nil)

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger used for flow diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Adapter) { a.logger = logger }
}

// WithProviderQuery enables browser-tab provider selection.
func WithProviderQuery(q ProviderQuery) Option {
	return func(a *Adapter) { a.providers.query = q }
}

// NewAdapter returns an idle Adapter. Without WithProviderQuery every launch
// leaves the provider choice to the platform.
func NewAdapter(cfg Config, launcher Launcher, scripts ScriptEvaluator, opts ...Option) *Adapter {
	a := &Adapter{
		cfg:       cfg.WithDefaults(),
		launcher:  launcher,
		scripts:   scripts,
		providers: &providerResolver{},
		logger:    zerolog.Nop(),
		marshal:   json.Marshal,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.providers.logger = &a.logger
	return a
}

// Config returns the effective configuration.
func (a *Adapter) Config() Config {
	return a.cfg
}

// BeginFlow validates endpoint, records responder and launches the browser
// tab. It returns once the launch request has been handed to the platform.
//
// A flow still awaiting its callback is superseded: its responder receives
// the closed signal before the new flow starts.
func (a *Adapter) BeginFlow(endpoint string, responder Responder) error {
	if err := validateEndpoint(endpoint); err != nil {
		return err
	}
	if responder == nil {
		responder = discardResponder
	}
	provider := a.providers.resolve()

	a.mu.Lock()
	prev := a.takeResponderLocked()
	a.flowID++
	id := a.flowID
	a.state = stateAwaitingCallback
	a.responder = responder
	a.mu.Unlock()

	if prev != nil {
		prev.Send(Result{Status: StatusOK})
	}

	if err := a.launcher.Launch(endpoint, provider); err != nil {
		// Responders may be funcs, so the flow is identified by id.
		a.mu.Lock()
		if a.flowID == id {
			a.takeResponderLocked()
		}
		a.mu.Unlock()
		return fmt.Errorf("oauth: launch browser tab: %w", err)
	}

	a.logger.Debug().Str("provider", provider).Msg("authorization flow started")
	return nil
}

func validateEndpoint(endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("%w: empty URL", ErrInvalidEndpoint)
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if u.Scheme == "" {
		return fmt.Errorf("%w: missing scheme in %q", ErrInvalidEndpoint, endpoint)
	}
	return nil
}

// HandleCallbackURI parses a callback URI and delivers its parameters, or
// buffers them until the content is ready. URIs whose host (and scheme, if
// configured) do not match are ignored and false is returned.
func (a *Adapter) HandleCallbackURI(raw string) bool {
	u, err := ParseCallbackURI(raw)
	if err != nil || !a.cfg.Matches(u) {
		return false
	}

	params := ParseCallback(raw, u)
	data, err := a.marshal(params)
	if err != nil {
		plugerrors.Report(&plugerrors.PluginError{
			Op:   "oauth.handleCallback",
			Kind: plugerrors.KindSerialization,
			Err:  fmt.Errorf("JSON serialization failed: %w", err),
		})
		return true
	}

	a.logger.Info().Strs("keys", params.Keys()).Msg("OAuth called back with parameters.")

	a.mu.Lock()
	awaiting := a.state == stateAwaitingCallback
	ready := a.contentReady
	if !ready {
		a.pending = string(data)
		a.hasPending = true
	}
	a.mu.Unlock()

	if awaiting {
		a.closeSurface()
	}
	if ready {
		a.deliver(string(data))
	} else {
		a.logger.Debug().Msg("content not ready, callback buffered")
	}
	return true
}

// OnContentReady marks the content ready and flushes a buffered callback.
func (a *Adapter) OnContentReady() {
	a.mu.Lock()
	a.contentReady = true
	payload, ok := a.pending, a.hasPending
	a.pending, a.hasPending = "", false
	a.mu.Unlock()

	if ok {
		a.deliver(payload)
	}
}

// OnContentLoading marks the content not ready, e.g. when a new page starts
// loading. Later callbacks are buffered until the next OnContentReady.
func (a *Adapter) OnContentLoading() {
	a.mu.Lock()
	a.contentReady = false
	a.mu.Unlock()
}

// OnForegroundRegained sends the closed signal to the awaiting responder,
// once, and returns the flow to idle. It does nothing when idle.
func (a *Adapter) OnForegroundRegained() {
	a.mu.Lock()
	r := a.takeResponderLocked()
	a.mu.Unlock()

	if r != nil {
		a.logger.Debug().Msg("browser surface closed")
		r.Send(Result{Status: StatusOK})
	}
}

// Awaiting reports whether a flow is waiting for its closed signal.
func (a *Adapter) Awaiting() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state == stateAwaitingCallback
}

// takeResponderLocked clears the awaiting state and returns its responder,
// or nil when idle.
func (a *Adapter) takeResponderLocked() Responder {
	if a.state != stateAwaitingCallback {
		return nil
	}
	r := a.responder
	a.state = stateIdle
	a.responder = nil
	return r
}

func (a *Adapter) closeSurface() {
	if err := a.launcher.Close(); err != nil {
		a.logger.Debug().Err(err).Msg("browser surface close failed")
	}
}

func (a *Adapter) deliver(payload string) {
	defer plugerrors.Recover("oauth.deliver")
	if err := a.scripts.EvaluateScript(MessageScript(payload)); err != nil {
		plugerrors.Report(&plugerrors.PluginError{
			Op:   "oauth.deliver",
			Kind: plugerrors.KindPlatform,
			Err:  err,
		})
	}
}
