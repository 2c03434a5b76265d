package oauth

import (
	"sync"

	plugerrors "github.com/go-drift/drift-oauth/pkg/errors"
	"github.com/go-drift/drift-oauth/pkg/platform"
)

// CommandChannel is the method channel carrying commands from web content
// and results back to it.
const CommandChannel = "drift/oauth"

// Plugin binds an Adapter to the platform services: commands arrive on
// CommandChannel, callback links and lifecycle changes drive the flow, and
// messages are evaluated in the web content.
type Plugin struct {
	adapter *Adapter
	channel *platform.MethodChannel

	mu       sync.Mutex
	attached bool
	unsubs   []func()
}

// NewPlugin creates the plugin and registers CommandChannel. Call Attach to
// start receiving platform events.
func NewPlugin(cfg Config, opts ...Option) *Plugin {
	tabs := browserTabs{}
	opts = append([]Option{WithProviderQuery(tabs)}, opts...)
	p := &Plugin{
		adapter: NewAdapter(cfg, tabs, webContent{}, opts...),
		channel: platform.NewMethodChannel(CommandChannel),
	}
	p.channel.SetHandler(p.handleCall)
	return p
}

// Adapter returns the underlying flow adapter.
func (p *Plugin) Adapter() *Adapter {
	return p.adapter
}

// Attach subscribes to callback links, lifecycle changes and page events,
// then handles the link the app was launched with, if any. An error from
// fetching the launch link is returned; the subscriptions stay active.
// Attaching twice is a no-op.
func (p *Plugin) Attach() error {
	p.mu.Lock()
	if p.attached {
		p.mu.Unlock()
		return nil
	}
	p.attached = true
	p.unsubs = []func(){
		platform.CallbackLinks.Listen(p.handleLink),
		platform.Lifecycle.AddHandler(func(state platform.LifecycleState) {
			if state == platform.LifecycleStateResumed {
				p.adapter.OnForegroundRegained()
			}
		}),
		platform.WebContent.Listen(func(ev platform.PageEvent) {
			switch ev.Event {
			case platform.PageEventStarted:
				p.adapter.OnContentLoading()
			case platform.PageEventFinished:
				p.adapter.OnContentReady()
			}
		}),
	}
	p.mu.Unlock()

	link, err := platform.CallbackLinks.Initial()
	if err != nil {
		return err
	}
	if link != nil {
		p.handleLink(*link)
	}
	return nil
}

// Detach removes the subscriptions made by Attach.
func (p *Plugin) Detach() {
	p.mu.Lock()
	unsubs := p.unsubs
	p.unsubs = nil
	p.attached = false
	p.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}

func (p *Plugin) handleLink(link platform.CallbackLink) {
	if !link.IsView() {
		return
	}
	p.adapter.HandleCallbackURI(link.URL)
}

// handleCall runs a command. Its own result is returned as the method
// result; anything else is pushed with the "result" method.
//
// Arguments are either a list ([url]) or a map with "url" and "callbackId".
func (p *Plugin) handleCall(method string, args any) (any, error) {
	callbackID, list := commandArgs(args)
	r := &channelResponder{channel: p.channel, callbackID: callbackID, inCall: true}

	p.adapter.Execute(method, list, r)

	r.mu.Lock()
	r.inCall = false
	held := r.held
	r.held = nil
	r.mu.Unlock()

	if len(held) == 0 {
		return resultPayload(callbackID, Result{Status: StatusOK}), nil
	}
	// Execute sends its own result last. Anything before it, such as a
	// closed signal raised while the tab was launching, goes out after the
	// method result.
	ack, early := held[len(held)-1], held[:len(held)-1]
	if len(early) > 0 {
		flush := func() {
			for _, res := range early {
				r.push(res)
			}
		}
		if !platform.Dispatch(flush) {
			flush()
		}
	}
	return resultPayload(callbackID, ack), nil
}

func commandArgs(args any) (callbackID string, list []any) {
	switch v := args.(type) {
	case []any:
		return "", v
	case map[string]any:
		callbackID, _ = v["callbackId"].(string)
		if inner, ok := v["args"].([]any); ok {
			return callbackID, inner
		}
		if url, ok := v["url"]; ok {
			return callbackID, []any{url}
		}
		return callbackID, nil
	default:
		return "", nil
	}
}

func resultPayload(callbackID string, r Result) map[string]any {
	payload := map[string]any{
		"status":       r.Status.String(),
		"keepCallback": r.KeepCallback,
	}
	if callbackID != "" {
		payload["callbackId"] = callbackID
	}
	if r.Message != "" {
		payload["message"] = r.Message
	}
	return payload
}

// channelResponder holds results sent while its method call is running and
// pushes every later result to native.
type channelResponder struct {
	channel    *platform.MethodChannel
	callbackID string

	mu     sync.Mutex
	inCall bool
	held   []Result
}

func (r *channelResponder) Send(res Result) {
	r.mu.Lock()
	if r.inCall {
		r.held = append(r.held, res)
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	r.push(res)
}

func (r *channelResponder) push(res Result) {
	if _, err := r.channel.Invoke("result", resultPayload(r.callbackID, res)); err != nil {
		plugerrors.Report(&plugerrors.PluginError{
			Op:      "oauth.sendResult",
			Kind:    plugerrors.KindPlatform,
			Channel: CommandChannel,
			Err:     err,
		})
	}
}

type browserTabs struct{}

func (browserTabs) Launch(url, provider string) error {
	return platform.BrowserTabs.Launch(url, provider)
}

func (browserTabs) Close() error {
	return platform.BrowserTabs.Close()
}

func (browserTabs) QueryProviders() (ProviderInfo, error) {
	info, err := platform.BrowserTabs.QueryProviders()
	if err != nil {
		return ProviderInfo{}, err
	}
	return ProviderInfo{
		Supported:           info.Supported,
		DefaultHandler:      info.DefaultHandler,
		SpecializedHandlers: info.SpecializedHandlers,
	}, nil
}

type webContent struct{}

func (webContent) EvaluateScript(script string) error {
	return platform.WebContent.EvaluateJavascript(script)
}
