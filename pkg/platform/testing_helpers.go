package platform

import "sync"

// noopBridge is a NativeBridge that accepts all calls without side effects.
type noopBridge struct{}

func (noopBridge) InvokeMethod(channel, method string, args []byte) ([]byte, error) {
	return DefaultCodec.Encode(nil)
}
func (noopBridge) StartEventStream(string) error { return nil }
func (noopBridge) StopEventStream(string) error  { return nil }

// SetupTestBridge installs a no-op native bridge and synchronous dispatch
// function for testing. The cleanup function should be testing.T.Cleanup or
// equivalent; it registers a teardown that calls ResetForTest.
//
//	platform.SetupTestBridge(t.Cleanup)
func SetupTestBridge(cleanup func(func())) {
	SetNativeBridge(noopBridge{})
	RegisterDispatch(func(cb func()) { cb() })
	cleanup(ResetForTest)
}

// RecordedCall is one method invocation seen by a RecordingBridge.
type RecordedCall struct {
	Channel string
	Method  string
	Args    any
}

// RecordingBridge is a NativeBridge for tests that records every call and
// answers with canned responses keyed by "channel/method".
type RecordingBridge struct {
	mu        sync.Mutex
	calls     []RecordedCall
	responses map[string]any
	errs      map[string]error
	hooks     map[string]func()
	streams   map[string]bool
}

// NewRecordingBridge returns an empty RecordingBridge.
func NewRecordingBridge() *RecordingBridge {
	return &RecordingBridge{
		responses: make(map[string]any),
		errs:      make(map[string]error),
		hooks:     make(map[string]func()),
		streams:   make(map[string]bool),
	}
}

// Respond sets the value returned for channel/method.
func (b *RecordingBridge) Respond(channel, method string, value any) {
	b.mu.Lock()
	b.responses[channel+"/"+method] = value
	b.mu.Unlock()
}

// Fail makes channel/method return err.
func (b *RecordingBridge) Fail(channel, method string, err error) {
	b.mu.Lock()
	b.errs[channel+"/"+method] = err
	b.mu.Unlock()
}

// OnInvoke runs fn each time channel/method is invoked, after the call is
// recorded and before it returns. It simulates native code that reacts
// synchronously, e.g. a lifecycle change while a browser tab opens.
func (b *RecordingBridge) OnInvoke(channel, method string, fn func()) {
	b.mu.Lock()
	b.hooks[channel+"/"+method] = fn
	b.mu.Unlock()
}

// Calls returns the recorded calls to channel/method, in order.
// An empty method matches every method of the channel.
func (b *RecordingBridge) Calls(channel, method string) []RecordedCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []RecordedCall
	for _, c := range b.calls {
		if c.Channel == channel && (method == "" || c.Method == method) {
			out = append(out, c)
		}
	}
	return out
}

// Streaming reports whether native was asked to stream events for channel.
func (b *RecordingBridge) Streaming(channel string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.streams[channel]
}

func (b *RecordingBridge) InvokeMethod(channel, method string, args []byte) ([]byte, error) {
	decoded, err := DefaultCodec.Decode(args)
	if err != nil {
		return nil, err
	}
	key := channel + "/" + method
	b.mu.Lock()
	b.calls = append(b.calls, RecordedCall{Channel: channel, Method: method, Args: decoded})
	resp, callErr, hook := b.responses[key], b.errs[key], b.hooks[key]
	b.mu.Unlock()
	if hook != nil {
		hook()
	}
	if callErr != nil {
		return nil, callErr
	}
	return DefaultCodec.Encode(resp)
}

func (b *RecordingBridge) StartEventStream(channel string) error {
	b.mu.Lock()
	b.streams[channel] = true
	b.mu.Unlock()
	return nil
}

func (b *RecordingBridge) StopEventStream(channel string) error {
	b.mu.Lock()
	b.streams[channel] = false
	b.mu.Unlock()
	return nil
}
