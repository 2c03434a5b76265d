package platform

import (
	"sync"

	plugerrors "github.com/go-drift/drift-oauth/pkg/errors"
)

const lifecycleEventsChannel = "drift/lifecycle/events"

// Lifecycle reports the host application's foreground state.
var Lifecycle = &LifecycleService{
	channel: NewMethodChannel("drift/lifecycle"),
	events:  NewEventChannel(lifecycleEventsChannel),
	state:   LifecycleStateResumed,
}

// LifecycleState represents the current app lifecycle state.
type LifecycleState string

const (
	// LifecycleStateResumed indicates the app is visible and has focus.
	LifecycleStateResumed LifecycleState = "resumed"

	// LifecycleStateInactive indicates the app is visible but lost focus,
	// e.g. while a browser tab or system sheet is presented over it.
	LifecycleStateInactive LifecycleState = "inactive"

	// LifecycleStatePaused indicates the app is not visible but still running.
	LifecycleStatePaused LifecycleState = "paused"

	// LifecycleStateDetached indicates the app is still hosted but detached from any view.
	LifecycleStateDetached LifecycleState = "detached"
)

// LifecycleHandler is called when lifecycle state changes.
type LifecycleHandler func(state LifecycleState)

type lifecycleEntry struct {
	id int
	fn LifecycleHandler
}

// LifecycleService manages app lifecycle events.
type LifecycleService struct {
	channel  *MethodChannel
	events   *EventChannel
	mu       sync.RWMutex
	state    LifecycleState
	handlers []lifecycleEntry
	nextID   int
}

func init() {
	initLifecycleListeners()
	registerBuiltinInit(initLifecycleListeners)

	Lifecycle.channel.SetHandler(func(method string, args any) (any, error) {
		switch method {
		case "didChangeState":
			state, ok := parseLifecycleState(args)
			if !ok {
				return nil, ErrInvalidArguments
			}
			Lifecycle.updateState(state)
			return nil, nil
		default:
			return nil, ErrMethodNotFound
		}
	})
}

func initLifecycleListeners() {
	Lifecycle.events.Listen(EventHandler{
		OnEvent: func(data any) {
			state, ok := parseLifecycleState(data)
			if !ok {
				plugerrors.Report(&plugerrors.PluginError{
					Op:      "lifecycle.parseEvent",
					Kind:    plugerrors.KindParsing,
					Channel: lifecycleEventsChannel,
					Err: &plugerrors.ParseError{
						Channel:  lifecycleEventsChannel,
						DataType: "LifecycleState",
						Got:      data,
					},
				})
				return
			}
			Lifecycle.updateState(state)
		},
		OnError: func(err error) {
			plugerrors.Report(&plugerrors.PluginError{
				Op:      "lifecycle.streamError",
				Kind:    plugerrors.KindPlatform,
				Channel: lifecycleEventsChannel,
				Err:     err,
			})
		},
	})
}

func parseLifecycleState(data any) (LifecycleState, bool) {
	state := parseString(parseMap(data)["state"])
	if state == "" {
		return "", false
	}
	return LifecycleState(state), true
}

// State returns the current lifecycle state.
func (l *LifecycleService) State() LifecycleState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// IsResumed returns true if the app is in the resumed state.
func (l *LifecycleService) IsResumed() bool {
	return l.State() == LifecycleStateResumed
}

// AddHandler registers a handler called on every state change.
// Returns a function that removes the handler.
func (l *LifecycleService) AddHandler(handler LifecycleHandler) func() {
	l.mu.Lock()
	l.nextID++
	id := l.nextID
	l.handlers = append(l.handlers, lifecycleEntry{id: id, fn: handler})
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, e := range l.handlers {
			if e.id == id {
				l.handlers = append(l.handlers[:i], l.handlers[i+1:]...)
				return
			}
		}
	}
}

// updateState records the new state and notifies handlers on the UI thread.
// Repeated reports of the current state are ignored.
func (l *LifecycleService) updateState(newState LifecycleState) {
	l.mu.Lock()
	if l.state == newState {
		l.mu.Unlock()
		return
	}
	l.state = newState
	handlers := make([]LifecycleHandler, len(l.handlers))
	for i, e := range l.handlers {
		handlers[i] = e.fn
	}
	l.mu.Unlock()

	runOnUI(func() {
		for _, h := range handlers {
			h(newState)
		}
	})
}

func (l *LifecycleService) reset() {
	l.mu.Lock()
	l.state = LifecycleStateResumed
	l.handlers = nil
	l.mu.Unlock()
}
