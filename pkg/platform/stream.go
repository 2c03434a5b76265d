package platform

import plugerrors "github.com/go-drift/drift-oauth/pkg/errors"

// Stream provides a typed, multi-subscriber view over an EventChannel.
// Handlers run on the UI thread when a dispatcher is registered.
type Stream[T any] struct {
	eventChannel *EventChannel
	parser       func(data any) (T, error)
}

// NewStream creates a Stream wrapping an EventChannel.
// The parser converts raw event data to the typed value.
func NewStream[T any](channel *EventChannel, parser func(data any) (T, error)) *Stream[T] {
	return &Stream[T]{
		eventChannel: channel,
		parser:       parser,
	}
}

// Listen subscribes to events and returns an unsubscribe function.
// Parse failures and stream errors are reported via errors.Report and
// never reach the handler.
func (s *Stream[T]) Listen(handler func(T)) (unsubscribe func()) {
	name := s.eventChannel.Name()
	sub := s.eventChannel.Listen(EventHandler{
		OnEvent: func(data any) {
			val, err := s.parser(data)
			if err != nil {
				plugerrors.Report(&plugerrors.PluginError{
					Op:      "stream.parse",
					Kind:    plugerrors.KindParsing,
					Channel: name,
					Err:     err,
				})
				return
			}
			runOnUI(func() { handler(val) })
		},
		OnError: func(err error) {
			plugerrors.Report(&plugerrors.PluginError{
				Op:      "stream.error",
				Kind:    plugerrors.KindPlatform,
				Channel: name,
				Err:     err,
			})
		},
	})
	return sub.Cancel
}
