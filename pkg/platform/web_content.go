package platform

import "fmt"

// Page event names reported on the web content event channel.
const (
	PageEventStarted  = "pageStarted"
	PageEventFinished = "pageFinished"
)

// PageEvent is a load notification from the embedded web content.
type PageEvent struct {
	Event string
	URL   string
}

// WebContent is the embedded web view hosting the application's pages.
var WebContent *WebContentService

func init() {
	WebContent = &WebContentService{
		channel: NewMethodChannel("drift/oauth/web_content"),
		stream:  NewStream(NewEventChannel("drift/oauth/web_content/events"), parsePageEvent),
	}
}

// WebContentService evaluates script in, and observes page loads of, the
// embedded web content.
type WebContentService struct {
	channel *MethodChannel
	stream  *Stream[PageEvent]
}

// EvaluateJavascript runs script in the content's global scope.
// Native does not report the script's value back.
func (w *WebContentService) EvaluateJavascript(script string) error {
	_, err := w.channel.Invoke("evaluateJavascript", map[string]any{
		"script": script,
	})
	return err
}

// Listen subscribes to every page event.
func (w *WebContentService) Listen(handler func(PageEvent)) (unsubscribe func()) {
	return w.stream.Listen(handler)
}

func parsePageEvent(data any) (PageEvent, error) {
	m := parseMap(data)
	if m == nil {
		return PageEvent{}, fmt.Errorf("%w: page event: got %T", ErrInvalidArguments, data)
	}
	ev := PageEvent{
		Event: parseString(m["event"]),
		URL:   parseString(m["url"]),
	}
	if ev.Event == "" {
		return PageEvent{}, fmt.Errorf("%w: page event without name", ErrInvalidArguments)
	}
	return ev, nil
}
