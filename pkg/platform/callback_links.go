package platform

import (
	"fmt"
	"time"
)

// ActionView is the action native code reports for a plain "open this URI"
// navigation, the only kind that can carry an authorization redirect.
const ActionView = "view"

// CallbackLink describes an inbound navigation handed to the app by the OS,
// such as a custom-scheme redirect from a browser tab.
type CallbackLink struct {
	URL       string
	Action    string
	Source    string
	Timestamp time.Time
}

// IsView reports whether the link is a view navigation. Links without an
// action are treated as views.
func (l CallbackLink) IsView() bool {
	return l.Action == "" || l.Action == ActionView
}

// CallbackLinks delivers inbound navigations to Go.
var CallbackLinks *CallbackLinkService

func init() {
	channel := NewMethodChannel("drift/oauth/links")
	events := NewEventChannel("drift/oauth/links/events")
	CallbackLinks = &CallbackLinkService{
		channel: channel,
		stream:  NewStream(events, parseCallbackLink),
	}
}

// CallbackLinkService exposes the launch link and the stream of later links.
type CallbackLinkService struct {
	channel *MethodChannel
	stream  *Stream[CallbackLink]
}

// Initial returns the link the app was launched with, or nil when it was
// launched normally.
func (s *CallbackLinkService) Initial() (*CallbackLink, error) {
	result, err := s.channel.Invoke("getInitial", nil)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	link, err := parseCallbackLink(result)
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// Listen subscribes to links delivered while the app is running.
func (s *CallbackLinkService) Listen(handler func(CallbackLink)) (unsubscribe func()) {
	return s.stream.Listen(handler)
}

func parseCallbackLink(data any) (CallbackLink, error) {
	m := parseMap(data)
	if m == nil {
		return CallbackLink{}, fmt.Errorf("%w: callback link: got %T", ErrInvalidArguments, data)
	}
	url := parseString(m["url"])
	if url == "" {
		return CallbackLink{}, fmt.Errorf("%w: callback link without url", ErrInvalidArguments)
	}
	return CallbackLink{
		URL:       url,
		Action:    parseString(m["action"]),
		Source:    parseString(m["source"]),
		Timestamp: parseTime(m["timestamp"]),
	}, nil
}
