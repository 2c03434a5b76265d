package platform

import "errors"

// Sentinel errors for platform operations.
var (
	// ErrClosed is returned when operating on a closed channel or stream.
	ErrClosed = errors.New("platform: channel closed")

	// ErrChannelNotRegistered is returned when an event is received for an
	// unregistered channel.
	ErrChannelNotRegistered = errors.New("platform: event channel not registered")
)
