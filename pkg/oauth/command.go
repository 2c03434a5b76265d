package oauth

import (
	"errors"
	"fmt"
)

// ActionStartOAuth is the command that begins a flow.
const ActionStartOAuth = "startOAuth"

// ErrInvalidAction is the error for unknown commands.
var ErrInvalidAction = errors.New("oauth: invalid action")

// Execute runs a command from the web content.
//
// For ActionStartOAuth, args[0] must be the endpoint URL string. A result is
// always sent synchronously: an OK with KeepCallback set on acceptance, in
// which case the closed signal follows later on the same responder, or an
// error. Unknown actions get StatusInvalidAction. Execute reports whether the
// action was accepted.
func (a *Adapter) Execute(action string, args []any, responder Responder) bool {
	if responder == nil {
		responder = discardResponder
	}

	switch action {
	case ActionStartOAuth:
		endpoint, ok := stringArg(args, 0)
		if !ok {
			responder.Send(Result{
				Status:  StatusError,
				Message: fmt.Errorf("%w: missing endpoint argument", ErrInvalidEndpoint).Error(),
			})
			return false
		}
		if err := a.BeginFlow(endpoint, responder); err != nil {
			responder.Send(Result{Status: StatusError, Message: err.Error()})
			return false
		}
		responder.Send(Result{Status: StatusOK, KeepCallback: true})
		return true

	default:
		responder.Send(Result{
			Status:  StatusInvalidAction,
			Message: fmt.Sprintf("%v: %q", ErrInvalidAction, action),
		})
		return false
	}
}

func stringArg(args []any, i int) (string, bool) {
	if i >= len(args) {
		return "", false
	}
	s, ok := args[i].(string)
	return s, ok
}
