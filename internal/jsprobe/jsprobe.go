// Package jsprobe evaluates generated message scripts in an embedded
// JavaScript runtime, standing in for the web view's script context.
package jsprobe

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/grafana/sobek"
)

// Message is a message event dispatched on window by a script.
type Message struct {
	Type string
	Data string
}

// windowShim provides just enough of a browser global scope for
// window.dispatchEvent(new MessageEvent(...)).
const windowShim = `
function MessageEvent(type, init) {
  this.type = type;
  this.data = init ? init.data : undefined;
}
var window = {
  dispatchEvent: function (ev) {
    __capture(String(ev.type), String(ev.data));
    return true;
  }
};
`

// Run evaluates script and returns the events it dispatched, in order.
// A syntax or runtime error in script is returned as an error.
func Run(script string) ([]Message, error) {
	vm := sobek.New()
	var msgs []Message
	if err := vm.Set("__capture", func(typ, data string) {
		msgs = append(msgs, Message{Type: typ, Data: data})
	}); err != nil {
		return nil, fmt.Errorf("jsprobe: install capture: %w", err)
	}
	if _, err := vm.RunString(windowShim); err != nil {
		return nil, fmt.Errorf("jsprobe: install window shim: %w", err)
	}
	if _, err := vm.RunString(script); err != nil {
		return nil, fmt.Errorf("jsprobe: evaluate: %w", err)
	}
	return msgs, nil
}

// Receive evaluates script the way a page listening for prefix-tagged
// messages would: it expects exactly one "message" event whose data starts
// with prefix and decodes the remainder as a JSON object of strings.
func Receive(script, prefix string) (map[string]string, error) {
	msgs, err := Run(script)
	if err != nil {
		return nil, err
	}
	if len(msgs) != 1 {
		return nil, fmt.Errorf("jsprobe: expected 1 event, got %d", len(msgs))
	}
	msg := msgs[0]
	if msg.Type != "message" {
		return nil, fmt.Errorf("jsprobe: expected message event, got %q", msg.Type)
	}
	body, ok := strings.CutPrefix(msg.Data, prefix)
	if !ok {
		return nil, fmt.Errorf("jsprobe: data missing %q prefix", prefix)
	}
	var out map[string]string
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return nil, fmt.Errorf("jsprobe: decode payload: %w", err)
	}
	return out, nil
}
