package jsprobe

import (
	"strings"
	"testing"
)

func TestRunCapturesDispatchedEvents(t *testing.T) {
	msgs, err := Run(`window.dispatchEvent(new MessageEvent('message', { data: 'hello' }));`)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Type != "message" || msgs[0].Data != "hello" {
		t.Errorf("msgs = %+v", msgs)
	}
}

func TestRunReportsSyntaxErrors(t *testing.T) {
	_, err := Run(`window.dispatchEvent(new MessageEvent('message', { data: 'broken }));`)
	if err == nil {
		t.Fatal("expected syntax error")
	}
}

func TestReceive(t *testing.T) {
	got, err := Receive(`window.dispatchEvent(new MessageEvent('message', { data: 'p::{"a":"1"}' }));`, "p::")
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if got["a"] != "1" {
		t.Errorf("got %v", got)
	}
}

func TestReceiveRejectsUnexpectedShapes(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"no events", `1 + 1;`, "expected 1 event"},
		{"wrong type", `window.dispatchEvent(new MessageEvent('other', { data: 'p::{}' }));`, "expected message event"},
		{"no prefix", `window.dispatchEvent(new MessageEvent('message', { data: '{}' }));`, "prefix"},
		{"bad json", `window.dispatchEvent(new MessageEvent('message', { data: 'p::{' }));`, "decode payload"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Receive(tt.script, "p::")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}
