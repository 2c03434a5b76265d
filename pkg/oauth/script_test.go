package oauth

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/drift-oauth/internal/jsprobe"
)

func TestEscapeScriptString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"it's", `it\'s`},
		{"a\nb", `a\nb`},
		{"a\rb", `a\rb`},
		{"a\tb", `a\tb`},
		{`back\slash`, `back\\slash`},
		{`\'`, `\\\'`},
		{"line\u2028sep\u2029", `line\u2028sep\u2029`},
	}
	for _, tt := range tests {
		if got := EscapeScriptString(tt.in); got != tt.want {
			t.Errorf("EscapeScriptString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMessageScriptShape(t *testing.T) {
	got := MessageScript(`{"code":"abc"}`)
	want := `window.dispatchEvent(new MessageEvent('message', { data: 'oauth::{"code":"abc"}' }));`
	if got != want {
		t.Errorf("MessageScript = %q, want %q", got, want)
	}
}

func TestMessageScriptEvaluatesToExactPayload(t *testing.T) {
	payloads := []string{
		"",
		"simple",
		"quote ' inside",
		"''';alert(1);//",
		"new\nline and \r carriage and \t tab",
		`back\slash \' mixed \\n`,
		"separators \u2028 \u2029",
		"unicode ✓ 日本語",
		`{"a":"x\"y","b":"line\nbreak"}`,
	}
	for _, payload := range payloads {
		msgs, err := jsprobe.Run(MessageScript(payload))
		if err != nil {
			t.Errorf("payload %q: script failed: %v", payload, err)
			continue
		}
		if len(msgs) != 1 {
			t.Errorf("payload %q: got %d events, want 1", payload, len(msgs))
			continue
		}
		if msgs[0].Type != "message" {
			t.Errorf("payload %q: event type %q", payload, msgs[0].Type)
		}
		if want := MessagePrefix + payload; msgs[0].Data != want {
			t.Errorf("payload round trip: got %q, want %q", msgs[0].Data, want)
		}
	}
}

func TestMessageScriptCarriesSerializedParams(t *testing.T) {
	params := Params{
		CallbackURLKey: "app://oauth_callback?code=it's",
		"code":         "it's",
		"note":         "multi\nline\ttext",
	}
	data, err := json.Marshal(params)
	if err != nil {
		t.Fatal(err)
	}

	got, err := jsprobe.Receive(MessageScript(string(data)), MessagePrefix)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if diff := cmp.Diff(map[string]string(params), got); diff != "" {
		t.Errorf("received params mismatch (-want +got):\n%s", diff)
	}
}

func TestMessageScriptIsSingleStatement(t *testing.T) {
	s := MessageScript("x\ny\rz")
	if strings.ContainsAny(s, "\n\r") {
		t.Errorf("script contains raw line breaks: %q", s)
	}
	if !strings.HasSuffix(s, "}));") {
		t.Errorf("script should end with a single statement terminator: %q", s)
	}
}
