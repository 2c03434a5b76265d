package oauth

import "strings"

// MessagePrefix starts the data of every message the plugin dispatches.
const MessagePrefix = "oauth::"

var scriptEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
	"\u2028", `\u2028`,
	"\u2029", `\u2029`,
)

// EscapeScriptString escapes s for use inside a single-quoted script string
// literal. The literal evaluates back to exactly s.
func EscapeScriptString(s string) string {
	return scriptEscaper.Replace(s)
}

// MessageScript returns the statement that dispatches a message event on
// window carrying MessagePrefix+payload as its data.
func MessageScript(payload string) string {
	return "window.dispatchEvent(new MessageEvent('message', { data: '" +
		MessagePrefix + EscapeScriptString(payload) + "' }));"
}
