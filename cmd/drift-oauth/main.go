// Command drift-oauth inspects how the OAuth plugin of a Drift project
// recognizes callbacks and what it injects into the web content.
package main

import (
	"os"

	"github.com/go-drift/drift-oauth/cmd/drift-oauth/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
