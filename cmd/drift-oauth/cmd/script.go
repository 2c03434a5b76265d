package cmd

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/go-drift/drift-oauth/internal/jsprobe"
	"github.com/go-drift/drift-oauth/pkg/oauth"
)

func newScriptCmd(opts *globalOptions) *cobra.Command {
	var (
		anyScheme bool
		check     bool
	)

	cmd := &cobra.Command{
		Use:   "script <uri>",
		Short: "Print the statement injected into the web content for a callback",
		Long: `Run a callback URI through the plugin's flow adapter and print the
script it evaluates in the web content.

With --check the script is executed in an embedded JavaScript runtime and
the received message is compared with the parsed parameters.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.callbackConfig(anyScheme)
			scripts := &capturedScripts{}
			adapter := oauth.NewAdapter(cfg, offlineLauncher{}, scripts, oauth.WithLogger(opts.logger))
			adapter.OnContentReady()

			if !adapter.HandleCallbackURI(args[0]) {
				return notCallbackError(cfg, args[0])
			}
			script, ok := scripts.last()
			if !ok {
				return errors.New("callback parameters could not be serialized")
			}

			if check {
				if err := verifyScript(script, args[0]); err != nil {
					return err
				}
				opts.logger.Info().Msg("script delivers the parsed parameters")
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), script)
			return err
		},
	}

	cmd.Flags().BoolVar(&anyScheme, "any-scheme", false, "accept the callback host on any scheme")
	cmd.Flags().BoolVar(&check, "check", false, "evaluate the script and verify the delivered message")
	return cmd
}

func verifyScript(script, raw string) error {
	got, err := jsprobe.Receive(script, oauth.MessagePrefix)
	if err != nil {
		return fmt.Errorf("evaluate script: %w", err)
	}
	u, err := oauth.ParseCallbackURI(raw)
	if err != nil {
		return err
	}
	want := map[string]string(oauth.ParseCallback(raw, u))
	if diff := cmp.Diff(want, got); diff != "" {
		return fmt.Errorf("delivered message differs from the parsed callback (-want +got):\n%s", diff)
	}
	return nil
}

// capturedScripts records scripts instead of evaluating them.
type capturedScripts struct {
	mu      sync.Mutex
	scripts []string
}

func (c *capturedScripts) EvaluateScript(script string) error {
	c.mu.Lock()
	c.scripts = append(c.scripts, script)
	c.mu.Unlock()
	return nil
}

func (c *capturedScripts) last() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.scripts) == 0 {
		return "", false
	}
	return c.scripts[len(c.scripts)-1], true
}

type offlineLauncher struct{}

func (offlineLauncher) Launch(string, string) error { return nil }
func (offlineLauncher) Close() error                { return nil }
