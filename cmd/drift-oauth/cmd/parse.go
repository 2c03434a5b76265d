package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-drift/drift-oauth/pkg/oauth"
)

func newParseCmd(opts *globalOptions) *cobra.Command {
	var anyScheme bool

	cmd := &cobra.Command{
		Use:   "parse <uri>",
		Short: "Print the parameters extracted from a callback URI",
		Long: `Parse a redirect callback URI the way the plugin does and print the
JSON object delivered to the web content.

Fragment parameters are read first, then query parameters overwrite them.
The full URI is included as oauth_callback_url.

Examples:
  drift-oauth parse 'com.example.app://oauth_callback?code=abc#state=xyz'
  drift-oauth parse --any-scheme 'myapp://oauth_callback#access_token=t'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.callbackConfig(anyScheme)
			u, err := oauth.ParseCallbackURI(args[0])
			if err != nil {
				return fmt.Errorf("parse callback URI: %w", err)
			}
			if !cfg.Matches(u) {
				return notCallbackError(cfg, args[0])
			}

			params := oauth.ParseCallback(args[0], u)
			data, err := json.Marshal(params)
			if err != nil {
				return fmt.Errorf("encode parameters: %w", err)
			}
			opts.logger.Debug().Strs("keys", params.Keys()).Msg("callback parsed")

			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}

	cmd.Flags().BoolVar(&anyScheme, "any-scheme", false, "accept the callback host on any scheme")
	return cmd
}

// callbackConfig returns the resolved runtime config, dropping the scheme
// requirement when anyScheme is set.
func (o *globalOptions) callbackConfig(anyScheme bool) oauth.Config {
	cfg := o.resolved.OAuth
	if anyScheme {
		cfg.CallbackScheme = ""
	}
	return cfg
}

func notCallbackError(cfg oauth.Config, raw string) error {
	if cfg.CallbackScheme != "" {
		return fmt.Errorf("%q is not a callback URI (want %s://%s/...)", raw, cfg.CallbackScheme, cfg.CallbackHost)
	}
	return fmt.Errorf("%q is not a callback URI (want host %s)", raw, cfg.CallbackHost)
}
