package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/drift-oauth/cmd/drift-oauth/internal/config"
)

func newConfigCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config [dir]",
		Short: "Print the resolved plugin configuration",
		Long: `Print the configuration the plugin would use for a project, after
applying drift.yaml, environment overrides and derived defaults.

The directory defaults to --config-dir, or the nearest go.mod above the
working directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved := opts.resolved
			if len(args) == 1 {
				var err error
				resolved, err = config.Resolve(args[0])
				if err != nil {
					return err
				}
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(struct {
				config.Resolved `yaml:",inline"`
				RedirectURI     string `yaml:"redirect_uri"`
			}{*resolved, resolved.OAuth.RedirectURI()}); err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			return enc.Close()
		},
	}
}
