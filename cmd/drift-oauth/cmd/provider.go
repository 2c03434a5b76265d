package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-drift/drift-oauth/pkg/oauth"
)

func newProviderCmd(opts *globalOptions) *cobra.Command {
	var info oauth.ProviderInfo

	cmd := &cobra.Command{
		Use:   "provider",
		Short: "Show which browser-tab provider would be chosen",
		Long: `Apply the provider selection policy to a described device.

A single supporting package always wins. Otherwise the default URL handler
is used when it supports browser tabs and no app claims specific pages.
Otherwise the first installed Chrome channel is used. When nothing
matches, the platform picks.

Examples:
  drift-oauth provider --supported com.android.chrome,org.mozilla.firefox
  drift-oauth provider --supported com.brave.browser,com.android.chrome --default com.brave.browser`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			selected := oauth.SelectProvider(info)
			opts.logger.Debug().
				Strs("supported", info.Supported).
				Str("default", info.DefaultHandler).
				Bool("specialized", info.SpecializedHandlers).
				Msg("selecting provider")

			if selected == "" {
				selected = "(platform default)"
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), selected)
			return err
		},
	}

	cmd.Flags().StringSliceVar(&info.Supported, "supported", nil, "installed packages supporting browser tabs")
	cmd.Flags().StringVar(&info.DefaultHandler, "default", "", "package handling web URLs by default")
	cmd.Flags().BoolVar(&info.SpecializedHandlers, "specialized", false, "some app claims specific web pages")
	return cmd
}
