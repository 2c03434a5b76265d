// Package cmd implements the drift-oauth CLI commands.
//
// Every command works offline: callbacks are parsed and scripts are built by
// the same code the plugin runs on a device, with the platform replaced by
// in-process stand-ins.
package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/go-drift/drift-oauth/cmd/drift-oauth/internal/config"
	plugerrors "github.com/go-drift/drift-oauth/pkg/errors"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	logLevel  string
	configDir string
	logFormat string

	logger   zerolog.Logger
	resolved *config.Resolved
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "drift-oauth",
		Short: "Inspect OAuth callback handling for a Drift app",
		Long: `drift-oauth shows how the OAuth plugin treats redirect callbacks.

Settings come from the oauth section of drift.yaml, overridden by
DRIFT_OAUTH_CALLBACK_HOST, DRIFT_OAUTH_CALLBACK_SCHEME and
DRIFT_OAUTH_LOG_LEVEL. The callback scheme defaults to the app id.`,
		Version:       fmt.Sprintf("%s (built %s)", Version, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (trace, debug, info, warn, error); overrides the project setting")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "console", "log format (console or json)")
	root.PersistentFlags().StringVar(&opts.configDir, "config-dir", "", "project directory holding drift.yaml (default: nearest go.mod above the working directory)")

	root.AddCommand(newParseCmd(opts))
	root.AddCommand(newScriptCmd(opts))
	root.AddCommand(newProviderCmd(opts))
	root.AddCommand(newConfigCmd(opts))

	return root
}

// Execute runs the CLI with os.Args.
func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func (o *globalOptions) setup(cmd *cobra.Command) error {
	dir := o.configDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		dir = config.FindProjectRoot(wd)
	}

	resolved, err := config.Resolve(dir)
	if err != nil {
		return err
	}
	o.resolved = resolved

	level := resolved.LogLevel
	if o.logLevel != "" {
		level = o.logLevel
	}
	o.logger = newLogger(cmd, plugerrors.ParseLevel(level), o.logFormat)
	plugerrors.SetHandler(&plugerrors.LogHandler{Logger: &o.logger, Verbose: o.logger.GetLevel() <= zerolog.DebugLevel})
	return nil
}

func newLogger(cmd *cobra.Command, level zerolog.Level, format string) zerolog.Logger {
	out := cmd.ErrOrStderr()
	if format == "console" {
		out = zerolog.ConsoleWriter{Out: out, NoColor: true, PartsExclude: []string{zerolog.TimestampFieldName}}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
