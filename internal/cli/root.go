// Package cli implements the wsinspect command line.
package cli

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/wsinspect/internal/config"
	"github.com/vovakirdan/wsinspect/internal/logging"
	"github.com/vovakirdan/wsinspect/wsinspect"
)

// Version is stamped at build time with -ldflags "-X".
var Version = "dev"

// GlobalFlags are the persistent flags of the root command.
type GlobalFlags struct {
	ConfigPath string
	Verbose    bool
	Quiet      bool
}

type contextKey struct{}

// Context carries what PersistentPreRunE prepared for a subcommand.
type Context struct {
	Config   *config.Config
	Log      zerolog.Logger
	closeLog func() error
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	var flags GlobalFlags

	rootCmd := &cobra.Command{
		Use:   "wsinspect",
		Short: "wsinspect - WebSocket message inspector",
		Long: `wsinspect opens a WebSocket connection to an endpoint, decodes the
JSON messages it receives and keeps them, newest first, for inspection.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch cmd.Name() {
			case "version", "help", "init":
				return nil
			}

			cfg, err := config.Load(flags.ConfigPath)
			if err != nil {
				return err
			}

			logCfg := cfg.Log
			if flags.Verbose {
				logCfg.Level = "debug"
			}
			if flags.Quiet {
				logCfg.Level = "error"
			}
			log, closeLog, err := logging.New(logCfg)
			if err != nil {
				return err
			}
			if f := cfg.File(); f != "" {
				log.Debug().Str("file", f).Msg("config loaded")
			}

			cc := &Context{Config: cfg, Log: log, closeLog: closeLog}
			cmd.SetContext(context.WithValue(cmd.Context(), contextKey{}, cc))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if cc := GetContext(cmd); cc != nil && cc.closeLog != nil {
				return cc.closeLog()
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "quiet mode")

	rootCmd.AddCommand(NewWatchCmd())
	rootCmd.AddCommand(NewShellCmd())
	rootCmd.AddCommand(NewValidateCmd())
	rootCmd.AddCommand(NewPresetsCmd())
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// GetContext returns the context prepared by the root command, or nil.
func GetContext(cmd *cobra.Command) *Context {
	if cmd.Context() == nil {
		return nil
	}
	cc, _ := cmd.Context().Value(contextKey{}).(*Context)
	return cc
}

// newManager builds a Manager from the loaded configuration.
func newManager(cc *Context) (*wsinspect.Manager, error) {
	m, err := wsinspect.New(cc.Config.Inspector())
	if err != nil {
		return nil, err
	}
	m.SetLogger(wsinspect.NewZerologLogger(cc.Log))
	return m, nil
}
