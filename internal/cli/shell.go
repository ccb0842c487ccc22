package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/wsinspect/internal/shell"
	"github.com/vovakirdan/wsinspect/wsinspect"
)

// NewShellCmd creates the interactive shell command.
func NewShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Inspect a connection interactively",
		Long: `Open a console that controls a single connection: set the endpoint,
toggle the connection, list and clear received messages. Type "help"
inside the shell for the command list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := GetContext(cmd)
			m, err := newManager(cc)
			if err != nil {
				return err
			}
			defer m.Close()

			m.OnStateChange(func(ev wsinspect.StateEvent) {
				e := cc.Log.Info().Str("session", string(ev.Session)).Str("state", ev.NewState.Label())
				if ev.Error != nil {
					e = e.Err(ev.Error)
				}
				e.Msg("state changed")
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			prompt := term.IsTerminal(int(os.Stdin.Fd()))
			return shell.New(m, cc.Config, cmd.OutOrStdout()).Run(ctx, cmd.InOrStdin(), prompt)
		},
	}
}
