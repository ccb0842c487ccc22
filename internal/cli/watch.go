package cli

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wsinspect/internal/shell"
	"github.com/vovakirdan/wsinspect/wsinspect"
)

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "watch [endpoint|preset]",
		Short: "Connect and print incoming messages",
		Long: `Connect to the endpoint (the configured one by default) and print every
decoded message as indented JSON until interrupted, the remote side closes
the connection, or --count messages have arrived.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := GetContext(cmd)
			m, err := newManager(cc)
			if err != nil {
				return err
			}
			defer m.Close()

			if len(args) == 1 {
				m.SetEndpoint(cc.Config.Resolve(args[0]))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			done := make(chan struct{})
			var once sync.Once
			finish := func() { once.Do(func() { close(done) }) }

			out := cmd.OutOrStdout()
			var mu sync.Mutex
			seen := 0
			m.OnMessage(func(msg wsinspect.Message) {
				mu.Lock()
				shell.WriteMessage(out, msg)
				seen++
				n := seen
				mu.Unlock()
				if count > 0 && n >= count {
					finish()
				}
			})
			m.OnStateChange(func(ev wsinspect.StateEvent) {
				e := cc.Log.Info().Str("session", string(ev.Session)).Str("state", ev.NewState.Label())
				if ev.Error != nil {
					e = e.Err(ev.Error)
				}
				e.Msg("state changed")
				if ev.NewState == wsinspect.StateDisconnected {
					finish()
				}
			})

			if err := m.ToggleConnection(); err != nil {
				return err
			}

			select {
			case <-ctx.Done():
			case <-done:
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 0, "exit after n messages (0 means no limit)")
	return cmd
}
