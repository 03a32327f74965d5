package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Coffigny94/pymanager/internal/notify"
)

func newWatchCmd(flags *rootFlags) *cobra.Command {
	var resource string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch settings files and report resolved changes until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags.live = true
			a := buildApp(flags)
			defer a.close()

			snap := a.registry.GetOrCreate(resource)
			a.logger.Info("watching settings", "scope", snap.Scope())

			sub := a.registry.OnDidChange(func(token notify.ChangeToken) {
				a.logger.Info("settings changed",
					"namespace", token.Namespace,
					"key", token.Key,
					"scope", token.Scope,
				)
				res := snap.Settings()
				fmt.Fprintf(cmd.OutOrStdout(), "interpreter: %s\n", res.InterpreterPath)
			})
			defer sub.Unsubscribe()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop
			return nil
		},
	}
	cmd.Flags().StringVarP(&resource, "resource", "r", "", "resource path selecting the workspace scope")
	return cmd
}
