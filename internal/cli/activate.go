package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Coffigny94/pymanager/internal/shells"
)

func newActivateCmd(flags *rootFlags) *cobra.Command {
	var (
		resource    string
		shellName   string
		interpreter string
	)

	cmd := &cobra.Command{
		Use:   "activate",
		Short: "Print the terminal commands that activate the effective environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := buildApp(flags)
			defer a.close()

			var cmds []string
			if interpreter != "" {
				dialect := shells.ParseDialect(shellName)
				if dialect == shells.Unknown {
					dialect = a.helper.IdentifyShell(shells.Signals{})
				}
				cmds = a.helper.ActivationCommandsForInterpreter(interpreter, dialect)
			} else {
				cmds = a.helper.ActivationCommands(resource, shells.Signals{
					ConfiguredShell: shellName,
				})
			}

			if len(cmds) == 0 {
				a.logger.Info("no activation needed", "resource", resource)
				return nil
			}
			for _, c := range cmds {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&resource, "resource", "r", "", "resource path selecting the workspace scope")
	cmd.Flags().StringVarP(&shellName, "shell", "s", "", "target shell dialect (default: detected)")
	cmd.Flags().StringVarP(&interpreter, "interpreter", "i", "", "activate for a specific interpreter instead of the effective one")
	return cmd
}

func newShellCmd(flags *rootFlags) *cobra.Command {
	var (
		shellName    string
		terminalName string
	)

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Detect the active terminal's shell dialect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := buildApp(flags)
			defer a.close()

			dialect := a.helper.IdentifyShell(shells.Signals{
				ConfiguredShell: shellName,
				TerminalName:    terminalName,
			})
			fmt.Fprintln(cmd.OutOrStdout(), dialect)
			return nil
		},
	}
	cmd.Flags().StringVarP(&shellName, "shell", "s", "", "explicit shell setting to honor")
	cmd.Flags().StringVar(&terminalName, "terminal-name", "", "terminal display name to consider")
	return cmd
}
