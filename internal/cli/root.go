// Package cli implements the pymanager command tree.
package cli

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Coffigny94/pymanager/internal/host"
	"github.com/Coffigny94/pymanager/internal/settings"
	"github.com/Coffigny94/pymanager/internal/store"
	"github.com/Coffigny94/pymanager/internal/terminal"
)

// preferredExecutableVar lets an outer tool hand pymanager the selected
// interpreter without touching settings files.
const preferredExecutableVar = "PYMANAGER_PYTHON"

type rootFlags struct {
	folders      []string
	userSettings string
	live         bool
	verbose      bool
}

// app bundles the wired subsystems behind the commands.
type app struct {
	store    *store.Store
	registry *settings.Registry
	helper   *terminal.Helper
	logger   *slog.Logger
}

func (a *app) close() {
	a.registry.Close()
	a.store.Close()
}

// NewRootCmd builds the pymanager command tree.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "pymanager",
		Short:         "Workspace-aware Python environment manager",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringArrayVarP(&flags.folders, "folder", "f", nil, "workspace folder (repeatable)")
	cmd.PersistentFlags().StringVar(&flags.userSettings, "user-settings", "", "user settings file (default: platform config dir)")
	cmd.PersistentFlags().BoolVar(&flags.live, "watch-files", false, "reload settings files on change")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(
		newSettingsCmd(flags),
		newActivateCmd(flags),
		newShellCmd(flags),
		newWatchCmd(flags),
	)
	return cmd
}

// buildApp wires store, registry, and terminal helper from the root
// flags. Settings file problems degrade to warnings; the app always
// comes up.
func buildApp(flags *rootFlags) *app {
	level := slog.LevelInfo
	if flags.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	opts := []store.Option{
		store.WithWorkspace(host.NewStaticWorkspace(flags.folders...)),
		store.WithDefaults(settings.Defaults()),
	}
	if flags.userSettings != "" {
		opts = append(opts, store.WithUserSettingsPath(flags.userSettings))
	}
	if flags.live {
		opts = append(opts, store.WithLiveReload(100*time.Millisecond))
	}

	st := store.New(opts...)
	if err := st.Load(); err != nil {
		logger.Warn("settings load degraded", "error", err)
	}

	registry := settings.NewRegistry(st,
		settings.WithPreferredExecutable(host.EnvPreferredExecutable{Var: preferredExecutableVar}),
	)
	helper := terminal.NewHelper(registry)

	return &app{store: st, registry: registry, helper: helper, logger: logger}
}
