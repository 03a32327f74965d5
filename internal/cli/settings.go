package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/Coffigny94/pymanager/internal/store"
)

func newSettingsCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and edit resolved settings",
	}
	cmd.AddCommand(
		newSettingsShowCmd(flags),
		newSettingsGetCmd(flags),
		newSettingsSetCmd(flags),
	)
	return cmd
}

func newSettingsShowCmd(flags *rootFlags) *cobra.Command {
	var resource string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved settings for a resource",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := buildApp(flags)
			defer a.close()

			snap := a.registry.GetOrCreate(resource)
			return printJSON(cmd, snap.Export())
		},
	}
	cmd.Flags().StringVarP(&resource, "resource", "r", "", "resource path selecting the workspace scope")
	return cmd
}

func newSettingsGetCmd(flags *rootFlags) *cobra.Command {
	var (
		resource string
		inspect  bool
	)

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print one raw setting's effective value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := buildApp(flags)
			defer a.close()

			key := args[0]
			if inspect {
				insp := a.store.Inspect(key, resource)
				return printJSON(cmd, map[string]any{
					"key":       insp.Key,
					"scope":     insp.Scope,
					"default":   insp.DefaultValue,
					"user":      insp.UserValue,
					"workspace": insp.WorkspaceValue,
					"effective": insp.Effective,
				})
			}

			val, ok := a.store.Get(key, resource)
			if !ok {
				return fmt.Errorf("%w: %s", store.ErrSettingNotFound, key)
			}
			return printJSON(cmd, val)
		},
	}
	cmd.Flags().StringVarP(&resource, "resource", "r", "", "resource path selecting the workspace scope")
	cmd.Flags().BoolVar(&inspect, "inspect", false, "show the value in every layer")
	return cmd
}

func newSettingsSetCmd(flags *rootFlags) *cobra.Command {
	var resource string

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Write one setting",
		Long: "Writes to the workspace settings file when the resource lies inside a " +
			"workspace folder, otherwise to the user settings file.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := buildApp(flags)
			defer a.close()

			key, value := args[0], parseValue(args[1])
			if err := a.store.Update(key, value, resource); err != nil {
				return err
			}
			a.logger.Debug("setting updated", "key", key, "scope", a.store.ScopeFor(resource))
			return nil
		},
	}
	cmd.Flags().StringVarP(&resource, "resource", "r", "", "resource path selecting the workspace scope")
	return cmd
}

// parseValue interprets a command-line value: booleans and numbers get
// their native types, valid JSON literals parse structurally, and
// anything else stays a string.
func parseValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	if len(raw) > 0 && (raw[0] == '[' || raw[0] == '{') && gjson.Valid(raw) {
		return gjson.Parse(raw).Value()
	}
	return raw
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
