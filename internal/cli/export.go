package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rulestore/pkg/types"
)

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir>",
		Short: "Write the rule set and version log as JSONL files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd, nil)
			if err != nil {
				return err
			}
			defer store.Detach()

			version, err := store.Export(cmd.Context(), args[0])
			if err != nil {
				return sysError(fmt.Errorf("export: %w", err))
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]any{"version_id": version, "dir": args[0]})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported version %d to %s\n", version, args[0])
			return nil
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <dir>",
		Short: "Load an export into an empty store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd, nil)
			if err != nil {
				return err
			}
			defer store.Detach()

			res, err := store.Import(cmd.Context(), args[0], a.clientID())
			if err != nil {
				if errors.Is(err, types.ErrStoreNotEmpty) {
					return userError(err)
				}
				return sysError(fmt.Errorf("import: %w", err))
			}
			if err := a.printResult(cmd.OutOrStdout(), res); err != nil {
				return sysError(err)
			}
			return resultError(res)
		},
	}
}
