package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rulestore/pkg/types"
)

func newGroupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Create, rename, enable, and delete groups",
	}
	cmd.AddCommand(
		newGroupAddCmd(a),
		newGroupUpdateCmd(a),
		newGroupToggleCmd(a),
		newGroupDeleteCmd(a),
		newGroupBatchCmd(a),
	)
	return cmd
}

func newGroupAddCmd(a *app) *cobra.Command {
	var disabled bool
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a top-level group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled := !disabled
			return a.submit(cmd, types.AddGroup{Name: args[0], Enabled: &enabled})
		},
	}
	cmd.Flags().BoolVar(&disabled, "disabled", false, "create the group disabled")
	return cmd
}

func newGroupUpdateCmd(a *app) *cobra.Command {
	var enabled bool
	cmd := &cobra.Command{
		Use:   "update <group-id> <name>",
		Short: "Rename a group and set its enabled flag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("group id", args[0])
			if err != nil {
				return err
			}
			return a.submit(cmd, types.UpdateGroup{GroupID: id, Name: args[1], Enabled: enabled})
		},
	}
	cmd.Flags().BoolVar(&enabled, "enabled", true, "enabled flag to store")
	return cmd
}

func newGroupToggleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <group-id>",
		Short: "Flip a group's enabled flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("group id", args[0])
			if err != nil {
				return err
			}
			return a.submit(cmd, types.ToggleGroup{GroupID: id})
		},
	}
}

func newGroupDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <group-id>",
		Short: "Delete a group and every group below it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("group id", args[0])
			if err != nil {
				return err
			}
			return a.submit(cmd, types.DeleteGroup{GroupID: id})
		},
	}
}

func newGroupBatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "batch <enable|disable|delete> <group-id>...",
		Short: "Apply one action to several groups",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			action := types.BatchAction(args[0])
			switch action {
			case types.BatchEnable, types.BatchDisable, types.BatchDelete:
			default:
				return userError(fmt.Errorf("unknown batch action %q", args[0]))
			}
			ids, err := parseIDs("group id", args[1:])
			if err != nil {
				return err
			}
			return a.submit(cmd, types.BatchGroups{GroupIDs: ids, Action: action})
		},
	}
}
