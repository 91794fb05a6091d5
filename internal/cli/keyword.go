package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rulestore/pkg/types"
)

func newKeywordCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keyword",
		Short: "Manage the keywords of a group",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <group-id> <keyword>",
			Short: "Add a keyword to a group, or re-enable it",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID("group id", args[0])
				if err != nil {
					return err
				}
				return a.submit(cmd, types.AddKeyword{GroupID: id, Keyword: args[1]})
			},
		},
		&cobra.Command{
			Use:   "remove <group-id> <keyword>",
			Short: "Remove a keyword from a group",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID("group id", args[0])
				if err != nil {
					return err
				}
				return a.submit(cmd, types.RemoveKeyword{GroupID: id, Keyword: args[1]})
			},
		},
		newKeywordEnableCmd(a),
	)
	return cmd
}

func newKeywordEnableCmd(a *app) *cobra.Command {
	var enabled bool
	cmd := &cobra.Command{
		Use:   "enable <group-id> <keyword>",
		Short: "Enable or disable one keyword",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("group id", args[0])
			if err != nil {
				return err
			}
			return a.submit(cmd, types.SetKeywordEnabled{GroupID: id, Keyword: args[1], Enabled: enabled})
		},
	}
	cmd.Flags().BoolVar(&enabled, "enabled", true, "enabled flag to store")
	return cmd
}
