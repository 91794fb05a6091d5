package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rulestore/pkg/types"
)

func newEdgeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edge",
		Short: "Nest groups under parents",
		Long:  "Edges nest a child group under a parent group. Parent 0 is the root.",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <parent-id> <child-id>",
			Short: "Add a parent to a group",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				parent, child, err := parseEdge(args)
				if err != nil {
					return err
				}
				return a.submit(cmd, types.AddEdge{ParentID: parent, ChildID: child})
			},
		},
		&cobra.Command{
			Use:   "remove <parent-id> <child-id>",
			Short: "Remove one parent from a group",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				parent, child, err := parseEdge(args)
				if err != nil {
					return err
				}
				return a.submit(cmd, types.RemoveEdge{ParentID: parent, ChildID: child})
			},
		},
	)
	return cmd
}

func newMoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "move <new-parent-id> <child-id>...",
		Short: "Move groups under a new parent, replacing their parents",
		Long: "Move detaches each child from all of its parents and nests it under\n" +
			"the new parent (0 for the root). Children that cannot move are reported\n" +
			"and the rest still move.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			parent, err := parseID("parent id", args[0])
			if err != nil {
				return err
			}
			children, err := parseIDs("child id", args[1:])
			if err != nil {
				return err
			}
			return a.submit(cmd, types.MoveGroups{NewParentID: parent, ChildIDs: children})
		},
	}
}

func parseEdge(args []string) (parent, child int64, err error) {
	if parent, err = parseID("parent id", args[0]); err != nil {
		return 0, 0, err
	}
	if child, err = parseID("child id", args[1]); err != nil {
		return 0, 0, err
	}
	return parent, child, nil
}
