package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rulestore/internal/hierarchy"
	"github.com/mesh-intelligence/rulestore/pkg/types"
)

func newRulesCmd(a *app) *cobra.Command {
	var tree bool
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the current rule set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rules, err := a.readRules(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.flags.jsonMode {
				if tree {
					return printJSON(out, map[string]any{
						"version_id": rules.VersionID,
						"tree":       hierarchy.BuildTree(rules),
					})
				}
				return printJSON(out, rules)
			}
			if tree {
				printTree(out, rules)
				return nil
			}
			printRules(out, rules)
			return nil
		},
	}
	cmd.Flags().BoolVar(&tree, "tree", false, "print groups nested under their parents")
	return cmd
}

func newExpandCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "expand <term>...",
		Short: "Expand search terms into the keywords they select",
		Long: "Expand matches each term against group names and keywords. A group name\n" +
			"selects every enabled keyword in that group and its enabled subgroups.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := a.readRules(cmd)
			if err != nil {
				return err
			}
			keywords := hierarchy.Expand(rules, args)
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"version_id": rules.VersionID,
					"keywords":   keywords,
				})
			}
			for _, k := range keywords {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
}

func (a *app) readRules(cmd *cobra.Command) (*types.Rules, error) {
	store, err := a.openStore(cmd, nil)
	if err != nil {
		return nil, err
	}
	defer store.Detach()

	rules, err := store.Rules(cmd.Context())
	if err != nil {
		return nil, sysError(fmt.Errorf("read rules: %w", err))
	}
	return rules, nil
}

// printRules writes one line per group followed by its keywords.
func printRules(w io.Writer, rules *types.Rules) {
	fmt.Fprintf(w, "version %d\n", rules.VersionID)

	byGroup := make(map[int64][]types.Keyword)
	for _, k := range rules.Keywords {
		byGroup[k.GroupID] = append(byGroup[k.GroupID], k)
	}
	parents := make(map[int64][]int64)
	for _, e := range rules.Hierarchy {
		parents[e.ChildID] = append(parents[e.ChildID], e.ParentID)
	}

	for _, g := range rules.Groups {
		line := fmt.Sprintf("%d\t%s%s", g.GroupID, g.Name, disabledMark(g.Enabled))
		if ps := parents[g.GroupID]; len(ps) > 0 {
			sort.Slice(ps, func(i, j int) bool { return ps[i] < ps[j] })
			strs := make([]string, len(ps))
			for i, p := range ps {
				strs[i] = fmt.Sprint(p)
			}
			line += "\tparents=" + strings.Join(strs, ",")
		}
		fmt.Fprintln(w, line)
		for _, k := range byGroup[g.GroupID] {
			fmt.Fprintf(w, "\t- %s%s\n", k.Keyword, disabledMark(k.Enabled))
		}
	}
}

func printTree(w io.Writer, rules *types.Rules) {
	fmt.Fprintf(w, "version %d\n", rules.VersionID)
	var walk func(nodes []*types.TreeNode, depth int)
	walk = func(nodes []*types.TreeNode, depth int) {
		indent := strings.Repeat("  ", depth)
		for _, n := range nodes {
			fmt.Fprintf(w, "%s%s (%d)%s\n", indent, n.Name, n.GroupID, disabledMark(n.Enabled))
			for _, k := range n.Keywords {
				fmt.Fprintf(w, "%s  - %s%s\n", indent, k.Keyword, disabledMark(k.Enabled))
			}
			walk(n.Children, depth+1)
		}
	}
	walk(hierarchy.BuildTree(rules), 0)
}

func disabledMark(enabled bool) string {
	if enabled {
		return ""
	}
	return " [disabled]"
}
