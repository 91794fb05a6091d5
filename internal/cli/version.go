package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rulestore/pkg/rulestore"
)

const modulePath = "github.com/mesh-intelligence/rulestore"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the rulestore version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "rulestore v%s\nmodule: %s\n", rulestore.Version, modulePath)
			return nil
		},
	}
}
