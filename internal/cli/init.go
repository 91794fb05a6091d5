package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/rulestore/internal/paths"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize rulestore storage",
		Long:  "Create configuration and data directories, then initialize the rule database.",
		Args:  cobra.NoArgs,
		RunE:  a.runInit,
	}
}

func (a *app) runInit(cmd *cobra.Command, _ []string) error {
	// An explicit --data-dir is remembered so later commands find the store.
	if a.flags.dataDir != "" && a.config.GetString(cfgKeyDataDir) == "" {
		if err := recordDataDir(a.configDir, a.flags.dataDir); err != nil {
			return sysError(fmt.Errorf("write config: %w", err))
		}
	}

	store, err := a.openStore(cmd, nil)
	if err != nil {
		return err
	}
	path := store.Path()
	if err := store.Detach(); err != nil {
		return sysError(fmt.Errorf("finalize storage: %w", err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "rulestore initialized at %s\n", path)
	return nil
}

// recordDataDir sets data_dir in an existing config.yaml.
func recordDataDir(configDir, dataDir string) error {
	path := paths.ConfigFile(configDir)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var cfg configFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	cfg.DataDir = dataDir
	out, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, out, 0o644)
}
