// Package cli implements the rulestore command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/rulestore/internal/paths"
	"github.com/mesh-intelligence/rulestore/pkg/rulestore"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// exitError carries the process exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error { return &exitError{code: exitUserError, err: err} }
func sysError(err error) error  { return &exitError{code: exitSysError, err: err} }

// exitCode maps an error returned by a command to the process exit code.
// Errors without a code (bad flags, wrong argument counts) are user errors.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir   string
	dataDir     string
	clientID    string
	jsonMode    bool
	baseVersion int64
}

// app is the state shared by one invocation of the command tree.
type app struct {
	flags     rootFlags
	configDir string
	config    *viper.Viper
}

// NewRootCmd creates the top-level "rulestore" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:     "rulestore",
		Short:   "A version-gated store for hierarchical keyword rules",
		Long:    "rulestore keeps named keyword groups nested in an acyclic hierarchy.\nEvery write is checked against the version it was based on.",
		Version: rulestore.Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	pf.StringVar(&a.flags.clientID, "client-id", "", "modifier id recorded with writes (default: client_id from config)")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	pf.Int64Var(&a.flags.baseVersion, "base-version", -1, "version a write is based on (default: current version)")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newServeCmd(a),
		newRulesCmd(a),
		newExpandCmd(a),
		newGroupCmd(a),
		newKeywordCmd(a),
		newEdgeCmd(a),
		newMoveCmd(a),
		newExportCmd(a),
		newImportCmd(a),
	)
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rulestore:", err)
		return exitCode(err)
	}
	return exitSuccess
}

// load resolves the config directory and reads config.yaml before any
// subcommand runs.
func (a *app) load(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}
	dir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	v, err := loadConfig(dir)
	if err != nil {
		return sysError(err)
	}
	a.configDir = dir
	a.config = v
	return nil
}

// dataDir applies --data-dir > config data_dir > env > platform default.
func (a *app) dataDir() (string, error) {
	return paths.ResolveDataDir(a.flags.dataDir, a.config.GetString(cfgKeyDataDir))
}

// clientID applies --client-id > config client_id.
func (a *app) clientID() string {
	if a.flags.clientID != "" {
		return a.flags.clientID
	}
	return a.config.GetString(cfgKeyClientID)
}
