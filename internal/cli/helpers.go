// Shared helpers for rulestore CLI commands.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rulestore/internal/logger"
	"github.com/mesh-intelligence/rulestore/internal/metrics"
	"github.com/mesh-intelligence/rulestore/internal/sqlite"
	"github.com/mesh-intelligence/rulestore/pkg/types"
)

// logger builds the process logger from log_level and log_pretty.
func (a *app) logger(out io.Writer) zerolog.Logger {
	return logger.New(logger.Config{
		Level:  a.config.GetString(cfgKeyLogLevel),
		Pretty: a.config.GetBool(cfgKeyLogPretty),
		Output: out,
	})
}

// openStore resolves the data directory, creates a SQLite backend, and
// attaches it. The caller must defer Detach.
func (a *app) openStore(cmd *cobra.Command, m *metrics.Metrics) (*sqlite.Backend, error) {
	dataDir, err := a.dataDir()
	if err != nil {
		return nil, sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	cfg := types.Config{
		Backend: a.config.GetString(cfgKeyBackend),
		DataDir: dataDir,
	}

	opts := []sqlite.Option{sqlite.WithLogger(logger.Component(a.logger(cmd.ErrOrStderr()), "store"))}
	if m != nil {
		opts = append(opts, sqlite.WithMetrics(m))
	}
	store := sqlite.NewBackend(opts...)
	if err := store.Attach(cfg); err != nil {
		if errors.Is(err, types.ErrBackendEmpty) || errors.Is(err, types.ErrBackendUnknown) {
			return nil, userError(fmt.Errorf("attach store: %w", err))
		}
		return nil, sysError(fmt.Errorf("attach store: %w", err))
	}
	return store, nil
}

// submit runs one command against the store. The base version is
// --base-version when given, otherwise the current version.
func (a *app) submit(cmd *cobra.Command, c types.Command) error {
	clientID := a.clientID()
	if strings.TrimSpace(clientID) == "" {
		return userError(types.ErrEmptyClientID)
	}

	store, err := a.openStore(cmd, nil)
	if err != nil {
		return err
	}
	defer store.Detach()

	ctx := cmd.Context()
	base := a.flags.baseVersion
	if base < 0 {
		v, err := store.Version(ctx)
		if err != nil {
			return sysError(fmt.Errorf("read version: %w", err))
		}
		base = v.VersionID
	}

	res := store.TryWrite(ctx, base, clientID, c)
	if err := a.printResult(cmd.OutOrStdout(), res); err != nil {
		return sysError(err)
	}
	return resultError(res)
}

// resultView is the JSON form of a write result.
type resultView struct {
	Status    string          `json:"status"`
	Op        string          `json:"op"`
	VersionID int64           `json:"version_id"`
	Outcome   *types.Outcome  `json:"outcome,omitempty"`
	Conflict  *types.Conflict `json:"conflict,omitempty"`
	Error     string          `json:"error,omitempty"`
}

func (a *app) printResult(w io.Writer, res types.WriteResult) error {
	if a.flags.jsonMode {
		view := resultView{
			Status:    res.Status.String(),
			Op:        res.Op,
			VersionID: res.VersionID,
			Conflict:  res.Conflict,
		}
		if res.OK() {
			view.Outcome = &res.Outcome
		}
		if res.Err != nil {
			view.Error = res.Err.Error()
		}
		return printJSON(w, view)
	}

	if !res.OK() {
		// Failures are reported on stderr through the returned error.
		return nil
	}
	_, err := fmt.Fprintf(w, "%s: version %d%s\n", res.Op, res.VersionID, describeOutcome(res.Op, res.Outcome))
	return err
}

func describeOutcome(op string, o types.Outcome) string {
	switch op {
	case types.OpAddGroup:
		return fmt.Sprintf(", group %d", o.GroupID)
	case types.OpToggleGroup:
		return fmt.Sprintf(", enabled=%t", o.Enabled)
	case types.OpDeleteGroup:
		return fmt.Sprintf(", %d deleted", o.Deleted)
	case types.OpBatchGroups:
		return fmt.Sprintf(", %d affected, %d deleted", o.Affected, o.Deleted)
	case types.OpMoveGroups:
		var b strings.Builder
		fmt.Fprintf(&b, ", %d moved", o.Moved)
		for _, e := range o.MoveErrors {
			fmt.Fprintf(&b, "\n  group %d: %s", e.ChildID, e.Error)
		}
		return b.String()
	case sqlite.OpImport:
		return fmt.Sprintf(", %d records", o.Affected)
	default:
		return fmt.Sprintf(", %d affected", o.Affected)
	}
}

// resultError maps a non-OK status to an exit code.
func resultError(res types.WriteResult) error {
	switch res.Status {
	case types.StatusOK:
		return nil
	case types.StatusConflict:
		n := 0
		if res.Conflict != nil {
			n = res.Conflict.UniqueModifiers
		}
		return userError(fmt.Errorf("conflict: store is at version %d, changed by %d other modifier(s)", res.VersionID, n))
	case types.StatusInvalid, types.StatusRejected:
		return userError(res.Err)
	default:
		return sysError(res.Err)
	}
}

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// parseID parses a positional group id argument.
func parseID(name, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, userError(fmt.Errorf("invalid %s %q", name, s))
	}
	return id, nil
}

func parseIDs(name string, args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, s := range args {
		id, err := parseID(name, s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
