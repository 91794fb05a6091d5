package sqlite

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mesh-intelligence/rulestore/pkg/types"
)

// TryWrite applies cmd if baseVersion matches the stored version. On success
// the version advances by exactly one and a log row names clientID; the
// command, the bump, and the log row commit together or not at all.
func (b *Backend) TryWrite(ctx context.Context, baseVersion int64, clientID string, cmd types.Command) types.WriteResult {
	start := time.Now()
	res := b.tryWrite(ctx, baseVersion, clientID, cmd)
	b.observe(res, baseVersion, clientID, time.Since(start))
	return res
}

func (b *Backend) tryWrite(ctx context.Context, baseVersion int64, clientID string, cmd types.Command) types.WriteResult {
	res := types.WriteResult{Op: "unknown", VersionID: baseVersion}
	if cmd != nil {
		res.Op = cmd.Op()
	}

	if strings.TrimSpace(clientID) == "" {
		return invalidResult(res, &types.ValidationError{Field: "client_id", Err: types.ErrEmptyClientID})
	}
	if cmd == nil {
		return invalidResult(res, &types.ValidationError{Field: "command", Err: types.ErrUnknownCommand})
	}
	if err := cmd.Validate(); err != nil {
		return invalidResult(res, err)
	}

	writer, reader, release, err := b.attachedPools()
	if err != nil {
		return faultResult(res, err)
	}
	defer release()

	tx, err := writer.BeginTx(ctx, nil)
	if err != nil {
		return faultResult(res, err)
	}
	defer tx.Rollback()

	current, err := readVersion(ctx, tx)
	if err != nil {
		return faultResult(res, err)
	}
	if current.VersionID != baseVersion {
		// Release the writer before reading the snapshot.
		_ = tx.Rollback()
		conflict, err := buildConflict(ctx, reader, baseVersion)
		if err != nil {
			return faultResult(res, err)
		}
		res.Status = types.StatusConflict
		res.VersionID = conflict.Latest.VersionID
		res.Conflict = conflict
		return res
	}

	outcome, err := apply(ctx, tx, cmd)
	if err != nil {
		var ierr *types.IntegrityError
		if errors.As(err, &ierr) {
			res.Status = types.StatusRejected
			res.Err = err
			return res
		}
		return faultResult(res, err)
	}

	now := time.Now()
	next, err := bumpVersion(ctx, tx, current.VersionID, now)
	if err != nil {
		return faultResult(res, err)
	}
	if err := appendLog(ctx, tx, next, clientID, now); err != nil {
		return faultResult(res, err)
	}
	if err := tx.Commit(); err != nil {
		return faultResult(res, err)
	}

	res.Status = types.StatusOK
	res.VersionID = next
	res.Outcome = outcome
	return res
}

func invalidResult(res types.WriteResult, err error) types.WriteResult {
	res.Status = types.StatusInvalid
	res.Err = err
	return res
}

func faultResult(res types.WriteResult, err error) types.WriteResult {
	res.Status = types.StatusFault
	res.Err = err
	return res
}

// observe logs and counts one write attempt.
func (b *Backend) observe(res types.WriteResult, baseVersion int64, clientID string, elapsed time.Duration) {
	b.metrics.RecordWrite(res.Op, res.Status.String(), elapsed)

	switch res.Status {
	case types.StatusOK:
		b.metrics.SetVersion(res.VersionID)
		b.log.Debug().
			Str("op", res.Op).
			Str("client_id", clientID).
			Int64("version_id", res.VersionID).
			Dur("elapsed", elapsed).
			Msg("write committed")
	case types.StatusConflict:
		b.metrics.RecordConflict(res.Conflict.UniqueModifiers)
		b.log.Warn().
			Str("op", res.Op).
			Str("client_id", clientID).
			Int64("base_version", baseVersion).
			Int64("version_id", res.VersionID).
			Int("unique_modifiers", res.Conflict.UniqueModifiers).
			Msg("write conflict")
	case types.StatusInvalid:
		b.log.Debug().Str("op", res.Op).Err(res.Err).Msg("write invalid")
	case types.StatusRejected:
		b.log.Info().Str("op", res.Op).Str("client_id", clientID).Err(res.Err).Msg("write rejected")
	case types.StatusFault:
		b.log.Error().Str("op", res.Op).Str("client_id", clientID).Err(res.Err).Msg("write failed")
	}
}
