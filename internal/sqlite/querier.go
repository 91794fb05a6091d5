package sqlite

import (
	"context"
	"database/sql"
	"slices"
	"strings"
)

// maxInClauseIDs caps the ids bound into one IN list. SQLite allows at most
// 32766 bind variables per statement.
const maxInClauseIDs = 1000

// querier is satisfied by *sql.DB and *sql.Tx. Repository functions take one
// so they run inside whatever transaction the caller opened.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// inClause returns "(?, ?, ...)" and the ids as arguments.
func inClause(ids []int64) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return "(" + strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ") + ")", args
}

// eachIDChunk calls fn with IN lists of at most maxInClauseIDs distinct ids
// and returns the summed row counts.
func eachIDChunk(ids []int64, fn func(in string, args []any) (int, error)) (int, error) {
	ids = slices.Clone(ids)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	total := 0
	for chunk := range slices.Chunk(ids, maxInClauseIDs) {
		in, args := inClause(chunk)
		n, err := fn(in, args)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func rowsAffected(res sql.Result) (int, error) {
	n, err := res.RowsAffected()
	return int(n), err
}

// queryIDs runs a single-column integer query.
func queryIDs(ctx context.Context, q querier, query string, args ...any) ([]int64, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
