package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/j-millet/scriptrunner/internal/ir"
)

// ReadDispatches returns up to limit of the most recent dispatches, newest
// first. A limit of 0 or less returns every row.
//
// Returns an empty slice (not nil) if the journal is empty.
func (s *Store) ReadDispatches(ctx context.Context, limit int) ([]ir.DispatchRecord, error) {
	query := `
		SELECT seq, id, tick, rule_id, rule, command, outcome, exit_code, error, duration_ms, inputs
		FROM dispatches
		ORDER BY seq DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query dispatches: %w", err)
	}
	defer rows.Close()

	records := []ir.DispatchRecord{}
	for rows.Next() {
		rec, err := scanDispatch(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dispatches: %w", err)
	}
	return records, nil
}

// ReadDispatch returns the dispatch with the given id.
// Returns sql.ErrNoRows (wrapped) if it does not exist.
func (s *Store) ReadDispatch(ctx context.Context, id string) (ir.DispatchRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT seq, id, tick, rule_id, rule, command, outcome, exit_code, error, duration_ms, inputs
		FROM dispatches
		WHERE id = ?
	`, id)

	rec, err := scanDispatch(row)
	if err != nil {
		return ir.DispatchRecord{}, fmt.Errorf("read dispatch %s: %w", id, err)
	}
	return rec, nil
}

// CountDispatches returns the number of rows per outcome.
func (s *Store) CountDispatches(ctx context.Context) (map[ir.DispatchOutcome]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT outcome, COUNT(*) FROM dispatches GROUP BY outcome
	`)
	if err != nil {
		return nil, fmt.Errorf("count dispatches: %w", err)
	}
	defer rows.Close()

	counts := make(map[ir.DispatchOutcome]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[ir.DispatchOutcome(outcome)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}
	return counts, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDispatch(sc scanner) (ir.DispatchRecord, error) {
	var (
		rec     ir.DispatchRecord
		tick    int64
		outcome string
		inputs  string
	)
	err := sc.Scan(
		&rec.Seq,
		&rec.ID,
		&tick,
		&rec.RuleID,
		&rec.Rule,
		&rec.Command,
		&outcome,
		&rec.ExitCode,
		&rec.Error,
		&rec.DurationMS,
		&inputs,
	)
	if err == sql.ErrNoRows {
		return rec, err
	}
	if err != nil {
		return rec, fmt.Errorf("scan dispatch: %w", err)
	}
	rec.Tick = uint64(tick)
	rec.Outcome = ir.DispatchOutcome(outcome)
	rec.Inputs = []byte(inputs)
	return rec, nil
}
