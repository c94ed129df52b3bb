package store

import (
	"context"
	"fmt"

	"github.com/j-millet/scriptrunner/internal/ir"
)

// WriteDispatch appends one dispatch attempt. Uses ON CONFLICT(id) DO
// NOTHING, so writing the same dispatch id twice keeps the first row.
// rec.Seq is ignored; the journal assigns it.
func (s *Store) WriteDispatch(ctx context.Context, rec ir.DispatchRecord) error {
	inputs := string(rec.Inputs)
	if inputs == "" {
		inputs = "{}"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dispatches
		(id, tick, rule_id, rule, command, outcome, exit_code, error, duration_ms, inputs)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		int64(rec.Tick),
		rec.RuleID,
		rec.Rule,
		rec.Command,
		string(rec.Outcome),
		rec.ExitCode,
		rec.Error,
		rec.DurationMS,
		inputs,
	)
	if err != nil {
		return fmt.Errorf("write dispatch %s: %w", rec.ID, err)
	}
	return nil
}
