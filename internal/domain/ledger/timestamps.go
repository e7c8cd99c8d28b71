package ledger

import (
	"context"
	"time"

	"github.com/ledgerbook/backend/internal/domain/workbook"
)

// TimestampLedger tracks one last-modified marker per dataset in the control
// sheet. It is an at-least-once invalidation signal: consumers must treat any
// change as "possibly stale, refetch", never as a precise diff.
type TimestampLedger struct {
	grid workbook.Grid
	now  func() time.Time
}

// NewTimestampLedger creates a ledger over the given grid.
func NewTimestampLedger(grid workbook.Grid) *TimestampLedger {
	return &TimestampLedger{grid: grid, now: time.Now}
}

// WithClock overrides the time source, for tests.
func (t *TimestampLedger) WithClock(now func() time.Time) *TimestampLedger {
	t.now = now
	return t
}

// Touch stamps the dataset with the current instant. Every mutating
// operation calls Touch for each dataset it affects.
func (t *TimestampLedger) Touch(ctx context.Context, datasets ...workbook.Dataset) error {
	stamp := t.now().UTC().Format(time.RFC3339)
	for _, d := range datasets {
		row, col := workbook.TimestampCell(d)
		if err := t.grid.WriteCell(ctx, workbook.ControlSheet, row, col, stamp); err != nil {
			return err
		}
	}
	return nil
}

// ReadAll returns the marker for every dataset. Missing or unparseable
// entries default to now, so a cold-start client treats absent timestamps as
// fresh rather than stale forever.
func (t *TimestampLedger) ReadAll(ctx context.Context) (map[workbook.Dataset]time.Time, error) {
	out := make(map[workbook.Dataset]time.Time, len(workbook.Datasets))
	fallback := t.now().UTC()
	for _, d := range workbook.Datasets {
		row, col := workbook.TimestampCell(d)
		cell, err := t.grid.ReadCell(ctx, workbook.ControlSheet, row, col)
		if err != nil {
			return nil, err
		}
		stamp, perr := time.Parse(time.RFC3339, cell)
		if cell == "" || perr != nil {
			out[d] = fallback
			continue
		}
		out[d] = stamp
	}
	return out, nil
}
