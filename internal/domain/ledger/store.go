package ledger

import (
	"context"
	"strings"
	"sync"

	"github.com/ledgerbook/backend/internal/domain/workbook"
)

// ScanDiagnostics summarizes one pass over a table's occupied range.
// Skipped rows are a resilience measure, not an error condition: partially
// filled or malformed rows are left in place and excluded from results.
type ScanDiagnostics struct {
	Scanned int `json:"scanned"`
	Decoded int `json:"decoded"`
	Skipped int `json:"skipped"`
	Holes   int `json:"holes"`
}

// UpsertResult reports what a batch upsert did.
type UpsertResult struct {
	Updated  int `json:"updated"`
	Inserted int `json:"inserted"`
	Dropped  int `json:"dropped"`
}

// Store is a record table backed by a contiguous row range of one sheet.
// Records are keyed by stable ID; physical rows are slots that may be holes
// (cleared records) and are reused first-fit on insert. Mutations on one
// Store are serialized; the grid itself is still shared state, so writers in
// other processes can race (see DESIGN.md).
type Store struct {
	grid  workbook.Grid
	codec Codec

	mu sync.Mutex
}

// NewStore creates a Store over the given grid and table layout.
func NewStore(grid workbook.Grid, layout workbook.Layout) *Store {
	return &Store{grid: grid, codec: Codec{Layout: layout}}
}

// Layout returns the table descriptor this store serves.
func (s *Store) Layout() workbook.Layout { return s.codec.Layout }

// ReadAll scans the occupied range and returns every decodable, valid
// record together with scan diagnostics. The occupied range ends at the
// grid's reported last row, not at a stored count.
func (s *Store) ReadAll(ctx context.Context) ([]Record, ScanDiagnostics, error) {
	layout := s.codec.Layout

	last, err := s.grid.LastRow(ctx, layout.Sheet)
	if err != nil {
		return nil, ScanDiagnostics{}, err
	}
	if last < layout.FirstRow {
		return []Record{}, ScanDiagnostics{}, nil
	}

	rows, err := s.grid.ReadRange(ctx, layout.Sheet, layout.FirstRow, 1, last, layout.Width())
	if err != nil {
		return nil, ScanDiagnostics{}, err
	}

	diag := ScanDiagnostics{Scanned: len(rows)}
	records := make([]Record, 0, len(rows))
	for i, raw := range rows {
		rec, ok := s.codec.Decode(raw)
		if !ok {
			if isBlankRow(raw) {
				diag.Holes++
			} else {
				diag.Skipped++
			}
			continue
		}
		if !rec.Valid(layout) {
			diag.Skipped++
			continue
		}
		rec.Row = layout.FirstRow + i
		records = append(records, rec)
		diag.Decoded++
	}
	return records, diag, nil
}

// UpsertBatch writes each valid input record: records whose ID already
// occupies a slot are overwritten in place, the rest fill holes first-fit
// and then append past the last used row. Duplicate IDs within the input
// resolve last-write-wins on the same slot. Invalid records are dropped from
// the batch. Each changed slot is one grid write; there is no transaction
// spanning the batch.
func (s *Store) UpsertBatch(ctx context.Context, records []Record) (UpsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	layout := s.codec.Layout
	idCol := layout.IDCol() + 1

	last, err := s.grid.LastRow(ctx, layout.Sheet)
	if err != nil {
		return UpsertResult{}, err
	}

	byID := make(map[string]int)
	var holes []int
	if last >= layout.FirstRow {
		ids, err := s.grid.ReadRange(ctx, layout.Sheet, layout.FirstRow, idCol, last, idCol)
		if err != nil {
			return UpsertResult{}, err
		}
		for i, row := range ids {
			slot := layout.FirstRow + i
			id := strings.TrimSpace(row[0])
			if id == "" {
				holes = append(holes, slot)
				continue
			}
			key := strings.ToLower(id)
			if _, dup := byID[key]; !dup {
				byID[key] = slot
			}
		}
	}

	appendRow := last + 1
	if appendRow < layout.FirstRow {
		appendRow = layout.FirstRow
	}

	var res UpsertResult
	for _, rec := range records {
		if !rec.Valid(layout) {
			res.Dropped++
			continue
		}
		key := strings.ToLower(rec.ID)
		slot, exists := byID[key]
		if exists {
			res.Updated++
		} else {
			switch {
			case len(holes) > 0:
				slot = holes[0]
				holes = holes[1:]
			default:
				slot = appendRow
				appendRow++
			}
			byID[key] = slot
			res.Inserted++
		}
		rec.Row = slot
		if err := s.grid.WriteRange(ctx, layout.Sheet, slot, 1, [][]string{s.codec.Encode(rec)}); err != nil {
			return res, err
		}
	}
	return res, nil
}

// ClearByID blanks the slot holding the identified record, turning it into a
// hole. Matching is exact and case-insensitive on the identifying column;
// when no slot matches, a substring scan across the full field span is tried
// as a fallback for malformed client IDs, but only an unambiguous (single)
// fallback match is cleared. Returns shared.ErrNotFound via the caller's
// mapping when nothing matched.
func (s *Store) ClearByID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	layout := s.codec.Layout
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrRecordNotFound
	}

	last, err := s.grid.LastRow(ctx, layout.Sheet)
	if err != nil {
		return err
	}
	if last < layout.FirstRow {
		return ErrRecordNotFound
	}

	idCol := layout.IDCol() + 1
	ids, err := s.grid.ReadRange(ctx, layout.Sheet, layout.FirstRow, idCol, last, idCol)
	if err != nil {
		return err
	}
	for i, row := range ids {
		if strings.EqualFold(strings.TrimSpace(row[0]), id) {
			return s.clearSlot(ctx, layout.FirstRow+i)
		}
	}

	// Fallback: substring match across the full span, accepted only when
	// exactly one row matches.
	rows, err := s.grid.ReadRange(ctx, layout.Sheet, layout.FirstRow, 1, last, layout.Width())
	if err != nil {
		return err
	}
	needle := strings.ToLower(id)
	match := -1
	for i, raw := range rows {
		for _, cell := range raw {
			if strings.Contains(strings.ToLower(cell), needle) {
				if match >= 0 && match != layout.FirstRow+i {
					return ErrRecordNotFound
				}
				match = layout.FirstRow + i
				break
			}
		}
	}
	if match < 0 {
		return ErrRecordNotFound
	}
	return s.clearSlot(ctx, match)
}

func (s *Store) clearSlot(ctx context.Context, row int) error {
	layout := s.codec.Layout
	return s.grid.ClearRange(ctx, layout.Sheet, row, 1, row, layout.Width())
}

func isBlankRow(raw []string) bool {
	for _, cell := range raw {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
