package integrity

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/application/workbook"
	"github.com/ledgerbook/backend/internal/domain/ledger"
	domainwb "github.com/ledgerbook/backend/internal/domain/workbook"
	"github.com/ledgerbook/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// Problem reasons reported by Scan.
const (
	ReasonHole        = "hole"
	ReasonBlankID     = "blank_id"
	ReasonMalformedID = "malformed_id"
	ReasonDuplicateID = "duplicate_id"
	ReasonBadAmount   = "bad_amount"
)

// RowProblem flags one table row that a read scan would skip
type RowProblem struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Report describes the health of one entity table
type Report struct {
	Kind     string       `json:"kind"`
	Scanned  int          `json:"scanned"`
	Decoded  int          `json:"decoded"`
	Holes    int          `json:"holes"`
	Problems []RowProblem `json:"problems"`
}

// RepairResponse summarizes a repair pass
type RepairResponse struct {
	Repaired int   `json:"repaired"`
	Rows     []int `json:"rows,omitempty"`
}

// Service inspects entity tables for rows the tolerant read path silently
// skips, and repairs the recoverable subset.
type Service struct {
	workbooks *workbook.Service
	cache     cache.RecordCache
	logger    *zap.Logger
}

// NewService creates a new integrity service
func NewService(workbooks *workbook.Service, recordCache cache.RecordCache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{workbooks: workbooks, cache: recordCache, logger: logger}
}

// Scan walks the kind's full table span and flags every row the record store
// would not surface, plus identity defects the tolerant read path lets
// through: IDs that are not UUIDs and IDs claimed by an earlier row. Holes
// are expected and listed separately from defective rows.
func (s *Service) Scan(ctx context.Context, kind domainwb.EntityKind) (*Report, error) {
	session, err := s.workbooks.Session()
	if err != nil {
		return nil, err
	}
	if _, err := session.Store(kind); err != nil {
		return nil, err
	}

	layout := domainwb.Layouts[kind]
	codec := ledger.Codec{Layout: layout}

	report := &Report{Kind: string(kind), Problems: []RowProblem{}}

	last, err := session.Grid.LastRow(ctx, layout.Sheet)
	if err != nil {
		return nil, err
	}
	if last < layout.FirstRow {
		return report, nil
	}

	rows, err := session.Grid.ReadRange(ctx, layout.Sheet, layout.FirstRow, 1, last, layout.Width())
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for i, raw := range rows {
		row := layout.FirstRow + i
		report.Scanned++

		rec, ok := codec.Decode(raw)
		if !ok {
			report.Problems = append(report.Problems, RowProblem{Row: row, Reason: classify(layout, raw)})
			if blankRow(raw) {
				report.Holes++
			}
			continue
		}

		if reason := vet(layout, rec, seen); reason != "" {
			report.Problems = append(report.Problems, RowProblem{Row: row, Reason: reason})
			continue
		}
		report.Decoded++
	}

	return report, nil
}

// Repair assigns fresh IDs to rows whose identifying cell is blank or not a
// UUID. Duplicate IDs are reported but never auto-merged, and rows with bad
// amounts are never guessed at.
func (s *Service) Repair(ctx context.Context, kind domainwb.EntityKind) (*RepairResponse, error) {
	report, err := s.Scan(ctx, kind)
	if err != nil {
		return nil, err
	}

	session, err := s.workbooks.Session()
	if err != nil {
		return nil, err
	}
	layout := domainwb.Layouts[kind]

	resp := &RepairResponse{}
	for _, problem := range report.Problems {
		if problem.Reason != ReasonBlankID && problem.Reason != ReasonMalformedID {
			continue
		}
		id := uuid.New().String()
		if err := session.Grid.WriteCell(ctx, layout.Sheet, problem.Row, layout.IDCol()+1, id); err != nil {
			return nil, err
		}
		resp.Repaired++
		resp.Rows = append(resp.Rows, problem.Row)
	}

	if resp.Repaired > 0 {
		if err := session.Timestamps.Touch(ctx, layout.Touches...); err != nil {
			return nil, err
		}
		if err := s.cache.Invalidate(ctx, session.Workbook.ID+":"+string(kind)); err != nil {
			s.logger.Warn("failed to invalidate record cache after repair",
				zap.String("kind", string(kind)), zap.Error(err))
		}
		s.logger.Info("integrity repair assigned ids",
			zap.String("kind", string(kind)),
			zap.Int("repaired", resp.Repaired),
		)
	}

	return resp, nil
}

// classify names the defect that made Decode reject the row. Decode fails
// only on blank rows, blank IDs, and unusable amount cells.
func classify(layout domainwb.Layout, raw []string) string {
	if blankRow(raw) {
		return ReasonHole
	}

	idCol := layout.IDCol()
	if idCol >= len(raw) || strings.TrimSpace(raw[idCol]) == "" {
		return ReasonBlankID
	}

	return ReasonBadAmount
}

// vet flags decodable rows that are still defective: amounts the read path
// skips, IDs that are not UUIDs, and IDs an earlier row already claimed.
// Duplicate matching is case-insensitive, mirroring the store's ID lookup.
func vet(layout domainwb.Layout, rec ledger.Record, seen map[string]bool) string {
	if !rec.Valid(layout) {
		return ReasonBadAmount
	}
	if _, err := uuid.Parse(rec.ID); err != nil {
		return ReasonMalformedID
	}
	key := strings.ToLower(rec.ID)
	if seen[key] {
		return ReasonDuplicateID
	}
	seen[key] = true
	return ""
}

func blankRow(raw []string) bool {
	for _, cell := range raw {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
