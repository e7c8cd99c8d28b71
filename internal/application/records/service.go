package records

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ledgerbook/backend/internal/application/workbook"
	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/domain/shared"
	domainwb "github.com/ledgerbook/backend/internal/domain/workbook"
	"github.com/ledgerbook/backend/internal/infrastructure/cache"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RecordResponse represents a stored record in API responses
type RecordResponse struct {
	ID     string            `json:"id"`
	Amount *decimal.Decimal  `json:"amount,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
	Row    int               `json:"row"`
}

// RecordRequest represents one record in a batch write
type RecordRequest struct {
	ID     string            `json:"id"`
	Amount *decimal.Decimal  `json:"amount"`
	Fields map[string]string `json:"fields"`
}

// ListResponse bundles the decoded records with scan diagnostics
type ListResponse struct {
	Records []RecordResponse `json:"records"`
	Scanned int              `json:"scanned"`
	Skipped int              `json:"skipped"`
	Cached  bool             `json:"cached"`
}

// ReplaceResponse summarizes a batch write
type ReplaceResponse struct {
	Updated  int `json:"updated"`
	Inserted int `json:"inserted"`
	Dropped  int `json:"dropped"`
}

// Service provides record operations against the connected workbook.
// Mutations stamp the datasets the entity's layout touches and invalidate
// the kind's cached snapshot.
type Service struct {
	workbooks *workbook.Service
	cache     cache.RecordCache
	logger    *zap.Logger
}

// NewService creates a new record service
func NewService(workbooks *workbook.Service, recordCache cache.RecordCache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		workbooks: workbooks,
		cache:     recordCache,
		logger:    logger,
	}
}

// List returns every decodable record of the kind. Snapshots are served from
// cache when present; diagnostics are only populated on a fresh scan.
func (s *Service) List(ctx context.Context, kind domainwb.EntityKind) (*ListResponse, error) {
	session, err := s.workbooks.Session()
	if err != nil {
		return nil, err
	}
	store, err := session.Store(kind)
	if err != nil {
		return nil, err
	}

	cacheKey := s.cacheKey(session, kind)
	if payload, cerr := s.cache.Get(ctx, cacheKey); cerr == nil && payload != nil {
		var cached ListResponse
		if jerr := json.Unmarshal(payload, &cached); jerr == nil {
			cached.Cached = true
			return &cached, nil
		}
		// Unreadable snapshot; drop it and fall through to the grid.
		_ = s.cache.Invalidate(ctx, cacheKey)
	}

	records, diag, err := store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	resp := &ListResponse{
		Records: make([]RecordResponse, 0, len(records)),
		Scanned: diag.Scanned,
		Skipped: diag.Skipped,
	}
	for _, rec := range records {
		resp.Records = append(resp.Records, toRecordResponse(rec))
	}

	if payload, jerr := json.Marshal(resp); jerr == nil {
		if cerr := s.cache.Set(ctx, cacheKey, payload, cache.DefaultRecordTTL); cerr != nil {
			s.logger.Warn("failed to cache record snapshot",
				zap.String("kind", string(kind)), zap.Error(cerr))
		}
	}

	return resp, nil
}

// ReplaceBatch upserts the batch into the kind's table. Existing IDs are
// rewritten in place, new records fill holes before extending the table, and
// invalid records are dropped without failing the batch.
func (s *Service) ReplaceBatch(ctx context.Context, kind domainwb.EntityKind, reqs []RecordRequest) (*ReplaceResponse, error) {
	session, err := s.workbooks.Session()
	if err != nil {
		return nil, err
	}
	store, err := session.Store(kind)
	if err != nil {
		return nil, err
	}

	batch := make([]ledger.Record, 0, len(reqs))
	for _, req := range reqs {
		batch = append(batch, toDomainRecord(req))
	}

	result, err := store.UpsertBatch(ctx, batch)
	if err != nil {
		return nil, err
	}

	if err := s.afterMutation(ctx, session, kind); err != nil {
		return nil, err
	}

	s.logger.Info("record batch written",
		zap.String("kind", string(kind)),
		zap.Int("updated", result.Updated),
		zap.Int("inserted", result.Inserted),
		zap.Int("dropped", result.Dropped),
	)

	return &ReplaceResponse{
		Updated:  result.Updated,
		Inserted: result.Inserted,
		Dropped:  result.Dropped,
	}, nil
}

// Delete clears the record with the given ID, leaving a reusable hole.
func (s *Service) Delete(ctx context.Context, kind domainwb.EntityKind, id string) error {
	session, err := s.workbooks.Session()
	if err != nil {
		return err
	}
	store, err := session.Store(kind)
	if err != nil {
		return err
	}

	if err := store.ClearByID(ctx, id); err != nil {
		if errors.Is(err, ledger.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}

	return s.afterMutation(ctx, session, kind)
}

// afterMutation stamps the touched datasets and drops the cached snapshot.
func (s *Service) afterMutation(ctx context.Context, session *workbook.Session, kind domainwb.EntityKind) error {
	layout := domainwb.Layouts[kind]
	if err := session.Timestamps.Touch(ctx, layout.Touches...); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx, s.cacheKey(session, kind)); err != nil {
		s.logger.Warn("failed to invalidate record cache",
			zap.String("kind", string(kind)), zap.Error(err))
	}
	return nil
}

func (s *Service) cacheKey(session *workbook.Session, kind domainwb.EntityKind) string {
	return session.Workbook.ID + ":" + string(kind)
}

func toRecordResponse(rec ledger.Record) RecordResponse {
	resp := RecordResponse{
		ID:     rec.ID,
		Fields: rec.Fields,
		Row:    rec.Row,
	}
	if rec.HasAmount {
		amount := rec.Amount
		resp.Amount = &amount
	}
	return resp
}

func toDomainRecord(req RecordRequest) ledger.Record {
	rec := ledger.Record{
		ID:     req.ID,
		Fields: req.Fields,
	}
	if req.Amount != nil {
		rec.Amount = *req.Amount
		rec.HasAmount = true
	}
	return rec
}
