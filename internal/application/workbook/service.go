package workbook

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/domain/license"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/domain/workbook"
	"go.uber.org/zap"
)

// GridFactory opens a grid scoped to one stored workbook.
type GridFactory func(workbookID string) workbook.Grid

// Session bundles the stores bound to the currently connected workbook.
// All record, settings, and license operations go through one of these.
type Session struct {
	Workbook   *workbook.Workbook
	Grid       workbook.Grid
	Stores     map[workbook.EntityKind]*ledger.Store
	Timestamps *ledger.TimestampLedger
	Settings   *ledger.SettingsBlob
	Licenses   *license.Ledger
}

// Store returns the record store for the given entity kind.
func (s *Session) Store(kind workbook.EntityKind) (*ledger.Store, error) {
	store, ok := s.Stores[kind]
	if !ok {
		return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("unknown entity kind %q", kind))
	}
	return store, nil
}

// StatusResponse describes the connection state
type StatusResponse struct {
	Connected  bool     `json:"connected"`
	WorkbookID string   `json:"workbook_id,omitempty"`
	Name       string   `json:"name,omitempty"`
	Sheets     []string `json:"sheets,omitempty"`
}

// ConnectResponse is returned by Connect
type ConnectResponse struct {
	StatusResponse
	Created bool `json:"created"`
}

// Service manages the connected-workbook lifecycle. At most one workbook is
// connected at a time; operations against a disconnected service fail with
// NOT_CONFIGURED.
type Service struct {
	repo   workbook.Repository
	grids  GridFactory
	obf    license.Obfuscator
	logger *zap.Logger

	mu      sync.RWMutex
	session *Session
}

// NewService creates a new workbook service
func NewService(repo workbook.Repository, grids GridFactory, obf license.Obfuscator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		grids:  grids,
		obf:    obf,
		logger: logger,
	}
}

// Connect opens the named workbook, creating it when it does not exist, and
// makes it the active session. Sheets and headers are provisioned on first
// connect and verified on every reconnect.
func (s *Service) Connect(ctx context.Context, name string) (*ConnectResponse, error) {
	wb, created, err := s.repo.FindOrCreate(ctx, name)
	if err != nil {
		return nil, err
	}

	grid := s.grids(wb.ID)
	if err := s.ensureSheets(ctx, grid); err != nil {
		return nil, fmt.Errorf("failed to provision workbook sheets: %w", err)
	}

	stores := make(map[workbook.EntityKind]*ledger.Store, len(workbook.EntityKinds))
	for _, kind := range workbook.EntityKinds {
		stores[kind] = ledger.NewStore(grid, workbook.Layouts[kind])
	}

	session := &Session{
		Workbook:   wb,
		Grid:       grid,
		Stores:     stores,
		Timestamps: ledger.NewTimestampLedger(grid),
		Settings:   ledger.NewSettingsBlob(grid),
		Licenses:   license.NewLedger(grid, s.obf),
	}

	s.mu.Lock()
	s.session = session
	s.mu.Unlock()

	s.logger.Info("workbook connected",
		zap.String("workbook_id", wb.ID),
		zap.String("name", wb.Name),
		zap.Bool("created", created),
	)

	return &ConnectResponse{
		StatusResponse: StatusResponse{
			Connected:  true,
			WorkbookID: wb.ID,
			Name:       wb.Name,
			Sheets:     workbook.Sheets(),
		},
		Created: created,
	}, nil
}

// Status reports the current connection state.
func (s *Service) Status() StatusResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return StatusResponse{Connected: false}
	}
	return StatusResponse{
		Connected:  true,
		WorkbookID: s.session.Workbook.ID,
		Name:       s.session.Workbook.Name,
		Sheets:     workbook.Sheets(),
	}
}

// Disconnect drops the active session. Stored data is untouched.
func (s *Service) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		s.logger.Info("workbook disconnected",
			zap.String("workbook_id", s.session.Workbook.ID))
	}
	s.session = nil
}

// Session returns the active session, or NOT_CONFIGURED when no workbook is
// connected.
func (s *Service) Session() (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return nil, shared.ErrNotConfigured
	}
	return s.session, nil
}

// Timestamps returns the last-modified marker of every dataset, keyed by
// dataset name.
func (s *Service) Timestamps(ctx context.Context) (map[string]time.Time, error) {
	session, err := s.Session()
	if err != nil {
		return nil, err
	}

	stamps, err := session.Timestamps.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]time.Time, len(stamps))
	for dataset, stamp := range stamps {
		out[string(dataset)] = stamp
	}
	return out, nil
}

// ensureSheets writes header rows and control-sheet labels for any sheet that
// does not carry them yet. Existing data is never overwritten.
func (s *Service) ensureSheets(ctx context.Context, grid workbook.Grid) error {
	for _, kind := range workbook.EntityKinds {
		layout := workbook.Layouts[kind]
		marker, err := grid.ReadCell(ctx, layout.Sheet, 1, 1)
		if err != nil {
			return err
		}
		if marker != "" {
			continue
		}
		header := make([]string, len(layout.Columns))
		for i, col := range layout.Columns {
			header[i] = col.Name
		}
		if err := grid.WriteRange(ctx, layout.Sheet, 1, 1, [][]string{header}); err != nil {
			return err
		}
	}

	marker, err := grid.ReadCell(ctx, workbook.ControlSheet, workbook.SettingsVersionRow, workbook.ControlLabelCol)
	if err != nil {
		return err
	}
	if marker == "" {
		if err := grid.WriteCell(ctx, workbook.ControlSheet, workbook.SettingsVersionRow, workbook.ControlLabelCol, "schema_version"); err != nil {
			return err
		}
		if err := grid.WriteCell(ctx, workbook.ControlSheet, workbook.SettingsBlobRow, workbook.ControlLabelCol, "settings"); err != nil {
			return err
		}
		for _, dataset := range workbook.Datasets {
			row, _ := workbook.TimestampCell(dataset)
			if err := grid.WriteCell(ctx, workbook.ControlSheet, row, workbook.ControlLabelCol, string(dataset)); err != nil {
				return err
			}
		}
	}

	marker, err = grid.ReadCell(ctx, workbook.LicenseSheet, 1, 1)
	if err != nil {
		return err
	}
	if marker == "" {
		header := []string{"identifier", "trial_start", "trial_end", "last_seen"}
		if err := grid.WriteRange(ctx, workbook.LicenseSheet, 1, 1, [][]string{header}); err != nil {
			return err
		}
	}

	return nil
}
