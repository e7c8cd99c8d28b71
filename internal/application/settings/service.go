package settings

import (
	"context"
	"errors"

	"github.com/ledgerbook/backend/internal/application/workbook"
	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/domain/shared"
	domainwb "github.com/ledgerbook/backend/internal/domain/workbook"
	"go.uber.org/zap"
)

// SettingsResponse represents the settings blob in API responses
type SettingsResponse struct {
	SchemaVersion int               `json:"schema_version"`
	Options       map[string]string `json:"options"`
}

// UpdateRequest replaces the options wholesale. Partial merges are not
// supported; clients send the full option set every time.
type UpdateRequest struct {
	Options map[string]string `json:"options" binding:"required"`
}

// Service provides settings operations against the connected workbook.
type Service struct {
	workbooks *workbook.Service
	logger    *zap.Logger
}

// NewService creates a new settings service
func NewService(workbooks *workbook.Service, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{workbooks: workbooks, logger: logger}
}

// Get loads the settings blob, migrating older schema versions on the fly.
// A workbook with no stored settings yields the defaults.
func (s *Service) Get(ctx context.Context) (*SettingsResponse, error) {
	session, err := s.workbooks.Session()
	if err != nil {
		return nil, err
	}

	settings, err := session.Settings.Load(ctx)
	if err != nil {
		if errors.Is(err, ledger.ErrMalformedBlob) {
			return nil, shared.NewDomainError("PARSE_ERROR", "stored settings are malformed")
		}
		return nil, err
	}

	return toResponse(settings), nil
}

// Update replaces the stored options and stamps the settings dataset.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*SettingsResponse, error) {
	session, err := s.workbooks.Session()
	if err != nil {
		return nil, err
	}

	settings := ledger.Settings{
		SchemaVersion: ledger.SettingsVersion,
		Options:       req.Options,
	}
	if err := session.Settings.Save(ctx, settings); err != nil {
		return nil, err
	}
	if err := session.Timestamps.Touch(ctx, domainwb.DatasetSettings); err != nil {
		return nil, err
	}

	s.logger.Info("settings replaced", zap.Int("options", len(req.Options)))
	return toResponse(settings), nil
}

func toResponse(settings ledger.Settings) *SettingsResponse {
	return &SettingsResponse{
		SchemaVersion: settings.SchemaVersion,
		Options:       settings.Options,
	}
}
