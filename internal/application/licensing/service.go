package licensing

import (
	"context"
	"errors"
	"strings"

	"github.com/ledgerbook/backend/internal/application/workbook"
	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/domain/license"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StatusResponse describes the entitlement derived for one identifier
type StatusResponse struct {
	Status   string `json:"status"`
	DaysLeft int    `json:"days_left"`
}

// RegisterRequest starts or refreshes a trial for an identifier
type RegisterRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Service provides trial and license operations against the connected
// workbook's license sheet.
type Service struct {
	workbooks *workbook.Service
	logger    *zap.Logger
}

// NewService creates a new licensing service
func NewService(workbooks *workbook.Service, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{workbooks: workbooks, logger: logger}
}

// Status derives the entitlement for the identifier without writing anything.
// Unknown identifiers are NOT_FOUND; callers register first.
func (s *Service) Status(ctx context.Context, email string) (*StatusResponse, error) {
	session, err := s.workbooks.Session()
	if err != nil {
		return nil, err
	}

	result, err := session.Licenses.Status(ctx, email)
	if err != nil {
		if errors.Is(err, ledger.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	return toResponse(result), nil
}

// Register ensures a ledger entry for the identifier. A first registration
// starts a trial; later calls refresh the last-seen marker and return the
// current entitlement.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*StatusResponse, error) {
	session, err := s.workbooks.Session()
	if err != nil {
		return nil, err
	}

	result, err := session.Licenses.Ensure(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	s.logger.Info("license registration",
		zap.String("status", string(result.Status)),
		// The identifier itself never reaches logs, only its shape.
		zap.Int("identifier_len", len(strings.TrimSpace(req.Email))),
	)
	return toResponse(result), nil
}

func toResponse(result license.Result) *StatusResponse {
	return &StatusResponse{
		Status:   string(result.Status),
		DaysLeft: result.DaysLeft,
	}
}
