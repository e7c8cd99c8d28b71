package licensing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appwb "github.com/ledgerbook/backend/internal/application/workbook"
	"github.com/ledgerbook/backend/internal/domain/license"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/domain/workbook"
)

type fakeRepository struct {
	byName map[string]*workbook.Workbook
}

func (r *fakeRepository) FindByName(_ context.Context, name string) (*workbook.Workbook, error) {
	return r.byName[name], nil
}

func (r *fakeRepository) FindByID(_ context.Context, _ string) (*workbook.Workbook, error) {
	return nil, nil
}

func (r *fakeRepository) FindOrCreate(_ context.Context, name string) (*workbook.Workbook, bool, error) {
	if wb, ok := r.byName[name]; ok {
		return wb, false, nil
	}
	wb := &workbook.Workbook{ID: uuid.New().String(), Name: name}
	r.byName[name] = wb
	return wb, true, nil
}

func (r *fakeRepository) Delete(_ context.Context, _ string) error { return nil }

type stubObfuscator struct{}

func (stubObfuscator) Obfuscate(plain string) (string, error) { return "tok:" + plain, nil }

func (stubObfuscator) Reveal(obfuscated string) (string, error) {
	if !strings.HasPrefix(obfuscated, "tok:") {
		return "", errors.New("not a token")
	}
	return strings.TrimPrefix(obfuscated, "tok:"), nil
}

func newConnectedService(t *testing.T) *Service {
	t.Helper()
	grid := workbook.NewMemoryGrid()
	repo := &fakeRepository{byName: make(map[string]*workbook.Workbook)}
	workbooks := appwb.NewService(repo, func(string) workbook.Grid { return grid }, stubObfuscator{}, nil)
	_, err := workbooks.Connect(context.Background(), "household")
	require.NoError(t, err)
	return NewService(workbooks, nil)
}

func TestLicensingRegisterStartsTrial(t *testing.T) {
	ctx := context.Background()
	svc := newConnectedService(t)

	resp, err := svc.Register(ctx, RegisterRequest{Email: "user@example.com"})
	require.NoError(t, err)
	assert.Equal(t, string(license.StatusTrial), resp.Status)
	assert.Equal(t, license.TrialDays, resp.DaysLeft)
}

func TestLicensingStatusAfterRegister(t *testing.T) {
	ctx := context.Background()
	svc := newConnectedService(t)

	_, err := svc.Register(ctx, RegisterRequest{Email: "user@example.com"})
	require.NoError(t, err)

	// Lookup is case-insensitive on the identifier.
	resp, err := svc.Status(ctx, "User@Example.com")
	require.NoError(t, err)
	assert.Equal(t, string(license.StatusTrial), resp.Status)
}

func TestLicensingStatusUnknownIdentifier(t *testing.T) {
	svc := newConnectedService(t)

	_, err := svc.Status(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestLicensingRequireConnection(t *testing.T) {
	grid := workbook.NewMemoryGrid()
	repo := &fakeRepository{byName: make(map[string]*workbook.Workbook)}
	workbooks := appwb.NewService(repo, func(string) workbook.Grid { return grid }, stubObfuscator{}, nil)
	svc := NewService(workbooks, nil)

	_, err := svc.Status(context.Background(), "user@example.com")
	assert.ErrorIs(t, err, shared.ErrNotConfigured)
	_, err = svc.Register(context.Background(), RegisterRequest{Email: "user@example.com"})
	assert.ErrorIs(t, err, shared.ErrNotConfigured)
}
