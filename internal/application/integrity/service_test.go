package integrity

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appwb "github.com/ledgerbook/backend/internal/application/workbook"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/domain/workbook"
	"github.com/ledgerbook/backend/internal/infrastructure/cache"
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

func newConnectedService(t *testing.T) (*Service, *workbook.MemoryGrid) {
	t.Helper()
	grid := workbook.NewMemoryGrid()
	repo := &fakeRepository{byName: make(map[string]*workbook.Workbook)}
	workbooks := appwb.NewService(repo, func(string) workbook.Grid { return grid }, stubObfuscator{}, nil)
	_, err := workbooks.Connect(context.Background(), "household")
	require.NoError(t, err)
	return NewService(workbooks, cache.NewInMemoryRecordCache(), nil), grid
}

// Well-formed record IDs for seeded rows.
const (
	idGroceries = "c56a4180-65aa-42ec-a945-5fd21dec0538"
	idTypo      = "9a1de644-86d5-4f21-a4e2-f7f1a1bb25f2"
	idCoffee    = "16fd2706-8baf-433b-82eb-8c7fada847da"
)

func seedExpenseRows(t *testing.T, grid workbook.Grid) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, grid.WriteRange(ctx, "expenses", 2, 1, [][]string{
		{idGroceries, "2026-02-01", "42.50", "Groceries", "", "", ""}, // healthy
		{"", "2026-02-02", "10.00", "Lost its id", "", "", ""},        // blank_id
		{idTypo, "2026-02-03", "garbage", "Typo", "", "", ""},         // bad_amount
	}))
	// Row 5 is a hole left by a cleared record; row 6 keeps LastRow past it.
	require.NoError(t, grid.WriteRange(ctx, "expenses", 6, 1, [][]string{
		{idCoffee, "2026-02-06", "5.00", "Coffee", "", "", ""},
	}))
}

func TestIntegrityScan(t *testing.T) {
	ctx := context.Background()
	svc, grid := newConnectedService(t)
	seedExpenseRows(t, grid)

	report, err := svc.Scan(ctx, workbook.KindExpenses)
	require.NoError(t, err)
	assert.Equal(t, "expenses", report.Kind)
	assert.Equal(t, 5, report.Scanned)
	assert.Equal(t, 2, report.Decoded)
	assert.Equal(t, 1, report.Holes)
	assert.Equal(t, []RowProblem{
		{Row: 3, Reason: ReasonBlankID},
		{Row: 4, Reason: ReasonBadAmount},
		{Row: 5, Reason: ReasonHole},
	}, report.Problems)
}

func TestIntegrityScanFlagsIdentityDefects(t *testing.T) {
	ctx := context.Background()
	svc, grid := newConnectedService(t)

	// Two rows claim the same ID (differing only in case) and a third carries
	// an ID that is not a UUID. All three decode, so only the vetting pass
	// can catch them.
	require.NoError(t, grid.WriteRange(ctx, "expenses", 2, 1, [][]string{
		{idGroceries, "2026-02-01", "42.50", "Groceries", "", "", ""},
		{strings.ToUpper(idGroceries), "2026-02-02", "10.00", "Copy", "", "", ""},
		{"not-a-uuid", "2026-02-03", "5.00", "Coffee", "", "", ""},
	}))

	report, err := svc.Scan(ctx, workbook.KindExpenses)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, 1, report.Decoded)
	assert.Equal(t, []RowProblem{
		{Row: 3, Reason: ReasonDuplicateID},
		{Row: 4, Reason: ReasonMalformedID},
	}, report.Problems)
}

func TestIntegrityScanFlagsNonPositiveAmounts(t *testing.T) {
	ctx := context.Background()
	svc, grid := newConnectedService(t)

	// A negative expense decodes but the read path refuses to surface it.
	require.NoError(t, grid.WriteRange(ctx, "expenses", 2, 1, [][]string{
		{idGroceries, "2026-02-01", "-42.50", "Refund gone wrong", "", "", ""},
	}))

	report, err := svc.Scan(ctx, workbook.KindExpenses)
	require.NoError(t, err)
	assert.Zero(t, report.Decoded)
	assert.Equal(t, []RowProblem{{Row: 2, Reason: ReasonBadAmount}}, report.Problems)
}

func TestIntegrityScanEmptyTable(t *testing.T) {
	svc, _ := newConnectedService(t)

	report, err := svc.Scan(context.Background(), workbook.KindExpenses)
	require.NoError(t, err)
	assert.Zero(t, report.Scanned)
	assert.Empty(t, report.Problems)
}

func TestIntegrityRepairAssignsIDs(t *testing.T) {
	ctx := context.Background()
	svc, grid := newConnectedService(t)
	seedExpenseRows(t, grid)

	resp, err := svc.Repair(ctx, workbook.KindExpenses)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Repaired)
	assert.Equal(t, []int{3}, resp.Rows)

	// The repaired row now carries a fresh ID and decodes cleanly.
	cell, err := grid.ReadCell(ctx, "expenses", 3, 1)
	require.NoError(t, err)
	assert.NotEmpty(t, cell)

	report, err := svc.Scan(ctx, workbook.KindExpenses)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Decoded)

	// Repair stamps the touched datasets; bad amounts are left alone.
	row, col := workbook.TimestampCell(workbook.DatasetMasterData)
	stamp, err := grid.ReadCell(ctx, workbook.ControlSheet, row, col)
	require.NoError(t, err)
	assert.NotEmpty(t, stamp)
}

func TestIntegrityRepairRewritesMalformedIDs(t *testing.T) {
	ctx := context.Background()
	svc, grid := newConnectedService(t)

	require.NoError(t, grid.WriteRange(ctx, "expenses", 2, 1, [][]string{
		{"not-a-uuid", "2026-02-01", "42.50", "Groceries", "", "", ""},
		{idCoffee, "2026-02-02", "5.00", "Coffee", "", "", ""},
	}))

	resp, err := svc.Repair(ctx, workbook.KindExpenses)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Repaired)
	assert.Equal(t, []int{2}, resp.Rows)

	cell, err := grid.ReadCell(ctx, "expenses", 2, 1)
	require.NoError(t, err)
	_, err = uuid.Parse(cell)
	assert.NoError(t, err)

	report, err := svc.Scan(ctx, workbook.KindExpenses)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Decoded)
	assert.Empty(t, report.Problems)
}

func TestIntegrityRepairLeavesDuplicatesAlone(t *testing.T) {
	ctx := context.Background()
	svc, grid := newConnectedService(t)

	require.NoError(t, grid.WriteRange(ctx, "expenses", 2, 1, [][]string{
		{idGroceries, "2026-02-01", "42.50", "Groceries", "", "", ""},
		{idGroceries, "2026-02-02", "10.00", "Copy", "", "", ""},
	}))

	resp, err := svc.Repair(ctx, workbook.KindExpenses)
	require.NoError(t, err)
	assert.Zero(t, resp.Repaired)

	// Both rows still carry the original ID; merging is a human decision.
	for _, row := range []int{2, 3} {
		cell, err := grid.ReadCell(ctx, "expenses", row, 1)
		require.NoError(t, err)
		assert.Equal(t, idGroceries, cell)
	}
}

func TestIntegrityRepairNothingToDo(t *testing.T) {
	ctx := context.Background()
	svc, grid := newConnectedService(t)

	require.NoError(t, grid.WriteRange(ctx, "expenses", 2, 1, [][]string{
		{idGroceries, "2026-02-01", "42.50", "Groceries", "", "", ""},
	}))

	resp, err := svc.Repair(ctx, workbook.KindExpenses)
	require.NoError(t, err)
	assert.Zero(t, resp.Repaired)
	assert.Empty(t, resp.Rows)
}

func TestIntegrityRequireConnection(t *testing.T) {
	grid := workbook.NewMemoryGrid()
	repo := &fakeRepository{byName: make(map[string]*workbook.Workbook)}
	workbooks := appwb.NewService(repo, func(string) workbook.Grid { return grid }, stubObfuscator{}, nil)
	svc := NewService(workbooks, cache.NewInMemoryRecordCache(), nil)

	_, err := svc.Scan(context.Background(), workbook.KindExpenses)
	assert.ErrorIs(t, err, shared.ErrNotConfigured)
	_, err = svc.Repair(context.Background(), workbook.KindExpenses)
	assert.ErrorIs(t, err, shared.ErrNotConfigured)
}

func TestIntegrityUnknownKind(t *testing.T) {
	svc, _ := newConnectedService(t)

	_, err := svc.Scan(context.Background(), "wishlist")
	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "VALIDATION_ERROR", derr.Code)
}
