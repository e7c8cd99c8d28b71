package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkbookRepositoryFindOrCreate(t *testing.T) {
	ctx := context.Background()
	repo := NewWorkbookRepository(newTestDB(t))

	wb, created, err := repo.FindOrCreate(ctx, "household")
	require.NoError(t, err)
	require.NotNil(t, wb)
	assert.True(t, created)
	assert.NotEmpty(t, wb.ID)
	assert.Equal(t, "household", wb.Name)

	again, created, err := repo.FindOrCreate(ctx, "household")
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.False(t, created)
	assert.Equal(t, wb.ID, again.ID)
}

func TestWorkbookRepositoryFindByName(t *testing.T) {
	ctx := context.Background()
	repo := NewWorkbookRepository(newTestDB(t))

	wb, err := repo.FindByName(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, wb)

	created, _, err := repo.FindOrCreate(ctx, "household")
	require.NoError(t, err)

	found, err := repo.FindByName(ctx, "household")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)
}

func TestWorkbookRepositoryFindByID(t *testing.T) {
	ctx := context.Background()
	repo := NewWorkbookRepository(newTestDB(t))

	wb, err := repo.FindByID(ctx, "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, wb)

	created, _, err := repo.FindOrCreate(ctx, "household")
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "household", found.Name)
}

func TestWorkbookRepositoryDeleteRemovesCells(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewWorkbookRepository(db)

	wb, _, err := repo.FindOrCreate(ctx, "household")
	require.NoError(t, err)

	grid := NewGridStore(db, wb.ID)
	require.NoError(t, grid.WriteCell(ctx, "expenses", 2, 1, "exp-1"))

	require.NoError(t, repo.Delete(ctx, wb.ID))

	found, err := repo.FindByID(ctx, wb.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	var count int64
	require.NoError(t, db.Model(&CellModel{}).Where("workbook_id = ?", wb.ID).Count(&count).Error)
	assert.Zero(t, count)
}
