package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ledgerbook/backend/internal/domain/shared"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:               gormlogger.Default.LogMode(gormlogger.Silent),
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestGridStoreLastRowQueryError(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewGridStore(db, "wb-1")

	mock.ExpectQuery(`SELECT COALESCE\(MAX\(row_index\), 0\) FROM "cells"`).
		WillReturnError(errors.New("connection reset"))

	_, err := store.LastRow(context.Background(), "expenses")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to find last row")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGridStoreReadRangeQueryError(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewGridStore(db, "wb-1")

	mock.ExpectQuery(`SELECT \* FROM "cells"`).
		WillReturnError(errors.New("connection reset"))

	_, err := store.ReadRange(context.Background(), "expenses", 2, 1, 4, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read range")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGridStorePermissionErrors(t *testing.T) {
	cases := []struct {
		name   string
		driver error
	}{
		{"postgres revoked grant", errors.New(`ERROR: permission denied for table cells (SQLSTATE 42501)`)},
		{"readonly sqlite file", errors.New("attempt to write a readonly database")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			store := NewGridStore(db, "wb-1")

			mock.ExpectQuery(`SELECT \* FROM "cells"`).
				WillReturnError(tc.driver)

			_, err := store.ReadRange(context.Background(), "expenses", 2, 1, 4, 3)
			assert.ErrorIs(t, err, shared.ErrAccessDenied)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGridStoreLastRowScansValue(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewGridStore(db, "wb-1")

	mock.ExpectQuery(`SELECT COALESCE\(MAX\(row_index\), 0\) FROM "cells"`).
		WithArgs("wb-1", "expenses").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(7))

	last, err := store.LastRow(context.Background(), "expenses")
	require.NoError(t, err)
	assert.Equal(t, 7, last)
	assert.NoError(t, mock.ExpectationsWereMet())
}
