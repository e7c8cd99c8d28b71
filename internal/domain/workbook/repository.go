package workbook

import (
	"context"
	"time"
)

// Workbook identifies one stored workbook.
type Workbook struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository manages stored workbooks. Lookups return (nil, nil) when the
// workbook does not exist.
type Repository interface {
	FindByName(ctx context.Context, name string) (*Workbook, error)
	FindByID(ctx context.Context, id string) (*Workbook, error)
	// FindOrCreate returns the named workbook, creating it when missing.
	// The second return value reports whether it was created.
	FindOrCreate(ctx context.Context, name string) (*Workbook, bool, error)
	Delete(ctx context.Context, id string) error
}
