package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/workbook"
	"gorm.io/gorm"
)

// WorkbookRepository implements workbook.Repository on GORM.
type WorkbookRepository struct {
	db *gorm.DB
}

// NewWorkbookRepository creates a new workbook repository
func NewWorkbookRepository(db *gorm.DB) *WorkbookRepository {
	return &WorkbookRepository{db: db}
}

// FindByName returns the workbook with the given name, or nil when absent.
func (r *WorkbookRepository) FindByName(ctx context.Context, name string) (*workbook.Workbook, error) {
	var model WorkbookModel
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find workbook by name: %w", err)
	}
	return toDomainWorkbook(&model), nil
}

// FindByID returns the workbook with the given ID, or nil when absent.
func (r *WorkbookRepository) FindByID(ctx context.Context, id string) (*workbook.Workbook, error) {
	var model WorkbookModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find workbook by id: %w", err)
	}
	return toDomainWorkbook(&model), nil
}

// FindOrCreate returns the workbook with the given name, creating it when it
// does not exist yet. The second return value reports whether it was created.
func (r *WorkbookRepository) FindOrCreate(ctx context.Context, name string) (*workbook.Workbook, bool, error) {
	existing, err := r.FindByName(ctx, name)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	model := &WorkbookModel{
		ID:   uuid.New().String(),
		Name: name,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		// Lost a create race; the winner's row is the one we want.
		if fallback, ferr := r.FindByName(ctx, name); ferr == nil && fallback != nil {
			return fallback, false, nil
		}
		return nil, false, fmt.Errorf("failed to create workbook: %w", err)
	}
	return toDomainWorkbook(model), true, nil
}

// Delete removes a workbook and all of its cells.
func (r *WorkbookRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("workbook_id = ?", id).Delete(&CellModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete workbook cells: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&WorkbookModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete workbook: %w", err)
		}
		return nil
	})
}

func toDomainWorkbook(model *WorkbookModel) *workbook.Workbook {
	return &workbook.Workbook{
		ID:        model.ID,
		Name:      model.Name,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// Ensure WorkbookRepository implements workbook.Repository
var _ workbook.Repository = (*WorkbookRepository)(nil)
