package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GridStore exposes one workbook's cells as a workbook.Grid. All addresses
// are 1-based; reads of unpopulated cells return empty strings and writes of
// empty strings delete the backing row.
type GridStore struct {
	db         *gorm.DB
	workbookID string
}

// NewGridStore creates a grid store scoped to a single workbook.
func NewGridStore(db *gorm.DB, workbookID string) *GridStore {
	return &GridStore{db: db, workbookID: workbookID}
}

// ReadRange returns the rectangle [startRow..endRow] x [startCol..endCol].
func (s *GridStore) ReadRange(ctx context.Context, sheet string, startRow, startCol, endRow, endCol int) ([][]string, error) {
	if startRow < 1 || startCol < 1 || endRow < startRow || endCol < startCol {
		return nil, fmt.Errorf("invalid range %d:%d-%d:%d", startRow, startCol, endRow, endCol)
	}

	var cells []CellModel
	err := s.db.WithContext(ctx).
		Where("workbook_id = ? AND sheet = ? AND row_index BETWEEN ? AND ? AND col_index BETWEEN ? AND ?",
			s.workbookID, sheet, startRow, endRow, startCol, endCol).
		Find(&cells).Error
	if err != nil {
		return nil, gridError("read range", err)
	}

	rows := make([][]string, endRow-startRow+1)
	for i := range rows {
		rows[i] = make([]string, endCol-startCol+1)
	}
	for _, c := range cells {
		rows[c.Row-startRow][c.Col-startCol] = c.Value
	}
	return rows, nil
}

// WriteRange writes the given rows starting at (startRow, startCol). Empty
// string values clear the corresponding cells.
func (s *GridStore) WriteRange(ctx context.Context, sheet string, startRow, startCol int, rows [][]string) error {
	if startRow < 1 || startCol < 1 {
		return fmt.Errorf("invalid range origin %d:%d", startRow, startCol)
	}

	var upserts []CellModel
	var clears [][2]int
	for i, row := range rows {
		for j, value := range row {
			if value == "" {
				clears = append(clears, [2]int{startRow + i, startCol + j})
				continue
			}
			upserts = append(upserts, CellModel{
				WorkbookID: s.workbookID,
				Sheet:      sheet,
				Row:        startRow + i,
				Col:        startCol + j,
				Value:      value,
			})
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(upserts) > 0 {
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{
					{Name: "workbook_id"}, {Name: "sheet"}, {Name: "row_index"}, {Name: "col_index"},
				},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&upserts).Error
			if err != nil {
				return gridError("write range", err)
			}
		}
		for _, addr := range clears {
			err := tx.Where("workbook_id = ? AND sheet = ? AND row_index = ? AND col_index = ?",
				s.workbookID, sheet, addr[0], addr[1]).
				Delete(&CellModel{}).Error
			if err != nil {
				return gridError("clear cell", err)
			}
		}
		return nil
	})
}

// ClearRange deletes every cell in the rectangle.
func (s *GridStore) ClearRange(ctx context.Context, sheet string, startRow, startCol, endRow, endCol int) error {
	if startRow < 1 || startCol < 1 || endRow < startRow || endCol < startCol {
		return fmt.Errorf("invalid range %d:%d-%d:%d", startRow, startCol, endRow, endCol)
	}
	err := s.db.WithContext(ctx).
		Where("workbook_id = ? AND sheet = ? AND row_index BETWEEN ? AND ? AND col_index BETWEEN ? AND ?",
			s.workbookID, sheet, startRow, endRow, startCol, endCol).
		Delete(&CellModel{}).Error
	if err != nil {
		return gridError("clear range", err)
	}
	return nil
}

// LastRow returns the highest populated row on the sheet, 0 when empty.
func (s *GridStore) LastRow(ctx context.Context, sheet string) (int, error) {
	var last int
	err := s.db.WithContext(ctx).
		Model(&CellModel{}).
		Where("workbook_id = ? AND sheet = ?", s.workbookID, sheet).
		Select("COALESCE(MAX(row_index), 0)").
		Scan(&last).Error
	if err != nil {
		return 0, gridError("find last row", err)
	}
	return last, nil
}

// ReadCell returns the value at (row, col), empty string when unpopulated.
func (s *GridStore) ReadCell(ctx context.Context, sheet string, row, col int) (string, error) {
	rows, err := s.ReadRange(ctx, sheet, row, col, row, col)
	if err != nil {
		return "", err
	}
	return rows[0][0], nil
}

// WriteCell writes a single cell value.
func (s *GridStore) WriteCell(ctx context.Context, sheet string, row, col int, value string) error {
	return s.WriteRange(ctx, sheet, row, col, [][]string{{value}})
}
