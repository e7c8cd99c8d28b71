package persistence

import "time"

// WorkbookModel is one stored workbook.
type WorkbookModel struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"uniqueIndex;size:128;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for WorkbookModel
func (WorkbookModel) TableName() string {
	return "workbooks"
}

// CellModel is one populated grid cell. Blank cells have no row here;
// clearing a cell deletes it.
type CellModel struct {
	WorkbookID string `gorm:"primaryKey;size:36"`
	Sheet      string `gorm:"primaryKey;size:64"`
	Row        int    `gorm:"primaryKey;column:row_index"`
	Col        int    `gorm:"primaryKey;column:col_index"`
	Value      string `gorm:"not null"`
	UpdatedAt  time.Time
}

// TableName returns the table name for CellModel
func (CellModel) TableName() string {
	return "cells"
}
