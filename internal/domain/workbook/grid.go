package workbook

import "context"

// Grid is the storage abstraction behind every table in a workbook.
// Addresses are 1-based, matching spreadsheet conventions. Implementations
// must tolerate reads past the populated area and return blank cells there.
type Grid interface {
	// ReadRange returns the rectangle [startRow..endRow] x [startCol..endCol]
	// of the named sheet. Missing cells come back as empty strings; the result
	// always has endRow-startRow+1 rows of endCol-startCol+1 cells.
	ReadRange(ctx context.Context, sheet string, startRow, startCol, endRow, endCol int) ([][]string, error)

	// WriteRange writes the given rows starting at (startRow, startCol).
	// Writing an empty string clears the cell.
	WriteRange(ctx context.Context, sheet string, startRow, startCol int, rows [][]string) error

	// ClearRange blanks every cell in the rectangle.
	ClearRange(ctx context.Context, sheet string, startRow, startCol, endRow, endCol int) error

	// LastRow reports the highest row index containing any value on the sheet,
	// or 0 when the sheet is empty. This is the host's notion of the used
	// range, not a stored record count.
	LastRow(ctx context.Context, sheet string) (int, error)

	// ReadCell returns a single cell value, empty string when blank.
	ReadCell(ctx context.Context, sheet string, row, col int) (string, error)

	// WriteCell sets a single cell value.
	WriteCell(ctx context.Context, sheet string, row, col int, value string) error
}
