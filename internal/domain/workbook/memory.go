package workbook

import (
	"context"
	"sync"
)

type cellAddr struct {
	row, col int
}

// MemoryGrid is a Grid held entirely in memory. It backs tests and serves as
// the scratch workbook before a persistent one is connected.
type MemoryGrid struct {
	mu     sync.RWMutex
	sheets map[string]map[cellAddr]string
}

// NewMemoryGrid creates an empty in-memory grid.
func NewMemoryGrid() *MemoryGrid {
	return &MemoryGrid{sheets: make(map[string]map[cellAddr]string)}
}

func (g *MemoryGrid) sheet(name string) map[cellAddr]string {
	s, ok := g.sheets[name]
	if !ok {
		s = make(map[cellAddr]string)
		g.sheets[name] = s
	}
	return s
}

// ReadRange implements Grid.
func (g *MemoryGrid) ReadRange(_ context.Context, sheet string, startRow, startCol, endRow, endCol int) ([][]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	s := g.sheets[sheet]
	rows := make([][]string, 0, endRow-startRow+1)
	for r := startRow; r <= endRow; r++ {
		row := make([]string, 0, endCol-startCol+1)
		for c := startCol; c <= endCol; c++ {
			row = append(row, s[cellAddr{r, c}])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteRange implements Grid.
func (g *MemoryGrid) WriteRange(_ context.Context, sheet string, startRow, startCol int, rows [][]string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := g.sheet(sheet)
	for i, row := range rows {
		for j, v := range row {
			addr := cellAddr{startRow + i, startCol + j}
			if v == "" {
				delete(s, addr)
			} else {
				s[addr] = v
			}
		}
	}
	return nil
}

// ClearRange implements Grid.
func (g *MemoryGrid) ClearRange(_ context.Context, sheet string, startRow, startCol, endRow, endCol int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := g.sheets[sheet]
	for r := startRow; r <= endRow; r++ {
		for c := startCol; c <= endCol; c++ {
			delete(s, cellAddr{r, c})
		}
	}
	return nil
}

// LastRow implements Grid.
func (g *MemoryGrid) LastRow(_ context.Context, sheet string) (int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	last := 0
	for addr := range g.sheets[sheet] {
		if addr.row > last {
			last = addr.row
		}
	}
	return last, nil
}

// ReadCell implements Grid.
func (g *MemoryGrid) ReadCell(_ context.Context, sheet string, row, col int) (string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.sheets[sheet][cellAddr{row, col}], nil
}

// WriteCell implements Grid.
func (g *MemoryGrid) WriteCell(_ context.Context, sheet string, row, col int, value string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := g.sheet(sheet)
	addr := cellAddr{row, col}
	if value == "" {
		delete(s, addr)
	} else {
		s[addr] = value
	}
	return nil
}

var _ Grid = (*MemoryGrid)(nil)
