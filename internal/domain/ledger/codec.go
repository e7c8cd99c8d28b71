package ledger

import (
	"strings"

	"github.com/ledgerbook/backend/internal/domain/workbook"
	"github.com/shopspring/decimal"
)

// Codec maps raw grid rows to Records and back for one table layout.
// It is tolerant on the read side: rows that cannot be decoded are reported
// as skipped, never as errors.
type Codec struct {
	Layout workbook.Layout
}

// Decode converts a raw row into a Record. The second return is false when
// the row is entirely blank (a hole), the identifying cell is blank, or a
// required amount cell is absent or does not parse to a finite number.
func (c Codec) Decode(raw []string) (Record, bool) {
	blank := true
	for _, cell := range raw {
		if strings.TrimSpace(cell) != "" {
			blank = false
			break
		}
	}
	if blank {
		return Record{}, false
	}

	rec := Record{Fields: make(map[string]string)}
	for i, col := range c.Layout.Columns {
		var cell string
		if i < len(raw) {
			cell = strings.TrimSpace(raw[i])
		}
		switch col.Type {
		case workbook.ColID:
			if cell == "" {
				return Record{}, false
			}
			rec.ID = cell
		case workbook.ColAmount:
			if cell == "" {
				if col.Required {
					return Record{}, false
				}
				continue
			}
			amount, err := decimal.NewFromString(cell)
			if err != nil {
				return Record{}, false
			}
			rec.Amount = amount
			rec.HasAmount = true
		default:
			if cell != "" {
				rec.Fields[col.Name] = cell
			}
		}
	}
	return rec, true
}

// Encode produces a fixed-width row aligned to the layout's column span.
// Absent optional fields become empty strings; an absent value for a required
// amount column becomes "0" so the written row stays numerically well formed.
func (c Codec) Encode(rec Record) []string {
	row := make([]string, c.Layout.Width())
	for i, col := range c.Layout.Columns {
		switch col.Type {
		case workbook.ColID:
			row[i] = rec.ID
		case workbook.ColAmount:
			if rec.HasAmount {
				row[i] = rec.Amount.String()
			} else if col.Required {
				row[i] = "0"
			}
		default:
			row[i] = rec.Fields[col.Name]
		}
	}
	return row
}
