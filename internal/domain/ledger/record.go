package ledger

import (
	"github.com/ledgerbook/backend/internal/domain/workbook"
	"github.com/shopspring/decimal"
)

// Record is one logical entity row. Identity is the stable ID, never the row
// position; Row is only a cache of where the record was last seen and is zero
// for records that have not been stored yet.
type Record struct {
	ID        string
	Amount    decimal.Decimal
	HasAmount bool
	Fields    map[string]string
	Row       int
}

// Field returns a named text or date field, empty string when absent.
func (r Record) Field(name string) string {
	return r.Fields[name]
}

// SetField sets a named text or date field.
func (r *Record) SetField(name, value string) {
	if r.Fields == nil {
		r.Fields = make(map[string]string)
	}
	r.Fields[name] = value
}

// Valid reports whether the record may be written to the given layout's
// table. A record with a blank ID is never valid; a required amount must be
// present and positive. Invalid records are silently dropped from batches
// rather than surfaced as partial failures.
func (r Record) Valid(layout workbook.Layout) bool {
	if r.ID == "" {
		return false
	}
	for _, c := range layout.Columns {
		if c.Type != workbook.ColAmount {
			continue
		}
		if c.Required {
			if !r.HasAmount || !r.Amount.IsPositive() {
				return false
			}
		} else if r.HasAmount && r.Amount.IsNegative() {
			return false
		}
	}
	return true
}
