package workbook

import "fmt"

// EntityKind identifies one record table within a workbook.
type EntityKind string

const (
	KindExpenses   EntityKind = "expenses"
	KindIncome     EntityKind = "income"
	KindRecurring  EntityKind = "recurring"
	KindNetWorth   EntityKind = "networth"
	KindCategories EntityKind = "categories"
)

// EntityKinds lists every record table.
var EntityKinds = []EntityKind{
	KindExpenses,
	KindIncome,
	KindRecurring,
	KindNetWorth,
	KindCategories,
}

// ParseEntityKind validates an entity kind name.
func ParseEntityKind(s string) (EntityKind, error) {
	for _, k := range EntityKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown entity kind %q", s)
}

// ColumnType declares how a cell is decoded.
type ColumnType int

const (
	ColText ColumnType = iota
	ColID
	ColDate
	ColAmount
)

// Column describes one cell of a table row.
type Column struct {
	Name     string
	Type     ColumnType
	Required bool
}

// Layout describes where and how one entity's records are stored: the sheet,
// the first data row (rows above it are headers), and the ordered column span.
// Touches lists the datasets a mutation to this table invalidates; the
// umbrella masterData dataset is always included.
type Layout struct {
	Kind     EntityKind
	Sheet    string
	FirstRow int
	Columns  []Column
	Touches  []Dataset
}

// Width returns the number of columns the table occupies.
func (l Layout) Width() int { return len(l.Columns) }

// IDCol returns the 0-based index of the identifying column.
func (l Layout) IDCol() int {
	for i, c := range l.Columns {
		if c.Type == ColID {
			return i
		}
	}
	return 0
}

// AmountCol returns the 0-based index of the amount column, or -1 when the
// table has none.
func (l Layout) AmountCol() int {
	for i, c := range l.Columns {
		if c.Type == ColAmount {
			return i
		}
	}
	return -1
}

// Layouts maps every entity kind to its table descriptor. All tables start at
// row 2 (row 1 is the header) in their own sheet.
var Layouts = map[EntityKind]Layout{
	KindExpenses: {
		Kind:     KindExpenses,
		Sheet:    "expenses",
		FirstRow: 2,
		Columns: []Column{
			{Name: "id", Type: ColID, Required: true},
			{Name: "date", Type: ColDate},
			{Name: "amount", Type: ColAmount, Required: true},
			{Name: "name", Type: ColText},
			{Name: "category", Type: ColText},
			{Name: "account", Type: ColText},
			{Name: "notes", Type: ColText},
		},
		Touches: []Dataset{DatasetBudget, DatasetMasterData},
	},
	KindIncome: {
		Kind:     KindIncome,
		Sheet:    "income",
		FirstRow: 2,
		Columns: []Column{
			{Name: "id", Type: ColID, Required: true},
			{Name: "date", Type: ColDate},
			{Name: "amount", Type: ColAmount, Required: true},
			{Name: "name", Type: ColText},
			{Name: "category", Type: ColText},
			{Name: "account", Type: ColText},
			{Name: "notes", Type: ColText},
		},
		Touches: []Dataset{DatasetIncome, DatasetMasterData},
	},
	KindRecurring: {
		Kind:     KindRecurring,
		Sheet:    "recurring",
		FirstRow: 2,
		Columns: []Column{
			{Name: "id", Type: ColID, Required: true},
			{Name: "name", Type: ColText},
			{Name: "amount", Type: ColAmount, Required: true},
			{Name: "category", Type: ColText},
			{Name: "frequency", Type: ColText},
			{Name: "next_due", Type: ColDate},
			{Name: "account", Type: ColText},
			{Name: "notes", Type: ColText},
		},
		Touches: []Dataset{DatasetRecurring, DatasetMasterData},
	},
	KindNetWorth: {
		Kind:     KindNetWorth,
		Sheet:    "networth",
		FirstRow: 2,
		Columns: []Column{
			{Name: "id", Type: ColID, Required: true},
			{Name: "date", Type: ColDate},
			{Name: "amount", Type: ColAmount, Required: true},
			{Name: "name", Type: ColText},
			{Name: "category", Type: ColText},
			{Name: "notes", Type: ColText},
		},
		Touches: []Dataset{DatasetNetWorth, DatasetMasterData},
	},
	// Categories carry an optional monthly budget; a blank budget is valid,
	// so the amount column is not required here.
	KindCategories: {
		Kind:     KindCategories,
		Sheet:    "categories",
		FirstRow: 2,
		Columns: []Column{
			{Name: "id", Type: ColID, Required: true},
			{Name: "name", Type: ColText},
			{Name: "group", Type: ColText},
			{Name: "budget", Type: ColAmount},
		},
		Touches: []Dataset{DatasetCategories, DatasetBudget, DatasetMasterData},
	},
}

// LicenseSheet holds the trial/license ledger, outside any entity layout.
const LicenseSheet = "_licenses"

// Sheets returns every sheet a connected workbook must contain.
func Sheets() []string {
	out := []string{ControlSheet, LicenseSheet}
	for _, k := range EntityKinds {
		out = append(out, Layouts[k].Sheet)
	}
	return out
}
