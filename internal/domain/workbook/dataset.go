package workbook

import (
	"fmt"
)

// Dataset names a logical grouping of records whose staleness clients track
// through a single timestamp. The set is closed; ad-hoc string keys from
// callers are rejected at parse time.
type Dataset string

const (
	DatasetNetWorth   Dataset = "netWorth"
	DatasetRecurring  Dataset = "recurring"
	DatasetSettings   Dataset = "settings"
	DatasetMasterData Dataset = "masterData"
	DatasetBudget     Dataset = "budget"
	DatasetCategories Dataset = "categories"
	DatasetIncome     Dataset = "income"
)

// Datasets lists every dataset in control-sheet order.
var Datasets = []Dataset{
	DatasetNetWorth,
	DatasetRecurring,
	DatasetSettings,
	DatasetMasterData,
	DatasetBudget,
	DatasetCategories,
	DatasetIncome,
}

// ParseDataset validates a dataset name.
func ParseDataset(s string) (Dataset, error) {
	for _, d := range Datasets {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown dataset %q", s)
}

// ControlSheet is the reserved sheet holding the settings blob and the
// per-dataset timestamp cells.
const ControlSheet = "_meta"

// Control-sheet cell addresses. Column 1 holds labels written by EnsureSheets,
// column 2 the values. Timestamps occupy one row per dataset below the
// settings cells.
const (
	SettingsVersionRow = 1
	SettingsBlobRow    = 2
	ControlValueCol    = 2
	ControlLabelCol    = 1
	timestampFirstRow  = 4
)

// TimestampCell returns the control-sheet address of a dataset's
// last-modified marker.
func TimestampCell(d Dataset) (row, col int) {
	for i, ds := range Datasets {
		if ds == d {
			return timestampFirstRow + i, ControlValueCol
		}
	}
	// Unreachable for values produced by ParseDataset.
	return 0, 0
}
