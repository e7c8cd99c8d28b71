package workbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntityKind(t *testing.T) {
	for _, k := range EntityKinds {
		parsed, err := ParseEntityKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}

	_, err := ParseEntityKind("wishlist")
	assert.Error(t, err)
	_, err = ParseEntityKind("")
	assert.Error(t, err)
}

func TestParseDataset(t *testing.T) {
	for _, d := range Datasets {
		parsed, err := ParseDataset(string(d))
		require.NoError(t, err)
		assert.Equal(t, d, parsed)
	}

	_, err := ParseDataset("everything")
	assert.Error(t, err)
}

func TestLayoutsAreWellFormed(t *testing.T) {
	for _, k := range EntityKinds {
		k := k
		t.Run(string(k), func(t *testing.T) {
			layout, ok := Layouts[k]
			require.True(t, ok)
			assert.Equal(t, k, layout.Kind)
			assert.NotEmpty(t, layout.Sheet)
			assert.Equal(t, 2, layout.FirstRow)
			assert.Equal(t, ColID, layout.Columns[layout.IDCol()].Type)
			assert.Contains(t, layout.Touches, DatasetMasterData)
		})
	}
}

func TestLayoutAmountCol(t *testing.T) {
	expenses := Layouts[KindExpenses]
	idx := expenses.AmountCol()
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, ColAmount, expenses.Columns[idx].Type)
	assert.True(t, expenses.Columns[idx].Required)

	// Category budgets are optional.
	categories := Layouts[KindCategories]
	assert.False(t, categories.Columns[categories.AmountCol()].Required)
}

func TestTimestampCellAddresses(t *testing.T) {
	seen := make(map[int]Dataset)
	for _, d := range Datasets {
		row, col := TimestampCell(d)
		assert.Equal(t, ControlValueCol, col)
		assert.GreaterOrEqual(t, row, timestampFirstRow)

		prev, dup := seen[row]
		require.False(t, dup, "datasets %s and %s share row %d", prev, d, row)
		seen[row] = d
	}

	// Timestamp rows sit below the settings cells.
	for row := range seen {
		assert.Greater(t, row, SettingsBlobRow)
	}
}

func TestSheetsCoversEveryTable(t *testing.T) {
	sheets := Sheets()
	assert.Contains(t, sheets, ControlSheet)
	assert.Contains(t, sheets, LicenseSheet)
	for _, k := range EntityKinds {
		assert.Contains(t, sheets, Layouts[k].Sheet)
	}
	assert.Len(t, sheets, len(EntityKinds)+2)
}
