package ledger

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbook/backend/internal/domain/workbook"
)

func seedSettings(t *testing.T, grid workbook.Grid, version, blob string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, grid.WriteCell(ctx, workbook.ControlSheet, workbook.SettingsBlobRow, workbook.ControlValueCol, blob))
	require.NoError(t, grid.WriteCell(ctx, workbook.ControlSheet, workbook.SettingsVersionRow, workbook.ControlValueCol, version))
}

func TestSettingsLoadDefaultsWhenBlank(t *testing.T) {
	blob := NewSettingsBlob(workbook.NewMemoryGrid())

	settings, err := blob.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SettingsVersion, settings.SchemaVersion)
	assert.Equal(t, "USD", settings.Options["currency"])
}

func TestSettingsSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	grid := workbook.NewMemoryGrid()
	blob := NewSettingsBlob(grid)

	saved := Settings{Options: map[string]string{"currency": "EUR", "theme": "dark"}}
	require.NoError(t, blob.Save(ctx, saved))

	versionCell, err := grid.ReadCell(ctx, workbook.ControlSheet, workbook.SettingsVersionRow, workbook.ControlValueCol)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(SettingsVersion), versionCell)

	loaded, err := blob.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, SettingsVersion, loaded.SchemaVersion)
	assert.Equal(t, map[string]string{"currency": "EUR", "theme": "dark"}, loaded.Options)
}

func TestSettingsMigration(t *testing.T) {
	tests := []struct {
		name    string
		version string
		blob    string
		want    map[string]string
	}{
		{
			name:    "v0 flat map with no version cell",
			version: "",
			blob:    `{"currency":"GBP","theme":"light"}`,
			want:    map[string]string{"currency": "GBP", "theme": "light"},
		},
		{
			name:    "v1 wrapped options",
			version: "1",
			blob:    `{"options":{"currency":"JPY"}}`,
			want:    map[string]string{"currency": "JPY"},
		},
		{
			name:    "v1 with no options key",
			version: "1",
			blob:    `{}`,
			want:    map[string]string{},
		},
		{
			name:    "current version",
			version: "2",
			blob:    `{"schema_version":2,"options":{"currency":"CHF"}}`,
			want:    map[string]string{"currency": "CHF"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid := workbook.NewMemoryGrid()
			seedSettings(t, grid, tt.version, tt.blob)

			settings, err := NewSettingsBlob(grid).Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, SettingsVersion, settings.SchemaVersion)
			assert.Equal(t, tt.want, settings.Options)
		})
	}
}

func TestSettingsLoadRejectsMalformedDocuments(t *testing.T) {
	tests := []struct {
		name    string
		version string
		blob    string
	}{
		{"garbage json", "2", `{"options":`},
		{"non-numeric version", "two", `{"options":{}}`},
		{"version from the future", "99", `{"options":{}}`},
		{"v0 non-flat document", "", `[1,2,3]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid := workbook.NewMemoryGrid()
			seedSettings(t, grid, tt.version, tt.blob)

			_, err := NewSettingsBlob(grid).Load(context.Background())
			assert.ErrorIs(t, err, ErrMalformedBlob)
		})
	}
}
