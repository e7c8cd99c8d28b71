package ledger

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/ledgerbook/backend/internal/domain/workbook"
)

// SettingsVersion is the current settings schema version. Older documents
// are migrated forward by an explicit chain keyed on the stored integer,
// never by sniffing the document's shape.
const SettingsVersion = 2

// Settings is the single per-workbook configuration document, stored
// wholesale as one JSON blob in a control-sheet cell. Writes replace the
// whole document; last write wins.
type Settings struct {
	SchemaVersion int               `json:"schema_version"`
	Options       map[string]string `json:"options"`
}

// DefaultSettings returns the document used before anything was saved.
func DefaultSettings() Settings {
	return Settings{
		SchemaVersion: SettingsVersion,
		Options: map[string]string{
			"currency":       "USD",
			"start_of_month": "1",
			"theme":          "system",
		},
	}
}

// SettingsBlob reads and writes the settings document.
type SettingsBlob struct {
	grid workbook.Grid
}

// NewSettingsBlob creates a settings accessor over the given grid.
func NewSettingsBlob(grid workbook.Grid) *SettingsBlob {
	return &SettingsBlob{grid: grid}
}

// Load reads the stored document, migrating legacy versions forward in
// memory. A blank cell yields the defaults; malformed JSON yields
// ErrMalformedBlob and nothing is written.
func (s *SettingsBlob) Load(ctx context.Context) (Settings, error) {
	blob, err := s.grid.ReadCell(ctx, workbook.ControlSheet, workbook.SettingsBlobRow, workbook.ControlValueCol)
	if err != nil {
		return Settings{}, err
	}
	if blob == "" {
		return DefaultSettings(), nil
	}

	versionCell, err := s.grid.ReadCell(ctx, workbook.ControlSheet, workbook.SettingsVersionRow, workbook.ControlValueCol)
	if err != nil {
		return Settings{}, err
	}
	version := 0
	if versionCell != "" {
		version, err = strconv.Atoi(versionCell)
		if err != nil {
			return Settings{}, ErrMalformedBlob
		}
	}
	return migrateSettings(version, []byte(blob))
}

// Save replaces the stored document and stamps the current schema version.
func (s *SettingsBlob) Save(ctx context.Context, settings Settings) error {
	settings.SchemaVersion = SettingsVersion
	if settings.Options == nil {
		settings.Options = map[string]string{}
	}
	blob, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	if err := s.grid.WriteCell(ctx, workbook.ControlSheet, workbook.SettingsBlobRow, workbook.ControlValueCol, string(blob)); err != nil {
		return err
	}
	return s.grid.WriteCell(ctx, workbook.ControlSheet, workbook.SettingsVersionRow, workbook.ControlValueCol,
		strconv.Itoa(SettingsVersion))
}

// migrateSettings upgrades a stored document to the current schema.
//
//	v0: flat map of option name -> value, no version cell
//	v1: {"options": {...}} without a schema_version field
//	v2: current shape
func migrateSettings(version int, blob []byte) (Settings, error) {
	switch version {
	case 0:
		var flat map[string]string
		if err := json.Unmarshal(blob, &flat); err != nil {
			return Settings{}, ErrMalformedBlob
		}
		return Settings{SchemaVersion: SettingsVersion, Options: flat}, nil
	case 1:
		var doc struct {
			Options map[string]string `json:"options"`
		}
		if err := json.Unmarshal(blob, &doc); err != nil {
			return Settings{}, ErrMalformedBlob
		}
		if doc.Options == nil {
			doc.Options = map[string]string{}
		}
		return Settings{SchemaVersion: SettingsVersion, Options: doc.Options}, nil
	case SettingsVersion:
		var doc Settings
		if err := json.Unmarshal(blob, &doc); err != nil {
			return Settings{}, ErrMalformedBlob
		}
		doc.SchemaVersion = SettingsVersion
		if doc.Options == nil {
			doc.Options = map[string]string{}
		}
		return doc, nil
	default:
		// A version from the future is unreadable; refuse rather than guess.
		return Settings{}, ErrMalformedBlob
	}
}
