package license

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/domain/workbook"
)

// TrialDays is the length of the trial window granted on first use.
const TrialDays = 30

// scanWindow bounds how many ledger rows a lookup inspects.
const scanWindow = 5000

const dateLayout = "2006-01-02"

// Status classifies a ledger entry.
type Status string

const (
	StatusPaid    Status = "paid"
	StatusTrial   Status = "trial"
	StatusExpired Status = "expired"
)

// Result is the derived license state returned to callers.
type Result struct {
	Status   Status `json:"status"`
	DaysLeft int    `json:"days_left"`
}

// Obfuscator is the reversible identifier transformation applied before an
// identifier is stored. Reversal requires the configured secret key.
type Obfuscator interface {
	Obfuscate(plain string) (string, error)
	Reveal(obfuscated string) (string, error)
}

// Entry is one row of the trial ledger. End is nil for paid (unlimited)
// users.
type Entry struct {
	Obfuscated string
	Start      time.Time
	End        *time.Time
	LastSeen   time.Time
	row        int
}

// Ledger is the append-only trial registry stored on its own sheet.
// Identifiers are stored obfuscated; lookups reveal each stored entry and
// compare plaintext, so the ciphertext never needs to be deterministic.
type Ledger struct {
	grid workbook.Grid
	obf  Obfuscator
	now  func() time.Time

	mu sync.Mutex
}

// NewLedger creates a trial ledger over the given grid.
func NewLedger(grid workbook.Grid, obf Obfuscator) *Ledger {
	return &Ledger{grid: grid, obf: obf, now: time.Now}
}

// WithClock overrides the time source, for tests.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// Status looks the identifier up without modifying the ledger. Unknown
// identifiers return ledger.ErrRecordNotFound.
func (l *Ledger) Status(ctx context.Context, identifier string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, err := l.find(ctx, identifier)
	if err != nil {
		return Result{}, err
	}
	if entry == nil {
		return Result{}, ledger.ErrRecordNotFound
	}
	return l.derive(*entry), nil
}

// Ensure registers first use: a known identifier gets its last-seen refreshed
// and its derived status returned; an unknown one is appended with a
// TrialDays window.
func (l *Ledger) Ensure(ctx context.Context, identifier string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, err := l.find(ctx, identifier)
	if err != nil {
		return Result{}, err
	}
	now := l.now().UTC()

	if entry != nil {
		entry.LastSeen = now
		if err := l.writeEntry(ctx, entry.row, *entry); err != nil {
			return Result{}, err
		}
		return l.derive(*entry), nil
	}

	obfuscated, err := l.obf.Obfuscate(normalize(identifier))
	if err != nil {
		return Result{}, err
	}
	end := now.AddDate(0, 0, TrialDays)
	fresh := Entry{
		Obfuscated: obfuscated,
		Start:      now,
		End:        &end,
		LastSeen:   now,
	}
	last, err := l.grid.LastRow(ctx, workbook.LicenseSheet)
	if err != nil {
		return Result{}, err
	}
	if err := l.writeEntry(ctx, last+1, fresh); err != nil {
		return Result{}, err
	}
	return l.derive(fresh), nil
}

// find scans at most scanWindow rows for the identifier.
func (l *Ledger) find(ctx context.Context, identifier string) (*Entry, error) {
	want := normalize(identifier)

	last, err := l.grid.LastRow(ctx, workbook.LicenseSheet)
	if err != nil {
		return nil, err
	}
	if last == 0 {
		return nil, nil
	}
	if last > scanWindow {
		last = scanWindow
	}

	rows, err := l.grid.ReadRange(ctx, workbook.LicenseSheet, 1, 1, last, 4)
	if err != nil {
		return nil, err
	}
	for i, raw := range rows {
		entry, ok := decodeEntry(raw)
		if !ok {
			continue
		}
		plain, err := l.obf.Reveal(entry.Obfuscated)
		if err != nil {
			// Entries sealed under another key are unreadable; skip them.
			continue
		}
		if normalize(plain) == want {
			entry.row = i + 1
			return &entry, nil
		}
	}
	return nil, nil
}

// derive classifies an entry against the current time. No end date means a
// paid, unlimited license; otherwise the remaining whole days (floored at
// zero) decide between trial and expired.
func (l *Ledger) derive(entry Entry) Result {
	if entry.End == nil {
		return Result{Status: StatusPaid}
	}
	days := daysUntil(l.now().UTC(), *entry.End)
	if days <= 0 {
		return Result{Status: StatusExpired, DaysLeft: 0}
	}
	return Result{Status: StatusTrial, DaysLeft: days}
}

func (l *Ledger) writeEntry(ctx context.Context, row int, entry Entry) error {
	end := ""
	if entry.End != nil {
		end = entry.End.Format(dateLayout)
	}
	return l.grid.WriteRange(ctx, workbook.LicenseSheet, row, 1, [][]string{{
		entry.Obfuscated,
		entry.Start.Format(dateLayout),
		end,
		entry.LastSeen.Format(time.RFC3339),
	}})
}

func decodeEntry(raw []string) (Entry, bool) {
	if len(raw) < 4 || strings.TrimSpace(raw[0]) == "" {
		return Entry{}, false
	}
	entry := Entry{Obfuscated: strings.TrimSpace(raw[0])}
	start, err := time.Parse(dateLayout, strings.TrimSpace(raw[1]))
	if err != nil {
		return Entry{}, false
	}
	entry.Start = start
	if endCell := strings.TrimSpace(raw[2]); endCell != "" {
		end, err := time.Parse(dateLayout, endCell)
		if err != nil {
			return Entry{}, false
		}
		entry.End = &end
	}
	if seen, err := time.Parse(time.RFC3339, strings.TrimSpace(raw[3])); err == nil {
		entry.LastSeen = seen
	}
	return entry, true
}

// daysUntil counts the whole days from now to end, rounding partial days up
// so that an end date five calendar days out reads as five days left.
func daysUntil(now, end time.Time) int {
	diff := end.Sub(now)
	if diff <= 0 {
		return 0
	}
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) != 0 {
		days++
	}
	return days
}

func normalize(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}
