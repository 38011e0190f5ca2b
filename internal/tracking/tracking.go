// Package tracking maintains the control spreadsheet that records every
// certificate submission and its outcome. The sheet is the durable store of
// record; all row addressing is by 1-based index and header name.
package tracking

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/rafael/certificate-automator/internal/types"
	"github.com/rafael/certificate-automator/internal/workspace"
)

// Columns is the fixed header layout of the tracking sheet.
var Columns = []string{
	"Timestamp",
	"Status",
	"Error Message",
	"Certificate ID",
	"Issued Date",
	"Full Name",
	"Email Address",
	"Course Name",
	"Course Duration",
	"Certificate URL",
	"LinkedIn URL",
}

// DateLayout formats the Issued Date column.
const DateLayout = "2006-01-02"

// firstTabID is the immutable sheetId of a spreadsheet's original first tab.
const firstTabID = 0

// SheetAPI is the slice of spreadsheet operations the tracking layer needs.
// *workspace.SpreadsheetClient satisfies it.
type SheetAPI interface {
	HeaderRow(ctx context.Context, sheetName string) ([]string, error)
	AppendRow(ctx context.Context, sheetName string, values []string) (int64, error)
	ReadRow(ctx context.Context, sheetName string, row int64) ([]string, error)
	UpdateCell(ctx context.Context, sheetName string, row int64, col int, value string) error
	SheetNameByID(ctx context.Context, sheetID int64) (string, error)
}

// NotConfiguredError signals that no control sheet is configured. Callers
// treat it as non-fatal; generation proceeds without a tracking row.
type NotConfiguredError struct{}

func (e *NotConfiguredError) Error() string {
	return "tracking sheet is not configured"
}

// Log writes submission outcomes to the tracking sheet.
type Log struct {
	sheet        SheetAPI
	explicitName string
	resolvedName string
	now          func() time.Time
}

// NewLog binds the tracking layer to a sheet tab. An empty sheetName means
// the tab is resolved by its immutable sheetId (the first tab), so a renamed
// tab keeps working. A nil sheet means the control sheet is unconfigured;
// every operation then fails with NotConfiguredError.
func NewLog(sheet SheetAPI, sheetName string) *Log {
	return &Log{sheet: sheet, explicitName: sheetName, now: time.Now}
}

// tabName returns the tab the log writes to. Resolution by sheetId happens
// once per Log; a Log lives for a single invocation.
func (l *Log) tabName(ctx context.Context) (string, error) {
	if l.explicitName != "" {
		return l.explicitName, nil
	}
	if l.resolvedName == "" {
		name, err := l.sheet.SheetNameByID(ctx, firstTabID)
		if err != nil {
			return "", fmt.Errorf("resolving tracking tab: %w", err)
		}
		l.resolvedName = name
	}
	return l.resolvedName, nil
}

// ResolveColumns maps trimmed header names to 1-based column indexes. The
// mapping is resolved per request, never cached across requests, so header
// edits between invocations are always observed.
func (l *Log) ResolveColumns(ctx context.Context) (map[string]int, error) {
	if l.sheet == nil {
		return nil, &NotConfiguredError{}
	}
	tab, err := l.tabName(ctx)
	if err != nil {
		return nil, err
	}
	header, err := l.sheet.HeaderRow(ctx, tab)
	if err != nil {
		return nil, fmt.Errorf("resolving columns: %w", err)
	}
	cols := map[string]int{}
	for i, name := range header {
		trimmed := strings.TrimSpace(name)
		if trimmed != "" {
			cols[trimmed] = i + 1
		}
	}
	if len(cols) == 0 {
		log.Printf("tracking: sheet %q has no header row", tab)
	}
	return cols, nil
}

// FormatRow builds the 11-element Pending row for a fresh submission.
func (l *Log) FormatRow(sub types.Submission) []string {
	return []string{
		l.now().Format(workspace.TimestampLayout),
		types.StatusPending,
		"", // error message
		"", // certificate id
		"", // issued date
		sub.FullName,
		sub.Email,
		sub.CourseName,
		sub.CourseDuration,
		"", // certificate url
		"", // linkedin url
	}
}

// Append writes a Pending row for the submission and returns its 1-based row
// index.
func (l *Log) Append(ctx context.Context, sub types.Submission) (int64, error) {
	if l.sheet == nil {
		return 0, &NotConfiguredError{}
	}
	tab, err := l.tabName(ctx)
	if err != nil {
		return 0, err
	}
	row, err := l.sheet.AppendRow(ctx, tab, l.FormatRow(sub))
	if err != nil {
		return 0, fmt.Errorf("appending tracking row: %w", err)
	}
	return row, nil
}

// ReadRow reads one tracking row into its typed form. Cells beyond the
// header width read as empty.
func (l *Log) ReadRow(ctx context.Context, row int64) (types.TrackingRow, error) {
	cols, err := l.ResolveColumns(ctx)
	if err != nil {
		return types.TrackingRow{}, err
	}
	tab, err := l.tabName(ctx)
	if err != nil {
		return types.TrackingRow{}, err
	}
	cells, err := l.sheet.ReadRow(ctx, tab, row)
	if err != nil {
		return types.TrackingRow{}, fmt.Errorf("reading tracking row %d: %w", row, err)
	}

	cell := func(name string) string {
		col, ok := cols[name]
		if !ok || col-1 >= len(cells) {
			return ""
		}
		return cells[col-1]
	}

	tr := types.TrackingRow{
		Status:         cell("Status"),
		ErrorMessage:   cell("Error Message"),
		CertificateID:  cell("Certificate ID"),
		IssuedDate:     cell("Issued Date"),
		FullName:       cell("Full Name"),
		Email:          cell("Email Address"),
		CourseName:     cell("Course Name"),
		CourseDuration: cell("Course Duration"),
		CertificateURL: cell("Certificate URL"),
		CredentialURL:  cell("LinkedIn URL"),
	}
	if ts, err := time.Parse(workspace.TimestampLayout, cell("Timestamp")); err == nil {
		tr.Timestamp = ts
	}
	return tr, nil
}

// UpdateRow overwrites the named cells of one row. Columns not present in the
// sheet header are reported as an error rather than silently skipped.
func (l *Log) UpdateRow(ctx context.Context, row int64, updates map[string]string) error {
	cols, err := l.ResolveColumns(ctx)
	if err != nil {
		return err
	}
	tab, err := l.tabName(ctx)
	if err != nil {
		return err
	}
	for name, value := range updates {
		col, ok := cols[name]
		if !ok {
			return fmt.Errorf("tracking sheet has no %q column", name)
		}
		if err := l.sheet.UpdateCell(ctx, tab, row, col, value); err != nil {
			return fmt.Errorf("updating %q on row %d: %w", name, row, err)
		}
	}
	return nil
}

// MarkOutcome records the final status of a processed submission on its row.
// A zero row index means the Pending append failed earlier; the call is then
// a no-op.
func (l *Log) MarkOutcome(ctx context.Context, row int64, status, errorMessage string, record *types.CertificateRecord, credentialURL string) error {
	if row == 0 {
		return nil
	}
	updates := map[string]string{
		"Status":        status,
		"Error Message": errorMessage,
	}
	if record != nil {
		updates["Certificate ID"] = record.CertificateID
		updates["Issued Date"] = record.IssuedDate.Format(DateLayout)
		updates["Certificate URL"] = record.PDFURL
	}
	if credentialURL != "" {
		updates["LinkedIn URL"] = credentialURL
	}
	return l.UpdateRow(ctx, row, updates)
}
