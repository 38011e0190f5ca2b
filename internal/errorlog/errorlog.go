// Package errorlog appends failures to an optional error-log spreadsheet.
// Logging is strictly best-effort: the log must never make a failure worse.
package errorlog

import (
	"context"
	"log"
	"runtime/debug"
	"time"

	"github.com/rafael/certificate-automator/internal/workspace"
)

// RowAppender is the single spreadsheet operation the error log needs.
// *workspace.SpreadsheetClient satisfies it.
type RowAppender interface {
	AppendRow(ctx context.Context, sheetName string, values []string) (int64, error)
}

// Logger records errors to the process log and, when configured, to an
// append-only error sheet.
type Logger struct {
	sheet     RowAppender
	sheetName string
	now       func() time.Time
}

// New builds a Logger. A nil sheet disables the spreadsheet mirror; process
// logging always happens.
func New(sheet RowAppender, sheetName string) *Logger {
	if sheetName == "" {
		sheetName = "Erros"
	}
	return &Logger{sheet: sheet, sheetName: sheetName, now: time.Now}
}

// Record logs an error with optional detail. The current stack is captured at
// the call site.
func (l *Logger) Record(ctx context.Context, message string, detail error) {
	l.record(ctx, message, detail, string(debug.Stack()))
}

// RecordPanic logs a recovered panic together with the stack captured at
// recovery time.
func (l *Logger) RecordPanic(ctx context.Context, message string, stack string) {
	l.record(ctx, message, nil, stack)
}

func (l *Logger) record(ctx context.Context, message string, detail error, stack string) {
	ts := l.now().Format(workspace.TimestampLayout)
	detailText := ""
	if detail != nil {
		detailText = detail.Error()
	}

	log.Printf("ERROR [%s]: %s - Details: %s\nStack: %s", ts, message, detailText, stack)

	if l.sheet == nil {
		return
	}
	if _, err := l.sheet.AppendRow(ctx, l.sheetName, []string{ts, message, detailText, stack}); err != nil {
		log.Printf("errorlog: could not append to error sheet: %v", err)
	}
}
