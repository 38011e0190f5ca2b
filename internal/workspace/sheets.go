package workspace

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"google.golang.org/api/sheets/v4"
)

// TimestampLayout is the wall-clock format written into tracking rows.
const TimestampLayout = "2006-01-02 15:04:05"

var updatedRowPattern = regexp.MustCompile(`![A-Z]+(\d+)`)

// SpreadsheetClient wraps the Sheets API for the row-level operations the
// tracking and error-log layers need. Values travel as plain strings; the
// spreadsheet renders them, nothing downstream parses cell formatting.
type SpreadsheetClient struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewSpreadsheetClient binds a Sheets service to one spreadsheet.
func NewSpreadsheetClient(svc *sheets.Service, spreadsheetID string) *SpreadsheetClient {
	return &SpreadsheetClient{svc: svc, spreadsheetID: spreadsheetID}
}

// SpreadsheetID returns the bound spreadsheet identifier.
func (c *SpreadsheetClient) SpreadsheetID() string {
	return c.spreadsheetID
}

// HeaderRow reads row 1 of the named sheet as strings.
func (c *SpreadsheetClient) HeaderRow(ctx context.Context, sheetName string) ([]string, error) {
	resp, err := c.svc.Spreadsheets.Values.
		Get(c.spreadsheetID, fmt.Sprintf("%s!1:1", sheetName)).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading header row of %q: %w", sheetName, err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	return toStrings(resp.Values[0]), nil
}

// AppendRow appends values to the named sheet and returns the 1-based row the
// data landed in. When the first value does not already look like a timestamp,
// the current time is prepended, so callers logging event rows can pass just
// the payload columns.
func (c *SpreadsheetClient) AppendRow(ctx context.Context, sheetName string, values []string) (int64, error) {
	if len(values) == 0 || !looksLikeTimestamp(values[0]) {
		values = append([]string{time.Now().Format(TimestampLayout)}, values...)
	}

	vr := &sheets.ValueRange{Values: [][]interface{}{toInterfaces(values)}}
	resp, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, sheetName, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("appending row to %q: %w", sheetName, err)
	}

	if resp.Updates == nil {
		return 0, fmt.Errorf("append to %q returned no update metadata", sheetName)
	}
	m := updatedRowPattern.FindStringSubmatch(resp.Updates.UpdatedRange)
	if m == nil {
		return 0, fmt.Errorf("cannot parse updated range %q", resp.Updates.UpdatedRange)
	}
	var row int64
	fmt.Sscanf(m[1], "%d", &row)
	return row, nil
}

// ReadRow reads one 1-based row of the named sheet.
func (c *SpreadsheetClient) ReadRow(ctx context.Context, sheetName string, row int64) ([]string, error) {
	resp, err := c.svc.Spreadsheets.Values.
		Get(c.spreadsheetID, fmt.Sprintf("%s!%d:%d", sheetName, row, row)).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading row %d of %q: %w", row, sheetName, err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	return toStrings(resp.Values[0]), nil
}

// UpdateCell writes a single cell addressed by 1-based row and column.
func (c *SpreadsheetClient) UpdateCell(ctx context.Context, sheetName string, row int64, col int, value string) error {
	rng := fmt.Sprintf("%s!%s%d", sheetName, columnLetter(col), row)
	vr := &sheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err := c.svc.Spreadsheets.Values.
		Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("updating %s: %w", rng, err)
	}
	return nil
}

// SheetNameByID resolves a tab's display name from its immutable sheetId.
// Tabs get renamed by users; sheetIds never change.
func (c *SpreadsheetClient) SheetNameByID(ctx context.Context, sheetID int64) (string, error) {
	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("reading spreadsheet metadata: %w", err)
	}
	for _, s := range meta.Sheets {
		if s.Properties != nil && s.Properties.SheetId == sheetID {
			return s.Properties.Title, nil
		}
	}
	return "", fmt.Errorf("no sheet with id %d in spreadsheet %s", sheetID, c.spreadsheetID)
}

// columnLetter converts a 1-based column index to its A1 letter form.
func columnLetter(col int) string {
	letters := ""
	for col > 0 {
		col--
		letters = string(rune('A'+col%26)) + letters
		col /= 26
	}
	return letters
}

func looksLikeTimestamp(s string) bool {
	_, err := time.Parse(TimestampLayout, s)
	return err == nil
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = fmt.Sprintf("%v", v)
	}
	return out
}

func toInterfaces(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
