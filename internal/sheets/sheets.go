// Package sheets backs the output log with a Google Sheets worksheet.
package sheets

import (
	"context"
	"fmt"
	"strings"

	"github.com/blockedby/tg-grabber/internal/logger"
	"github.com/blockedby/tg-grabber/internal/store"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const spreadsheetMIME = "application/vnd.google-apps.spreadsheet"

// Table is a store.TableLog over one worksheet of a Google spreadsheet.
type Table struct {
	svc           *sheets.Service
	spreadsheetID string
	worksheet     string
	log           *logger.Logger
}

// Open locates the spreadsheet by title (creating it if absent), makes sure
// the worksheet exists with the fixed header row, and returns the table.
// Any authentication or API failure here is a fatal store error.
func Open(ctx context.Context, credentialsFile, title, worksheet string) (*Table, error) {
	creds := option.WithCredentialsFile(credentialsFile)

	driveSvc, err := drive.NewService(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	sheetSvc, err := sheets.NewService(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	t := &Table{
		svc:       sheetSvc,
		worksheet: worksheet,
		log:       logger.Get(),
	}

	id, err := findSpreadsheet(ctx, driveSvc, title)
	if err != nil {
		return nil, err
	}
	if id == "" {
		id, err = t.createSpreadsheet(ctx, title)
		if err != nil {
			return nil, err
		}
		t.log.Info().Str("title", title).Str("spreadsheet_id", id).Msg("sheets: created spreadsheet")
	}
	t.spreadsheetID = id

	if err := t.ensureWorksheet(ctx); err != nil {
		return nil, err
	}

	return t, nil
}

// findSpreadsheet resolves a spreadsheet title to its id via the Drive API.
// Returns "" when no spreadsheet with that title is visible.
func findSpreadsheet(ctx context.Context, svc *drive.Service, title string) (string, error) {
	query := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false",
		strings.ReplaceAll(title, "'", `\'`), spreadsheetMIME)

	list, err := svc.Files.List().
		Q(query).
		Fields("files(id)").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("search spreadsheet %q: %w", title, err)
	}

	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}

func (t *Table) createSpreadsheet(ctx context.Context, title string) (string, error) {
	sp, err := t.svc.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: t.worksheet}},
		},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create spreadsheet %q: %w", title, err)
	}

	t.spreadsheetID = sp.SpreadsheetId
	if err := t.writeHeader(ctx); err != nil {
		return "", err
	}
	return sp.SpreadsheetId, nil
}

// ensureWorksheet adds the worksheet with its header row when the
// spreadsheet does not have it yet.
func (t *Table) ensureWorksheet(ctx context.Context) error {
	sp, err := t.svc.Spreadsheets.Get(t.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}

	for _, sheet := range sp.Sheets {
		if sheet.Properties.Title == t.worksheet {
			return nil
		}
	}

	_, err = t.svc.Spreadsheets.BatchUpdate(t.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: t.worksheet},
			}},
		},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("add worksheet %q: %w", t.worksheet, err)
	}
	t.log.Info().Str("worksheet", t.worksheet).Msg("sheets: created worksheet")

	return t.writeHeader(ctx)
}

func (t *Table) writeHeader(ctx context.Context) error {
	if err := t.AppendRows(ctx, [][]string{store.Header}); err != nil {
		return fmt.Errorf("write header row: %w", err)
	}
	return nil
}

// FindRows returns the 1-based positions of all rows whose cell in the given
// column equals value exactly.
func (t *Table) FindRows(ctx context.Context, column int, value string) ([]int, error) {
	rng := fmt.Sprintf("%s!%s:%s", t.worksheet, colLetter(column), colLetter(column))
	resp, err := t.svc.Spreadsheets.Values.Get(t.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read column %d: %w", column, err)
	}

	var out []int
	for i, row := range resp.Values {
		if len(row) > 0 && fmt.Sprint(row[0]) == value {
			out = append(out, i+1)
		}
	}
	return out, nil
}

// Cell reads a single cell; an empty cell reads as "".
func (t *Table) Cell(ctx context.Context, row, column int) (string, error) {
	rng := fmt.Sprintf("%s!%s%d", t.worksheet, colLetter(column), row)
	resp, err := t.svc.Spreadsheets.Values.Get(t.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("read cell %s: %w", rng, err)
	}

	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		return "", nil
	}
	return fmt.Sprint(resp.Values[0][0]), nil
}

// AppendRows appends full rows after the last data row of the worksheet,
// with RAW input so values land exactly as given.
func (t *Table) AppendRows(ctx context.Context, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	values := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		cells := make([]interface{}, 0, len(row))
		for _, cell := range row {
			cells = append(cells, cell)
		}
		values = append(values, cells)
	}

	_, err := t.svc.Spreadsheets.Values.Append(t.spreadsheetID, t.worksheet, &sheets.ValueRange{
		Values: values,
	}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append %d rows: %w", len(rows), err)
	}
	return nil
}

// colLetter converts a 1-based column number to its A1 letter form.
func colLetter(n int) string {
	var s string
	for n > 0 {
		n--
		s = string(rune('A'+n%26)) + s
		n /= 26
	}
	return s
}
