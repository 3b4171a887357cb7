// Package sheets exports report tables to worksheets of a single Google
// Sheets spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"cxc/internal/logger"
)

// Mode selects what happens to rows already present in the worksheet.
type Mode int

const (
	// Append adds the rows below the existing data.
	Append Mode = iota
	// Replace rewrites the header row and clears the previous data first.
	Replace
)

func (m Mode) String() string {
	if m == Replace {
		return "replace"
	}
	return "append"
}

const maxTitleLength = 100

var (
	ErrInvalidURL     = errors.New("invalid Google Sheets URL format")
	ErrNoCredentials  = errors.New("service account credentials are required")
	ErrNoColumns      = errors.New("at least one column is required")
	ErrRowTooWide     = errors.New("row has more cells than headers")
	ErrEmptySheetName = errors.New("sheet name is required")

	spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)
	titleReplacer        = strings.NewReplacer("[", "", "]", "", "*", "", "?", "", "/", "-", `\`, "-", ":", "-")
)

// Table is one report written to a worksheet.
type Table struct {
	Sheet   string
	Headers []string
	Rows    [][]interface{}
	Mode    Mode
}

// Service exports report tables to a Google Sheets spreadsheet
type Service struct {
	sheetsService *sheets.Service
	spreadsheetID string
	log           zerolog.Logger
}

// NewSheetsService creates a new Google Sheets service from a spreadsheet URL
// and service account credentials (JSON).
func NewSheetsService(ctx context.Context, sheetURL string, credentials []byte) (*Service, error) {
	const op = "NewSheetsService"

	spreadsheetID, err := extractSpreadsheetID(sheetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(credentials) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNoCredentials)
	}

	config, err := google.JWTConfigFromJSON(credentials, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse credentials: %w", op, err)
	}

	return newService(ctx, spreadsheetID, option.WithHTTPClient(config.Client(ctx)))
}

func newService(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*Service, error) {
	const op = "newService"

	sheetsService, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create sheets service: %w", op, err)
	}

	log := logger.WithComponent("sheets").With().Str("spreadsheet_id", spreadsheetID).Logger()
	log.Debug().Msg("Google Sheets exporter ready")

	return &Service{
		sheetsService: sheetsService,
		spreadsheetID: spreadsheetID,
		log:           log,
	}, nil
}

func extractSpreadsheetID(url string) (string, error) {
	matches := spreadsheetIDPattern.FindStringSubmatch(url)
	if len(matches) < 2 {
		return "", ErrInvalidURL
	}
	return matches[1], nil
}

// Title builds a worksheet title such as "Antiguedad_2024-03-01_detalle".
// Characters Sheets rejects in titles are replaced and the result is cut to
// the maximum title length.
func Title(prefix string, day time.Time, parts ...string) string {
	items := append([]string{prefix, day.Format("2006-01-02")}, parts...)
	title := titleReplacer.Replace(strings.Join(items, "_"))
	for utf8.RuneCountInString(title) > maxTitleLength {
		_, size := utf8.DecodeLastRuneInString(title)
		title = title[:len(title)-size]
	}
	return title
}

// a1 returns an A1 range on the named sheet, quoting the title.
func a1(sheet, cells string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'!" + cells
}

// columnName returns the A1 column letters for a 1-based column number.
func columnName(n int) string {
	name := ""
	for n > 0 {
		n--
		name = string(rune('A'+n%26)) + name
		n /= 26
	}
	return name
}

// WriteTable writes t to its worksheet, creating the sheet when missing.
// The bold header row is written when the sheet has none, or always in
// Replace mode.
func (s *Service) WriteTable(ctx context.Context, t Table) error {
	const op = "WriteTable"

	if strings.TrimSpace(t.Sheet) == "" {
		return fmt.Errorf("%s: %w", op, ErrEmptySheetName)
	}
	width := len(t.Headers)
	if width == 0 {
		return fmt.Errorf("%s: %w", op, ErrNoColumns)
	}
	for i, row := range t.Rows {
		if len(row) > width {
			return fmt.Errorf("%s: row %d: %w", op, i+1, ErrRowTooWide)
		}
	}

	log := s.log.With().Str("sheet", t.Sheet).Str("mode", t.Mode.String()).Logger()
	log.Info().Int("rows", len(t.Rows)).Msg("Writing table to Google Sheet")

	sheetID, err := s.ensureSheet(ctx, t.Sheet)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	hasHeader, err := s.hasHeader(ctx, t.Sheet, width)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if t.Mode == Replace && hasHeader {
		clearRange := a1(t.Sheet, "A2:"+columnName(width))
		if _, err := s.sheetsService.Spreadsheets.Values.Clear(s.spreadsheetID, clearRange, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
			return fmt.Errorf("%s: failed to clear previous rows: %w", op, err)
		}
	}

	if !hasHeader || t.Mode == Replace {
		if err := s.writeHeader(ctx, t.Sheet, t.Headers); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if err := s.formatHeaders(ctx, sheetID, int64(width)); err != nil {
			log.Warn().Err(err).Msg("Failed to format headers, continuing anyway")
		}
	}

	if len(t.Rows) == 0 {
		log.Info().Msg("No rows to write")
		return nil
	}

	_, err = s.sheetsService.Spreadsheets.Values.Append(
		s.spreadsheetID,
		a1(t.Sheet, "A:"+columnName(width)),
		&sheets.ValueRange{Values: t.Rows},
	).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to append values to sheet: %w", op, err)
	}

	log.Info().Int("rows_written", len(t.Rows)).Msg("Successfully wrote table to Google Sheet")
	return nil
}

// ensureSheet returns the id of the named worksheet, adding it when missing.
func (s *Service) ensureSheet(ctx context.Context, title string) (int64, error) {
	const op = "ensureSheet"

	spreadsheet, err := s.sheetsService.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to get spreadsheet: %w", op, err)
	}
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == title {
			return sheet.Properties.SheetId, nil
		}
	}

	s.log.Info().Str("sheet", title).Msg("Creating new sheet")

	resp, err := s.sheetsService.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			}},
		},
	}).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to create sheet: %w", op, err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return 0, fmt.Errorf("%s: create sheet %q returned no properties", op, title)
	}
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

func (s *Service) hasHeader(ctx context.Context, title string, width int) (bool, error) {
	resp, err := s.sheetsService.Spreadsheets.Values.Get(s.spreadsheetID, a1(title, "A1:"+columnName(width)+"1")).Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("hasHeader: failed to get headers: %w", err)
	}
	return len(resp.Values) > 0 && len(resp.Values[0]) > 0, nil
}

func (s *Service) writeHeader(ctx context.Context, title string, headers []string) error {
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}

	_, err := s.sheetsService.Spreadsheets.Values.Update(
		s.spreadsheetID,
		a1(title, "A1:"+columnName(len(headers))+"1"),
		&sheets.ValueRange{Values: [][]interface{}{row}},
	).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("writeHeader: failed to add headers: %w", err)
	}
	return nil
}

// formatHeaders makes the header row bold, freezes it and resizes the columns.
func (s *Service) formatHeaders(ctx context.Context, sheetID, columns int64) error {
	const op = "formatHeaders"

	requests := []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   columns,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{Bold: true},
						BackgroundColor: &sheets.Color{
							Red:   0.9,
							Green: 0.9,
							Blue:  0.9,
						},
					},
				},
				Fields: "userEnteredFormat(textFormat,backgroundColor)",
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId:        sheetID,
					GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   columns,
				},
			},
		},
	}

	_, err := s.sheetsService.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to format headers: %w", op, err)
	}
	return nil
}
