package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"hotel-rates-scraper/models"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// CredentialsEnv holds service-account JSON when no credentials file is given
const CredentialsEnv = "GOOGLE_SHEETS_CREDENTIALS"

// ErrNoSpreadsheetID is returned when a URL carries no spreadsheet id
var ErrNoSpreadsheetID = errors.New("no spreadsheet id in URL")

// maxSheetName is the longest title Google Sheets accepts
const maxSheetName = 100

// Writer handles writing rate tables to Google Sheets
type Writer struct {
	service       *sheets.Service
	spreadsheetID string
	logger        *slog.Logger
}

// Meta is written above the header row of every sheet
type Meta struct {
	RunID    string
	Country  string
	Currency string
	Filters  string
}

// LoadCredentials reads service-account JSON from path, or from
// CredentialsEnv when path is empty
func LoadCredentials(path string) ([]byte, error) {
	var credsJSON []byte
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		credsJSON = data
	} else {
		// Trim whitespace and newlines that might be in the environment variable
		credsEnv := strings.TrimSpace(os.Getenv(CredentialsEnv))
		if credsEnv == "" {
			return nil, fmt.Errorf("credentials not found: %s environment variable is empty or not set", CredentialsEnv)
		}
		credsJSON = []byte(credsEnv)
	}

	var creds map[string]interface{}
	if err := json.Unmarshal(credsJSON, &creds); err != nil {
		return nil, fmt.Errorf("invalid credentials JSON (check if JSON is properly formatted): %w", err)
	}
	if creds["type"] != "service_account" {
		return nil, fmt.Errorf("credentials must be a service account JSON file (type: service_account), got type: %v", creds["type"])
	}
	return credsJSON, nil
}

// NewWriter creates a new Google Sheets writer for the spreadsheet behind spreadsheetURL
func NewWriter(ctx context.Context, spreadsheetURL string, credsJSON []byte, logger *slog.Logger, opts ...option.ClientOption) (*Writer, error) {
	spreadsheetID := ExtractSpreadsheetID(spreadsheetURL)
	if spreadsheetID == "" {
		return nil, fmt.Errorf("%w: %q", ErrNoSpreadsheetID, spreadsheetURL)
	}

	if credsJSON != nil {
		opts = append(opts, option.WithCredentialsJSON(credsJSON))
	}
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		service:       service,
		spreadsheetID: spreadsheetID,
		logger:        logger,
	}, nil
}

// CreateSheetAndWriteTable creates a new sheet and writes the table to it.
// The sheet is inserted at the beginning (index 0) of the spreadsheet, with
// the run metadata in the first row, then the header, then one row per record.
// Returns the sheet name and sheet ID (gid) that was created.
func (w *Writer) CreateSheetAndWriteTable(ctx context.Context, sheetName string, table models.Table, meta Meta) (string, int64, error) {
	sheetName = sanitizeSheetName(sheetName)

	batchUpdateRequest := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{
						Title:           sheetName,
						Index:           0,
						ForceSendFields: []string{"Index"},
					},
				},
			},
		},
	}

	batchUpdateResp, err := w.service.Spreadsheets.BatchUpdate(w.spreadsheetID, batchUpdateRequest).Context(ctx).Do()
	if err != nil {
		return "", 0, fmt.Errorf("failed to create sheet: %w", err)
	}

	var sheetID int64
	if len(batchUpdateResp.Replies) > 0 && batchUpdateResp.Replies[0].AddSheet != nil {
		sheetID = batchUpdateResp.Replies[0].AddSheet.Properties.SheetId
	}
	w.logger.DebugContext(ctx, "created sheet", "name", sheetName, "sheet_id", sheetID)

	range_ := fmt.Sprintf("'%s'!A1", sheetName)
	valueRange := &sheets.ValueRange{
		Values: tableValues(table, meta),
	}

	_, err = w.service.Spreadsheets.Values.Update(w.spreadsheetID, range_, valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return "", 0, fmt.Errorf("failed to write to sheet: %w", err)
	}

	w.logger.InfoContext(ctx, "wrote rates to sheet", "rows", len(table), "sheet", sheetName)
	return sheetName, sheetID, nil
}

// SheetURL returns a link opening the given sheet (gid) of the spreadsheet
func (w *Writer) SheetURL(sheetID int64) string {
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/edit#gid=%d", w.spreadsheetID, sheetID)
}

// tableValues lays out the metadata row, the header and the records
func tableValues(table models.Table, meta Meta) [][]interface{} {
	values := make([][]interface{}, 0, len(table)+2)

	metadataRow := []interface{}{"Run", meta.RunID, "Country", meta.Country, "Currency", meta.Currency}
	if meta.Filters != "" {
		metadataRow = append(metadataRow, "Filters", meta.Filters)
	}
	values = append(values, metadataRow)

	header := make([]interface{}, len(models.Columns))
	for i, c := range models.Columns {
		header[i] = c
	}
	values = append(values, header)

	for _, r := range table {
		values = append(values, r.Values())
	}
	return values
}

// sanitizeSheetName removes invalid characters from sheet name
func sanitizeSheetName(name string) string {
	// Google Sheets sheet names cannot contain: / \ ? * [ ] :
	invalidChars := []string{"/", "\\", "?", "*", "[", "]", ":", "'"}
	result := name
	for _, char := range invalidChars {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	if len([]rune(result)) > maxSheetName {
		result = string([]rune(result)[:maxSheetName])
	}
	if result == "" {
		result = "Sheet1"
	}
	return result
}

// ExtractSpreadsheetID extracts the spreadsheet ID from a Google Sheets URL:
//
//	https://docs.google.com/spreadsheets/d/SPREADSHEET_ID/edit
//	https://docs.google.com/spreadsheets/d/SPREADSHEET_ID/edit?usp=sharing
//
// A bare id is returned unchanged.
func ExtractSpreadsheetID(url string) string {
	url = strings.TrimSpace(url)
	parts := strings.Split(url, "/d/")
	if len(parts) < 2 {
		if strings.ContainsAny(url, "/?#:") {
			return ""
		}
		return url
	}

	idPart := parts[1]
	if idx := strings.IndexAny(idPart, "/?#"); idx != -1 {
		idPart = idPart[:idx]
	}
	return strings.TrimSpace(idPart)
}
