// Package google mirrors the ledger into a Google Sheets tab with the same
// five columns as the CSV file.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"financeiro/internal/core"
	"financeiro/internal/ledger"
	"financeiro/internal/log"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// DefaultSheetName is the tab used when none is configured.
const DefaultSheetName = "Ledger"

// Config selects the spreadsheet and the service account used to reach it.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

// Ensure interface conformance
var (
	_ ledger.Repository = (*Client)(nil)
	_ ledger.Locator    = (*Client)(nil)
)

// NewFromConfig creates a Sheets client authenticated with a service account.
func NewFromConfig(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentSheets)

	svc, err := newSheetsService(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	c := New(svc, cfg.SpreadsheetID, cfg.SheetName)
	c.logger = logger
	return c, nil
}

// New wraps an existing Sheets service.
func New(svc *gsheet.Service, spreadsheetID, sheetName string) *Client {
	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		sheetName = DefaultSheetName
	}
	return &Client{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(spreadsheetID),
		sheetName:     sheetName,
		logger:        log.Discard(),
	}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Inline JSON wins over the file; GOOGLE_APPLICATION_CREDENTIALS is the last resort.
func newSheetsService(ctx context.Context, cfg Config, logger *log.Logger) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(cfg.CredentialsJSON)
	serviceAccountFile := strings.TrimSpace(cfg.CredentialsFile)
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		data, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	logger.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) Location() string {
	return fmt.Sprintf("sheets:%s/%s", c.spreadsheetID, c.sheetName)
}

func (c *Client) dataRange() string {
	return fmt.Sprintf("%s!A:E", c.sheetName)
}

// Load implements ledger.Repository
func (c *Client) Load(ctx context.Context) ([]core.Transaction, error) {
	if c.svc == nil {
		return nil, &core.StorageReadError{Source: c.Location(), Err: errors.New("sheets service not initialized")}
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.dataRange()).Context(ctx).Do()
	if err != nil {
		return nil, &core.StorageReadError{Source: c.Location(), Err: fmt.Errorf("get values: %w", err)}
	}
	records, err := parseRows(resp.Values)
	if err != nil {
		return nil, &core.StorageReadError{Source: c.Location(), Err: err}
	}
	c.logger.DebugContext(ctx, "Ledger read from sheet",
		log.FieldOperation, log.OpLoad,
		log.FieldRecords, len(records),
	)
	return records, nil
}

// Save implements ledger.Repository. Rows are written from A1 first; only
// after that succeeds are rows left over below the new set cleared, so a
// failed write never loses what the sheet already held.
func (c *Client) Save(ctx context.Context, records []core.Transaction) error {
	if c.svc == nil {
		return &core.StorageWriteError{Target: c.Location(), Err: errors.New("sheets service not initialized")}
	}

	rows := ledger.EncodeRows(records)
	vr := &gsheet.ValueRange{Values: toValues(rows)}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, fmt.Sprintf("%s!A1", c.sheetName), vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return &core.StorageWriteError{Target: c.Location(), Err: fmt.Errorf("update values: %w", err)}
	}

	stale := fmt.Sprintf("%s!A%d:E", c.sheetName, len(rows)+1)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, stale, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return &core.StorageWriteError{Target: c.Location(), Err: fmt.Errorf("clear stale rows: %w", err)}
	}
	c.logger.InfoContext(ctx, "Ledger written to sheet",
		log.FieldOperation, log.OpSave,
		log.FieldRecords, len(records),
	)
	return nil
}
