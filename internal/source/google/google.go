package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"fraudbusters/internal/core"
	applog "fraudbusters/internal/log"
	ports "fraudbusters/internal/source"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Config selects the spreadsheet and tabs holding the two tables.
type Config struct {
	SpreadsheetID     string
	TransactionsSheet string
	HistorySheet      string
	// CredentialsFile points at a service account JSON key. When empty,
	// GOOGLE_SERVICE_ACCOUNT_JSON and GOOGLE_APPLICATION_CREDENTIALS are tried.
	CredentialsFile string
}

type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	historySheet      string
}

// Ensure interface conformance
var _ ports.Reader = (*Client)(nil)

// New creates a read-only Sheets client for the dashboard tables.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if cfg.TransactionsSheet == "" {
		cfg.TransactionsSheet = "data_eda"
	}
	if cfg.HistorySheet == "" {
		cfg.HistorySheet = "df_plot"
	}

	svc, err := newSheetsService(ctx, cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:               svc,
		spreadsheetID:     cfg.SpreadsheetID,
		transactionsSheet: cfg.TransactionsSheet,
		historySheet:      cfg.HistorySheet,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, credentialsFile string) (*gsheet.Service, error) {
	credentialsJSON := []byte(strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")))
	if credentialsFile == "" {
		credentialsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case credentialsFile != "":
		applog.FromContext(ctx).InfoContext(ctx, "Reading credentials from file", "path", credentialsFile)
		data, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	case len(credentialsJSON) > 0:
		applog.FromContext(ctx).InfoContext(ctx, "Using inline JSON credentials")
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_CREDENTIALS_FILE, GOOGLE_SERVICE_ACCOUNT_JSON, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// ReadTransactions implements source.TransactionReader
func (c *Client) ReadTransactions(ctx context.Context) ([]core.TransactionRecord, error) {
	header, rows, err := c.readSheet(ctx, c.transactionsSheet)
	if err != nil {
		return nil, err
	}
	return ports.DecodeTransactions(c.transactionsSheet, header, rows, 2)
}

// ReadCustomerHistory implements source.HistoryReader
func (c *Client) ReadCustomerHistory(ctx context.Context) ([]core.CustomerHistoryPoint, error) {
	header, rows, err := c.readSheet(ctx, c.historySheet)
	if err != nil {
		return nil, err
	}
	return ports.DecodeCustomerHistory(c.historySheet, header, rows, 2)
}

func (c *Client) readSheet(ctx context.Context, sheet string) ([]string, [][]string, error) {
	if c.svc == nil {
		return nil, nil, fmt.Errorf("%w: sheets service not initialized", core.ErrDataUnavailable)
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, sheet).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read sheet %q: %w", core.ErrDataUnavailable, sheet, err)
	}
	applog.FromContext(ctx).InfoContext(ctx, "Sheet read", "sheet", sheet, "rows", len(resp.Values))
	return splitValues(sheet, resp.Values)
}

// splitValues turns a Sheets values matrix into a header and equally wide rows.
// The API omits trailing empty cells, so short rows are padded.
func splitValues(sheet string, values [][]interface{}) ([]string, [][]string, error) {
	if len(values) == 0 {
		return nil, nil, fmt.Errorf("%w: sheet %q is empty", core.ErrDataUnavailable, sheet)
	}
	header := toStrings(values[0])
	rows := make([][]string, 0, len(values)-1)
	for _, v := range values[1:] {
		row := toStrings(v)
		if len(row) > len(header) {
			return nil, nil, fmt.Errorf("%w: sheet %q: row wider than header (%d > %d)",
				core.ErrDataUnavailable, sheet, len(row), len(header))
		}
		for len(row) < len(header) {
			row = append(row, "")
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
