package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"bizdash/internal/core"
	"bizdash/internal/records"
)

var _ records.Store = (*Client)(nil)

// ServiceColumns is the header written to a fresh services sheet.
var ServiceColumns = []string{"id", "title", "details", "price", "available"}

// Config names the spreadsheet and the sheet holding each collection.
type Config struct {
	SpreadsheetID     string
	ServicesSheet     string
	TransactionsSheet string
	ExpensesSheet     string
	// Location is used for timestamps without zone information.
	Location *time.Location
}

// Client is a records.Store backed by a Google Sheets spreadsheet with one
// sheet per collection. The first row of each sheet is the header; data rows
// become core.Record values keyed by header name.
type Client struct {
	svc *gsheet.Service
	cfg Config
}

// New creates a Sheets client authenticated with service-account
// credentials from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE
// or GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	cfg = cfg.withDefaults()
	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, cfg: cfg}, nil
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.ServicesSheet) == "" {
		c.ServicesSheet = core.CollectionServices
	}
	if strings.TrimSpace(c.TransactionsSheet) == "" {
		c.TransactionsSheet = core.CollectionTransactions
	}
	if strings.TrimSpace(c.ExpensesSheet) == "" {
		c.ExpensesSheet = core.CollectionExpenses
	}
	if c.Location == nil {
		c.Location = time.Local
	}
	return c
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
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

	slog.DebugContext(ctx, "Creating Google Sheets service", "credentials_size", len(credentialsJSON))
	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) ListServices(ctx context.Context) ([]core.Service, error) {
	recs, err := c.readRecords(ctx, c.cfg.ServicesSheet)
	if err != nil {
		return nil, err
	}
	out := make([]core.Service, 0, len(recs))
	for _, r := range recs {
		out = append(out, core.ServiceFromRecord("", r))
	}
	return out, nil
}

func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	recs, err := c.readRecords(ctx, c.cfg.TransactionsSheet)
	if err != nil {
		return nil, err
	}
	out := make([]core.Transaction, 0, len(recs))
	for _, r := range recs {
		out = append(out, core.TransactionFromRecord("", r, c.cfg.Location))
	}
	return out, nil
}

func (c *Client) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	recs, err := c.readRecords(ctx, c.cfg.ExpensesSheet)
	if err != nil {
		return nil, err
	}
	out := make([]core.Expense, 0, len(recs))
	for _, r := range recs {
		out = append(out, core.ExpenseFromRecord("", r))
	}
	return out, nil
}

func (c *Client) CreateService(ctx context.Context, s core.Service) (string, error) {
	if err := s.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	values, err := c.readValues(ctx, c.cfg.ServicesSheet)
	if err != nil {
		return "", err
	}
	header := headerOf(values)
	if len(header) == 0 {
		header = ServiceColumns
		if err := c.writeRow(ctx, c.cfg.ServicesSheet, 1, toRow(header)); err != nil {
			return "", err
		}
	}

	s.ID = uuid.NewString()
	rng := fmt.Sprintf("%s!A1", c.cfg.ServicesSheet)
	vr := &gsheet.ValueRange{Values: [][]any{rowFor(header, s.ToRecord())}}
	_, err = c.svc.Spreadsheets.Values.Append(c.cfg.SpreadsheetID, rng, vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", c.cfg.ServicesSheet, err)
	}
	return s.ID, nil
}

func (c *Client) UpdateService(ctx context.Context, s core.Service) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return c.rewriteService(ctx, s.ID, func(core.Record) core.Record {
		return s.ToRecord()
	})
}

func (c *Client) SetAvailability(ctx context.Context, id string, available bool) error {
	return c.rewriteService(ctx, id, func(r core.Record) core.Record {
		r["available"] = available
		return r
	})
}

// DeleteService clears the service row. Blank rows are skipped on read, so
// the sheet never has to be compacted.
func (c *Client) DeleteService(ctx context.Context, id string) error {
	values, err := c.readValues(ctx, c.cfg.ServicesSheet)
	if err != nil {
		return err
	}
	row := findRow(values, id)
	if row < 0 {
		return core.ErrServiceNotFound
	}
	rng := fmt.Sprintf("%s!%d:%d", c.cfg.ServicesSheet, row, row)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.cfg.SpreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	return nil
}

// ReplaceServices rewrites the whole services sheet with the given catalog.
func (c *Client) ReplaceServices(ctx context.Context, services []core.Service) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	sheet := c.cfg.ServicesSheet
	if _, err := c.svc.Spreadsheets.Values.Clear(c.cfg.SpreadsheetID, sheet, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", sheet, err)
	}
	rows := make([][]any, 0, len(services)+1)
	rows = append(rows, toRow(ServiceColumns))
	for _, s := range services {
		rows = append(rows, rowFor(ServiceColumns, s.ToRecord()))
	}
	rng := fmt.Sprintf("%s!A1", sheet)
	_, err := c.svc.Spreadsheets.Values.Update(c.cfg.SpreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write %s: %w", sheet, err)
	}
	return nil
}

func (c *Client) rewriteService(ctx context.Context, id string, mutate func(core.Record) core.Record) error {
	values, err := c.readValues(ctx, c.cfg.ServicesSheet)
	if err != nil {
		return err
	}
	row := findRow(values, id)
	if row < 0 {
		return core.ErrServiceNotFound
	}
	header := headerOf(values)
	rec := mutate(recordFor(header, values[row-1]))
	return c.writeRow(ctx, c.cfg.ServicesSheet, row, rowFor(header, rec))
}

func (c *Client) writeRow(ctx context.Context, sheet string, row int, cells []any) error {
	rng := fmt.Sprintf("%s!A%d", sheet, row)
	_, err := c.svc.Spreadsheets.Values.Update(c.cfg.SpreadsheetID, rng, &gsheet.ValueRange{Values: [][]any{cells}}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

func (c *Client) readRecords(ctx context.Context, sheet string) ([]core.Record, error) {
	values, err := c.readValues(ctx, sheet)
	if err != nil {
		return nil, err
	}
	return parseRecords(values), nil
}

func (c *Client) readValues(ctx context.Context, sheet string) ([][]any, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.cfg.SpreadsheetID, sheet).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sheet, err)
	}
	return resp.Values, nil
}
