package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"moneyanalysis/internal/core"
	"moneyanalysis/internal/log"
	ports "moneyanalysis/internal/sheets"
)

const maxRetries = 4

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
	newBackOff    func() backoff.BackOff
	now           func() time.Time
}

// Ensure interface conformance
var _ ports.ReportPublisher = (*Client)(nil)

// New creates a Sheets client using Service Account credentials from the
// environment. Reports go to "<year> <sheetName>", where year is the
// statement year of the report.
func New(ctx context.Context, spreadsheetID, sheetName string, logger *log.Logger) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, spreadsheetID, sheetName, logger), nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetName string, logger *log.Logger) *Client {
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Reports"
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger.WithComponent(log.ComponentSheets),
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
		now: time.Now,
	}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	// Also check the standard Google Cloud environment variable
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// PublishReport writes p as one row of the reports sheet. A row whose
// period matches is overwritten, otherwise the row is appended. The header
// is written when the sheet is empty.
func (c *Client) PublishReport(ctx context.Context, p core.PeriodReport) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	sheet := c.sheetFor(p)
	var existing [][]interface{}
	err := c.retry(ctx, func() error {
		resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, fmt.Sprintf("%s!A:A", sheet)).Context(ctx).Do()
		if err != nil {
			return err
		}
		existing = resp.Values
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("read %s: %w", sheet, err)
	}

	row := reportRow(p, c.now())
	var ref string
	if n := findPeriodRow(existing, p.Period); n > 0 {
		rng := fmt.Sprintf("%s!A%d:%s%d", sheet, n, lastColumn, n)
		err = c.retry(ctx, func() error {
			resp, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: [][]interface{}{row}}).
				ValueInputOption("USER_ENTERED").Context(ctx).Do()
			if err != nil {
				return err
			}
			ref = resp.UpdatedRange
			return nil
		})
	} else {
		values := [][]interface{}{row}
		if len(existing) == 0 {
			values = append([][]interface{}{headerRow()}, values...)
		}
		rng := fmt.Sprintf("%s!A:%s", sheet, lastColumn)
		err = c.retry(ctx, func() error {
			resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
				ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
			if err != nil {
				return err
			}
			if resp.Updates != nil {
				ref = resp.Updates.UpdatedRange
			}
			return nil
		})
	}
	if err != nil {
		return "", fmt.Errorf("write report %s to %s: %w", p.Period, sheet, err)
	}

	c.logger.InfoContext(ctx, "Report published", "period", p.Period, log.FieldSheetsRef, ref)
	return ref, nil
}

// retry runs op until it succeeds, fails with a non rate limit error or the
// backoff gives up.
func (c *Client) retry(ctx context.Context, op func() error) error {
	b := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), maxRetries), ctx)
	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if isRateLimited(err) {
			c.logger.WarnContext(ctx, "Sheets rate limited, backing off", log.FieldError, err)
			return err
		}
		return backoff.Permanent(err)
	}, b)
}

func isRateLimited(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests
	}
	return false
}

// sheetFor names the sheet of p's statement year. Undated reports fall back
// to the current year.
func (c *Client) sheetFor(p core.PeriodReport) string {
	year := p.Year
	if year == 0 {
		year = c.now().Year()
	}
	return yearPrefixedName(c.sheetName, year)
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
