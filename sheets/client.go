// Package sheets adapts the Google Sheets v4 API to the row operations the
// inventory service needs.
package sheets

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *sheets.Service
	spreadsheetID string
}

// New opens the spreadsheet service with an already-authenticated HTTP client
// (service-account JWT, see internal/googleauth) and verifies the spreadsheet
// is reachable so a wrong id or missing share fails at startup, not on the
// first user message.
func New(ctx context.Context, httpClient *http.Client, spreadsheetID string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, fmt.Errorf("missing sheets.spreadsheet_id")
	}
	svc, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	c := &Client{svc: svc, spreadsheetID: spreadsheetID}
	if _, err := svc.Spreadsheets.Get(spreadsheetID).Fields("spreadsheetId").Context(ctx).Do(); err != nil {
		return nil, fmt.Errorf("open spreadsheet %q (check the id and that the service account has access): %w", spreadsheetID, err)
	}
	return c, nil
}

// Rows returns every row of the named tab, header included. Cells come back
// as trimmed strings.
func (c *Client) Rows(ctx context.Context, tab string) ([][]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, tab).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read tab %q: %w", tab, err)
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, 0, len(raw))
		for _, cell := range raw {
			row = append(row, strings.TrimSpace(fmt.Sprint(cell)))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Update overwrites one row (1-based) of the named tab starting at column A.
func (c *Client) Update(ctx context.Context, tab string, row int, values []string) error {
	if row < 1 {
		return fmt.Errorf("row index %d is invalid", row)
	}
	rng := fmt.Sprintf("%s!A%d", tab, row)
	vr := &sheets.ValueRange{Values: [][]any{toAnyRow(values)}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

// Append adds one row to the end of the named tab.
func (c *Client) Append(ctx context.Context, tab string, values []string) error {
	vr := &sheets.ValueRange{Values: [][]any{toAnyRow(values)}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, tab, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to tab %q: %w", tab, err)
	}
	return nil
}

func toAnyRow(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
