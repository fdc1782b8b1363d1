// Package airtable is a small client for the Airtable REST API covering the
// record operations the reconciler needs: find, select, create and update.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the production Airtable API root.
const DefaultBaseURL = "https://api.airtable.com/v0"

// Record is a single Airtable row.
type Record struct {
	ID          string                 `json:"id,omitempty"`
	Fields      map[string]interface{} `json:"fields"`
	CreatedTime string                 `json:"createdTime,omitempty"`
}

// Client talks to one Airtable base.
type Client struct {
	baseURL    string
	baseID     string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a client bound to baseID.
func NewClient(baseURL, baseID, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		baseID:  baseID,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Table returns a handle on a table of the base.
func (c *Client) Table(name string) *Table {
	return &Table{client: c, name: name}
}

// Table is a handle on one table.
type Table struct {
	client *Client
	name   string
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// SelectOptions narrows a list request.
type SelectOptions struct {
	FilterByFormula string
	MaxRecords      int
	Fields          []string
}

type listResponse struct {
	Records []*Record `json:"records"`
	Offset  string    `json:"offset"`
}

type writeRequest struct {
	Fields   map[string]interface{} `json:"fields"`
	Typecast bool                   `json:"typecast"`
}

// Find fetches a record by id.
func (t *Table) Find(ctx context.Context, id string) (*Record, error) {
	var rec Record
	if err := t.client.do(ctx, http.MethodGet, t.recordPath(id), nil, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Select lists records, following pagination offsets until exhausted or MaxRecords is reached.
func (t *Table) Select(ctx context.Context, opts SelectOptions) ([]*Record, error) {
	var records []*Record
	offset := ""
	for {
		q := url.Values{}
		if opts.FilterByFormula != "" {
			q.Set("filterByFormula", opts.FilterByFormula)
		}
		if opts.MaxRecords > 0 {
			q.Set("maxRecords", strconv.Itoa(opts.MaxRecords))
		}
		for _, f := range opts.Fields {
			q.Add("fields[]", f)
		}
		if offset != "" {
			q.Set("offset", offset)
		}

		var page listResponse
		if err := t.client.do(ctx, http.MethodGet, t.tablePath(), q, nil, &page); err != nil {
			return nil, err
		}
		records = append(records, page.Records...)

		if page.Offset == "" || (opts.MaxRecords > 0 && len(records) >= opts.MaxRecords) {
			break
		}
		offset = page.Offset
	}
	if opts.MaxRecords > 0 && len(records) > opts.MaxRecords {
		records = records[:opts.MaxRecords]
	}
	return records, nil
}

// Create inserts a record.
func (t *Table) Create(ctx context.Context, fields map[string]interface{}) (*Record, error) {
	var rec Record
	body := writeRequest{Fields: fields, Typecast: true}
	if err := t.client.do(ctx, http.MethodPost, t.tablePath(), nil, body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Update patches the given fields of a record; fields not present are left untouched.
func (t *Table) Update(ctx context.Context, id string, fields map[string]interface{}) (*Record, error) {
	var rec Record
	body := writeRequest{Fields: fields, Typecast: true}
	if err := t.client.do(ctx, http.MethodPatch, t.recordPath(id), nil, body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (t *Table) tablePath() string {
	return "/" + url.PathEscape(t.client.baseID) + "/" + url.PathEscape(t.name)
}

func (t *Table) recordPath(id string) string {
	return t.tablePath() + "/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return parseAPIError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
