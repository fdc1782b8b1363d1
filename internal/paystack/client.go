package paystack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the production Paystack API.
const DefaultBaseURL = "https://api.paystack.co"

// ErrMissingSecretKey is returned when the client is used without a secret key.
var ErrMissingSecretKey = errors.New("paystack secret key is not configured")

// APIError is a non-2xx answer from the Paystack API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("paystack API error %d: %s", e.StatusCode, e.Message)
}

// Client is a Paystack REST client.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

// NewClient creates a new Paystack client.
func NewClient(baseURL, secretKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListParams are the pagination and filter parameters shared by list endpoints.
// Zero values are not sent.
type ListParams struct {
	Page     int
	PerPage  int
	Customer string
	Plan     string
	Status   string
	From     string
	To       string
}

// Query encodes the parameters as a URL query.
func (p ListParams) Query() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PerPage > 0 {
		q.Set("perPage", strconv.Itoa(p.PerPage))
	}
	set := func(key, value string) {
		if v := strings.TrimSpace(value); v != "" {
			q.Set(key, v)
		}
	}
	set("customer", p.Customer)
	set("plan", p.Plan)
	set("status", p.Status)
	set("from", p.From)
	set("to", p.To)
	return q
}

// TransactionList is one page of GET /transaction.
type TransactionList struct {
	Data []Transaction `json:"data"`
	Meta ListMeta      `json:"meta"`
}

// SubscriptionList is one page of GET /subscription.
type SubscriptionList struct {
	Data []Subscription `json:"data"`
	Meta ListMeta       `json:"meta"`
}

type response struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    ListMeta        `json:"meta"`
}

// ListTransactions returns one page of transactions.
func (c *Client) ListTransactions(ctx context.Context, params ListParams) (*TransactionList, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/transaction", params.Query())
	if err != nil {
		return nil, err
	}
	list := &TransactionList{Meta: resp.Meta}
	if len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, &list.Data); err != nil {
			return nil, fmt.Errorf("unmarshal transactions: %w", err)
		}
	}
	return list, nil
}

// ListSubscriptions returns one page of subscriptions.
func (c *Client) ListSubscriptions(ctx context.Context, params ListParams) (*SubscriptionList, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/subscription", params.Query())
	if err != nil {
		return nil, err
	}
	list := &SubscriptionList{Meta: resp.Meta}
	if len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, &list.Data); err != nil {
			return nil, fmt.Errorf("unmarshal subscriptions: %w", err)
		}
	}
	return list, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values) (*response, error) {
	if c.secretKey == "" {
		return nil, ErrMissingSecretKey
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var out response
	decodeErr := json.Unmarshal(data, &out)

	if resp.StatusCode >= 400 {
		msg := strings.TrimSpace(string(data))
		if decodeErr == nil && out.Message != "" {
			msg = out.Message
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("unmarshal response: %w", decodeErr)
	}
	if !out.Status {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: out.Message}
	}
	return &out, nil
}
