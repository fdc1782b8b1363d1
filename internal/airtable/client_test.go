package airtable

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTable_Select_FollowsOffset(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/appBase/Subscribers" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.URL.Query().Get("filterByFormula"); got != "LOWER({Email}) = 'ama@example.org'" {
			t.Errorf("filterByFormula = %q", got)
		}
		switch r.URL.Query().Get("offset") {
		case "":
			fmt.Fprint(w, `{"records":[{"id":"rec1","fields":{"Email":"ama@example.org"}}],"offset":"itr2"}`)
		case "itr2":
			fmt.Fprint(w, `{"records":[{"id":"rec2","fields":{"Email":"ama@example.org"}}]}`)
		default:
			t.Errorf("unexpected offset %q", r.URL.Query().Get("offset"))
		}
	}))
	defer srv.Close()

	table := NewClient(srv.URL, "appBase", "key").Table("Subscribers")
	recs, err := table.Select(context.Background(), SelectOptions{FilterByFormula: FieldEqualsFold("Email", "Ama@Example.org")})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(recs) != 2 || recs[0].ID != "rec1" || recs[1].ID != "rec2" {
		t.Errorf("unexpected records: %+v", recs)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestTable_Select_MaxRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("maxRecords") != "1" {
			t.Errorf("maxRecords = %q", r.URL.Query().Get("maxRecords"))
		}
		fmt.Fprint(w, `{"records":[{"id":"rec1","fields":{}}],"offset":"more"}`)
	}))
	defer srv.Close()

	recs, err := NewClient(srv.URL, "appBase", "key").Table("Donations").Select(context.Background(), SelectOptions{MaxRecords: 1})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(recs) != 1 {
		t.Errorf("len = %d, want 1", len(recs))
	}
}

func TestTable_CreateAndUpdate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Fields   map[string]interface{} `json:"fields"`
			Typecast bool                   `json:"typecast"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
			return
		}
		if !body.Typecast {
			t.Error("typecast should be set")
		}
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/appBase/Donations":
			json.NewEncoder(w).Encode(Record{ID: "recNew", Fields: body.Fields})
		case r.Method == http.MethodPatch && r.URL.Path == "/appBase/Donations/recNew":
			json.NewEncoder(w).Encode(Record{ID: "recNew", Fields: body.Fields})
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	table := NewClient(srv.URL, "appBase", "key").Table("Donations")
	created, err := table.Create(context.Background(), map[string]interface{}{"Amount": 100})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != "recNew" || created.Fields["Amount"].(float64) != 100 {
		t.Errorf("unexpected created record: %+v", created)
	}
	updated, err := table.Update(context.Background(), "recNew", map[string]interface{}{"Amount": 250})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Fields["Amount"].(float64) != 250 {
		t.Errorf("unexpected updated record: %+v", updated)
	}
}

func TestParseAPIError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantMsg  string
		wantType string
	}{
		{"message wins", 422, `{"error":{"type":"INVALID_VALUE_FOR_COLUMN","message":"Field \"Amount\" cannot accept the provided value"}}`, `Field "Amount" cannot accept the provided value`, "INVALID_VALUE_FOR_COLUMN"},
		{"type when no message", 403, `{"error":{"type":"INVALID_PERMISSIONS"}}`, "INVALID_PERMISSIONS", "INVALID_PERMISSIONS"},
		{"string error", 404, `{"error":"NOT_FOUND"}`, "NOT_FOUND", "NOT_FOUND"},
		{"raw body", 502, `upstream exploded`, "upstream exploded", ""},
		{"empty body", 503, ``, "Service Unavailable", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseAPIError(tt.status, []byte(tt.body))
			if err.Message != tt.wantMsg || err.Type != tt.wantType || err.StatusCode != tt.status {
				t.Errorf("parseAPIError = %+v, want message %q type %q", err, tt.wantMsg, tt.wantType)
			}
		})
	}
}

func TestErrorMessage_Unwraps(t *testing.T) {
	wrapped := fmt.Errorf("update subscription: %w", &APIError{StatusCode: 422, Message: "bad date"})
	if got := ErrorMessage(wrapped); got != "bad date" {
		t.Errorf("ErrorMessage = %q, want %q", got, "bad date")
	}
	if got := ErrorMessage(errors.New("dial tcp: refused")); got != "dial tcp: refused" {
		t.Errorf("ErrorMessage = %q", got)
	}
	if !IsNotFound(fmt.Errorf("find: %w", &APIError{StatusCode: 404})) {
		t.Error("IsNotFound should see through wrapping")
	}
}

func TestQuote(t *testing.T) {
	if got := FieldEquals("Payment Reference", `o'neil\ref`); got != `{Payment Reference} = 'o\'neil\\ref'` {
		t.Errorf("FieldEquals = %s", got)
	}
}
