package paystack

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Customer is the customer object embedded in transactions and subscriptions.
type Customer struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	CustomerCode string `json:"customer_code"`
	Phone        string `json:"phone"`
}

// FullName joins first and last name, skipping empty parts.
func (c Customer) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}

// Plan is a recurring billing plan. Webhooks send it as an object, an empty
// object, a bare plan code string or null; all of these decode.
type Plan struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	PlanCode    string `json:"plan_code,omitempty"`
	Description string `json:"description,omitempty"`
	Interval    string `json:"interval,omitempty"`
	Amount      int64  `json:"amount,omitempty"`
	Currency    string `json:"currency,omitempty"`
}

type planAlias Plan

func (p *Plan) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*p = Plan{}
		return nil
	}
	if trimmed[0] == '"' {
		var code string
		if err := json.Unmarshal(trimmed, &code); err != nil {
			return err
		}
		*p = Plan{PlanCode: strings.TrimSpace(code)}
		return nil
	}
	var alias planAlias
	if err := json.Unmarshal(trimmed, &alias); err != nil {
		return err
	}
	*p = Plan(alias)
	return nil
}

// Authorization describes the payment instrument used for a charge.
type Authorization struct {
	AuthorizationCode string `json:"authorization_code,omitempty"`
	Channel           string `json:"channel,omitempty"`
	CardType          string `json:"card_type,omitempty"`
	Bank              string `json:"bank,omitempty"`
	Last4             string `json:"last4,omitempty"`
	Reusable          bool   `json:"reusable,omitempty"`
	CallbackURL       string `json:"callback_url,omitempty"`
}

// CustomField is one entry of metadata.custom_fields.
type CustomField struct {
	DisplayName  string `json:"display_name"`
	VariableName string `json:"variable_name"`
	Value        string `json:"value"`
}

func (f *CustomField) UnmarshalJSON(data []byte) error {
	var raw struct {
		DisplayName  string          `json:"display_name"`
		VariableName string          `json:"variable_name"`
		Value        json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f.DisplayName = raw.DisplayName
	f.VariableName = raw.VariableName
	f.Value = scalarString(raw.Value)
	return nil
}

// Metadata is the free-form metadata attached at checkout. Paystack delivers
// it as an object, a JSON-encoded string, an empty string or null.
type Metadata struct {
	CustomFields []CustomField
	// Values holds the top-level scalar entries, stringified.
	Values map[string]string
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	*m = Metadata{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '"' {
		var encoded string
		if err := json.Unmarshal(trimmed, &encoded); err != nil {
			return err
		}
		trimmed = bytes.TrimSpace([]byte(encoded))
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil
	}
	for key, value := range raw {
		if key == "custom_fields" {
			var fields []CustomField
			if err := json.Unmarshal(value, &fields); err == nil {
				m.CustomFields = fields
			}
			continue
		}
		if s := scalarString(value); s != "" {
			if m.Values == nil {
				m.Values = make(map[string]string)
			}
			m.Values[key] = s
		}
	}
	return nil
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(m.Values)+1)
	for k, v := range m.Values {
		out[k] = v
	}
	if len(m.CustomFields) > 0 {
		out["custom_fields"] = m.CustomFields
	}
	return json.Marshal(out)
}

// CustomField returns the value of the custom field whose variable_name equals name.
func (m Metadata) CustomField(name string) (string, bool) {
	for _, f := range m.CustomFields {
		if f.VariableName == name {
			return f.Value, true
		}
	}
	return "", false
}

// Value returns a top-level metadata entry.
func (m Metadata) Value(name string) (string, bool) {
	v, ok := m.Values[name]
	return v, ok
}

// Lookup returns the first non-blank value among names, checking custom
// fields before top-level entries for each name in turn.
func (m Metadata) Lookup(names ...string) string {
	for _, name := range names {
		if v, ok := m.CustomField(name); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		if v, ok := m.Value(name); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// Transaction is a charge as delivered by charge.* webhooks and GET /transaction.
type Transaction struct {
	ID              int64         `json:"id"`
	Domain          string        `json:"domain,omitempty"`
	Status          string        `json:"status"`
	Reference       string        `json:"reference"`
	Amount          int64         `json:"amount"`
	Currency        string        `json:"currency"`
	Channel         string        `json:"channel,omitempty"`
	GatewayResponse string        `json:"gateway_response,omitempty"`
	PaidAt          string        `json:"paid_at,omitempty"`
	CreatedAt       string        `json:"created_at,omitempty"`
	Metadata        Metadata      `json:"metadata"`
	Customer        Customer      `json:"customer"`
	Authorization   Authorization `json:"authorization"`
	Plan            Plan          `json:"plan"`
}

// Subscription is a recurring subscription as returned by GET /subscription.
type Subscription struct {
	ID               int64    `json:"id"`
	Domain           string   `json:"domain,omitempty"`
	Status           string   `json:"status"`
	SubscriptionCode string   `json:"subscription_code"`
	EmailToken       string   `json:"email_token,omitempty"`
	Amount           int64    `json:"amount"`
	CronExpression   string   `json:"cron_expression,omitempty"`
	NextPaymentDate  string   `json:"next_payment_date,omitempty"`
	CreatedAt        string   `json:"createdAt,omitempty"`
	Customer         Customer `json:"customer"`
	Plan             Plan     `json:"plan"`
}

// ListMeta is the pagination block of list endpoints.
type ListMeta struct {
	Total     FlexInt `json:"total"`
	Skipped   FlexInt `json:"skipped"`
	PerPage   FlexInt `json:"perPage"`
	Page      FlexInt `json:"page"`
	PageCount FlexInt `json:"pageCount"`
}

// FlexInt decodes integers that the API sometimes sends as strings.
type FlexInt int

func (n *FlexInt) UnmarshalJSON(data []byte) error {
	s := scalarString(data)
	if s == "" {
		*n = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*n = FlexInt(v)
	return nil
}

// scalarString renders a JSON scalar as a plain string. Objects and arrays yield "".
func scalarString(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return ""
		}
		return s
	case '{', '[':
		return ""
	default:
		return string(trimmed)
	}
}
