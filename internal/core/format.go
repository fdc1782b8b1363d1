package core

import (
	"strings"
	"time"

	"paystack-sync/internal/models"
)

const dateLayout = "2006-01-02"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	dateLayout,
}

// parseTimestamp accepts the timestamp shapes Paystack and Airtable send.
func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// FormatDate normalizes a timestamp to YYYY-MM-DD. Invalid input yields "".
func FormatDate(s string) string {
	t, ok := parseTimestamp(s)
	if !ok {
		return ""
	}
	return t.Format(dateLayout)
}

// FormatTimestamp normalizes a timestamp to RFC 3339 in UTC. Invalid input yields "".
func FormatTimestamp(s string) string {
	t, ok := parseTimestamp(s)
	if !ok {
		return ""
	}
	return t.Format(time.RFC3339)
}

// SubunitsToMajor converts kobo/pesewas to the major currency unit.
func SubunitsToMajor(amount int64) float64 {
	return float64(amount) / 100
}

// startOfDay truncates t to midnight UTC.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ExpirationDate returns the YYYY-MM-DD on which a package bought on paidOn runs out.
func ExpirationDate(paidOn time.Time, pkg models.SubscriptionPackage) string {
	return startOfDay(paidOn).AddDate(0, pkg.Months(), 0).Format(dateLayout)
}

// placeholderEmailMarkers identify the synthetic addresses checkout assigns to
// phone-only payers. Mail to them would bounce.
var placeholderEmailMarkers = []string{
	"placeholder",
	"noemail",
	"no-email",
	"phone-only",
}

// placeholderDomainPrefixes and placeholderDomains are matched against the
// part after "@" only.
var (
	placeholderDomainPrefixes = []string{"phone.", "temp."}
	placeholderDomains        = []string{"example.com"}
)

// IsDeliverableEmail reports whether email looks like a real customer address.
func IsDeliverableEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	for _, marker := range placeholderEmailMarkers {
		if strings.Contains(email, marker) {
			return false
		}
	}
	domain := email[at+1:]
	for _, p := range placeholderDomainPrefixes {
		if strings.HasPrefix(domain, p) {
			return false
		}
	}
	for _, d := range placeholderDomains {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return false
		}
	}
	return true
}
