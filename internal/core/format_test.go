package core

import (
	"testing"
	"time"

	"paystack-sync/internal/models"
)

func TestFormatDate(t *testing.T) {
	tests := map[string]string{
		"2024-03-05T10:15:00.000Z":  "2024-03-05",
		"2024-03-05T23:30:00+01:00": "2024-03-05",
		"2024-03-05 08:00:00":       "2024-03-05",
		"2024-03-05":                "2024-03-05",
		"yesterday":                 "",
		"":                          "",
	}
	for in, want := range tests {
		if got := FormatDate(in); got != want {
			t.Errorf("FormatDate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSubunitsToMajor(t *testing.T) {
	if got := SubunitsToMajor(10000); got != 100 {
		t.Errorf("SubunitsToMajor(10000) = %v, want 100", got)
	}
	if got := SubunitsToMajor(150); got != 1.5 {
		t.Errorf("SubunitsToMajor(150) = %v, want 1.5", got)
	}
}

func TestExpirationDate(t *testing.T) {
	paid := time.Date(2024, time.January, 15, 18, 45, 0, 0, time.UTC)
	tests := []struct {
		pkg  models.SubscriptionPackage
		want string
	}{
		{models.PackageOneMonth, "2024-02-15"},
		{models.PackageThreeMonths, "2024-04-15"},
		{models.PackageSixMonths, "2024-07-15"},
	}
	for _, tt := range tests {
		if got := ExpirationDate(paid, tt.pkg); got != tt.want {
			t.Errorf("ExpirationDate(%s) = %q, want %q", tt.pkg, got, tt.want)
		}
	}
}

func TestIsDeliverableEmail(t *testing.T) {
	tests := map[string]bool{
		"ama@gmail.com":              true,
		" Kofi@Example.org ":         true,
		"233201234567@phone.local":   false,
		"placeholder+123@domain.com": false,
		"noemail@church.org":         false,
		"user@example.com":           false,
		"user@mail.example.com":      false,
		"x@example.company.gh":       true,
		"kwame@temp.io":              false,
		"ama@contemp.org":            true,
		"not-an-email":               false,
		"trailing@":                  false,
		"":                           false,
	}
	for in, want := range tests {
		if got := IsDeliverableEmail(in); got != want {
			t.Errorf("IsDeliverableEmail(%q) = %v, want %v", in, got, want)
		}
	}
}
