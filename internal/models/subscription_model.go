package models

// SubscriptionPackage is the length of community-channel access bought.
type SubscriptionPackage string

const (
	PackageOneMonth    SubscriptionPackage = "1 month"
	PackageThreeMonths SubscriptionPackage = "3 months"
	PackageSixMonths   SubscriptionPackage = "6 months"
)

// Months returns the number of calendar months the package covers.
func (p SubscriptionPackage) Months() int {
	switch p {
	case PackageSixMonths:
		return 6
	case PackageThreeMonths:
		return 3
	default:
		return 1
	}
}

// Subscription is a row of the Subscriptions table.
type Subscription struct {
	ID             string              `json:"id"`
	Name           string              `json:"name,omitempty"`
	SubscriberIDs  []string            `json:"subscriberIds,omitempty"`
	Email          string              `json:"email,omitempty"`
	WhatsAppNumber string              `json:"whatsappNumber,omitempty"`
	Package        SubscriptionPackage `json:"package,omitempty"`
	AmountPaid     float64             `json:"amountPaid,omitempty"`
	ExpirationDate string              `json:"expirationDate,omitempty"` // YYYY-MM-DD
	CreatedAt      string              `json:"createdAt,omitempty"`      // computed by Airtable, never written
}
