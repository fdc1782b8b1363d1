package core

import (
	"strings"

	"paystack-sync/internal/models"
	"paystack-sync/internal/paystack"
)

// packageHint is one substring test of the package resolution. Hints are
// tried in slice order, so six months beats three beats one.
type packageHint struct {
	needles []string
	pkg     models.SubscriptionPackage
}

var (
	metadataHints = []packageHint{
		{[]string{"6", "six"}, models.PackageSixMonths},
		{[]string{"3", "three"}, models.PackageThreeMonths},
		{[]string{"1", "one"}, models.PackageOneMonth},
	}
	planTextHints = []packageHint{
		{[]string{"6", "six"}, models.PackageSixMonths},
		{[]string{"3", "three", "quarter"}, models.PackageThreeMonths},
		{[]string{"1", "one"}, models.PackageOneMonth},
	}
)

func matchHints(text string, hints []packageHint) (models.SubscriptionPackage, bool) {
	text = strings.ToLower(text)
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	for _, h := range hints {
		for _, n := range h.needles {
			if strings.Contains(text, n) {
				return h.pkg, true
			}
		}
	}
	return "", false
}

// MapPlanToSubscriptionPackage resolves the community package a plan sells.
// Resolution order: explicit metadata (subscription_package, then package),
// plan name and description, plan code for monthly plans, then one month.
func MapPlanToSubscriptionPackage(plan paystack.Plan, metadata *paystack.Metadata) models.SubscriptionPackage {
	if metadata != nil {
		if pkg, ok := matchHints(metadata.Lookup("subscription_package", "package"), metadataHints); ok {
			return pkg
		}
	}

	if pkg, ok := matchHints(plan.Name+" "+plan.Description, planTextHints); ok {
		return pkg
	}

	if strings.EqualFold(strings.TrimSpace(plan.Interval), "monthly") {
		if pkg, ok := matchHints(plan.PlanCode, metadataHints); ok {
			return pkg
		}
		return models.PackageOneMonth
	}

	return models.PackageOneMonth
}
