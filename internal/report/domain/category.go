package domain

import (
	"strings"

	expenses "aeroledger/internal/expenses/domain"
)

// Category is one of the fixed canonical expense groupings.
type Category string

const (
	CategoryCAMO            Category = "CAMO and Management"
	CategoryCrew            Category = "Crew"
	CategoryDisbursementFee Category = "Disbursement fee"
	CategoryInsurance       Category = "Insurance charge"
	CategoryMaintenance     Category = "Maintenance"
	CategorySubscriptions   Category = "Subscriptions"
	CategoryOtherCharges    Category = "Other charges"
	CategoryFalconCare      Category = "FalconCare"
	CategoryHoneywell       Category = "Honeywell"
	CategoryGroundHandling  Category = "Ground handling"
	CategoryFuel            Category = "Fuel"
	CategoryNavigation      Category = "Navigation charges"
	CategoryOverfly         Category = "Overfly charges"
	CategoryCatering        Category = "Catering"
	CategoryFlightPlanning  Category = "Flight planning"
)

// classificationRule matches a raw expense type label. A rule matches when
// the label equals one of exact, contains one of anyOf, or contains every
// entry of allOf.
type classificationRule struct {
	category Category
	exact    []string
	anyOf    []string
	allOf    []string
}

// classificationRules is evaluated top to bottom; first match wins. The
// order is part of the contract, not an implementation detail.
var classificationRules = []classificationRule{
	{category: CategoryCAMO, exact: []string{"camo and management"}, allOf: []string{"camo", "management"}},
	{category: CategoryCrew, exact: []string{"crew"}},
	{category: CategoryDisbursementFee, exact: []string{"disbursement fee"}, anyOf: []string{"disbursement"}},
	{category: CategoryInsurance, exact: []string{"insurance charge"}, anyOf: []string{"insurance"}},
	{category: CategoryMaintenance, exact: []string{"maintenance"}},
	{category: CategorySubscriptions, exact: []string{"subscriptions"}, anyOf: []string{"subscription"}},
	{category: CategoryFalconCare, exact: []string{"falconcare", "falcon care"}, anyOf: []string{"falconcare", "falcon care"}},
	{category: CategoryHoneywell, exact: []string{"honeywell"}},
	{category: CategoryGroundHandling, exact: []string{"ground handling", "groundhandling"}, anyOf: []string{"ground handling", "groundhandling"}},
	{category: CategoryFuel, exact: []string{"fuel"}},
	{category: CategoryNavigation, exact: []string{"navigation charges"}, anyOf: []string{"navigation", "enroute"}},
	{category: CategoryOverfly, exact: []string{"overfly charges"}, anyOf: []string{"overfly", "overflight"}},
	{category: CategoryCatering, exact: []string{"catering"}, anyOf: []string{"catering", "food"}},
	{category: CategoryFlightPlanning, exact: []string{"flight planning"}, anyOf: []string{"flight planning", "flightplanning"}},
	{category: CategoryOtherCharges, exact: []string{"other charges"}, anyOf: []string{"other charges"}},
}

// nonFlightCategories is the recurring/overhead partition; everything else
// in the fixed set is a per-trip cost.
var nonFlightCategories = map[Category]struct{}{
	CategoryCAMO:            {},
	CategoryCrew:            {},
	CategoryDisbursementFee: {},
	CategoryInsurance:       {},
	CategoryMaintenance:     {},
	CategorySubscriptions:   {},
	CategoryOtherCharges:    {},
	CategoryFalconCare:      {},
	CategoryHoneywell:       {},
}

// categoryPriority orders report rows: overhead/recurring, then third-party
// maintenance programs, then per-flight operational costs. Categories not
// listed sort last.
var categoryPriority = []Category{
	CategoryCAMO,
	CategoryCrew,
	CategoryInsurance,
	CategoryMaintenance,
	CategorySubscriptions,
	CategoryDisbursementFee,
	CategoryOtherCharges,

	CategoryFalconCare,
	CategoryHoneywell,

	CategoryGroundHandling,
	CategoryFuel,
	CategoryNavigation,
	CategoryOverfly,
	CategoryCatering,
	CategoryFlightPlanning,
}

// ClassifyBase maps a free-text expense type to its canonical category.
// Returns ok=false when no rule matches; such expenses are dropped from
// reports.
func ClassifyBase(typeText string) (Category, bool) {
	label := strings.ToLower(strings.TrimSpace(typeText))
	if label == "" {
		return "", false
	}
	for _, rule := range classificationRules {
		if rule.matches(label) {
			return rule.category, true
		}
	}
	return "", false
}

func (rule classificationRule) matches(label string) bool {
	for _, exact := range rule.exact {
		if label == exact {
			return true
		}
	}
	for _, sub := range rule.anyOf {
		if strings.Contains(label, sub) {
			return true
		}
	}
	if len(rule.allOf) > 0 {
		all := true
		for _, sub := range rule.allOf {
			if !strings.Contains(label, sub) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// ClassifyDisplay returns the row label for an expense: the base category,
// optionally suffixed with the trimmed subtype when subcategories are
// requested. ok=false means the expense is excluded.
func ClassifyDisplay(e expenses.Expense, showSubcategories bool) (string, bool) {
	base, ok := ClassifyBase(e.Type)
	if !ok {
		return "", false
	}
	if showSubcategories {
		if subtype := strings.TrimSpace(e.Subtype); subtype != "" {
			return string(base) + " - " + subtype, true
		}
	}
	return string(base), true
}

// IsNonFlight reports whether the expense belongs to the recurring/overhead
// group. ok=false means the expense is unclassified and must be skipped.
func IsNonFlight(e expenses.Expense) (nonFlight bool, ok bool) {
	base, ok := ClassifyBase(e.Type)
	if !ok {
		return false, false
	}
	_, nonFlight = nonFlightCategories[base]
	return nonFlight, true
}

// priorityIndex resolves a category's sort rank; unknown categories rank
// after every listed one.
func priorityIndex(category Category) int {
	for i, c := range categoryPriority {
		if c == category {
			return i
		}
	}
	return len(categoryPriority)
}
