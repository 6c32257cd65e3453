// Package tariff resolves the unit price a given role pays for a vessel and
// day part, plus the mandatory crew fee and the paid add-on total. All
// functions are pure; amounts are minor currency units.
package tariff

import (
	models "github.com/veligo/charterdesk/internal"
)

// ResolveUnitPrice returns the configured unit price for the day part, or
// false when the vessel has no rate for it at all. Partner-role callers get
// the partner override when one exists and fall back to the standard rate
// otherwise.
func ResolveUnitPrice(v *models.Vessel, dayPart models.DayPart, role models.Role) (int64, bool) {
	var standard, partner *int64
	switch dayPart {
	case models.DayPartFull:
		standard, partner = v.PriceFullDay, v.PartnerPriceFullDay
	case models.DayPartAM:
		standard, partner = v.PriceAM, v.PartnerPriceAM
	case models.DayPartPM:
		standard, partner = v.PricePM, v.PartnerPricePM
	case models.DayPartSunset:
		standard, partner = v.PriceSunset, v.PartnerPriceSunset
	default:
		return 0, false
	}
	if role == models.RolePartner && partner != nil {
		return *partner, true
	}
	if standard != nil {
		return *standard, true
	}
	return 0, false
}

// CrewFee returns the mandatory skipper fee, zero when the vessel sails
// without one. FULL and SUNSET charters pay per day of the range; half-day
// charters pay a single fee. defaultPrice applies when the vessel requires
// a skipper but carries no price of its own.
func CrewFee(v *models.Vessel, dayPart models.DayPart, dayCount int, defaultPrice int64) int64 {
	if !v.SkipperRequired {
		return 0
	}
	price := defaultPrice
	if v.SkipperPrice != nil {
		price = *v.SkipperPrice
	}
	days := 1
	if dayPart == models.DayPartFull || dayPart == models.DayPartSunset {
		if dayCount > 1 {
			days = dayCount
		}
	}
	return price * int64(days)
}

// AddonsTotal sums the selected add-ons. IDs not present in the vessel's
// catalog are ignored, not errors.
func AddonsTotal(v *models.Vessel, selectedIDs []string) int64 {
	if len(selectedIDs) == 0 {
		return 0
	}
	catalog := make(map[string]int64, len(v.Addons))
	for _, a := range v.Addons {
		catalog[a.ID] = a.Price
	}
	var total int64
	for _, id := range selectedIDs {
		if price, ok := catalog[id]; ok {
			total += price
		}
	}
	return total
}
