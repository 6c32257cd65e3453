// Package pricing turns tariff lookups into a binding quote. ComputeTotal is
// a pure function of its inputs so the same request always produces the same
// breakdown, on the search page, the detail page and the booking path alike.
package pricing

import (
	models "github.com/veligo/charterdesk/internal"
	"github.com/veligo/charterdesk/internal/tariff"
)

// ComputeTotal prices a charter. FULL charters pay the day rate per day of
// the range; AM and PM are single-day by validation and pay the unit price
// once. SUNSET also multiplies by the day count: a sunset ride inside a
// multi-day charter window is priced once per day of the range.
func ComputeTotal(v *models.Vessel, dayPart models.DayPart, dayCount int, role models.Role, addonIDs []string, defaultSkipperPrice int64) (models.PriceBreakdown, error) {
	unit, ok := tariff.ResolveUnitPrice(v, dayPart, role)
	if !ok {
		return models.PriceBreakdown{}, models.ErrPriceMissing
	}
	if dayCount < 1 {
		dayCount = 1
	}

	base := unit
	if dayPart == models.DayPartFull || dayPart == models.DayPartSunset {
		base = unit * int64(dayCount)
	}

	b := models.PriceBreakdown{
		Base:        base,
		AddonsTotal: tariff.AddonsTotal(v, addonIDs),
		CrewTotal:   tariff.CrewFee(v, dayPart, dayCount, defaultSkipperPrice),
	}
	b.GrandTotal = b.Base + b.AddonsTotal + b.CrewTotal
	return b, nil
}

// SplitDeposit divides a total into deposit and remainder at the configured
// percentage. The deposit is rounded half-up on the minor unit; the
// remainder absorbs the rounding so the two always sum to the total.
func SplitDeposit(grandTotal int64, depositPercent int) (deposit, remaining int64) {
	deposit = (grandTotal*int64(depositPercent) + 50) / 100
	return deposit, grandTotal - deposit
}
