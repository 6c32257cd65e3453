package utils

import (
	"time"

	"github.com/google/uuid"

	models "github.com/veligo/charterdesk/internal"
)

func Int64Ptr(v int64) *int64 { return &v }

// DayCruiser is a vessel with a full set of standard rates, no partner
// overrides and no crew requirement.
func DayCruiser() *models.Vessel {
	return &models.Vessel{
		ID:           uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		Slug:         "day-cruiser",
		Name:         "Day Cruiser",
		Capacity:     8,
		PriceFullDay: Int64Ptr(1000),
		PriceAM:      Int64Ptr(600),
		PricePM:      Int64Ptr(650),
		PriceSunset:  Int64Ptr(400),
		Addons: []models.Addon{
			{ID: "snorkel", Label: "Snorkel set", Price: 50},
			{ID: "lunch", Label: "Lunch basket", Price: 120},
			{ID: "towels", Label: "Beach towels", Price: 0},
		},
	}
}

// CrewedKetch requires a skipper at 300 per day and offers partner rates.
func CrewedKetch() *models.Vessel {
	return &models.Vessel{
		ID:                  uuid.MustParse("22222222-2222-2222-2222-222222222222"),
		Slug:                "crewed-ketch",
		Name:                "Crewed Ketch",
		Capacity:            10,
		PriceFullDay:        Int64Ptr(2000),
		PriceAM:             Int64Ptr(1100),
		PricePM:             Int64Ptr(1100),
		PartnerPriceFullDay: Int64Ptr(1700),
		SkipperRequired:     true,
		SkipperPrice:        Int64Ptr(300),
	}
}

func Date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func FullSlot(vesselID uuid.UUID, date string) models.AvailabilitySlot {
	return models.AvailabilitySlot{
		VesselID: vesselID,
		Date:     Date(date),
		DayPart:  models.DayPartFull,
		Status:   models.SlotAvailable,
	}
}

func HalfSlots(vesselID uuid.UUID, date string) []models.AvailabilitySlot {
	return []models.AvailabilitySlot{
		{VesselID: vesselID, Date: Date(date), DayPart: models.DayPartAM, Status: models.SlotAvailable},
		{VesselID: vesselID, Date: Date(date), DayPart: models.DayPartPM, Status: models.SlotAvailable},
	}
}
