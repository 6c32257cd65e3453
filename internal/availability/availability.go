// Package availability decides whether a vessel can be chartered for a date
// range and day part. A request passes two checks: a coarse overlap scan of
// existing reservations and a fine-grained slot lookup. The slot lookup only
// inspects the first day of a multi-day FULL/SUNSET span; later days are
// resolved operationally by the scheduling team.
package availability

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	models "github.com/veligo/charterdesk/internal"
	"github.com/veligo/charterdesk/internal/ports"
)

const DateLayout = "2006-01-02"

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseDate parses a strict YYYY-MM-DD date into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	if !datePattern.MatchString(s) {
		return time.Time{}, models.ErrMalformedDate
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, models.ErrMalformedDate
	}
	return t.UTC(), nil
}

// ParseRange validates and normalizes a charter date range before any store
// access. An empty end date collapses to a single-day range. maxDays bounds
// the inclusive span of FULL and SUNSET charters.
func ParseRange(startStr, endStr string, dayPart models.DayPart, maxDays int) (time.Time, time.Time, error) {
	start, err := ParseDate(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end := start
	if endStr != "" {
		if end, err = ParseDate(endStr); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, models.ErrInvertedRange
	}
	if dayPart.IsHalfDay() && !end.Equal(start) {
		return time.Time{}, time.Time{}, models.ErrHalfDayRange
	}
	if DayCount(start, end) > maxDays {
		return time.Time{}, time.Time{}, models.ErrRangeTooLong
	}
	return start, end, nil
}

// DayCount returns the inclusive number of days in [start, end].
func DayCount(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

type Checker struct {
	slots        ports.SlotStore
	reservations ports.ReservationStore
}

func NewChecker(slots ports.SlotStore, reservations ports.ReservationStore) *Checker {
	return &Checker{slots: slots, reservations: reservations}
}

// Check returns nil when the vessel is free for the requested range, or
// models.ErrSlotUnavailable when either check finds a conflict. Range
// validation is the caller's responsibility (ParseRange).
func (c *Checker) Check(ctx context.Context, vesselID uuid.UUID, start, end time.Time, dayPart models.DayPart) error {
	existing, err := c.reservations.FindOverlapping(ctx, vesselID, start, end)
	if err != nil {
		return fmt.Errorf("scanning overlapping reservations: %w", err)
	}
	for i := range existing {
		if reservationConflicts(&existing[i], dayPart) {
			return models.ErrSlotUnavailable
		}
	}

	slots, err := c.slots.ListSlots(ctx, vesselID, start, start)
	if err != nil {
		return fmt.Errorf("listing slots: %w", err)
	}
	if !slotSatisfies(slots, dayPart) {
		return models.ErrSlotUnavailable
	}
	return nil
}

// reservationConflicts applies the day-part compatibility rules to a
// reservation already known to overlap the requested date range. Cancelled
// rows never conflict; the store filters them, the re-check here covers
// in-memory callers.
func reservationConflicts(r *models.Reservation, requested models.DayPart) bool {
	if !r.IsActive() {
		return false
	}
	switch r.DayPart {
	case models.DayPartFull:
		return true
	case requested:
		return true
	case models.DayPartAM, models.DayPartPM:
		// full-day and sunset charters absorb half-day ones
		return requested == models.DayPartFull || requested == models.DayPartSunset
	case "":
		// legacy rows without a day part block everything
		return true
	}
	return false
}

// slotSatisfies checks the scheduler's offer for the start day. A FULL or
// SUNSET request needs an available FULL slot; an AM+PM pair does not
// substitute for FULL at the slot level, unlike the reservation-overlap
// rule above. Half-day requests accept their own part or a FULL slot.
func slotSatisfies(slots []models.AvailabilitySlot, requested models.DayPart) bool {
	available := func(part models.DayPart) bool {
		for i := range slots {
			if slots[i].DayPart == part && slots[i].Status == models.SlotAvailable {
				return true
			}
		}
		return false
	}
	switch requested {
	case models.DayPartFull, models.DayPartSunset:
		return available(models.DayPartFull)
	case models.DayPartAM:
		return available(models.DayPartAM) || available(models.DayPartFull)
	case models.DayPartPM:
		return available(models.DayPartPM) || available(models.DayPartFull)
	}
	return false
}
