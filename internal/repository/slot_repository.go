package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	models "github.com/veligo/charterdesk/internal"
)

// SlotRepository reads the scheduler-owned availability records. This
// engine never writes slot rows.
type SlotRepository struct {
	db DBConn
}

func NewSlotRepository(db DBConn) *SlotRepository {
	return &SlotRepository{db: db}
}

func (r *SlotRepository) ListSlots(ctx context.Context, vesselID uuid.UUID, from, to time.Time) ([]models.AvailabilitySlot, error) {
	query := `
        SELECT vessel_id, date, day_part, status
        FROM availability_slots
        WHERE vessel_id = $1 AND date >= $2 AND date <= $3
        ORDER BY date, day_part
    `
	rows, err := r.db.Query(ctx, query, vesselID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []models.AvailabilitySlot
	for rows.Next() {
		var slot models.AvailabilitySlot
		var dayPart, status string
		if err := rows.Scan(&slot.VesselID, &slot.Date, &dayPart, &status); err != nil {
			return nil, err
		}
		slot.DayPart = models.DayPart(dayPart)
		slot.Status = models.SlotStatus(status)
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}
