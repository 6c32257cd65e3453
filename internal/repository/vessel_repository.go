package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	models "github.com/veligo/charterdesk/internal"
)

// VesselRepository reads the externally managed vessel catalog. Catalog CRUD
// lives in the admin surface; only lookups happen here.
type VesselRepository struct {
	db DBConn
}

func NewVesselRepository(db DBConn) *VesselRepository {
	return &VesselRepository{db: db}
}

const vesselQuery = `
        SELECT id, slug, name, capacity,
               price_full_day, price_am, price_pm, price_sunset,
               partner_price_full_day, partner_price_am, partner_price_pm, partner_price_sunset,
               skipper_required, skipper_price, addons
        FROM vessels
`

// GetVessel resolves a vessel by slug, or by id when the reference parses
// as a UUID.
func (r *VesselRepository) GetVessel(ctx context.Context, slugOrID string) (*models.Vessel, error) {
	query := vesselQuery + "        WHERE slug = $1\n"
	if _, err := uuid.Parse(slugOrID); err == nil {
		query = vesselQuery + "        WHERE id = $1\n"
	}

	row := r.db.QueryRow(ctx, query, slugOrID)

	var v models.Vessel
	var addons []byte
	err := row.Scan(
		&v.ID, &v.Slug, &v.Name, &v.Capacity,
		&v.PriceFullDay, &v.PriceAM, &v.PricePM, &v.PriceSunset,
		&v.PartnerPriceFullDay, &v.PartnerPriceAM, &v.PartnerPricePM, &v.PartnerPriceSunset,
		&v.SkipperRequired, &v.SkipperPrice, &addons,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrVesselNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(addons) > 0 {
		if err := json.Unmarshal(addons, &v.Addons); err != nil {
			return nil, fmt.Errorf("decoding vessel addons: %w", err)
		}
	}
	return &v, nil
}
