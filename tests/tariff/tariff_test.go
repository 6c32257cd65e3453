package tariff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	models "github.com/veligo/charterdesk/internal"
	"github.com/veligo/charterdesk/internal/tariff"
	"github.com/veligo/charterdesk/tests/utils"
)

func TestResolveUnitPrice(t *testing.T) {
	t.Run("standard role uses the standard rate", func(t *testing.T) {
		price, ok := tariff.ResolveUnitPrice(utils.CrewedKetch(), models.DayPartFull, models.RoleStandard)
		assert.True(t, ok)
		assert.Equal(t, int64(2000), price)
	})

	t.Run("partner override wins for partner role", func(t *testing.T) {
		price, ok := tariff.ResolveUnitPrice(utils.CrewedKetch(), models.DayPartFull, models.RolePartner)
		assert.True(t, ok)
		assert.Equal(t, int64(1700), price)
	})

	t.Run("partner role falls back to standard when no override", func(t *testing.T) {
		price, ok := tariff.ResolveUnitPrice(utils.CrewedKetch(), models.DayPartAM, models.RolePartner)
		assert.True(t, ok)
		assert.Equal(t, int64(1100), price)
	})

	t.Run("unconfigured day part reports no price", func(t *testing.T) {
		_, ok := tariff.ResolveUnitPrice(utils.CrewedKetch(), models.DayPartSunset, models.RoleStandard)
		assert.False(t, ok)
	})

	t.Run("unknown day part reports no price", func(t *testing.T) {
		_, ok := tariff.ResolveUnitPrice(utils.DayCruiser(), models.DayPart("EVENING"), models.RoleStandard)
		assert.False(t, ok)
	})
}

func TestCrewFee(t *testing.T) {
	t.Run("no skipper means no fee", func(t *testing.T) {
		assert.Equal(t, int64(0), tariff.CrewFee(utils.DayCruiser(), models.DayPartFull, 5, 150))
	})

	t.Run("full charter pays per day", func(t *testing.T) {
		assert.Equal(t, int64(900), tariff.CrewFee(utils.CrewedKetch(), models.DayPartFull, 3, 150))
	})

	t.Run("sunset charter pays per day of the window", func(t *testing.T) {
		assert.Equal(t, int64(600), tariff.CrewFee(utils.CrewedKetch(), models.DayPartSunset, 2, 150))
	})

	t.Run("half day pays a single fee", func(t *testing.T) {
		assert.Equal(t, int64(300), tariff.CrewFee(utils.CrewedKetch(), models.DayPartAM, 1, 150))
	})

	t.Run("zero day count still charges one day", func(t *testing.T) {
		assert.Equal(t, int64(300), tariff.CrewFee(utils.CrewedKetch(), models.DayPartFull, 0, 150))
	})

	t.Run("default price applies when the vessel has none", func(t *testing.T) {
		vessel := utils.CrewedKetch()
		vessel.SkipperPrice = nil
		assert.Equal(t, int64(300), tariff.CrewFee(vessel, models.DayPartFull, 2, 150))
	})
}

func TestAddonsTotal(t *testing.T) {
	t.Run("sums known ids and ignores unknown ones", func(t *testing.T) {
		total := tariff.AddonsTotal(utils.DayCruiser(), []string{"snorkel", "jetpack", "lunch"})
		assert.Equal(t, int64(170), total)
	})

	t.Run("free addons contribute nothing", func(t *testing.T) {
		assert.Equal(t, int64(0), tariff.AddonsTotal(utils.DayCruiser(), []string{"towels"}))
	})

	t.Run("no selection is free", func(t *testing.T) {
		assert.Equal(t, int64(0), tariff.AddonsTotal(utils.DayCruiser(), nil))
	})
}
