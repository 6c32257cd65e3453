package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	models "github.com/veligo/charterdesk/internal"
	"github.com/veligo/charterdesk/internal/ports"
	"github.com/veligo/charterdesk/internal/service"
	"github.com/veligo/charterdesk/tests/mocks"
	"github.com/veligo/charterdesk/tests/utils"
)

var testConfig = service.Config{
	DepositPercent:      20,
	DefaultSkipperPrice: 150,
	MaxCharterDays:      6,
}

type fixture struct {
	store    *mocks.MockReservationStore
	slots    *mocks.MockSlotStore
	catalog  *mocks.MockVesselCatalog
	gateway  *mocks.MockPaymentGateway
	notifier *mocks.RecordingNotifier
	svc      ports.BookingService
}

func newFixture() *fixture {
	f := &fixture{
		store:    new(mocks.MockReservationStore),
		slots:    new(mocks.MockSlotStore),
		catalog:  new(mocks.MockVesselCatalog),
		gateway:  new(mocks.MockPaymentGateway),
		notifier: &mocks.RecordingNotifier{},
	}
	f.svc = service.NewBookingService(f.store, f.slots, f.catalog, f.gateway, f.notifier, testConfig, zap.NewNop())
	return f
}

func (f *fixture) expectFreeVessel(vessel *models.Vessel, slotDate string) {
	f.catalog.On("GetVessel", mock.Anything, vessel.Slug).Return(vessel, nil)
	f.store.On("FindOverlapping", mock.Anything, vessel.ID, mock.Anything, mock.Anything).
		Return([]models.Reservation{}, nil)
	f.slots.On("ListSlots", mock.Anything, vessel.ID, mock.Anything, mock.Anything).
		Return([]models.AvailabilitySlot{utils.FullSlot(vessel.ID, slotDate)}, nil)
}

func echoCreateReservation(store *mocks.MockReservationStore) {
	store.On("CreateReservation", mock.Anything, mock.AnythingOfType("*models.Reservation")).
		Return(func(_ context.Context, r *models.Reservation) (*models.Reservation, error) {
			if r.ID == uuid.Nil {
				r.ID = uuid.New()
			}
			r.Status = models.StatusPendingDeposit
			r.CreatedAt = time.Now().UTC()
			return r, nil
		})
}

func TestCreateBooking(t *testing.T) {
	userID := uuid.New()

	t.Run("full-day booking with deposit split", func(t *testing.T) {
		f := newFixture()
		vessel := utils.DayCruiser()
		f.expectFreeVessel(vessel, "2026-06-01")
		echoCreateReservation(f.store)
		f.gateway.On("CreateCheckoutSession", mock.Anything, int64(600), mock.Anything, mock.Anything).
			Return(&models.CheckoutSession{ID: "cs_123", RedirectURL: "https://pay.example/cs_123"}, nil)
		f.store.On("SetCheckoutSession", mock.Anything, mock.Anything, "cs_123").Return(nil)

		result, err := f.svc.CreateBooking(context.Background(), userID, models.RoleStandard, &models.BookingRequest{
			VesselSlug: vessel.Slug,
			StartDate:  "2026-06-01",
			EndDate:    "2026-06-03",
			DayPart:    models.DayPartFull,
			Passengers: 4,
		})

		require.NoError(t, err)
		require.NotNil(t, result.Reservation)
		assert.Equal(t, int64(3000), result.Breakdown.GrandTotal)
		assert.Equal(t, int64(3000), result.Breakdown.Base)
		assert.Equal(t, int64(600), result.Reservation.DepositAmount)
		assert.Equal(t, int64(2400), result.Reservation.RemainingAmount)
		assert.Equal(t, result.Reservation.TotalPrice,
			result.Reservation.DepositAmount+result.Reservation.RemainingAmount)
		assert.Equal(t, models.StatusPendingDeposit, result.Reservation.Status)
		assert.Equal(t, "https://pay.example/cs_123", result.RedirectURL)
		assert.Regexp(t, `^RES-\d{6}-[A-Z2-9]{6}$`, result.Reservation.Reference)
		f.store.AssertExpectations(t)
		f.gateway.AssertExpectations(t)
	})

	t.Run("unauthenticated caller is rejected before any lookup", func(t *testing.T) {
		f := newFixture()

		result, err := f.svc.CreateBooking(context.Background(), uuid.Nil, models.RoleStandard, &models.BookingRequest{
			VesselSlug: "day-cruiser",
			StartDate:  "2026-06-01",
			DayPart:    models.DayPartFull,
		})

		assert.ErrorIs(t, err, models.ErrUnauthenticated)
		assert.Nil(t, result)
		f.catalog.AssertNotCalled(t, "GetVessel", mock.Anything, mock.Anything)
	})

	t.Run("half-day request spanning two days is invalid input", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.CreateBooking(context.Background(), userID, models.RoleStandard, &models.BookingRequest{
			VesselSlug: "day-cruiser",
			StartDate:  "2026-06-01",
			EndDate:    "2026-06-02",
			DayPart:    models.DayPartAM,
		})

		assert.ErrorIs(t, err, models.ErrHalfDayRange)
		f.store.AssertNotCalled(t, "FindOverlapping", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("eight-day full charter exceeds the span limit", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.CreateBooking(context.Background(), userID, models.RoleStandard, &models.BookingRequest{
			VesselSlug: "day-cruiser",
			StartDate:  "2026-06-01",
			EndDate:    "2026-06-08",
			DayPart:    models.DayPartFull,
		})

		assert.ErrorIs(t, err, models.ErrRangeTooLong)
	})

	t.Run("full-day request against AM+PM slots only is unavailable", func(t *testing.T) {
		f := newFixture()
		vessel := utils.DayCruiser()
		f.catalog.On("GetVessel", mock.Anything, vessel.Slug).Return(vessel, nil)
		f.store.On("FindOverlapping", mock.Anything, vessel.ID, mock.Anything, mock.Anything).
			Return([]models.Reservation{}, nil)
		f.slots.On("ListSlots", mock.Anything, vessel.ID, mock.Anything, mock.Anything).
			Return(utils.HalfSlots(vessel.ID, "2026-06-01"), nil)

		_, err := f.svc.CreateBooking(context.Background(), userID, models.RoleStandard, &models.BookingRequest{
			VesselSlug: vessel.Slug,
			StartDate:  "2026-06-01",
			DayPart:    models.DayPartFull,
		})

		assert.ErrorIs(t, err, models.ErrSlotUnavailable)
		f.store.AssertNotCalled(t, "CreateReservation", mock.Anything, mock.Anything)
	})

	t.Run("missing sunset rate fails with price missing", func(t *testing.T) {
		f := newFixture()
		vessel := utils.CrewedKetch() // no sunset rate configured
		f.expectFreeVessel(vessel, "2026-06-01")

		_, err := f.svc.CreateBooking(context.Background(), userID, models.RoleStandard, &models.BookingRequest{
			VesselSlug: vessel.Slug,
			StartDate:  "2026-06-01",
			DayPart:    models.DayPartSunset,
		})

		assert.ErrorIs(t, err, models.ErrPriceMissing)
		f.store.AssertNotCalled(t, "CreateReservation", mock.Anything, mock.Anything)
	})

	t.Run("crew fee is charged per day of a full charter", func(t *testing.T) {
		f := newFixture()
		vessel := utils.CrewedKetch()
		f.expectFreeVessel(vessel, "2026-06-01")
		echoCreateReservation(f.store)
		f.gateway.On("CreateCheckoutSession", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(&models.CheckoutSession{ID: "cs_crew", RedirectURL: "https://pay.example/cs_crew"}, nil)
		f.store.On("SetCheckoutSession", mock.Anything, mock.Anything, "cs_crew").Return(nil)

		result, err := f.svc.CreateBooking(context.Background(), userID, models.RoleStandard, &models.BookingRequest{
			VesselSlug: vessel.Slug,
			StartDate:  "2026-06-01",
			EndDate:    "2026-06-02",
			DayPart:    models.DayPartFull,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(600), result.Breakdown.CrewTotal)
		assert.Equal(t, int64(4000), result.Breakdown.Base)
		assert.Equal(t, int64(4600), result.Breakdown.GrandTotal)
	})

	t.Run("partner role creates an agency request and never touches the gateway", func(t *testing.T) {
		f := newFixture()
		vessel := utils.CrewedKetch()
		f.expectFreeVessel(vessel, "2026-06-01")
		f.store.On("CreateAgencyRequest", mock.Anything, mock.AnythingOfType("*models.AgencyRequest")).
			Return(func(_ context.Context, r *models.AgencyRequest) (*models.AgencyRequest, error) {
				r.Status = models.AgencyRequestPending
				return r, nil
			})

		result, err := f.svc.CreateBooking(context.Background(), userID, models.RolePartner, &models.BookingRequest{
			VesselSlug: vessel.Slug,
			StartDate:  "2026-06-01",
			DayPart:    models.DayPartFull,
		})

		require.NoError(t, err)
		require.NotNil(t, result.AgencyRequest)
		assert.Nil(t, result.Reservation)
		assert.Empty(t, result.RedirectURL)
		// partner rate applies, plus one skipper day
		assert.Equal(t, int64(1700), result.Breakdown.Base)
		assert.Equal(t, int64(2000), result.AgencyRequest.TotalPrice)
		assert.Equal(t, models.AgencyRequestPending, result.AgencyRequest.Status)
		assert.Regexp(t, `^AGE-\d{6}-[A-Z2-9]{6}$`, result.AgencyRequest.Reference)
		assert.Equal(t, []string{models.EventReservationCreated}, f.notifier.Kinds())
		f.gateway.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("gateway failure leaves the reservation pending", func(t *testing.T) {
		f := newFixture()
		vessel := utils.DayCruiser()
		f.expectFreeVessel(vessel, "2026-06-01")
		echoCreateReservation(f.store)
		f.gateway.On("CreateCheckoutSession", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, assert.AnError)

		result, err := f.svc.CreateBooking(context.Background(), userID, models.RoleStandard, &models.BookingRequest{
			VesselSlug: vessel.Slug,
			StartDate:  "2026-06-01",
			DayPart:    models.DayPartFull,
		})

		assert.ErrorIs(t, err, models.ErrPaymentSession)
		assert.Nil(t, result)
		// row was created before the gateway call; it stays pending_deposit
		f.store.AssertCalled(t, "CreateReservation", mock.Anything, mock.Anything)
		f.store.AssertNotCalled(t, "SetCheckoutSession", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestConfirmDeposit(t *testing.T) {
	reservationID := uuid.New()

	pending := func() *models.Reservation {
		return &models.Reservation{
			ID:                reservationID,
			UserID:            uuid.New(),
			VesselID:          utils.DayCruiser().ID,
			Reference:         "RES-202606-ABCDEF",
			StartDate:         utils.Date("2026-06-01"),
			EndDate:           utils.Date("2026-06-03"),
			DayPart:           models.DayPartFull,
			TotalPrice:        3000,
			DepositAmount:     600,
			RemainingAmount:   2400,
			Status:            models.StatusPendingDeposit,
			CheckoutSessionID: "cs_123",
		}
	}

	t.Run("confirms a paid session and emits both events", func(t *testing.T) {
		f := newFixture()
		f.store.On("GetReservationBySession", mock.Anything, "cs_123").Return(pending(), nil)
		f.gateway.On("RetrieveSession", mock.Anything, "cs_123").
			Return(&models.CheckoutSession{ID: "cs_123", PaymentStatus: "paid"}, nil)
		f.store.On("UpdateStatus", mock.Anything, reservationID, models.StatusDepositPaid, mock.Anything).Return(nil)
		f.catalog.On("GetVessel", mock.Anything, mock.Anything).Return(utils.DayCruiser(), nil)

		reservation, err := f.svc.ConfirmDeposit(context.Background(), "cs_123")

		require.NoError(t, err)
		assert.Equal(t, models.StatusDepositPaid, reservation.Status)
		require.NotNil(t, reservation.DepositPaidAt)
		assert.Equal(t,
			[]string{models.EventReservationCreated, models.EventDepositPaid},
			f.notifier.Kinds())
		f.store.AssertExpectations(t)
	})

	t.Run("re-confirming an already paid reservation is a no-op", func(t *testing.T) {
		f := newFixture()
		paidAt := utils.Date("2026-06-01")
		paid := pending()
		paid.Status = models.StatusDepositPaid
		paid.DepositPaidAt = &paidAt
		f.store.On("GetReservationBySession", mock.Anything, "cs_123").Return(paid, nil)

		reservation, err := f.svc.ConfirmDeposit(context.Background(), "cs_123")

		require.NoError(t, err)
		assert.Equal(t, models.StatusDepositPaid, reservation.Status)
		assert.Equal(t, &paidAt, reservation.DepositPaidAt)
		assert.Empty(t, f.notifier.Kinds())
		f.gateway.AssertNotCalled(t, "RetrieveSession", mock.Anything, mock.Anything)
		f.store.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unpaid session is rejected", func(t *testing.T) {
		f := newFixture()
		f.store.On("GetReservationBySession", mock.Anything, "cs_123").Return(pending(), nil)
		f.gateway.On("RetrieveSession", mock.Anything, "cs_123").
			Return(&models.CheckoutSession{ID: "cs_123", PaymentStatus: "unpaid"}, nil)

		_, err := f.svc.ConfirmDeposit(context.Background(), "cs_123")

		assert.ErrorIs(t, err, models.ErrPaymentSession)
		assert.Empty(t, f.notifier.Kinds())
	})

	t.Run("losing the confirmation race falls back to a reload", func(t *testing.T) {
		f := newFixture()
		f.store.On("GetReservationBySession", mock.Anything, "cs_123").Return(pending(), nil)
		f.gateway.On("RetrieveSession", mock.Anything, "cs_123").
			Return(&models.CheckoutSession{ID: "cs_123", PaymentStatus: "paid"}, nil)
		f.store.On("UpdateStatus", mock.Anything, reservationID, models.StatusDepositPaid, mock.Anything).
			Return(models.ErrInvalidTransition)
		alreadyPaid := pending()
		alreadyPaid.Status = models.StatusDepositPaid
		f.store.On("GetReservationByID", mock.Anything, reservationID).Return(alreadyPaid, nil)

		reservation, err := f.svc.ConfirmDeposit(context.Background(), "cs_123")

		require.NoError(t, err)
		assert.Equal(t, models.StatusDepositPaid, reservation.Status)
		assert.Empty(t, f.notifier.Kinds())
	})
}

func TestUpdateReservationStatus(t *testing.T) {
	reservationID := uuid.New()

	t.Run("deposit_paid can complete", func(t *testing.T) {
		f := newFixture()
		f.store.On("GetReservationByID", mock.Anything, reservationID).
			Return(&models.Reservation{ID: reservationID, Status: models.StatusDepositPaid}, nil)
		f.store.On("UpdateStatus", mock.Anything, reservationID, models.StatusCompleted, mock.Anything).Return(nil)

		err := f.svc.UpdateReservationStatus(context.Background(), reservationID, models.StatusCompleted)
		assert.NoError(t, err)
	})

	t.Run("completed is terminal", func(t *testing.T) {
		f := newFixture()
		f.store.On("GetReservationByID", mock.Anything, reservationID).
			Return(&models.Reservation{ID: reservationID, Status: models.StatusCompleted}, nil)

		err := f.svc.UpdateReservationStatus(context.Background(), reservationID, models.StatusCancelled)
		assert.ErrorIs(t, err, models.ErrInvalidTransition)
		f.store.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("pending_deposit cannot jump straight to completed", func(t *testing.T) {
		f := newFixture()
		f.store.On("GetReservationByID", mock.Anything, reservationID).
			Return(&models.Reservation{ID: reservationID, Status: models.StatusPendingDeposit}, nil)

		err := f.svc.UpdateReservationStatus(context.Background(), reservationID, models.StatusCompleted)
		assert.ErrorIs(t, err, models.ErrInvalidTransition)
	})
}

func TestQuoteMatchesBookingPrice(t *testing.T) {
	f := newFixture()
	vessel := utils.CrewedKetch()
	f.catalog.On("GetVessel", mock.Anything, vessel.Slug).Return(vessel, nil)

	req := &models.BookingRequest{
		VesselSlug: vessel.Slug,
		StartDate:  "2026-06-01",
		EndDate:    "2026-06-02",
		DayPart:    models.DayPartFull,
	}

	first, err := f.svc.Quote(context.Background(), models.RoleStandard, req)
	require.NoError(t, err)
	second, err := f.svc.Quote(context.Background(), models.RoleStandard, req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(4600), first.GrandTotal)
}
