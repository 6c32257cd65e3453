package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	models "github.com/veligo/charterdesk/internal"
	"github.com/veligo/charterdesk/internal/availability"
	"github.com/veligo/charterdesk/internal/pricing"
	"github.com/veligo/charterdesk/internal/ports"
)

// Config carries the booking policy knobs that used to live in a global
// settings object: the deposit fraction, the fallback skipper day rate and
// the longest FULL/SUNSET charter accepted.
type Config struct {
	DepositPercent      int
	DefaultSkipperPrice int64
	MaxCharterDays      int
}

type bookingService struct {
	store    ports.ReservationStore
	catalog  ports.VesselCatalog
	checker  *availability.Checker
	gateway  ports.PaymentGateway
	notifier ports.Notifier
	cfg      Config
	logger   *zap.Logger
}

func NewBookingService(
	store ports.ReservationStore,
	slots ports.SlotStore,
	catalog ports.VesselCatalog,
	gateway ports.PaymentGateway,
	notifier ports.Notifier,
	cfg Config,
	logger *zap.Logger,
) *bookingService {
	return &bookingService{
		store:    store,
		catalog:  catalog,
		checker:  availability.NewChecker(slots, store),
		gateway:  gateway,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// CreateBooking runs the whole booking flow: validate input, resolve
// conflicts, compute the binding price, then branch by role. Partner
// accounts get an approval-gated agency request and never reach the
// gateway; everyone else gets a pending_deposit reservation plus a hosted
// checkout session scoped to the deposit only. No row exists until every
// validation has passed.
func (s *bookingService) CreateBooking(ctx context.Context, userID uuid.UUID, role models.Role, req *models.BookingRequest) (*models.BookingResult, error) {
	if userID == uuid.Nil {
		return nil, models.ErrUnauthenticated
	}

	start, end, err := availability.ParseRange(req.StartDate, req.EndDate, req.DayPart, s.cfg.MaxCharterDays)
	if err != nil {
		return nil, err
	}

	vessel, err := s.catalog.GetVessel(ctx, req.VesselSlug)
	if err != nil {
		return nil, err
	}

	if err := s.checker.Check(ctx, vessel.ID, start, end, req.DayPart); err != nil {
		return nil, err
	}

	dayCount := availability.DayCount(start, end)
	breakdown, err := pricing.ComputeTotal(vessel, req.DayPart, dayCount, role, req.AddonIDs, s.cfg.DefaultSkipperPrice)
	if err != nil {
		return nil, err
	}

	if role == models.RolePartner {
		return s.createAgencyRequest(ctx, userID, vessel, req, start, end, breakdown)
	}
	return s.createReservation(ctx, userID, vessel, req, start, end, breakdown)
}

func (s *bookingService) createAgencyRequest(ctx context.Context, userID uuid.UUID, vessel *models.Vessel, req *models.BookingRequest, start, end time.Time, breakdown models.PriceBreakdown) (*models.BookingResult, error) {
	request := &models.AgencyRequest{
		ID:         uuid.New(),
		UserID:     userID,
		VesselID:   vessel.ID,
		Reference:  newReference("AGE"),
		StartDate:  start,
		EndDate:    end,
		DayPart:    req.DayPart,
		Passengers: req.Passengers,
		TotalPrice: breakdown.GrandTotal,
		Metadata:   bookingMetadata(req, breakdown),
	}

	saved, err := s.store.CreateAgencyRequest(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("creating agency request: %w", err)
	}

	s.notifier.Publish(ctx, models.ReservationEvent{
		Kind:       models.EventReservationCreated,
		Reference:  saved.Reference,
		VesselName: vessel.Name,
		UserID:     saved.UserID,
		StartDate:  start.Format(availability.DateLayout),
		EndDate:    end.Format(availability.DateLayout),
		DayPart:    saved.DayPart,
		Total:      saved.TotalPrice,
		OccurredAt: time.Now().UTC(),
	})

	return &models.BookingResult{AgencyRequest: saved, Breakdown: breakdown}, nil
}

func (s *bookingService) createReservation(ctx context.Context, userID uuid.UUID, vessel *models.Vessel, req *models.BookingRequest, start, end time.Time, breakdown models.PriceBreakdown) (*models.BookingResult, error) {
	deposit, remaining := pricing.SplitDeposit(breakdown.GrandTotal, s.cfg.DepositPercent)

	reservation := &models.Reservation{
		ID:              uuid.New(),
		UserID:          userID,
		VesselID:        vessel.ID,
		Reference:       newReference("RES"),
		StartDate:       start,
		EndDate:         end,
		DayPart:         req.DayPart,
		Passengers:      req.Passengers,
		TotalPrice:      breakdown.GrandTotal,
		DepositAmount:   deposit,
		RemainingAmount: remaining,
		DepositPercent:  s.cfg.DepositPercent,
		Metadata:        bookingMetadata(req, breakdown),
	}

	saved, err := s.store.CreateReservation(ctx, reservation)
	if err != nil {
		if errors.Is(err, models.ErrSlotUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("creating reservation: %w", err)
	}

	// The checkout session covers the deposit only, never the full total.
	// A gateway failure past this point leaves the row in pending_deposit;
	// that abandoned-cart state is accepted and not auto-cleaned.
	label := fmt.Sprintf("Deposit %s - %s", saved.Reference, vessel.Name)
	session, err := s.gateway.CreateCheckoutSession(ctx, saved.DepositAmount, label, map[string]string{
		"reservation_id": saved.ID.String(),
		"reference":      saved.Reference,
	})
	if err != nil {
		s.logger.Error("checkout session request failed",
			zap.String("reservation_id", saved.ID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", models.ErrPaymentSession, err)
	}

	if err := s.store.SetCheckoutSession(ctx, saved.ID, session.ID); err != nil {
		return nil, fmt.Errorf("persisting checkout session id: %w", err)
	}
	saved.CheckoutSessionID = session.ID

	return &models.BookingResult{
		Reservation: saved,
		RedirectURL: session.RedirectURL,
		Breakdown:   breakdown,
	}, nil
}

// ConfirmDeposit finalizes a reservation once the gateway reports the
// session paid. It is invoked from both the webhook and the success-page
// reconciliation path, so it is idempotent: confirming an already-paid
// reservation returns it unchanged and emits nothing.
func (s *bookingService) ConfirmDeposit(ctx context.Context, sessionID string) (*models.Reservation, error) {
	reservation, err := s.store.GetReservationBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if reservation.Status != models.StatusPendingDeposit {
		return reservation, nil
	}

	session, err := s.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("retrieving checkout session: %w", err)
	}
	if !session.Paid() {
		return nil, fmt.Errorf("%w: session %s not paid", models.ErrPaymentSession, sessionID)
	}

	now := time.Now().UTC()
	err = s.store.UpdateStatus(ctx, reservation.ID, models.StatusDepositPaid, now)
	if errors.Is(err, models.ErrInvalidTransition) {
		// the other confirmation path won the race; nothing left to do
		return s.store.GetReservationByID(ctx, reservation.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("marking deposit paid: %w", err)
	}
	reservation.Status = models.StatusDepositPaid
	reservation.DepositPaidAt = &now

	vesselName := reservation.VesselID.String()
	if vessel, err := s.catalog.GetVessel(ctx, reservation.VesselID.String()); err == nil {
		vesselName = vessel.Name
	}
	base := models.ReservationEvent{
		Reference:  reservation.Reference,
		VesselName: vesselName,
		UserID:     reservation.UserID,
		StartDate:  reservation.StartDate.Format(availability.DateLayout),
		EndDate:    reservation.EndDate.Format(availability.DateLayout),
		DayPart:    reservation.DayPart,
		Total:      reservation.TotalPrice,
		Deposit:    reservation.DepositAmount,
		OccurredAt: now,
	}
	created := base
	created.Kind = models.EventReservationCreated
	s.notifier.Publish(ctx, created)
	paid := base
	paid.Kind = models.EventDepositPaid
	s.notifier.Publish(ctx, paid)

	return reservation, nil
}

// CheckAvailability exposes the conflict resolver as a query so search and
// detail surfaces stop re-deriving the rules.
func (s *bookingService) CheckAvailability(ctx context.Context, vesselSlug, startDate, endDate string, dayPart models.DayPart) error {
	start, end, err := availability.ParseRange(startDate, endDate, dayPart, s.cfg.MaxCharterDays)
	if err != nil {
		return err
	}
	vessel, err := s.catalog.GetVessel(ctx, vesselSlug)
	if err != nil {
		return err
	}
	return s.checker.Check(ctx, vessel.ID, start, end, dayPart)
}

// Quote prices a request without writing anything. It shares the exact code
// path the booking uses, so quoted and charged amounts cannot drift.
func (s *bookingService) Quote(ctx context.Context, role models.Role, req *models.BookingRequest) (*models.PriceBreakdown, error) {
	start, end, err := availability.ParseRange(req.StartDate, req.EndDate, req.DayPart, s.cfg.MaxCharterDays)
	if err != nil {
		return nil, err
	}
	vessel, err := s.catalog.GetVessel(ctx, req.VesselSlug)
	if err != nil {
		return nil, err
	}
	breakdown, err := pricing.ComputeTotal(vessel, req.DayPart, availability.DayCount(start, end), role, req.AddonIDs, s.cfg.DefaultSkipperPrice)
	if err != nil {
		return nil, err
	}
	return &breakdown, nil
}

func (s *bookingService) GetReservation(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	return s.store.GetReservationByID(ctx, id)
}

func (s *bookingService) AllReservations(ctx context.Context, req models.GetReservationsRequest) (*models.AllReservationsResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}

	reservations, nextCursor, err := s.store.GetReservationsPaginated(ctx, req.Cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching reservations: %w", err)
	}

	return &models.AllReservationsResponse{
		Reservations: reservations,
		Limit:        limit,
		Cursor:       nextCursor,
	}, nil
}

// UpdateReservationStatus is the hook for the external operational workflow
// (completion, cancellation). Transitions outside the state machine are
// rejected.
func (s *bookingService) UpdateReservationStatus(ctx context.Context, id uuid.UUID, status models.ReservationStatus) error {
	reservation, err := s.store.GetReservationByID(ctx, id)
	if err != nil {
		return err
	}
	if !reservation.Status.CanTransitionTo(status) {
		return models.ErrInvalidTransition
	}
	return s.store.UpdateStatus(ctx, id, status, time.Now().UTC())
}

func bookingMetadata(req *models.BookingRequest, breakdown models.PriceBreakdown) map[string]interface{} {
	m := map[string]interface{}{
		"addon_ids": req.AddonIDs,
		"breakdown": map[string]interface{}{
			"base":         breakdown.Base,
			"addons_total": breakdown.AddonsTotal,
			"crew_total":   breakdown.CrewTotal,
			"grand_total":  breakdown.GrandTotal,
		},
	}
	if req.DeparturePort != "" {
		m["departure_port"] = req.DeparturePort
	}
	if req.Notes != "" {
		m["notes"] = req.Notes
	}
	return m
}

const referenceAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// newReference builds a human-readable audit code such as RES-202609-K4TQZ7.
func newReference(prefix string) string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process is in real trouble; fall
		// back to a uuid-derived suffix rather than returning an error up
		// the booking path.
		copy(buf, uuid.New().String())
	}
	for i := range buf {
		buf[i] = referenceAlphabet[int(buf[i])%len(referenceAlphabet)]
	}
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().UTC().Format("200601"), string(buf))
}
