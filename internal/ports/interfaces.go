package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	models "github.com/veligo/charterdesk/internal"
)

type SlotStore interface {
	ListSlots(ctx context.Context, vesselID uuid.UUID, from, to time.Time) ([]models.AvailabilitySlot, error)
}

type ReservationStore interface {
	CreateReservation(ctx context.Context, r *models.Reservation) (*models.Reservation, error)
	CreateAgencyRequest(ctx context.Context, r *models.AgencyRequest) (*models.AgencyRequest, error)
	FindOverlapping(ctx context.Context, vesselID uuid.UUID, from, to time.Time) ([]models.Reservation, error)
	GetReservationByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	GetReservationBySession(ctx context.Context, sessionID string) (*models.Reservation, error)
	GetReservationsPaginated(ctx context.Context, afterCursor string, limit int) ([]models.Reservation, string, error)
	SetCheckoutSession(ctx context.Context, id uuid.UUID, sessionID string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReservationStatus, at time.Time) error
}

type VesselCatalog interface {
	GetVessel(ctx context.Context, slugOrID string) (*models.Vessel, error)
}

type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, amount int64, label string, metadata map[string]string) (*models.CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (*models.CheckoutSession, error)
}

// Notifier delivers reservation events to external collaborators.
// Implementations are fire-and-forget: failures are logged, never returned
// to the booking path.
type Notifier interface {
	Publish(ctx context.Context, event models.ReservationEvent)
}

type BookingService interface {
	CreateBooking(ctx context.Context, userID uuid.UUID, role models.Role, req *models.BookingRequest) (*models.BookingResult, error)
	ConfirmDeposit(ctx context.Context, sessionID string) (*models.Reservation, error)
	CheckAvailability(ctx context.Context, vesselSlug, startDate, endDate string, dayPart models.DayPart) error
	Quote(ctx context.Context, role models.Role, req *models.BookingRequest) (*models.PriceBreakdown, error)
	GetReservation(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	AllReservations(ctx context.Context, req models.GetReservationsRequest) (*models.AllReservationsResponse, error)
	UpdateReservationStatus(ctx context.Context, id uuid.UUID, status models.ReservationStatus) error
}
