package models

import (
	"time"

	"github.com/google/uuid"
)

type DayPart string

const (
	DayPartFull   DayPart = "FULL"
	DayPartAM     DayPart = "AM"
	DayPartPM     DayPart = "PM"
	DayPartSunset DayPart = "SUNSET"
)

// IsHalfDay reports whether the day part covers only part of a single day.
func (d DayPart) IsHalfDay() bool {
	return d == DayPartAM || d == DayPartPM
}

type Role string

const (
	RoleStandard Role = "standard"
	RolePartner  Role = "partner"
	RoleAdmin    Role = "admin"
)

type ReservationStatus string

const (
	StatusPendingDeposit ReservationStatus = "pending_deposit"
	StatusDepositPaid    ReservationStatus = "deposit_paid"
	StatusCompleted      ReservationStatus = "completed"
	StatusCancelled      ReservationStatus = "cancelled"
)

// CanTransitionTo encodes the reservation state machine:
// pending_deposit -> deposit_paid -> completed, with cancelled reachable
// from either non-terminal state.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	switch s {
	case StatusPendingDeposit:
		return next == StatusDepositPaid || next == StatusCancelled
	case StatusDepositPaid:
		return next == StatusCompleted || next == StatusCancelled
	default:
		return false
	}
}

type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotBlocked   SlotStatus = "blocked"
)

// Addon is an optional paid extra offered by a vessel. Price is in minor
// currency units; zero means the add-on is free.
type Addon struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Price int64  `json:"price"`
}

// Vessel is the catalog view this engine reads. Prices are minor currency
// units per day part; nil means the day part is not offered. Partner fields
// override the standard price for partner-role accounts.
type Vessel struct {
	ID       uuid.UUID `json:"id"`
	Slug     string    `json:"slug"`
	Name     string    `json:"name"`
	Capacity int       `json:"capacity"`

	PriceFullDay *int64 `json:"price_full_day"`
	PriceAM      *int64 `json:"price_am"`
	PricePM      *int64 `json:"price_pm"`
	PriceSunset  *int64 `json:"price_sunset"`

	PartnerPriceFullDay *int64 `json:"partner_price_full_day,omitempty"`
	PartnerPriceAM      *int64 `json:"partner_price_am,omitempty"`
	PartnerPricePM      *int64 `json:"partner_price_pm,omitempty"`
	PartnerPriceSunset  *int64 `json:"partner_price_sunset,omitempty"`

	SkipperRequired bool   `json:"skipper_required"`
	SkipperPrice    *int64 `json:"skipper_price,omitempty"`

	Addons []Addon `json:"addons,omitempty"`
}

// AvailabilitySlot is a scheduler-owned record stating a vessel is offerable
// on a date for a day part. At most one row exists per (vessel, date, part).
// This engine never writes slots.
type AvailabilitySlot struct {
	VesselID uuid.UUID  `json:"vessel_id"`
	Date     time.Time  `json:"date"`
	DayPart  DayPart    `json:"day_part"`
	Status   SlotStatus `json:"status"`
}

type Reservation struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	VesselID  uuid.UUID `json:"vessel_id"`
	Reference string    `json:"reference"`

	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	DayPart    DayPart   `json:"day_part"`
	Passengers int       `json:"passengers"`

	TotalPrice      int64 `json:"total_price"`
	DepositAmount   int64 `json:"deposit_amount"`
	RemainingAmount int64 `json:"remaining_amount"`
	DepositPercent  int   `json:"deposit_percent"`

	Status            ReservationStatus      `json:"status"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
	CheckoutSessionID string                 `json:"checkout_session_id,omitempty"`

	CreatedAt     time.Time  `json:"created_at"`
	DepositPaidAt *time.Time `json:"deposit_paid_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
}

// IsActive reports whether the reservation still blocks its date range.
func (r *Reservation) IsActive() bool {
	return r.Status != StatusCancelled
}

type AgencyRequestStatus string

const (
	AgencyRequestPending  AgencyRequestStatus = "pending"
	AgencyRequestApproved AgencyRequestStatus = "approved"
	AgencyRequestRejected AgencyRequestStatus = "rejected"
)

// AgencyRequest is the approval-gated counterpart of a Reservation for
// partner-role accounts. It carries the computed price breakdown in its
// metadata and never reaches the payment gateway.
type AgencyRequest struct {
	ID         uuid.UUID              `json:"id"`
	UserID     uuid.UUID              `json:"user_id"`
	VesselID   uuid.UUID              `json:"vessel_id"`
	Reference  string                 `json:"reference"`
	StartDate  time.Time              `json:"start_date"`
	EndDate    time.Time              `json:"end_date"`
	DayPart    DayPart                `json:"day_part"`
	Passengers int                    `json:"passengers"`
	TotalPrice int64                  `json:"total_price"`
	Status     AgencyRequestStatus    `json:"status"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// PriceBreakdown is the output of the pricing calculator, all amounts in
// minor currency units.
type PriceBreakdown struct {
	Base        int64 `json:"base"`
	AddonsTotal int64 `json:"addons_total"`
	CrewTotal   int64 `json:"crew_total"`
	GrandTotal  int64 `json:"grand_total"`
}

type BookingRequest struct {
	VesselSlug    string   `json:"vessel" validate:"required"`
	StartDate     string   `json:"start_date" validate:"required,charter_date"`
	EndDate       string   `json:"end_date" validate:"omitempty,charter_date"`
	DayPart       DayPart  `json:"day_part" validate:"required,day_part"`
	Passengers    int      `json:"passengers" validate:"omitempty,min=1,max=100"`
	AddonIDs      []string `json:"addon_ids"`
	DeparturePort string   `json:"departure_port"`
	Notes         string   `json:"notes"`
}

// BookingResult is the outcome of a booking attempt. Exactly one of
// Reservation or AgencyRequest is set, depending on the caller's role.
type BookingResult struct {
	Reservation   *Reservation   `json:"reservation,omitempty"`
	AgencyRequest *AgencyRequest `json:"agency_request,omitempty"`
	RedirectURL   string         `json:"redirect_url,omitempty"`
	Breakdown     PriceBreakdown `json:"breakdown"`
}

type AllReservationsResponse struct {
	Reservations []Reservation `json:"reservations"`
	Limit        int           `json:"limit"`
	Cursor       string        `json:"cursor"`
}

type GetReservationsRequest struct {
	Limit  int
	Cursor string
}

// CheckoutSession is the engine's view of a hosted payment session.
type CheckoutSession struct {
	ID            string
	RedirectURL   string
	PaymentStatus string
}

// Paid reports whether the gateway considers the session settled.
func (s CheckoutSession) Paid() bool {
	return s.PaymentStatus == "paid"
}

// ReservationEvent is the payload published to the notification
// collaborator when a reservation is created or its deposit settles.
type ReservationEvent struct {
	Kind       string    `json:"kind"`
	Reference  string    `json:"reference"`
	VesselName string    `json:"vessel_name"`
	UserID     uuid.UUID `json:"user_id"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	DayPart    DayPart   `json:"day_part"`
	Total      int64     `json:"total"`
	Deposit    int64     `json:"deposit"`
	OccurredAt time.Time `json:"occurred_at"`
}

const (
	EventReservationCreated = "reservation.created"
	EventDepositPaid        = "reservation.deposit_paid"
)
