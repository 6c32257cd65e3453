package models

import "errors"

// Stable error codes surfaced to callers. Validation sub-reasons follow the
// conflict-reason vocabulary used by the availability checker.
const (
	CodeUnauthenticated      = "unauthenticated"
	CodeInvalidInput         = "invalid_input"
	CodeVesselNotFound       = "vessel_not_found"
	CodeSlotUnavailable      = "slot_unavailable"
	CodePriceMissing         = "price_missing"
	CodePaymentSessionFailed = "payment_session_failed"
	CodeReservationNotFound  = "reservation_not_found"
	CodeServerError          = "server_error"

	ReasonMalformedDate = "malformed_date"
	ReasonInvalidRange  = "invalid_range"
	ReasonTooLong       = "too_long"
	ReasonHalfDayRange  = "halfday_range"
)

var (
	ErrUnauthenticated = errors.New("no resolved user identity")
	ErrVesselNotFound  = errors.New("vessel not found")
	ErrSlotUnavailable = errors.New("requested slot is not available")
	ErrPriceMissing    = errors.New("no price configured for requested day part")
	ErrPaymentSession  = errors.New("payment gateway could not issue a checkout session")

	ErrMalformedDate = errors.New("date must match YYYY-MM-DD")
	ErrInvertedRange = errors.New("end date precedes start date")
	ErrRangeTooLong  = errors.New("charter span exceeds the maximum length")
	ErrHalfDayRange  = errors.New("half-day charter must start and end on the same day")

	ErrReservationNotFound = errors.New("reservation not found")
	ErrInvalidTransition   = errors.New("status transition not allowed")
	ErrInvalidUUID         = errors.New("invalid uuid")
)

// IsInvalidInput reports whether err is one of the pre-store validation
// failures that are safe to retry after correcting the request.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrMalformedDate) ||
		errors.Is(err, ErrInvertedRange) ||
		errors.Is(err, ErrRangeTooLong) ||
		errors.Is(err, ErrHalfDayRange)
}

// InputReason maps a validation error to its stable sub-reason code.
func InputReason(err error) string {
	switch {
	case errors.Is(err, ErrMalformedDate):
		return ReasonMalformedDate
	case errors.Is(err, ErrInvertedRange):
		return ReasonInvalidRange
	case errors.Is(err, ErrRangeTooLong):
		return ReasonTooLong
	case errors.Is(err, ErrHalfDayRange):
		return ReasonHalfDayRange
	default:
		return ""
	}
}
