package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	models "github.com/veligo/charterdesk/internal"
	"github.com/veligo/charterdesk/internal/ports"
	"github.com/veligo/charterdesk/internal/utils"
	"github.com/veligo/charterdesk/internal/validator"
)

// Identity resolution is an external concern: the edge proxy authenticates
// the caller and forwards these headers. An absent user id surfaces as the
// unauthenticated error code from the service.
const (
	headerUserID   = "X-User-Id"
	headerUserRole = "X-User-Role"
)

func BookingHandler(service ports.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			createBooking(service, w, r)
		case http.MethodGet:
			listReservations(service, w, r)
		case http.MethodPatch:
			updateStatus(service, w, r)
		}
	}
}

func createBooking(service ports.BookingService, w http.ResponseWriter, r *http.Request) {
	var req models.BookingRequest
	if err := utils.JsonDecodeBody(r, &req); err != nil {
		ae := utils.NewBadRequest(models.CodeInvalidInput, "error json decoding body")
		utils.RenderResponse(r, w, ae.StatusCode, ae)
		return
	}

	v := validator.NewCustomValidator()
	if err := v.Validate(req); err != nil {
		ae := utils.NewApiError(http.StatusBadRequest, models.CodeInvalidInput, models.ReasonMalformedDate, err.Error())
		utils.RenderResponse(r, w, ae.StatusCode, ae)
		return
	}

	userID, role := callerIdentity(r)
	result, err := service.CreateBooking(r.Context(), userID, role, &req)
	if err != nil {
		ae := getApiError(err)
		utils.RenderResponse(r, w, ae.StatusCode, ae)
		return
	}

	if result.AgencyRequest != nil {
		utils.RenderResponse(r, w, http.StatusCreated, map[string]interface{}{
			"status":     "request_created",
			"request_id": result.AgencyRequest.ID,
			"reference":  result.AgencyRequest.Reference,
			"breakdown":  result.Breakdown,
		})
		return
	}
	utils.RenderResponse(r, w, http.StatusCreated, map[string]interface{}{
		"reservation_id": result.Reservation.ID,
		"reference":      result.Reservation.Reference,
		"redirect_url":   result.RedirectURL,
		"breakdown":      result.Breakdown,
		"deposit":        result.Reservation.DepositAmount,
		"remaining":      result.Reservation.RemainingAmount,
	})
}

func listReservations(service ports.BookingService, w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if rawID := q.Get("id"); rawID != "" {
		id, err := uuid.Parse(rawID)
		if err != nil {
			ae := utils.NewBadRequest(models.CodeInvalidInput, "invalid reservation id")
			utils.RenderResponse(r, w, ae.StatusCode, ae)
			return
		}
		reservation, err := service.GetReservation(r.Context(), id)
		if err != nil {
			ae := getApiError(err)
			utils.RenderResponse(r, w, ae.StatusCode, ae)
			return
		}
		utils.RenderResponse(r, w, http.StatusOK, reservation)
		return
	}

	limit, _ := strconv.Atoi(q.Get("limit"))

	req := models.GetReservationsRequest{
		Limit:  limit,
		Cursor: q.Get("cursor"),
	}
	ans, err := service.AllReservations(r.Context(), req)
	if err != nil {
		ae := getApiError(err)
		utils.RenderResponse(r, w, ae.StatusCode, ae)
		return
	}
	utils.RenderResponse(r, w, http.StatusOK, ans)
}

type statusUpdateRequest struct {
	ReservationID string `json:"reservation_id"`
	Status        string `json:"status"`
}

func updateStatus(service ports.BookingService, w http.ResponseWriter, r *http.Request) {
	var req statusUpdateRequest
	if err := utils.JsonDecodeBody(r, &req); err != nil {
		ae := utils.NewBadRequest(models.CodeInvalidInput, "error json decoding body")
		utils.RenderResponse(r, w, ae.StatusCode, ae)
		return
	}

	id, err := uuid.Parse(req.ReservationID)
	if err != nil {
		ae := utils.NewBadRequest(models.CodeInvalidInput, "invalid reservation id")
		utils.RenderResponse(r, w, ae.StatusCode, ae)
		return
	}

	status := models.ReservationStatus(req.Status)
	if err := service.UpdateReservationStatus(r.Context(), id, status); err != nil {
		ae := getApiError(err)
		utils.RenderResponse(r, w, ae.StatusCode, ae)
		return
	}
	utils.RenderResponse(r, w, http.StatusOK, map[string]string{"status": req.Status})
}

// AvailabilityHandler exposes the conflict resolver as a query, shared by
// the search and detail surfaces.
func AvailabilityHandler(service ports.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		err := service.CheckAvailability(r.Context(),
			q.Get("vessel"), q.Get("start"), q.Get("end"), models.DayPart(q.Get("day_part")))
		if err != nil {
			if errors.Is(err, models.ErrSlotUnavailable) {
				utils.RenderResponse(r, w, http.StatusOK, map[string]interface{}{
					"available": false,
					"reason":    models.CodeSlotUnavailable,
				})
				return
			}
			ae := getApiError(err)
			utils.RenderResponse(r, w, ae.StatusCode, ae)
			return
		}
		utils.RenderResponse(r, w, http.StatusOK, map[string]interface{}{"available": true})
	}
}

// QuoteHandler prices a booking request without persisting anything.
func QuoteHandler(service ports.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		req := &models.BookingRequest{
			VesselSlug: q.Get("vessel"),
			StartDate:  q.Get("start"),
			EndDate:    q.Get("end"),
			DayPart:    models.DayPart(q.Get("day_part")),
			AddonIDs:   q["addon_id"],
		}
		_, role := callerIdentity(r)

		breakdown, err := service.Quote(r.Context(), role, req)
		if err != nil {
			ae := getApiError(err)
			utils.RenderResponse(r, w, ae.StatusCode, ae)
			return
		}
		utils.RenderResponse(r, w, http.StatusOK, breakdown)
	}
}

type webhookPayload struct {
	SessionID string `json:"session_id"`
}

// PaymentWebhookHandler is the gateway-triggered confirmation path.
func PaymentWebhookHandler(service ports.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload webhookPayload
		if err := utils.JsonDecodeBody(r, &payload); err != nil || payload.SessionID == "" {
			ae := utils.NewBadRequest(models.CodeInvalidInput, "missing session_id")
			utils.RenderResponse(r, w, ae.StatusCode, ae)
			return
		}
		confirmSession(service, w, r, payload.SessionID)
	}
}

// PaymentConfirmHandler is the success-page reconciliation path; it runs the
// same idempotent confirm operation as the webhook, for the case where the
// callback never arrived.
func PaymentConfirmHandler(service ports.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("session_id")
		if sessionID == "" {
			ae := utils.NewBadRequest(models.CodeInvalidInput, "missing session_id")
			utils.RenderResponse(r, w, ae.StatusCode, ae)
			return
		}
		confirmSession(service, w, r, sessionID)
	}
}

func confirmSession(service ports.BookingService, w http.ResponseWriter, r *http.Request, sessionID string) {
	reservation, err := service.ConfirmDeposit(r.Context(), sessionID)
	if err != nil {
		ae := getApiError(err)
		utils.RenderResponse(r, w, ae.StatusCode, ae)
		return
	}
	utils.RenderResponse(r, w, http.StatusOK, map[string]interface{}{
		"reservation_id": reservation.ID,
		"reference":      reservation.Reference,
		"status":         reservation.Status,
	})
}

func callerIdentity(r *http.Request) (uuid.UUID, models.Role) {
	userID, err := uuid.Parse(r.Header.Get(headerUserID))
	if err != nil {
		userID = uuid.Nil
	}
	role := models.Role(r.Header.Get(headerUserRole))
	switch role {
	case models.RolePartner, models.RoleAdmin:
	default:
		role = models.RoleStandard
	}
	return userID, role
}

func getApiError(err error) utils.ApiError {
	ae := utils.ApiError{Msg: err.Error()}
	switch {
	case errors.Is(err, models.ErrUnauthenticated):
		ae.StatusCode = http.StatusUnauthorized
		ae.Code = models.CodeUnauthenticated
	case models.IsInvalidInput(err):
		ae.StatusCode = http.StatusBadRequest
		ae.Code = models.CodeInvalidInput
		ae.Reason = models.InputReason(err)
	case errors.Is(err, models.ErrVesselNotFound):
		ae.StatusCode = http.StatusNotFound
		ae.Code = models.CodeVesselNotFound
	case errors.Is(err, models.ErrSlotUnavailable):
		ae.StatusCode = http.StatusConflict
		ae.Code = models.CodeSlotUnavailable
	case errors.Is(err, models.ErrPriceMissing):
		ae.StatusCode = http.StatusUnprocessableEntity
		ae.Code = models.CodePriceMissing
	case errors.Is(err, models.ErrPaymentSession):
		ae.StatusCode = http.StatusBadGateway
		ae.Code = models.CodePaymentSessionFailed
	case errors.Is(err, models.ErrReservationNotFound):
		ae.StatusCode = http.StatusNotFound
		ae.Code = models.CodeReservationNotFound
	case errors.Is(err, models.ErrInvalidTransition):
		ae.StatusCode = http.StatusConflict
		ae.Code = models.CodeInvalidInput
	case errors.Is(err, models.ErrInvalidUUID):
		ae.StatusCode = http.StatusBadRequest
		ae.Code = models.CodeInvalidInput
	default:
		ae.StatusCode = http.StatusInternalServerError
		ae.Code = models.CodeServerError
	}
	return ae
}
