package repository

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	models "github.com/veligo/charterdesk/internal"
)

type DBConn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
}

// serializationRetries bounds how often a create is retried after a
// serialization failure (SQLSTATE 40001) before giving up.
const serializationRetries = 3

type ReservationRepository struct {
	db DBConn
}

func NewReservationRepository(db DBConn) *ReservationRepository {
	return &ReservationRepository{db: db}
}

const reservationColumns = `
        id, user_id, vessel_id, reference, start_date, end_date, day_part,
        passengers, total_price, deposit_amount, remaining_amount,
        deposit_percent, status, metadata, checkout_session_id,
        created_at, deposit_paid_at, completed_at, cancelled_at`

// conflictCountQuery re-checks the day-part overlap rules inside the create
// transaction: FULL blocks everything, exact matches block, a FULL or
// SUNSET request is blocked by half-day rows, and rows without a day part
// block everything.
const conflictCountQuery = `
        SELECT COUNT(1) FROM reservations
        WHERE vessel_id = $1
          AND status <> 'cancelled'
          AND start_date <= $3 AND end_date >= $2
          AND (day_part = 'FULL'
               OR day_part = $4
               OR ($4 IN ('FULL','SUNSET') AND day_part IN ('AM','PM'))
               OR day_part IS NULL OR day_part = '')`

// CreateReservation inserts a reservation after re-running the conflict
// check inside a serializable transaction, so two concurrent attempts for
// the same vessel and range cannot both commit. Serialization failures are
// retried a bounded number of times.
func (r *ReservationRepository) CreateReservation(ctx context.Context, res *models.Reservation) (*models.Reservation, error) {
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}
	res.Status = models.StatusPendingDeposit
	res.CreatedAt = time.Now().UTC()

	var lastErr error
	for attempt := 0; attempt < serializationRetries; attempt++ {
		lastErr = r.createReservationTx(ctx, res)
		if !isSerializationFailure(lastErr) {
			break
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return res, nil
}

func (r *ReservationRepository) createReservationTx(ctx context.Context, res *models.Reservation) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var conflicts int
	err = tx.QueryRow(ctx, conflictCountQuery,
		res.VesselID, res.StartDate, res.EndDate, string(res.DayPart)).Scan(&conflicts)
	if err != nil {
		return err
	}
	if conflicts > 0 {
		return models.ErrSlotUnavailable
	}

	metadata, err := encodeMetadata(res.Metadata)
	if err != nil {
		return err
	}
	query := `
        INSERT INTO reservations (
            id, user_id, vessel_id, reference, start_date, end_date, day_part,
            passengers, total_price, deposit_amount, remaining_amount,
            deposit_percent, status, metadata, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
    `
	_, err = tx.Exec(ctx, query,
		res.ID, res.UserID, res.VesselID, res.Reference,
		res.StartDate, res.EndDate, string(res.DayPart), res.Passengers,
		res.TotalPrice, res.DepositAmount, res.RemainingAmount,
		res.DepositPercent, string(res.Status), metadata, res.CreatedAt)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *ReservationRepository) CreateAgencyRequest(ctx context.Context, req *models.AgencyRequest) (*models.AgencyRequest, error) {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	req.Status = models.AgencyRequestPending
	req.CreatedAt = time.Now().UTC()

	metadata, err := encodeMetadata(req.Metadata)
	if err != nil {
		return nil, err
	}
	query := `
        INSERT INTO agency_requests (
            id, user_id, vessel_id, reference, start_date, end_date, day_part,
            passengers, total_price, status, metadata, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `
	_, err = r.db.Exec(ctx, query,
		req.ID, req.UserID, req.VesselID, req.Reference,
		req.StartDate, req.EndDate, string(req.DayPart), req.Passengers,
		req.TotalPrice, string(req.Status), metadata, req.CreatedAt)
	if err != nil {
		return nil, err
	}
	return req, nil
}

// FindOverlapping returns non-cancelled reservations whose inclusive date
// range intersects [from, to]. Day-part compatibility is the caller's rule.
func (r *ReservationRepository) FindOverlapping(ctx context.Context, vesselID uuid.UUID, from, to time.Time) ([]models.Reservation, error) {
	query := `
        SELECT` + reservationColumns + `
        FROM reservations
        WHERE vessel_id = $1
          AND status <> 'cancelled'
          AND start_date <= $3 AND end_date >= $2
    `
	rows, err := r.db.Query(ctx, query, vesselID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReservations(rows)
}

func (r *ReservationRepository) GetReservationByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	query := `
        SELECT` + reservationColumns + `
        FROM reservations
        WHERE id = $1
    `
	return r.getReservation(ctx, query, id)
}

func (r *ReservationRepository) GetReservationBySession(ctx context.Context, sessionID string) (*models.Reservation, error) {
	query := `
        SELECT` + reservationColumns + `
        FROM reservations
        WHERE checkout_session_id = $1
    `
	return r.getReservation(ctx, query, sessionID)
}

func (r *ReservationRepository) getReservation(ctx context.Context, query string, arg interface{}) (*models.Reservation, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations, err := scanReservations(rows)
	if err != nil {
		return nil, err
	}
	if len(reservations) == 0 {
		return nil, models.ErrReservationNotFound
	}
	return &reservations[0], nil
}

func (r *ReservationRepository) GetReservationsPaginated(ctx context.Context, afterCursor string, limit int) ([]models.Reservation, string, error) {
	query := `
        SELECT` + reservationColumns + `
        FROM reservations
    `
	var args []interface{}
	var conditions []string

	if afterCursor != "" {
		afterTime, afterUUID, err := decodeCursor(afterCursor)
		if err != nil {
			return nil, "", err
		}
		conditions = append(conditions, "(created_at, id) > ($1, $2)")
		args = append(args, afterTime, afterUUID)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY created_at, id"
	query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
	args = append(args, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	reservations, err := scanReservations(rows)
	if err != nil {
		return nil, "", err
	}

	var nextCursor string
	if len(reservations) == limit {
		last := reservations[len(reservations)-1]
		nextCursor = encodeCursor(last.CreatedAt, last.ID)
	}
	return reservations, nextCursor, nil
}

func (r *ReservationRepository) SetCheckoutSession(ctx context.Context, id uuid.UUID, sessionID string) error {
	query := `UPDATE reservations SET checkout_session_id = $2 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, sessionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrReservationNotFound
	}
	return nil
}

// UpdateStatus moves a reservation to a new status and stamps the matching
// timestamp column. The WHERE clause re-checks the current status so a
// concurrent or repeated transition cannot regress a row: zero affected
// rows surfaces as ErrInvalidTransition.
func (r *ReservationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReservationStatus, at time.Time) error {
	var query string
	switch status {
	case models.StatusDepositPaid:
		query = `UPDATE reservations SET status = $2, deposit_paid_at = $3
                 WHERE id = $1 AND status = 'pending_deposit'`
	case models.StatusCompleted:
		query = `UPDATE reservations SET status = $2, completed_at = $3
                 WHERE id = $1 AND status = 'deposit_paid'`
	case models.StatusCancelled:
		query = `UPDATE reservations SET status = $2, cancelled_at = $3
                 WHERE id = $1 AND status IN ('pending_deposit', 'deposit_paid')`
	default:
		return models.ErrInvalidTransition
	}

	tag, err := r.db.Exec(ctx, query, id, string(status), at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrInvalidTransition
	}
	return nil
}

func scanReservations(rows pgx.Rows) ([]models.Reservation, error) {
	var reservations []models.Reservation
	for rows.Next() {
		var res models.Reservation
		var dayPart string
		var status string
		var metadata []byte
		var sessionID *string

		err := rows.Scan(
			&res.ID, &res.UserID, &res.VesselID, &res.Reference,
			&res.StartDate, &res.EndDate, &dayPart, &res.Passengers,
			&res.TotalPrice, &res.DepositAmount, &res.RemainingAmount,
			&res.DepositPercent, &status, &metadata, &sessionID,
			&res.CreatedAt, &res.DepositPaidAt, &res.CompletedAt, &res.CancelledAt,
		)
		if err != nil {
			return nil, err
		}
		res.DayPart = models.DayPart(dayPart)
		res.Status = models.ReservationStatus(status)
		if sessionID != nil {
			res.CheckoutSessionID = *sessionID
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &res.Metadata); err != nil {
				return nil, fmt.Errorf("decoding reservation metadata: %w", err)
			}
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reservations, nil
}

func encodeMetadata(m map[string]interface{}) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}

func encodeCursor(t time.Time, id uuid.UUID) string {
	cursor := fmt.Sprintf("%s,%s", t.Format(time.RFC3339Nano), id.String())
	return base64.StdEncoding.EncodeToString([]byte(cursor))
}

func decodeCursor(encoded string) (time.Time, uuid.UUID, error) {
	decodedBytes, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return time.Time{}, uuid.Nil, err
	}
	parts := strings.Split(string(decodedBytes), ",")
	if len(parts) != 2 {
		return time.Time{}, uuid.Nil, fmt.Errorf("invalid cursor format")
	}
	t, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return time.Time{}, uuid.Nil, err
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return time.Time{}, uuid.Nil, err
	}
	return t, id, nil
}
