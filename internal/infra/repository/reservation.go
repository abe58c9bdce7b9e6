package repository

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"bistro/internal/domain/reservation"
	"bistro/internal/infra"
	"bistro/internal/infra/db"
	"bistro/internal/pkg/pgconv"
	"bistro/internal/usecase/shared"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// Pool is the subset of *pgxpool.Pool the repository needs.
type Pool interface {
	db.DBTX
	db.TxBeginner
}

// ReservationRepository stores reservations in PostgreSQL. Double booking is rejected by the
// reservations_no_double_booking exclusion constraint.
type ReservationRepository struct {
	pool   Pool
	window time.Duration
	logger *slog.Logger
}

var _ shared.ReservationStore = (*ReservationRepository)(nil)

func NewReservationRepository(pool Pool, window time.Duration, logger *slog.Logger) *ReservationRepository {
	return &ReservationRepository{pool: pool, window: window, logger: logger}
}

const reservationColumns = `id, visit_date, visit_minute, party_size, status, table_id, owner_kind, subscriber_id,
	contact_name, contact_phone, contact_email, confirmation_code, arrival_time, departure_time, created_at, updated_at`

const insertReservation = `
INSERT INTO reservations (
	visit_date, visit_minute, party_size, status, table_id, owner_kind, subscriber_id,
	contact_name, contact_phone, contact_email, confirmation_code, arrival_time, departure_time,
	slot_start, slot_end, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
RETURNING id`

// Only the mutable columns; date, time, party and owner never change after insert.
const updateReservation = `
UPDATE reservations
SET status = $2, table_id = $3, arrival_time = $4, departure_time = $5, updated_at = $6
WHERE id = $1`

func (r *ReservationRepository) FindReservation(ctx context.Context, id int64) (*reservation.Reservation, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)
	res, err := scanReservation(row)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, "find reservation", err)
	}
	return res, nil
}

func (r *ReservationRepository) FindReservationByConfirmationCode(ctx context.Context, code string) (*reservation.Reservation, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE confirmation_code = $1`, code)
	res, err := scanReservation(row)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, "find reservation by code", err)
	}
	return res, nil
}

func (r *ReservationRepository) FindReservationsByDate(ctx context.Context, date reservation.Date, statuses ...reservation.Status) ([]*reservation.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE visit_date = $1`
	args := []any{date.Time()}
	if len(statuses) > 0 {
		query += ` AND status = ANY($2)`
		args = append(args, statusNames(statuses))
	}
	return r.list(ctx, "find reservations by date", query+` ORDER BY id`, args...)
}

func (r *ReservationRepository) FindReservationsByOwner(ctx context.Context, owner reservation.Owner) ([]*reservation.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
		WHERE owner_kind = $1 AND subscriber_id IS NOT DISTINCT FROM $2 ORDER BY id`
	return r.list(ctx, "find reservations by owner", query,
		string(owner.Kind()), pgconv.PositiveInt64ToPgtype(owner.SubscriberID()))
}

func (r *ReservationRepository) FindReservationsByStatus(ctx context.Context, statuses ...reservation.Status) ([]*reservation.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations`
	var args []any
	if len(statuses) > 0 {
		query += ` WHERE status = ANY($1)`
		args = append(args, statusNames(statuses))
	}
	return r.list(ctx, "find reservations by status", query+` ORDER BY id`, args...)
}

func (r *ReservationRepository) Save(ctx context.Context, res *reservation.Reservation) (int64, error) {
	snap := res.Snapshot()

	id, err := db.WithDefaultRetry(ctx, r.pool, func(tx db.DBTX) (int64, error) {
		if snap.ID == 0 {
			return r.insert(ctx, tx, snap)
		}
		return r.update(ctx, tx, snap)
	})
	if err != nil {
		return 0, infra.WrapRepoErr(r.logger, "save reservation", err)
	}
	return id, nil
}

func (r *ReservationRepository) insert(ctx context.Context, tx db.DBTX, s reservation.Snapshot) (int64, error) {
	start := s.Date.At(s.Time, time.UTC)
	var id int64
	err := tx.QueryRow(ctx, insertReservation,
		s.Date.Time(),
		int16(s.Time.Minutes()),
		int32(s.PartySize),
		s.Status.String(),
		pgconv.PositiveIntToPgtype(s.TableID),
		string(s.OwnerKind),
		pgconv.PositiveInt64ToPgtype(s.SubscriberID),
		s.Contact.Name,
		s.Contact.Phone,
		s.Contact.Email,
		s.ConfirmationCode,
		pgconv.TimePtrToPgtype(s.ArrivalTime),
		pgconv.TimePtrToPgtype(s.DepartureTime),
		start,
		start.Add(r.window),
		s.CreatedAt,
		s.UpdatedAt,
	).Scan(&id)
	return id, err
}

func (r *ReservationRepository) update(ctx context.Context, tx db.DBTX, s reservation.Snapshot) (int64, error) {
	tag, err := tx.Exec(ctx, updateReservation,
		s.ID,
		s.Status.String(),
		pgconv.PositiveIntToPgtype(s.TableID),
		pgconv.TimePtrToPgtype(s.ArrivalTime),
		pgconv.TimePtrToPgtype(s.DepartureTime),
		s.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	if tag.RowsAffected() == 0 {
		return 0, pgx.ErrNoRows
	}
	return s.ID, nil
}

func (r *ReservationRepository) list(ctx context.Context, op, query string, args ...any) ([]*reservation.Reservation, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, op, err)
	}
	defer rows.Close()

	var out []*reservation.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, infra.WrapRepoErr(r.logger, op, err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(r.logger, op, err)
	}
	return out, nil
}

func scanReservation(row pgx.Row) (*reservation.Reservation, error) {
	var (
		s            reservation.Snapshot
		visitDate    time.Time
		visitMinute  int16
		partySize    int32
		status       string
		tableID      pgtype.Int4
		ownerKind    string
		subscriberID pgtype.Int8
		arrival      pgtype.Timestamptz
		departure    pgtype.Timestamptz
	)
	if err := row.Scan(
		&s.ID, &visitDate, &visitMinute, &partySize, &status, &tableID, &ownerKind, &subscriberID,
		&s.Contact.Name, &s.Contact.Phone, &s.Contact.Email, &s.ConfirmationCode,
		&arrival, &departure, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}

	st, err := reservation.ParseStatus(strings.TrimSpace(status))
	if err != nil {
		return nil, err
	}
	s.Date = reservation.DateOf(visitDate)
	s.Time = reservation.TimeOfDay(visitMinute)
	s.PartySize = int(partySize)
	s.Status = st
	s.TableID = pgconv.IntFromPgtype(tableID)
	s.OwnerKind = reservation.OwnerKind(ownerKind)
	s.SubscriberID = pgconv.Int64FromPgtype(subscriberID)
	s.ArrivalTime = pgconv.TimePtrFromPgtype(arrival)
	s.DepartureTime = pgconv.TimePtrFromPgtype(departure)
	return reservation.Reconstruct(s), nil
}

func statusNames(statuses []reservation.Status) []string {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = s.String()
	}
	return names
}
