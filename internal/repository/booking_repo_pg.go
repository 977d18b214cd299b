package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	Cancel(ctx context.Context, bookingID, userID int64) (*domain.Booking, bool, error)
	GetForUser(ctx context.Context, bookingID, userID int64) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) BookingRepository {
	return &PGBookingRepository{db: db}
}

const (
	bookingColumns       = `id, user_id, travel_option_id, number_of_seats, total_price_cents, status, created_at`
	bookingJoinedColumns = `b.id, b.user_id, b.travel_option_id, b.number_of_seats, b.total_price_cents, b.status, b.created_at,
		t.id, t.type, t.source, t.destination, t.date_time, t.price_cents, t.available_seats, t.created_at, t.updated_at`
	bookingJoin = ` FROM bookings b JOIN travel_options t ON t.id = b.travel_option_id`

	bookingsUserFK = "bookings_user_id_fkey"
)

// Create reserves the seats and inserts the booking in one transaction.
// The seat decrement is conditional, so concurrent bookings can never drive
// available_seats below zero; the loser gets domain.ErrSeatsUnavailable.
// TotalPriceCents is computed from the price read by the same statement.
func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin booking tx: %w", err)
	}
	defer tx.Rollback()

	var priceCents int64
	err = tx.QueryRowContext(ctx, `UPDATE travel_options SET available_seats = available_seats - $1, updated_at = now() WHERE id = $2 AND available_seats >= $1 RETURNING price_cents`,
		booking.Seats, booking.TravelOptionID).Scan(&priceCents)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrSeatsUnavailable
		}
		return fmt.Errorf("reserve seats: %w", err)
	}

	booking.TotalPriceCents = priceCents * int64(booking.Seats)
	booking.Status = domain.BookingStatusConfirmed
	err = tx.QueryRowContext(ctx, `INSERT INTO bookings (user_id, travel_option_id, number_of_seats, total_price_cents, status) VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
		booking.UserID, booking.TravelOptionID, booking.Seats, booking.TotalPriceCents, string(booking.Status)).
		Scan(&booking.ID, &booking.CreatedAt)
	if err != nil {
		// A session can outlive its user; the insert is the first write to notice.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation && pgErr.ConstraintName == bookingsUserFK {
			return fmt.Errorf("user %d no longer exists: %w", booking.UserID, domain.ErrUnauthenticated)
		}
		return fmt.Errorf("insert booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit booking: %w", err)
	}
	return nil
}

// Cancel moves a confirmed booking owned by userID to Cancelled and credits
// its seats back. The status transition is conditional, so seats are
// credited at most once. The bool reports whether a transition happened;
// a booking that was already cancelled is returned unchanged.
func (r *PGBookingRepository) Cancel(ctx context.Context, bookingID, userID int64) (*domain.Booking, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin cancel tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `UPDATE bookings SET status = $1 WHERE id = $2 AND user_id = $3 AND status = $4 RETURNING `+bookingColumns,
		string(domain.BookingStatusCancelled), bookingID, userID, string(domain.BookingStatusConfirmed))
	cancelled, err := scanBooking(row)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, false, fmt.Errorf("cancel booking: %w", err)
		}
		current, err := getForUser(ctx, tx, bookingID, userID)
		if err != nil {
			return nil, false, err
		}
		return current, false, nil
	}

	res, err := tx.ExecContext(ctx, `UPDATE travel_options SET available_seats = available_seats + $1, updated_at = now() WHERE id = $2`,
		cancelled.Seats, cancelled.TravelOptionID)
	if err != nil {
		return nil, false, fmt.Errorf("release seats: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, false, domain.NotFoundError{Resource: "travel option"}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit cancel: %w", err)
	}
	return cancelled, true, nil
}

func (r *PGBookingRepository) GetForUser(ctx context.Context, bookingID, userID int64) (*domain.Booking, error) {
	return getForUser(ctx, r.db, bookingID, userID)
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+bookingJoinedColumns+bookingJoin+` WHERE b.user_id = $1 ORDER BY b.created_at DESC, b.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanJoinedBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// getForUser scopes the lookup to the owner: a booking of another user is
// reported exactly like a missing one.
func getForUser(ctx context.Context, q rowQuerier, bookingID, userID int64) (*domain.Booking, error) {
	row := q.QueryRowContext(ctx, `SELECT `+bookingJoinedColumns+bookingJoin+` WHERE b.id = $1 AND b.user_id = $2`, bookingID, userID)
	b, err := scanJoinedBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundError{Resource: "booking", Err: err}
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

func scanBooking(s scanner) (*domain.Booking, error) {
	var b domain.Booking
	if err := s.Scan(&b.ID, &b.UserID, &b.TravelOptionID, &b.Seats, &b.TotalPriceCents, &b.Status, &b.CreatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func scanJoinedBooking(s scanner) (*domain.Booking, error) {
	var (
		b domain.Booking
		o domain.TravelOption
	)
	if err := s.Scan(
		&b.ID, &b.UserID, &b.TravelOptionID, &b.Seats, &b.TotalPriceCents, &b.Status, &b.CreatedAt,
		&o.ID, &o.Type, &o.Source, &o.Destination, &o.DateTime, &o.PriceCents, &o.AvailableSeats, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	b.TravelOption = &o
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
