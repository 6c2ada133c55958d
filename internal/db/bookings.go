// internal/db/bookings.go
package db

import (
	"context"
	"database/sql"
	"time"
)

const bookingColumns = `
	b.id, b.owner_id, b.court_id, b.start_time, b.end_time, b.price,
	b.payment_status, b.status, b.event_type, b.notes,
	b.player1_name, b.player1_phone, b.player1_is_member, b.player1_discount,
	b.player2_name, b.player2_phone, b.player2_is_member, b.player2_discount,
	b.player3_name, b.player3_phone, b.player3_is_member, b.player3_discount,
	b.player4_name, b.player4_phone, b.player4_is_member, b.player4_discount,
	b.created_at, b.updated_at`

type CreateBookingParams struct {
	OwnerID       int64
	CourtID       int64
	StartTime     time.Time
	EndTime       time.Time
	Price         float64
	PaymentStatus string
	EventType     string
	Notes         string
	Players       [4]PlayerSlot
}

func (q *Queries) CreateBooking(ctx context.Context, arg CreateBookingParams) (Booking, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO bookings (
			owner_id, court_id, start_time, end_time, price, payment_status, event_type, notes,
			player1_name, player1_phone, player1_is_member, player1_discount,
			player2_name, player2_phone, player2_is_member, player2_discount,
			player3_name, player3_phone, player3_is_member, player3_discount,
			player4_name, player4_phone, player4_is_member, player4_discount
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+aliasFreeBookingColumns(),
		append([]interface{}{
			arg.OwnerID, arg.CourtID, arg.StartTime, arg.EndTime, arg.Price,
			arg.PaymentStatus, arg.EventType, arg.Notes,
		}, playerArgs(arg.Players)...)...,
	)
	return scanBookingRow(row)
}

type UpdateBookingParams struct {
	ID            int64
	OwnerID       int64
	CourtID       int64
	StartTime     time.Time
	EndTime       time.Time
	Price         float64
	PaymentStatus string
	EventType     string
	Notes         string
	Players       [4]PlayerSlot
}

func (q *Queries) UpdateBooking(ctx context.Context, arg UpdateBookingParams) (Booking, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE bookings SET
			court_id = ?, start_time = ?, end_time = ?, price = ?,
			payment_status = ?, event_type = ?, notes = ?,
			player1_name = ?, player1_phone = ?, player1_is_member = ?, player1_discount = ?,
			player2_name = ?, player2_phone = ?, player2_is_member = ?, player2_discount = ?,
			player3_name = ?, player3_phone = ?, player3_is_member = ?, player3_discount = ?,
			player4_name = ?, player4_phone = ?, player4_is_member = ?, player4_discount = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND owner_id = ?
		RETURNING `+aliasFreeBookingColumns(),
		append(append([]interface{}{
			arg.CourtID, arg.StartTime, arg.EndTime, arg.Price,
			arg.PaymentStatus, arg.EventType, arg.Notes,
		}, playerArgs(arg.Players)...), arg.ID, arg.OwnerID)...,
	)
	return scanBookingRow(row)
}

type MoveBookingParams struct {
	ID        int64
	OwnerID   int64
	CourtID   int64
	StartTime time.Time
	EndTime   time.Time
}

// MoveBooking reschedules a booking to a new court and time range without
// touching price, players, or status.
func (q *Queries) MoveBooking(ctx context.Context, arg MoveBookingParams) (Booking, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE bookings SET
			court_id = ?, start_time = ?, end_time = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND owner_id = ?
		RETURNING `+aliasFreeBookingColumns(),
		arg.CourtID, arg.StartTime, arg.EndTime, arg.ID, arg.OwnerID,
	)
	return scanBookingRow(row)
}

func (q *Queries) GetBookingByID(ctx context.Context, id int64) (Booking, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+aliasFreeBookingColumns()+` FROM bookings WHERE id = ?`, id,
	)
	return scanBookingRow(row)
}

type CancelBookingParams struct {
	ID      int64
	OwnerID int64
}

// CancelBooking soft-deletes via the status flag; the row stays for audit.
func (q *Queries) CancelBooking(ctx context.Context, arg CancelBookingParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, `
		UPDATE bookings SET status = 'cancelled', updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND owner_id = ? AND status != 'cancelled'`,
		arg.ID, arg.OwnerID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type DeleteBookingParams struct {
	ID      int64
	OwnerID int64
}

// DeleteBooking is the explicit hard-delete path used for open-game cleanup.
func (q *Queries) DeleteBooking(ctx context.Context, arg DeleteBookingParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, `
		DELETE FROM bookings WHERE id = ? AND owner_id = ?`,
		arg.ID, arg.OwnerID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type ListBookingsForDayParams struct {
	OwnerID   int64
	StartTime time.Time
	EndTime   time.Time
}

// ListBookingsForDay returns the day's confirmed bookings with joined court
// data, ordered by query order the calendar relies on.
func (q *Queries) ListBookingsForDay(ctx context.Context, arg ListBookingsForDayParams) ([]BookingWithCourt, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+bookingColumns+`,
			c.name, c.court_type, c.hourly_rate, c.peak_rate, c.sort_order
		FROM bookings b
		JOIN courts c ON c.id = b.court_id
		WHERE b.owner_id = ? AND b.status != 'cancelled'
			AND b.start_time >= ? AND b.start_time <= ?
		ORDER BY b.start_time, c.sort_order`,
		arg.OwnerID, arg.StartTime, arg.EndTime,
	)
	if err != nil {
		return nil, err
	}
	return collectBookingsWithCourt(rows)
}

type CountOverlappingBookingsParams struct {
	CourtID   int64
	StartTime time.Time
	EndTime   time.Time
	ExcludeID int64
}

// CountOverlappingBookings counts confirmed bookings on the court whose time
// range intersects [StartTime, EndTime). ExcludeID skips the booking being
// moved so a no-op move back onto itself stays legal.
func (q *Queries) CountOverlappingBookings(ctx context.Context, arg CountOverlappingBookingsParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE court_id = ? AND status != 'cancelled' AND id != ?
			AND start_time < ? AND end_time > ?`,
		arg.CourtID, arg.ExcludeID, arg.EndTime, arg.StartTime,
	).Scan(&count)
	return count, err
}

type ListBookingsBetweenParams struct {
	OwnerID   int64
	StartTime time.Time
	EndTime   time.Time
}

// ListBookingsBetween returns confirmed bookings starting inside the window,
// joined with court data. Used by reports and the reminder job.
func (q *Queries) ListBookingsBetween(ctx context.Context, arg ListBookingsBetweenParams) ([]BookingWithCourt, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+bookingColumns+`,
			c.name, c.court_type, c.hourly_rate, c.peak_rate, c.sort_order
		FROM bookings b
		JOIN courts c ON c.id = b.court_id
		WHERE b.owner_id = ? AND b.status != 'cancelled'
			AND b.start_time >= ? AND b.start_time < ?
		ORDER BY b.start_time`,
		arg.OwnerID, arg.StartTime, arg.EndTime,
	)
	if err != nil {
		return nil, err
	}
	return collectBookingsWithCourt(rows)
}

type ListBookingsStartingBetweenParams struct {
	StartTime time.Time
	EndTime   time.Time
}

// ListBookingsStartingBetween spans all owners; the reminder job sweeps the
// whole table for upcoming bookings.
func (q *Queries) ListBookingsStartingBetween(ctx context.Context, arg ListBookingsStartingBetweenParams) ([]BookingWithCourt, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+bookingColumns+`,
			c.name, c.court_type, c.hourly_rate, c.peak_rate, c.sort_order
		FROM bookings b
		JOIN courts c ON c.id = b.court_id
		WHERE b.status != 'cancelled'
			AND b.start_time >= ? AND b.start_time < ?
		ORDER BY b.start_time`,
		arg.StartTime, arg.EndTime,
	)
	if err != nil {
		return nil, err
	}
	return collectBookingsWithCourt(rows)
}

func playerArgs(players [4]PlayerSlot) []interface{} {
	args := make([]interface{}, 0, 16)
	for _, p := range players {
		args = append(args, p.Name, p.Phone, p.IsMember, p.DiscountPercent)
	}
	return args
}

func aliasFreeBookingColumns() string {
	return `id, owner_id, court_id, start_time, end_time, price,
	payment_status, status, event_type, notes,
	player1_name, player1_phone, player1_is_member, player1_discount,
	player2_name, player2_phone, player2_is_member, player2_discount,
	player3_name, player3_phone, player3_is_member, player3_discount,
	player4_name, player4_phone, player4_is_member, player4_discount,
	created_at, updated_at`
}

func bookingScanTargets(b *Booking) []interface{} {
	targets := []interface{}{
		&b.ID, &b.OwnerID, &b.CourtID, &b.StartTime, &b.EndTime, &b.Price,
		&b.PaymentStatus, &b.Status, &b.EventType, &b.Notes,
	}
	for i := range b.Players {
		targets = append(targets,
			&b.Players[i].Name, &b.Players[i].Phone,
			&b.Players[i].IsMember, &b.Players[i].DiscountPercent,
		)
	}
	return append(targets, &b.CreatedAt, &b.UpdatedAt)
}

func scanBookingRow(row *sql.Row) (Booking, error) {
	var b Booking
	err := row.Scan(bookingScanTargets(&b)...)
	return b, err
}

func collectBookingsWithCourt(rows *sql.Rows) ([]BookingWithCourt, error) {
	defer rows.Close()

	var bookings []BookingWithCourt
	for rows.Next() {
		var b BookingWithCourt
		targets := append(bookingScanTargets(&b.Booking),
			&b.CourtName, &b.CourtType, &b.CourtRate, &b.CourtPeakRate, &b.CourtSortOrder,
		)
		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
