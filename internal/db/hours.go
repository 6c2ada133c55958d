// internal/db/hours.go
package db

import (
	"context"
)

type UpsertOperatingHoursParams struct {
	OwnerID   int64
	DayOfWeek int64
	OpensAt   string
	ClosesAt  string
}

func (q *Queries) UpsertOperatingHours(ctx context.Context, arg UpsertOperatingHoursParams) (OperatingHour, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO operating_hours (owner_id, day_of_week, opens_at, closes_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (owner_id, day_of_week)
		DO UPDATE SET opens_at = excluded.opens_at, closes_at = excluded.closes_at
		RETURNING owner_id, day_of_week, opens_at, closes_at`,
		arg.OwnerID, arg.DayOfWeek, arg.OpensAt, arg.ClosesAt,
	)
	var h OperatingHour
	err := row.Scan(&h.OwnerID, &h.DayOfWeek, &h.OpensAt, &h.ClosesAt)
	return h, err
}

type DeleteOperatingHoursParams struct {
	OwnerID   int64
	DayOfWeek int64
}

func (q *Queries) DeleteOperatingHours(ctx context.Context, arg DeleteOperatingHoursParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, `
		DELETE FROM operating_hours WHERE owner_id = ? AND day_of_week = ?`,
		arg.OwnerID, arg.DayOfWeek,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type GetOperatingHoursParams struct {
	OwnerID   int64
	DayOfWeek int64
}

func (q *Queries) GetOperatingHours(ctx context.Context, arg GetOperatingHoursParams) (OperatingHour, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT owner_id, day_of_week, opens_at, closes_at
		FROM operating_hours
		WHERE owner_id = ? AND day_of_week = ?`,
		arg.OwnerID, arg.DayOfWeek,
	)
	var h OperatingHour
	err := row.Scan(&h.OwnerID, &h.DayOfWeek, &h.OpensAt, &h.ClosesAt)
	return h, err
}

func (q *Queries) ListOperatingHours(ctx context.Context, ownerID int64) ([]OperatingHour, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT owner_id, day_of_week, opens_at, closes_at
		FROM operating_hours
		WHERE owner_id = ?
		ORDER BY day_of_week`, ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hours []OperatingHour
	for rows.Next() {
		var h OperatingHour
		if err := rows.Scan(&h.OwnerID, &h.DayOfWeek, &h.OpensAt, &h.ClosesAt); err != nil {
			return nil, err
		}
		hours = append(hours, h)
	}
	return hours, rows.Err()
}
