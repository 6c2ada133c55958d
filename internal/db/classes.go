// internal/db/classes.go
package db

import (
	"context"
	"database/sql"
)

const classColumns = `id, owner_id, name, coach, court_id, day_of_week, starts_at, duration_minutes, price, created_at`

type CreateClassParams struct {
	OwnerID         int64
	Name            string
	Coach           string
	CourtID         int64
	DayOfWeek       int64
	StartsAt        string
	DurationMinutes int64
	Price           float64
}

func (q *Queries) CreateClass(ctx context.Context, arg CreateClassParams) (Class, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO classes (owner_id, name, coach, court_id, day_of_week, starts_at, duration_minutes, price)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+classColumns,
		arg.OwnerID, arg.Name, arg.Coach, arg.CourtID, arg.DayOfWeek,
		arg.StartsAt, arg.DurationMinutes, arg.Price,
	)
	return scanClass(row)
}

func (q *Queries) GetClassByID(ctx context.Context, id int64) (Class, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+classColumns+` FROM classes WHERE id = ?`, id)
	return scanClass(row)
}

func (q *Queries) ListClasses(ctx context.Context, ownerID int64) ([]Class, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+classColumns+`
		FROM classes
		WHERE owner_id = ?
		ORDER BY day_of_week, starts_at`, ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classes []Class
	for rows.Next() {
		var c Class
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Coach, &c.CourtID, &c.DayOfWeek, &c.StartsAt, &c.DurationMinutes, &c.Price, &c.CreatedAt); err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

func scanClass(row *sql.Row) (Class, error) {
	var c Class
	err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Coach, &c.CourtID, &c.DayOfWeek, &c.StartsAt, &c.DurationMinutes, &c.Price, &c.CreatedAt)
	return c, err
}
