// internal/db/courts.go
package db

import (
	"context"
	"database/sql"
)

const courtColumns = `id, owner_id, name, court_type, hourly_rate, peak_rate, sort_order, is_active, created_at`

type CreateCourtParams struct {
	OwnerID    int64
	Name       string
	CourtType  string
	HourlyRate float64
	PeakRate   float64
	SortOrder  int64
}

func (q *Queries) CreateCourt(ctx context.Context, arg CreateCourtParams) (Court, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO courts (owner_id, name, court_type, hourly_rate, peak_rate, sort_order)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+courtColumns,
		arg.OwnerID, arg.Name, arg.CourtType, arg.HourlyRate, arg.PeakRate, arg.SortOrder,
	)
	return scanCourt(row)
}

type UpdateCourtParams struct {
	ID         int64
	OwnerID    int64
	Name       string
	CourtType  string
	HourlyRate float64
	PeakRate   float64
	SortOrder  int64
	IsActive   bool
}

func (q *Queries) UpdateCourt(ctx context.Context, arg UpdateCourtParams) (Court, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE courts
		SET name = ?, court_type = ?, hourly_rate = ?, peak_rate = ?, sort_order = ?, is_active = ?
		WHERE id = ? AND owner_id = ?
		RETURNING `+courtColumns,
		arg.Name, arg.CourtType, arg.HourlyRate, arg.PeakRate, arg.SortOrder, arg.IsActive,
		arg.ID, arg.OwnerID,
	)
	return scanCourt(row)
}

// ListActiveCourts returns the club's active courts ordered by sort key then name.
func (q *Queries) ListActiveCourts(ctx context.Context, ownerID int64) ([]Court, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+courtColumns+`
		FROM courts
		WHERE owner_id = ? AND is_active = 1
		ORDER BY sort_order, name`, ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courts []Court
	for rows.Next() {
		var c Court
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.CourtType, &c.HourlyRate, &c.PeakRate, &c.SortOrder, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, err
		}
		courts = append(courts, c)
	}
	return courts, rows.Err()
}

func (q *Queries) GetCourtByID(ctx context.Context, id int64) (Court, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+courtColumns+` FROM courts WHERE id = ?`, id)
	return scanCourt(row)
}

func scanCourt(row *sql.Row) (Court, error) {
	var c Court
	err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.CourtType, &c.HourlyRate, &c.PeakRate, &c.SortOrder, &c.IsActive, &c.CreatedAt)
	return c, err
}
