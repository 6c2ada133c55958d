// internal/db/plans.go
package db

import (
	"context"
	"database/sql"
)

type CreatePlanParams struct {
	OwnerID         int64
	Name            string
	DiscountPercent float64
	MonthlyFee      float64
}

func (q *Queries) CreatePlan(ctx context.Context, arg CreatePlanParams) (Plan, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO plans (owner_id, name, discount_percent, monthly_fee)
		VALUES (?, ?, ?, ?)
		RETURNING id, owner_id, name, discount_percent, monthly_fee, created_at`,
		arg.OwnerID, arg.Name, arg.DiscountPercent, arg.MonthlyFee,
	)
	return scanPlan(row)
}

func (q *Queries) GetPlanByID(ctx context.Context, id int64) (Plan, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, discount_percent, monthly_fee, created_at
		FROM plans WHERE id = ?`, id,
	)
	return scanPlan(row)
}

func (q *Queries) ListPlans(ctx context.Context, ownerID int64) ([]Plan, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, owner_id, name, discount_percent, monthly_fee, created_at
		FROM plans
		WHERE owner_id = ?
		ORDER BY name`, ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []Plan
	for rows.Next() {
		var p Plan
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.DiscountPercent, &p.MonthlyFee, &p.CreatedAt); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func scanPlan(row *sql.Row) (Plan, error) {
	var p Plan
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.DiscountPercent, &p.MonthlyFee, &p.CreatedAt)
	return p, err
}
