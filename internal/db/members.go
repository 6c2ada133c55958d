// internal/db/members.go
package db

import (
	"context"
	"database/sql"
)

const memberWithPlanColumns = `
	m.id, m.owner_id, m.name, m.phone, m.email, m.plan_id, m.created_at,
	p.name, p.discount_percent`

type CreateMemberParams struct {
	OwnerID int64
	Name    string
	Phone   sql.NullString
	Email   sql.NullString
	PlanID  sql.NullInt64
}

func (q *Queries) CreateMember(ctx context.Context, arg CreateMemberParams) (Member, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO members (owner_id, name, phone, email, plan_id)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, owner_id, name, phone, email, plan_id, created_at`,
		arg.OwnerID, arg.Name, arg.Phone, arg.Email, arg.PlanID,
	)
	var m Member
	err := row.Scan(&m.ID, &m.OwnerID, &m.Name, &m.Phone, &m.Email, &m.PlanID, &m.CreatedAt)
	return m, err
}

type ListMembersParams struct {
	OwnerID int64
	Limit   int64
	Offset  int64
}

func (q *Queries) ListMembers(ctx context.Context, arg ListMembersParams) ([]MemberWithPlan, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+memberWithPlanColumns+`
		FROM members m
		LEFT JOIN plans p ON p.id = m.plan_id
		WHERE m.owner_id = ?
		ORDER BY m.name
		LIMIT ? OFFSET ?`,
		arg.OwnerID, arg.Limit, arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	return collectMembersWithPlan(rows)
}

type SearchMembersByPhoneParams struct {
	OwnerID int64
	Phone   string
	Limit   int64
}

// SearchMembersByPhone matches a normalized phone exactly or as a substring.
// Phones are normalized before storage, so a plain LIKE is enough here.
func (q *Queries) SearchMembersByPhone(ctx context.Context, arg SearchMembersByPhoneParams) ([]MemberWithPlan, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+memberWithPlanColumns+`
		FROM members m
		LEFT JOIN plans p ON p.id = m.plan_id
		WHERE m.owner_id = ? AND m.phone IS NOT NULL AND m.phone LIKE '%' || ? || '%'
		ORDER BY m.id
		LIMIT ?`,
		arg.OwnerID, arg.Phone, arg.Limit,
	)
	if err != nil {
		return nil, err
	}
	return collectMembersWithPlan(rows)
}

type SearchMembersByNameParams struct {
	OwnerID int64
	Name    string
	Limit   int64
}

// SearchMembersByName performs a case-insensitive partial name match.
func (q *Queries) SearchMembersByName(ctx context.Context, arg SearchMembersByNameParams) ([]MemberWithPlan, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+memberWithPlanColumns+`
		FROM members m
		LEFT JOIN plans p ON p.id = m.plan_id
		WHERE m.owner_id = ? AND lower(m.name) LIKE '%' || lower(?) || '%'
		ORDER BY m.id
		LIMIT ?`,
		arg.OwnerID, arg.Name, arg.Limit,
	)
	if err != nil {
		return nil, err
	}
	return collectMembersWithPlan(rows)
}

func collectMembersWithPlan(rows *sql.Rows) ([]MemberWithPlan, error) {
	defer rows.Close()

	var members []MemberWithPlan
	for rows.Next() {
		var m MemberWithPlan
		if err := rows.Scan(
			&m.ID, &m.OwnerID, &m.Name, &m.Phone, &m.Email, &m.PlanID, &m.CreatedAt,
			&m.PlanName, &m.PlanDiscount,
		); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
