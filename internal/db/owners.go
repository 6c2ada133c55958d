// internal/db/owners.go
package db

import (
	"context"
	"database/sql"
)

type CreateOwnerParams struct {
	Name         string
	Email        string
	PasswordHash string
	Role         string
	ClubOwnerID  sql.NullInt64
}

func (q *Queries) CreateOwner(ctx context.Context, arg CreateOwnerParams) (Owner, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO owners (name, email, password_hash, role, club_owner_id)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, name, email, password_hash, role, club_owner_id, created_at`,
		arg.Name, arg.Email, arg.PasswordHash, arg.Role, arg.ClubOwnerID,
	)
	return scanOwner(row)
}

func (q *Queries) GetOwnerByID(ctx context.Context, id int64) (Owner, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, role, club_owner_id, created_at
		FROM owners WHERE id = ?`, id,
	)
	return scanOwner(row)
}

func (q *Queries) GetOwnerByEmail(ctx context.Context, email string) (Owner, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, role, club_owner_id, created_at
		FROM owners WHERE email = ?`, email,
	)
	return scanOwner(row)
}

func (q *Queries) OwnerExists(ctx context.Context, id int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM owners WHERE id = ?`, id).Scan(&count)
	return count, err
}

func scanOwner(row *sql.Row) (Owner, error) {
	var o Owner
	err := row.Scan(&o.ID, &o.Name, &o.Email, &o.PasswordHash, &o.Role, &o.ClubOwnerID, &o.CreatedAt)
	return o, err
}
