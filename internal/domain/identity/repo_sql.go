package identity

import (
	"context"
	"database/sql"
	"errors"

	"github.com/clinic/clinic/internal/platform/apperror"
	"github.com/clinic/clinic/internal/platform/db"
)

type userRepoSQL struct{ db *db.DB }

func NewUserRepoSQL(database *db.DB) UserRepository {
	return &userRepoSQL{db: database}
}

func (r *userRepoSQL) conn(ctx context.Context) db.Querier {
	return db.Pick(ctx, r.db)
}

const userCols = `id, username, hashed_password, email, first_name, last_name,
	is_staff, is_active, created_at, updated_at`

func (r *userRepoSQL) scanUser(row db.RowScanner) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.HashedPassword, &u.Email, &u.FirstName, &u.LastName,
		&u.IsStaff, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}

func (r *userRepoSQL) Create(ctx context.Context, u *User) error {
	err := r.conn(ctx).QueryRowContext(ctx, `
		INSERT INTO users (username, hashed_password, email, first_name, last_name,
			is_staff, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id`,
		u.Username, u.HashedPassword, u.Email, u.FirstName, u.LastName,
		u.IsStaff, u.IsActive, u.CreatedAt, u.UpdatedAt).Scan(&u.ID)
	return db.Translate(err)
}

func (r *userRepoSQL) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := r.scanUser(r.conn(ctx).QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("user", id)
	}
	if err != nil {
		return nil, db.Translate(err)
	}
	return u, nil
}

func (r *userRepoSQL) List(ctx context.Context) ([]*User, error) {
	rows, err := r.conn(ctx).QueryContext(ctx, `SELECT `+userCols+` FROM users ORDER BY id`)
	if err != nil {
		return nil, db.Translate(err)
	}
	defer rows.Close()

	users := []*User{}
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, db.Translate(err)
		}
		users = append(users, u)
	}
	return users, db.Translate(rows.Err())
}

func (r *userRepoSQL) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, db.Translate(err)
	}
	return exists, nil
}
