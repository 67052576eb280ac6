package identity

import (
	"context"
	"time"

	"github.com/clinic/clinic/internal/platform/apperror"
	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/internal/platform/validation"
)

type Service struct {
	tx     db.Transactor
	users  UserRepository
	hasher *Hasher
}

func NewService(tx db.Transactor, users UserRepository, hasher *Hasher) *Service {
	return &Service{tx: tx, users: users, hasher: hasher}
}

// CreateUser hashes the password and stores a new active, non-staff user.
// Duplicate usernames or emails fail with a unique-violation conflict.
func (s *Service) CreateUser(ctx context.Context, in UserCreate) (*User, error) {
	err := validation.Missing(map[string]any{
		"username":   in.Username,
		"password":   in.Password,
		"first_name": in.FirstName,
		"last_name":  in.LastName,
	})
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(*in.Password)
	if err != nil {
		if isTooLong(err) {
			return nil, apperror.Validation("password", "must be at most 72 bytes")
		}
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	u := &User{
		Username:       *in.Username,
		HashedPassword: hash,
		Email:          in.Email,
		FirstName:      *in.FirstName,
		LastName:       *in.LastName,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		return s.users.Create(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	var u *User
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		u, err = s.users.GetByID(ctx, id)
		return err
	})
	return u, err
}

func (s *Service) ListUsers(ctx context.Context) ([]*User, error) {
	var users []*User
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		users, err = s.users.List(ctx)
		return err
	})
	return users, err
}

// Exists reports whether a user with id is stored. Other domains use it to
// check references before inserting.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	return s.users.Exists(ctx, id)
}
