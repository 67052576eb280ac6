package identity

import (
	"context"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/clinic/clinic/internal/platform/apperror"
)

// -- Mock User Repository --

type mockUserRepo struct {
	users  map[int64]*User
	nextID int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return apperror.Conflict(apperror.UniqueViolation, "username already exists", nil)
		}
		if existing.Email == u.Email {
			return apperror.Conflict(apperror.UniqueViolation, "email already exists", nil)
		}
	}
	m.nextID++
	u.ID = m.nextID
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return u, nil
}

func (m *mockUserRepo) List(_ context.Context) ([]*User, error) {
	result := []*User{}
	for id := int64(1); id <= m.nextID; id++ {
		if u, ok := m.users[id]; ok {
			result = append(result, u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := m.users[id]
	return ok, nil
}

type noTx struct{}

func (noTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService() *Service {
	hasher, _ := NewHasher(4)
	return NewService(noTx{}, newMockUserRepo(), hasher)
}

func str(s string) *string { return &s }

func aliceCreate() UserCreate {
	return UserCreate{
		Username:  str("alice"),
		Password:  str("s3cret"),
		Email:     "alice@example.com",
		FirstName: str("Alice"),
		LastName:  str("Liddell"),
	}
}

func TestCreateUser(t *testing.T) {
	svc := newTestService()
	u, err := svc.CreateUser(context.Background(), aliceCreate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != 1 {
		t.Errorf("expected id 1, got %d", u.ID)
	}
	if u.HashedPassword == "" || u.HashedPassword == "s3cret" {
		t.Error("expected password to be stored hashed")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte("s3cret")) != nil {
		t.Error("expected hash to verify")
	}
	if !u.IsActive || u.IsStaff {
		t.Errorf("expected active non-staff defaults, got active=%v staff=%v", u.IsActive, u.IsStaff)
	}
	if !u.CreatedAt.Equal(u.UpdatedAt) {
		t.Errorf("expected created_at == updated_at, got %s / %s", u.CreatedAt, u.UpdatedAt)
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	svc := newTestService()
	if _, err := svc.CreateUser(context.Background(), aliceCreate()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dup := aliceCreate()
	dup.Email = "other@example.com"
	_, err := svc.CreateUser(context.Background(), dup)
	if !apperror.IsConflict(err, apperror.UniqueViolation) {
		t.Fatalf("expected unique conflict, got %v", err)
	}
	users, _ := svc.ListUsers(context.Background())
	if len(users) != 1 {
		t.Errorf("expected 1 user after rejected duplicate, got %d", len(users))
	}
}

func TestCreateUser_PasswordTooLong(t *testing.T) {
	svc := newTestService()
	in := aliceCreate()
	in.Password = str(strings.Repeat("p", 73))
	if _, err := svc.CreateUser(context.Background(), in); !apperror.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestGetUser(t *testing.T) {
	svc := newTestService()
	created, _ := svc.CreateUser(context.Background(), aliceCreate())

	got, err := svc.GetUser(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Username != "alice" {
		t.Errorf("expected alice, got %s", got.Username)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	svc := newTestService()
	if _, err := svc.GetUser(context.Background(), 999); !apperror.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestListUsers_Empty(t *testing.T) {
	svc := newTestService()
	users, err := svc.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if users == nil || len(users) != 0 {
		t.Errorf("expected empty non-nil list, got %v", users)
	}
}

func TestExists(t *testing.T) {
	svc := newTestService()
	created, _ := svc.CreateUser(context.Background(), aliceCreate())

	if ok, _ := svc.Exists(context.Background(), created.ID); !ok {
		t.Error("expected user to exist")
	}
	if ok, _ := svc.Exists(context.Background(), 42); ok {
		t.Error("expected user 42 not to exist")
	}
}

func TestCreateUser_BlankText(t *testing.T) {
	svc := newTestService()
	in := UserCreate{Username: str(""), Password: str(""), Email: "blank@example.com", FirstName: str(""), LastName: str("")}
	u, err := svc.CreateUser(context.Background(), in)
	if err != nil {
		t.Fatalf("empty strings must be accepted: %v", err)
	}
	if u.Username != "" || u.FirstName != "" || u.LastName != "" {
		t.Errorf("unexpected user: %+v", u)
	}
}

func TestCreateUser_MissingText(t *testing.T) {
	svc := newTestService()
	in := aliceCreate()
	in.FirstName = nil
	if _, err := svc.CreateUser(context.Background(), in); !apperror.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCreateUser_MultibytePasswordTooLong(t *testing.T) {
	svc := newTestService()
	in := aliceCreate()
	// 40 runes, 80 bytes.
	in.Password = str(strings.Repeat("é", 40))
	_, err := svc.CreateUser(context.Background(), in)
	if !apperror.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}
