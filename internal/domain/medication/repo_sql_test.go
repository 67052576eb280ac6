package medication

import (
	"context"
	"testing"
	"time"

	"github.com/clinic/clinic/internal/domain/identity"
	"github.com/clinic/clinic/internal/platform/apperror"
	"github.com/clinic/clinic/internal/platform/db/dbtest"
)

func TestPrescriptionRepoSQL(t *testing.T) {
	database := dbtest.Open(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	users := identity.NewUserRepoSQL(database)
	if err := users.Create(ctx, &identity.User{
		Username: "alice", HashedPassword: "hash", Email: "alice@example.com",
		FirstName: "Alice", LastName: "L", IsActive: true, CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	repo := NewPrescriptionRepoSQL(database)
	p := &Prescription{
		PatientID: 1, Medication: "Ibuprofen", Dosage: "200mg", Instructions: "with food",
		RefillsRemaining: 0, CreatedAt: now, UpdatedAt: now,
	}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	got, err := repo.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if got.RefillsRemaining != 0 || got.Medication != "Ibuprofen" || !got.CreatedAt.Equal(now) {
		t.Errorf("unexpected prescription: %+v", got)
	}

	mine, _ := repo.ListByPatient(ctx, 1)
	if len(mine) != 1 {
		t.Errorf("expected 1 prescription for patient, got %d", len(mine))
	}
	none, _ := repo.ListByPatient(ctx, 2)
	if none == nil || len(none) != 0 {
		t.Errorf("expected empty non-nil list, got %v", none)
	}

	bad := *p
	bad.RefillsRemaining = -1
	if err := repo.Create(ctx, &bad); !apperror.IsConflict(err, apperror.CheckViolation) {
		t.Errorf("expected check violation, got %v", err)
	}

	orphan := *p
	orphan.PatientID = 999
	if err := repo.Create(ctx, &orphan); !apperror.IsConflict(err, apperror.ForeignKeyViolation) {
		t.Errorf("expected foreign key violation, got %v", err)
	}
	if n := dbtest.Count(t, database, "prescriptions"); n != 1 {
		t.Errorf("expected 1 prescription, got %d", n)
	}
}
