package medication

import (
	"context"
	"time"

	"github.com/clinic/clinic/internal/platform/apperror"
	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/internal/platform/validation"
)

type Service struct {
	tx            db.Transactor
	prescriptions PrescriptionRepository
	users         UserChecker
}

func NewService(tx db.Transactor, prescriptions PrescriptionRepository, users UserChecker) *Service {
	return &Service{tx: tx, prescriptions: prescriptions, users: users}
}

func (s *Service) CreatePrescription(ctx context.Context, in PrescriptionCreate) (*Prescription, error) {
	err := validation.Missing(map[string]any{
		"medication":        in.Medication,
		"dosage":            in.Dosage,
		"instructions":      in.Instructions,
		"refills_remaining": in.RefillsRemaining,
	})
	if err != nil {
		return nil, err
	}
	if *in.RefillsRemaining < 0 {
		return nil, apperror.Validation("refills_remaining", "must be greater than or equal to 0")
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	p := &Prescription{
		PatientID:        in.PatientID,
		Medication:       *in.Medication,
		Dosage:           *in.Dosage,
		Instructions:     *in.Instructions,
		RefillsRemaining: *in.RefillsRemaining,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.requireUser(ctx, "patient", p.PatientID); err != nil {
			return err
		}
		return s.prescriptions.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) requireUser(ctx context.Context, role string, id int64) error {
	ok, err := s.users.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NotFound(role, id)
	}
	return nil
}

func (s *Service) GetPrescription(ctx context.Context, id int64) (*Prescription, error) {
	var p *Prescription
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.prescriptions.GetByID(ctx, id)
		return err
	})
	return p, err
}

func (s *Service) ListPrescriptions(ctx context.Context) ([]*Prescription, error) {
	var items []*Prescription
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		items, err = s.prescriptions.List(ctx)
		return err
	})
	return items, err
}

func (s *Service) ListPatientPrescriptions(ctx context.Context, patientID int64) ([]*Prescription, error) {
	var items []*Prescription
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.requireUser(ctx, "user", patientID); err != nil {
			return err
		}
		var err error
		items, err = s.prescriptions.ListByPatient(ctx, patientID)
		return err
	})
	return items, err
}
