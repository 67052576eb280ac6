package scheduling

import (
	"context"
	"time"

	"github.com/clinic/clinic/internal/platform/apperror"
	"github.com/clinic/clinic/internal/platform/db"
)

type Service struct {
	tx    db.Transactor
	appts AppointmentRepository
	users UserChecker
}

func NewService(tx db.Transactor, appts AppointmentRepository, users UserChecker) *Service {
	return &Service{tx: tx, appts: appts, users: users}
}

// CreateAppointment stores an appointment after checking that both the
// patient and the doctor exist. A missing user fails with NotFound before
// anything is written.
func (s *Service) CreateAppointment(ctx context.Context, in AppointmentCreate) (*Appointment, error) {
	if in.Description == nil {
		return nil, apperror.Validation("description", "field required")
	}
	when, err := in.When()
	if err != nil {
		return nil, apperror.Validation("date_time", "invalid datetime format")
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	a := &Appointment{
		PatientID:   in.PatientID,
		DoctorID:    in.DoctorID,
		DateTime:    when.Truncate(time.Microsecond),
		Description: *in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.requireUser(ctx, "patient", a.PatientID); err != nil {
			return err
		}
		if err := s.requireUser(ctx, "doctor", a.DoctorID); err != nil {
			return err
		}
		return s.appts.Create(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
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

func (s *Service) GetAppointment(ctx context.Context, id int64) (*Appointment, error) {
	var a *Appointment
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		a, err = s.appts.GetByID(ctx, id)
		return err
	})
	return a, err
}

func (s *Service) ListAppointments(ctx context.Context) ([]*Appointment, error) {
	var items []*Appointment
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		items, err = s.appts.List(ctx)
		return err
	})
	return items, err
}

// ListPatientAppointments returns the appointments booked for a user, or
// NotFound when the user does not exist.
func (s *Service) ListPatientAppointments(ctx context.Context, patientID int64) ([]*Appointment, error) {
	var items []*Appointment
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.requireUser(ctx, "user", patientID); err != nil {
			return err
		}
		var err error
		items, err = s.appts.ListByPatient(ctx, patientID)
		return err
	})
	return items, err
}
