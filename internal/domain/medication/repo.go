package medication

import "context"

type PrescriptionRepository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id int64) (*Prescription, error)
	List(ctx context.Context) ([]*Prescription, error)
	ListByPatient(ctx context.Context, patientID int64) ([]*Prescription, error)
}

// UserChecker reports whether a user exists.
type UserChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}
