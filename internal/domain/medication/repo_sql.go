package medication

import (
	"context"
	"database/sql"
	"errors"

	"github.com/clinic/clinic/internal/platform/apperror"
	"github.com/clinic/clinic/internal/platform/db"
)

type prescriptionRepoSQL struct{ db *db.DB }

func NewPrescriptionRepoSQL(database *db.DB) PrescriptionRepository {
	return &prescriptionRepoSQL{db: database}
}

func (r *prescriptionRepoSQL) conn(ctx context.Context) db.Querier {
	return db.Pick(ctx, r.db)
}

const rxCols = `id, patient_id, medication, dosage, instructions, refills_remaining, created_at, updated_at`

func (r *prescriptionRepoSQL) scanRx(row db.RowScanner) (*Prescription, error) {
	var p Prescription
	err := row.Scan(&p.ID, &p.PatientID, &p.Medication, &p.Dosage, &p.Instructions,
		&p.RefillsRemaining, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

func (r *prescriptionRepoSQL) Create(ctx context.Context, p *Prescription) error {
	err := r.conn(ctx).QueryRowContext(ctx, `
		INSERT INTO prescriptions (patient_id, medication, dosage, instructions, refills_remaining,
			created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id`,
		p.PatientID, p.Medication, p.Dosage, p.Instructions, p.RefillsRemaining,
		p.CreatedAt, p.UpdatedAt).Scan(&p.ID)
	return db.Translate(err)
}

func (r *prescriptionRepoSQL) GetByID(ctx context.Context, id int64) (*Prescription, error) {
	p, err := r.scanRx(r.conn(ctx).QueryRowContext(ctx, `SELECT `+rxCols+` FROM prescriptions WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("prescription", id)
	}
	if err != nil {
		return nil, db.Translate(err)
	}
	return p, nil
}

func (r *prescriptionRepoSQL) List(ctx context.Context) ([]*Prescription, error) {
	return r.query(ctx, `SELECT `+rxCols+` FROM prescriptions ORDER BY id`)
}

func (r *prescriptionRepoSQL) ListByPatient(ctx context.Context, patientID int64) ([]*Prescription, error) {
	return r.query(ctx, `SELECT `+rxCols+` FROM prescriptions WHERE patient_id = $1 ORDER BY id`, patientID)
}

func (r *prescriptionRepoSQL) query(ctx context.Context, query string, args ...any) ([]*Prescription, error) {
	rows, err := r.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, db.Translate(err)
	}
	defer rows.Close()

	items := []*Prescription{}
	for rows.Next() {
		p, err := r.scanRx(rows)
		if err != nil {
			return nil, db.Translate(err)
		}
		items = append(items, p)
	}
	return items, db.Translate(rows.Err())
}
