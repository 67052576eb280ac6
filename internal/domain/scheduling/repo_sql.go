package scheduling

import (
	"context"
	"database/sql"
	"errors"

	"github.com/clinic/clinic/internal/platform/apperror"
	"github.com/clinic/clinic/internal/platform/db"
)

type appointmentRepoSQL struct{ db *db.DB }

func NewAppointmentRepoSQL(database *db.DB) AppointmentRepository {
	return &appointmentRepoSQL{db: database}
}

func (r *appointmentRepoSQL) conn(ctx context.Context) db.Querier {
	return db.Pick(ctx, r.db)
}

const apptCols = `id, patient_id, doctor_id, date_time, description, created_at, updated_at`

func (r *appointmentRepoSQL) scanAppt(row db.RowScanner) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.DateTime, &a.Description,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.DateTime = a.DateTime.UTC()
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return &a, nil
}

func (r *appointmentRepoSQL) Create(ctx context.Context, a *Appointment) error {
	err := r.conn(ctx).QueryRowContext(ctx, `
		INSERT INTO appointments (patient_id, doctor_id, date_time, description, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id`,
		a.PatientID, a.DoctorID, a.DateTime, a.Description, a.CreatedAt, a.UpdatedAt).Scan(&a.ID)
	return db.Translate(err)
}

func (r *appointmentRepoSQL) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	a, err := r.scanAppt(r.conn(ctx).QueryRowContext(ctx, `SELECT `+apptCols+` FROM appointments WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("appointment", id)
	}
	if err != nil {
		return nil, db.Translate(err)
	}
	return a, nil
}

func (r *appointmentRepoSQL) List(ctx context.Context) ([]*Appointment, error) {
	return r.query(ctx, `SELECT `+apptCols+` FROM appointments ORDER BY id`)
}

func (r *appointmentRepoSQL) ListByPatient(ctx context.Context, patientID int64) ([]*Appointment, error) {
	return r.query(ctx, `SELECT `+apptCols+` FROM appointments WHERE patient_id = $1 ORDER BY id`, patientID)
}

func (r *appointmentRepoSQL) query(ctx context.Context, query string, args ...any) ([]*Appointment, error) {
	rows, err := r.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, db.Translate(err)
	}
	defer rows.Close()

	items := []*Appointment{}
	for rows.Next() {
		a, err := r.scanAppt(rows)
		if err != nil {
			return nil, db.Translate(err)
		}
		items = append(items, a)
	}
	return items, db.Translate(rows.Err())
}
