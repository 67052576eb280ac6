package scheduling

import (
	"time"

	"github.com/clinic/clinic/internal/platform/validation"
)

// AppointmentCreate is the payload accepted by POST /appointments.
// DateTime is ISO-8601; values without an offset are read as UTC.
// Description may be empty but not missing.
type AppointmentCreate struct {
	PatientID   int64   `json:"patient_id" validate:"required,gt=0"`
	DoctorID    int64   `json:"doctor_id" validate:"required,gt=0"`
	DateTime    string  `json:"date_time" validate:"required,iso8601"`
	Description *string `json:"description" validate:"required"`
}

func (in AppointmentCreate) When() (time.Time, error) {
	return validation.ParseDateTime(in.DateTime)
}

type AppointmentResponse struct {
	ID          int64     `json:"id"`
	PatientID   int64     `json:"patient_id"`
	DoctorID    int64     `json:"doctor_id"`
	DateTime    time.Time `json:"date_time"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewAppointmentResponse(a *Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:          a.ID,
		PatientID:   a.PatientID,
		DoctorID:    a.DoctorID,
		DateTime:    a.DateTime,
		Description: a.Description,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func NewAppointmentResponses(items []*Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(items))
	for _, a := range items {
		out = append(out, NewAppointmentResponse(a))
	}
	return out
}
