package medication

import "time"

// PrescriptionCreate is the payload accepted by POST /prescriptions.
// Fields are pointers so that an explicit 0 or empty string is told apart
// from a missing field.
type PrescriptionCreate struct {
	PatientID        int64   `json:"patient_id" validate:"required,gt=0"`
	Medication       *string `json:"medication" validate:"required"`
	Dosage           *string `json:"dosage" validate:"required"`
	Instructions     *string `json:"instructions" validate:"required"`
	RefillsRemaining *int    `json:"refills_remaining" validate:"required,min=0"`
}

type PrescriptionResponse struct {
	ID               int64     `json:"id"`
	PatientID        int64     `json:"patient_id"`
	Medication       string    `json:"medication"`
	Dosage           string    `json:"dosage"`
	Instructions     string    `json:"instructions"`
	RefillsRemaining int       `json:"refills_remaining"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func NewPrescriptionResponse(p *Prescription) PrescriptionResponse {
	return PrescriptionResponse{
		ID:               p.ID,
		PatientID:        p.PatientID,
		Medication:       p.Medication,
		Dosage:           p.Dosage,
		Instructions:     p.Instructions,
		RefillsRemaining: p.RefillsRemaining,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func NewPrescriptionResponses(items []*Prescription) []PrescriptionResponse {
	out := make([]PrescriptionResponse, 0, len(items))
	for _, p := range items {
		out = append(out, NewPrescriptionResponse(p))
	}
	return out
}
