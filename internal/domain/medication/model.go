package medication

import "time"

// Prescription is a medication order for a patient.
type Prescription struct {
	ID               int64     `db:"id" json:"id"`
	PatientID        int64     `db:"patient_id" json:"patient_id"`
	Medication       string    `db:"medication" json:"medication"`
	Dosage           string    `db:"dosage" json:"dosage"`
	Instructions     string    `db:"instructions" json:"instructions"`
	RefillsRemaining int       `db:"refills_remaining" json:"refills_remaining"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}
