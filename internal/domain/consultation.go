package domain

import "time"

// Consultation records a single visit of a patient. At most one consultation
// exists per patient and date.
type Consultation struct {
	ID        int64
	PatientID int64
	Date      string
	Reason    string
	Diagnosis string
	Treatment string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
