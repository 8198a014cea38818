package memory

import (
	"context"
	"fmt"

	"clinic-api/internal/domain"
	"clinic-api/internal/repository"
)

// DemoUsername is the account seeded into the demo store.
const DemoUsername = "demo"

// NewDemoStore returns a store seeded with canned practice data. The demo
// account logs in with the password that produced passwordHash.
func NewDemoStore(ctx context.Context, passwordHash string) (repository.Store, error) {
	store := NewStore()

	if _, err := store.Users.Create(ctx, &domain.User{
		Username:     DemoUsername,
		Email:        "demo@clinic.local",
		FirstName:    "Demo",
		LastName:     "Doctor",
		PasswordHash: passwordHash,
	}); err != nil {
		return repository.Store{}, fmt.Errorf("seed demo user: %w", err)
	}

	patients := []domain.Patient{
		{FirstName: "Lucia", LastName: "Fernandez", BirthDate: "1986-02-14", Age: 38, Gender: "F", Phone: "555-0134"},
		{FirstName: "Mateo", LastName: "Garcia", BirthDate: "1972-11-03", Age: 52, Gender: "M", Phone: "555-0178"},
		{FirstName: "Sofia", LastName: "Martinez", BirthDate: "2010-07-21", Age: 14, Gender: "F", Phone: "555-0112"},
	}
	for i := range patients {
		if _, err := store.Patients.Create(ctx, &patients[i]); err != nil {
			return repository.Store{}, fmt.Errorf("seed demo patient: %w", err)
		}
	}

	consultations := []domain.Consultation{
		{PatientID: patients[0].ID, Date: "2024-09-02", Reason: "Persistent cough", Diagnosis: "Bronchitis", Treatment: "Amoxicillin 500mg"},
		{PatientID: patients[1].ID, Date: "2024-09-02", Reason: "Routine checkup", Diagnosis: "Hypertension", Treatment: "Losartan 50mg"},
		{PatientID: patients[2].ID, Date: "2024-10-11", Reason: "Fever", Diagnosis: "Influenza", Treatment: "Rest and fluids"},
		{PatientID: patients[1].ID, Date: "2024-10-15", Reason: "Blood pressure follow-up", Diagnosis: "Hypertension", Treatment: "Continue Losartan"},
	}
	for i := range consultations {
		if _, err := store.Consultations.Create(ctx, &consultations[i]); err != nil {
			return repository.Store{}, fmt.Errorf("seed demo consultation: %w", err)
		}
	}

	return store, nil
}
