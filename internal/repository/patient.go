package repository

import (
	"context"

	"clinic-api/internal/domain"
)

// PatientRepository exposes persistence operations for patients.
type PatientRepository interface {
	Create(ctx context.Context, patient *domain.Patient) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Patient, error)
	List(ctx context.Context, filter domain.PatientFilter) ([]domain.Patient, error)
	Update(ctx context.Context, patient *domain.Patient) error
	// Delete removes the patient together with its consultations.
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
	AverageAge(ctx context.Context) (float64, error)
	CreatedPerDay(ctx context.Context) ([]domain.DailyPoint, error)
}
