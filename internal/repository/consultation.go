package repository

import (
	"context"

	"clinic-api/internal/domain"
)

// ConsultationRepository exposes persistence operations for consultations.
type ConsultationRepository interface {
	Create(ctx context.Context, consultation *domain.Consultation) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Consultation, error)
	List(ctx context.Context, search string) ([]domain.Consultation, error)
	ListByPatient(ctx context.Context, patientID int64) ([]domain.Consultation, error)
	Update(ctx context.Context, consultation *domain.Consultation) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
	CountMonths(ctx context.Context) (int, error)
	PerDay(ctx context.Context) ([]domain.DailyPoint, error)
}

// Store bundles the repositories the application runs on. Implementations
// are chosen once at startup.
type Store struct {
	Users         UserRepository
	Patients      PatientRepository
	Consultations ConsultationRepository
}
