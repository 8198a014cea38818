package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clinic-api/internal/domain"
	"clinic-api/internal/repository"
)

// ConsultationService coordinates consultation records and their aggregates.
type ConsultationService interface {
	List(ctx context.Context, search string) ([]domain.Consultation, error)
	Get(ctx context.Context, id int64) (*domain.Consultation, error)
	ListByPatient(ctx context.Context, patientID int64) ([]domain.Consultation, error)
	Create(ctx context.Context, c *domain.Consultation) (*domain.Consultation, error)
	Update(ctx context.Context, c *domain.Consultation) (*domain.Consultation, error)
	Delete(ctx context.Context, id int64) (*domain.Consultation, error)
	Count(ctx context.Context) (int, error)
	AveragePerMonth(ctx context.Context) (float64, error)
	PerDay(ctx context.Context) ([]domain.DailyPoint, error)
}

type consultationService struct {
	consultations repository.ConsultationRepository
	patients      repository.PatientRepository
}

func NewConsultationService(consultations repository.ConsultationRepository, patients repository.PatientRepository) ConsultationService {
	return &consultationService{
		consultations: consultations,
		patients:      patients,
	}
}

func (s *consultationService) List(ctx context.Context, search string) ([]domain.Consultation, error) {
	return s.consultations.List(ctx, search)
}

func (s *consultationService) Get(ctx context.Context, id int64) (*domain.Consultation, error) {
	c, err := s.consultations.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrConsultationNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *consultationService) ListByPatient(ctx context.Context, patientID int64) ([]domain.Consultation, error) {
	if err := s.requirePatient(ctx, patientID); err != nil {
		return nil, err
	}
	return s.consultations.ListByPatient(ctx, patientID)
}

func (s *consultationService) Create(ctx context.Context, c *domain.Consultation) (*domain.Consultation, error) {
	if err := normalizeConsultation(c); err != nil {
		return nil, err
	}
	if err := s.requirePatient(ctx, c.PatientID); err != nil {
		return nil, err
	}

	if _, err := s.consultations.Create(ctx, c); err != nil {
		return nil, consultationWriteError(err, ErrPatientNotFound)
	}
	return c, nil
}

func (s *consultationService) Update(ctx context.Context, c *domain.Consultation) (*domain.Consultation, error) {
	current, err := s.Get(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if c.PatientID == 0 {
		c.PatientID = current.PatientID
	}
	if err := normalizeConsultation(c); err != nil {
		return nil, err
	}
	if c.PatientID != current.PatientID {
		if err := s.requirePatient(ctx, c.PatientID); err != nil {
			return nil, err
		}
	}
	c.CreatedAt = current.CreatedAt

	if err := s.consultations.Update(ctx, c); err != nil {
		return nil, consultationWriteError(err, ErrConsultationNotFound)
	}
	return c, nil
}

func (s *consultationService) Delete(ctx context.Context, id int64) (*domain.Consultation, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.consultations.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrConsultationNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *consultationService) Count(ctx context.Context) (int, error) {
	return s.consultations.Count(ctx)
}

// AveragePerMonth divides the consultation total by the number of distinct
// months that have at least one consultation.
func (s *consultationService) AveragePerMonth(ctx context.Context) (float64, error) {
	total, err := s.consultations.Count(ctx)
	if err != nil {
		return 0, err
	}
	months, err := s.consultations.CountMonths(ctx)
	if err != nil {
		return 0, err
	}
	if months == 0 {
		return 0, nil
	}
	return float64(total) / float64(months), nil
}

func (s *consultationService) PerDay(ctx context.Context) ([]domain.DailyPoint, error) {
	return s.consultations.PerDay(ctx)
}

func (s *consultationService) requirePatient(ctx context.Context, patientID int64) error {
	if _, err := s.patients.Get(ctx, patientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPatientNotFound
		}
		return err
	}
	return nil
}

func normalizeConsultation(c *domain.Consultation) error {
	c.Date = strings.TrimSpace(c.Date)
	c.Reason = strings.TrimSpace(c.Reason)
	c.Diagnosis = strings.TrimSpace(c.Diagnosis)
	c.Treatment = strings.TrimSpace(c.Treatment)
	c.Notes = strings.TrimSpace(c.Notes)

	if c.PatientID <= 0 {
		return fmt.Errorf("%w: patient id is required", ErrValidation)
	}
	if c.Date == "" {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}
	if _, err := time.Parse(time.DateOnly, c.Date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	return nil
}

func consultationWriteError(err, notFound error) error {
	switch {
	case errors.Is(err, repository.ErrConflict):
		return ErrConsultationAlreadyExists
	case errors.Is(err, repository.ErrNotFound):
		return notFound
	}
	return err
}
