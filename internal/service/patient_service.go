package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"clinic-api/internal/domain"
	"clinic-api/internal/repository"
)

// AttachmentRemover drops every stored document of a patient.
type AttachmentRemover interface {
	DeleteForPatient(ctx context.Context, patientID int64) error
}

// PatientService coordinates patient records and their aggregates.
type PatientService interface {
	List(ctx context.Context, filter domain.PatientFilter) ([]domain.Patient, error)
	Get(ctx context.Context, id int64) (*domain.Patient, error)
	Create(ctx context.Context, patient *domain.Patient) (*domain.Patient, error)
	Update(ctx context.Context, patient *domain.Patient) (*domain.Patient, error)
	Delete(ctx context.Context, id int64) (*domain.Patient, error)
	Count(ctx context.Context) (int, error)
	AverageAge(ctx context.Context) (float64, error)
	CreatedPerDay(ctx context.Context) ([]domain.DailyPoint, error)
}

type patientService struct {
	patients    repository.PatientRepository
	attachments AttachmentRemover
	logger      *logrus.Logger
	now         func() time.Time
}

// NewPatientService builds the patient service. attachments may be nil when
// object storage is not configured.
func NewPatientService(patients repository.PatientRepository, attachments AttachmentRemover, logger *logrus.Logger) PatientService {
	if logger == nil {
		logger = logrus.New()
	}
	return &patientService{
		patients:    patients,
		attachments: attachments,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *patientService) List(ctx context.Context, filter domain.PatientFilter) ([]domain.Patient, error) {
	if filter.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", ErrValidation)
	}
	return s.patients.List(ctx, filter)
}

func (s *patientService) Get(ctx context.Context, id int64) (*domain.Patient, error) {
	patient, err := s.patients.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return patient, nil
}

func (s *patientService) Create(ctx context.Context, patient *domain.Patient) (*domain.Patient, error) {
	if err := s.normalize(patient); err != nil {
		return nil, err
	}
	if _, err := s.patients.Create(ctx, patient); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrPatientAlreadyExists
		}
		return nil, err
	}
	return patient, nil
}

func (s *patientService) Update(ctx context.Context, patient *domain.Patient) (*domain.Patient, error) {
	current, err := s.Get(ctx, patient.ID)
	if err != nil {
		return nil, err
	}
	if err := s.normalize(patient); err != nil {
		return nil, err
	}
	patient.CreatedAt = current.CreatedAt

	if err := s.patients.Update(ctx, patient); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return nil, ErrPatientAlreadyExists
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return patient, nil
}

func (s *patientService) Delete(ctx context.Context, id int64) (*domain.Patient, error) {
	patient, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.patients.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	if s.attachments != nil {
		if err := s.attachments.DeleteForPatient(ctx, id); err != nil {
			s.logger.WithError(err).WithField("patient_id", id).Warn("remove patient attachments")
		}
	}
	return patient, nil
}

func (s *patientService) Count(ctx context.Context) (int, error) {
	return s.patients.Count(ctx)
}

func (s *patientService) AverageAge(ctx context.Context) (float64, error) {
	return s.patients.AverageAge(ctx)
}

func (s *patientService) CreatedPerDay(ctx context.Context) ([]domain.DailyPoint, error) {
	return s.patients.CreatedPerDay(ctx)
}

// normalize trims the patient fields, validates identity and derives the
// age from the birth date when none was given.
func (s *patientService) normalize(p *domain.Patient) error {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.BirthDate = strings.TrimSpace(p.BirthDate)
	p.Gender = strings.TrimSpace(p.Gender)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Email = strings.TrimSpace(p.Email)
	p.Address = strings.TrimSpace(p.Address)

	switch {
	case p.FirstName == "":
		return fmt.Errorf("%w: first name is required", ErrValidation)
	case p.LastName == "":
		return fmt.Errorf("%w: last name is required", ErrValidation)
	case p.BirthDate == "":
		return fmt.Errorf("%w: birth date is required", ErrValidation)
	case p.Age < 0:
		return fmt.Errorf("%w: age must not be negative", ErrValidation)
	}

	born, err := time.Parse(time.DateOnly, p.BirthDate)
	if err != nil {
		return fmt.Errorf("%w: birth date must be YYYY-MM-DD", ErrValidation)
	}
	if p.Age == 0 {
		p.Age = ageAt(born, s.now())
	}
	return nil
}

func ageAt(born, now time.Time) int {
	age := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}
