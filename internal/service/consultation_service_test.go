package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-api/internal/domain"
	"clinic-api/internal/repository"
	"clinic-api/internal/repository/memory"
)

func newTestConsultationService(t *testing.T) (ConsultationService, repository.Store, *domain.Patient) {
	t.Helper()
	store := memory.NewStore()
	p := &domain.Patient{FirstName: "F", LastName: "L", BirthDate: "2000-01-01"}
	_, err := store.Patients.Create(context.Background(), p)
	require.NoError(t, err)
	return NewConsultationService(store.Consultations, store.Patients), store, p
}

func TestConsultationService_Create(t *testing.T) {
	svc, _, p := newTestConsultationService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, &domain.Consultation{PatientID: p.ID, Date: "2024-05-01", Reason: " cough "})
	require.NoError(t, err)
	assert.Equal(t, "cough", c.Reason)

	_, err = svc.Create(ctx, &domain.Consultation{PatientID: p.ID, Date: "2024-05-01"})
	assert.ErrorIs(t, err, ErrConsultationAlreadyExists)

	_, err = svc.Create(ctx, &domain.Consultation{PatientID: p.ID + 1, Date: "2024-05-02"})
	assert.ErrorIs(t, err, ErrPatientNotFound)

	_, err = svc.Create(ctx, &domain.Consultation{PatientID: p.ID, Date: "May 1st"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, &domain.Consultation{Date: "2024-05-02"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestConsultationService_UpdateKeepsPatient(t *testing.T) {
	svc, _, p := newTestConsultationService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, &domain.Consultation{PatientID: p.ID, Date: "2024-05-01"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, &domain.Consultation{ID: c.ID, Date: "2024-05-03", Diagnosis: "flu"})
	require.NoError(t, err)
	assert.Equal(t, p.ID, updated.PatientID)
	assert.Equal(t, "flu", updated.Diagnosis)

	_, err = svc.Update(ctx, &domain.Consultation{ID: c.ID, PatientID: p.ID + 5, Date: "2024-05-03"})
	assert.ErrorIs(t, err, ErrPatientNotFound)

	_, err = svc.Update(ctx, &domain.Consultation{ID: 999, PatientID: p.ID, Date: "2024-05-03"})
	assert.ErrorIs(t, err, ErrConsultationNotFound)
}

func TestConsultationService_ListAndDelete(t *testing.T) {
	svc, _, p := newTestConsultationService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, &domain.Consultation{PatientID: p.ID, Date: "2024-05-01", Treatment: "rest"})
	require.NoError(t, err)

	found, err := svc.List(ctx, "rest")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	mine, err := svc.ListByPatient(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = svc.ListByPatient(ctx, p.ID+1)
	assert.ErrorIs(t, err, ErrPatientNotFound)

	deleted, err := svc.Delete(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, deleted.ID)

	_, err = svc.Get(ctx, c.ID)
	assert.ErrorIs(t, err, ErrConsultationNotFound)
	_, err = svc.Delete(ctx, c.ID)
	assert.ErrorIs(t, err, ErrConsultationNotFound)
}

func TestConsultationService_Aggregates(t *testing.T) {
	svc, _, p := newTestConsultationService(t)
	ctx := context.Background()

	avg, err := svc.AveragePerMonth(ctx)
	require.NoError(t, err)
	assert.Zero(t, avg)

	for _, date := range []string{"2024-05-01", "2024-05-20", "2024-05-21", "2024-07-02"} {
		_, err := svc.Create(ctx, &domain.Consultation{PatientID: p.ID, Date: date})
		require.NoError(t, err)
	}

	count, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	avg, err = svc.AveragePerMonth(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, avg, 0.001)

	points, err := svc.PerDay(ctx)
	require.NoError(t, err)
	assert.Len(t, points, 4)
}
