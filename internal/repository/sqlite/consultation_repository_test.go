package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-api/internal/domain"
	"clinic-api/internal/repository"
)

func TestConsultationRepository_CRUD(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()
	p := mustCreatePatient(t, store, "A", "A", "2000-01-01", 20)

	c := &domain.Consultation{PatientID: p.ID, Date: "2024-05-01", Reason: "cough", Diagnosis: "flu"}
	id, err := store.Consultations.Create(ctx, c)
	require.NoError(t, err)

	got, err := store.Consultations.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "flu", got.Diagnosis)

	got.Treatment = "rest"
	require.NoError(t, store.Consultations.Update(ctx, got))

	again, err := store.Consultations.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "rest", again.Treatment)

	require.NoError(t, store.Consultations.Delete(ctx, id))
	assert.ErrorIs(t, store.Consultations.Delete(ctx, id), repository.ErrNotFound)
}

func TestConsultationRepository_Constraints(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()
	p := mustCreatePatient(t, store, "A", "A", "2000-01-01", 20)

	_, err := store.Consultations.Create(ctx, &domain.Consultation{PatientID: p.ID, Date: "2024-05-01"})
	require.NoError(t, err)

	_, err = store.Consultations.Create(ctx, &domain.Consultation{PatientID: p.ID, Date: "2024-05-01"})
	assert.ErrorIs(t, err, repository.ErrConflict)

	_, err = store.Consultations.Create(ctx, &domain.Consultation{PatientID: p.ID + 100, Date: "2024-05-01"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestConsultationRepository_SearchAndAggregates(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()
	p1 := mustCreatePatient(t, store, "A", "A", "2000-01-01", 20)
	p2 := mustCreatePatient(t, store, "B", "B", "2000-01-02", 20)

	for _, c := range []domain.Consultation{
		{PatientID: p1.ID, Date: "2024-05-01", Reason: "headache"},
		{PatientID: p2.ID, Date: "2024-05-01", Diagnosis: "migraine"},
		{PatientID: p1.ID, Date: "2024-06-10", Treatment: "ibuprofen"},
	} {
		c := c
		_, err := store.Consultations.Create(ctx, &c)
		require.NoError(t, err)
	}

	found, err := store.Consultations.List(ctx, "migraine")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, p2.ID, found[0].PatientID)

	all, err := store.Consultations.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := store.Consultations.ListByPatient(ctx, p1.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	count, err := store.Consultations.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	months, err := store.Consultations.CountMonths(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, months)

	points, err := store.Consultations.PerDay(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.DailyPoint{
		{Timestamp: "2024-05-01", Value: 2},
		{Timestamp: "2024-06-10", Value: 1},
	}, points)
}
