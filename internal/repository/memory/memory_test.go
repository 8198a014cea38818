package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-api/internal/domain"
	"clinic-api/internal/repository"
)

func TestUserRepository_Uniqueness(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	_, err := store.Users.Create(ctx, &domain.User{Username: "a", Email: "a@x.com"})
	require.NoError(t, err)

	_, err = store.Users.Create(ctx, &domain.User{Username: "b", Email: "a@x.com"})
	assert.ErrorIs(t, err, repository.ErrConflict)

	b := &domain.User{Username: "b", Email: "b@x.com"}
	_, err = store.Users.Create(ctx, b)
	require.NoError(t, err)

	b.Username = "a"
	assert.ErrorIs(t, store.Users.Update(ctx, b), repository.ErrConflict)
}

func TestUserRepository_ReturnsCopies(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	u := &domain.User{Username: "a", Email: "a@x.com"}
	_, err := store.Users.Create(ctx, u)
	require.NoError(t, err)

	got, err := store.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	got.Username = "mutated"

	again, err := store.Users.GetByUsername(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)
}

func TestPatientRepository_DeleteRemovesConsultations(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	p := &domain.Patient{FirstName: "A", LastName: "B", BirthDate: "2000-01-01"}
	_, err := store.Patients.Create(ctx, p)
	require.NoError(t, err)

	_, err = store.Consultations.Create(ctx, &domain.Consultation{PatientID: p.ID, Date: "2024-01-01"})
	require.NoError(t, err)

	require.NoError(t, store.Patients.Delete(ctx, p.ID))

	count, err := store.Consultations.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestConsultationRepository_RequiresPatient(t *testing.T) {
	store := NewStore()

	_, err := store.Consultations.Create(context.Background(), &domain.Consultation{PatientID: 9, Date: "2024-01-01"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestNewDemoStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewDemoStore(ctx, "hash")
	require.NoError(t, err)

	user, err := store.Users.GetByUsername(ctx, DemoUsername)
	require.NoError(t, err)
	assert.Equal(t, "hash", user.PasswordHash)

	patients, err := store.Patients.List(ctx, domain.PatientFilter{})
	require.NoError(t, err)
	require.Len(t, patients, 3)
	assert.Equal(t, "Lucia", patients[0].FirstName)

	avg, err := store.Patients.AverageAge(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 34.67, avg, 0.01)

	months, err := store.Consultations.CountMonths(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, months)

	points, err := store.Consultations.PerDay(ctx)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, domain.DailyPoint{Timestamp: "2024-09-02", Value: 2}, points[0])

	hypertension, err := store.Consultations.List(ctx, "hypertension")
	require.NoError(t, err)
	assert.Len(t, hypertension, 2)
}
