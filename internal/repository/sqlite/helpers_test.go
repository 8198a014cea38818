package sqlite

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"clinic-api/internal/domain"
	"clinic-api/internal/repository"
)

func setupTestStore(t *testing.T) (repository.Store, *sql.DB) {
	t.Helper()

	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(context.Background(), db))
	return NewStore(db), db
}

func mustCreatePatient(t *testing.T, store repository.Store, first, last, birth string, age int) *domain.Patient {
	t.Helper()
	p := &domain.Patient{FirstName: first, LastName: last, BirthDate: birth, Age: age}
	_, err := store.Patients.Create(context.Background(), p)
	require.NoError(t, err)
	return p
}
