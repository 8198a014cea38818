package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"clinic-api/internal/domain"
	"clinic-api/internal/repository"
)

const patientColumns = `id, first_name, last_name, birth_date, age, gender, phone, email, address, created_at, updated_at`

type PatientRepository struct {
	db *sql.DB
}

func NewPatientRepository(db *sql.DB) repository.PatientRepository {
	return &PatientRepository{db: db}
}

func (r *PatientRepository) Create(ctx context.Context, patient *domain.Patient) (int64, error) {
	now := time.Now().UTC()
	patient.CreatedAt = now
	patient.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO patients (first_name, last_name, birth_date, age, gender, phone, email, address, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		patient.FirstName,
		patient.LastName,
		patient.BirthDate,
		patient.Age,
		patient.Gender,
		patient.Phone,
		patient.Email,
		patient.Address,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("insert patient: %w", repository.ErrConflict)
		}
		return 0, fmt.Errorf("insert patient: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("patient last insert id: %w", err)
	}
	patient.ID = id
	return id, nil
}

func (r *PatientRepository) Get(ctx context.Context, id int64) (*domain.Patient, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+patientColumns+` FROM patients WHERE id = ?`, id)
	return scanPatient(row)
}

func (r *PatientRepository) List(ctx context.Context, filter domain.PatientFilter) ([]domain.Patient, error) {
	var (
		query strings.Builder
		args  []any
	)
	query.WriteString(`SELECT ` + patientColumns + ` FROM patients`)
	if search := strings.TrimSpace(filter.Search); search != "" {
		query.WriteString(`
WHERE first_name LIKE '%' || ? || '%'
	OR last_name LIKE '%' || ? || '%'
	OR birth_date LIKE '%' || ? || '%'`)
		args = append(args, search, search, search)
	}
	query.WriteString(` ORDER BY first_name ASC, id ASC`)
	if filter.Limit > 0 {
		query.WriteString(` LIMIT ?`)
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query patients: %w", err)
	}
	defer rows.Close()

	patients := []domain.Patient{}
	for rows.Next() {
		patient, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, *patient)
	}
	return patients, rows.Err()
}

func (r *PatientRepository) Update(ctx context.Context, patient *domain.Patient) error {
	patient.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
UPDATE patients
SET first_name=?, last_name=?, birth_date=?, age=?, gender=?, phone=?, email=?, address=?, updated_at=?
WHERE id=?`,
		patient.FirstName,
		patient.LastName,
		patient.BirthDate,
		patient.Age,
		patient.Gender,
		patient.Phone,
		patient.Email,
		patient.Address,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update patient: %w", repository.ErrConflict)
		}
		return fmt.Errorf("update patient: %w", err)
	}
	return notFoundUnlessAffected(res, "update patient")
}

func (r *PatientRepository) Delete(ctx context.Context, id int64) error {
	// consultations go with the patient through ON DELETE CASCADE
	res, err := r.db.ExecContext(ctx, `DELETE FROM patients WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	return notFoundUnlessAffected(res, "delete patient")
}

func (r *PatientRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM patients`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count patients: %w", err)
	}
	return count, nil
}

func (r *PatientRepository) AverageAge(ctx context.Context) (float64, error) {
	var avg sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, `SELECT AVG(age) FROM patients`).Scan(&avg); err != nil {
		return 0, fmt.Errorf("average patient age: %w", err)
	}
	return avg.Float64, nil
}

func (r *PatientRepository) CreatedPerDay(ctx context.Context) ([]domain.DailyPoint, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT created_at FROM patients ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("query patient creation dates: %w", err)
	}
	defer rows.Close()

	var stamps []time.Time
	for rows.Next() {
		var createdAt time.Time
		if err := rows.Scan(&createdAt); err != nil {
			return nil, fmt.Errorf("scan patient creation date: %w", err)
		}
		stamps = append(stamps, createdAt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bucketByDay(stamps), nil
}

// bucketByDay counts timestamps per UTC calendar day, keeping first-seen order.
func bucketByDay(stamps []time.Time) []domain.DailyPoint {
	points := []domain.DailyPoint{}
	index := make(map[string]int)
	for _, ts := range stamps {
		day := ts.UTC().Format(time.DateOnly)
		if i, ok := index[day]; ok {
			points[i].Value++
			continue
		}
		index[day] = len(points)
		points = append(points, domain.DailyPoint{Timestamp: day, Value: 1})
	}
	return points
}

func scanPatient(row scanner) (*domain.Patient, error) {
	var patient domain.Patient
	if err := row.Scan(
		&patient.ID,
		&patient.FirstName,
		&patient.LastName,
		&patient.BirthDate,
		&patient.Age,
		&patient.Gender,
		&patient.Phone,
		&patient.Email,
		&patient.Address,
		&patient.CreatedAt,
		&patient.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("patient: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan patient: %w", err)
	}
	return &patient, nil
}
