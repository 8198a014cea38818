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

const consultationColumns = `id, patient_id, date, reason, diagnosis, treatment, notes, created_at, updated_at`

type ConsultationRepository struct {
	db *sql.DB
}

func NewConsultationRepository(db *sql.DB) repository.ConsultationRepository {
	return &ConsultationRepository{db: db}
}

func (r *ConsultationRepository) Create(ctx context.Context, c *domain.Consultation) (int64, error) {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO consultations (patient_id, date, reason, diagnosis, treatment, notes, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.PatientID,
		c.Date,
		c.Reason,
		c.Diagnosis,
		c.Treatment,
		c.Notes,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return 0, fmt.Errorf("insert consultation: %w", repository.ErrConflict)
		case isForeignKeyViolation(err):
			return 0, fmt.Errorf("insert consultation patient: %w", repository.ErrNotFound)
		}
		return 0, fmt.Errorf("insert consultation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("consultation last insert id: %w", err)
	}
	c.ID = id
	return id, nil
}

func (r *ConsultationRepository) Get(ctx context.Context, id int64) (*domain.Consultation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+consultationColumns+` FROM consultations WHERE id = ?`, id)
	return scanConsultation(row)
}

func (r *ConsultationRepository) List(ctx context.Context, search string) ([]domain.Consultation, error) {
	query := `SELECT ` + consultationColumns + ` FROM consultations`
	var args []any
	if search = strings.TrimSpace(search); search != "" {
		query += `
WHERE reason LIKE '%' || ? || '%'
	OR diagnosis LIKE '%' || ? || '%'
	OR treatment LIKE '%' || ? || '%'`
		args = append(args, search, search, search)
	}
	query += ` ORDER BY created_at ASC, id ASC`
	return r.query(ctx, query, args...)
}

func (r *ConsultationRepository) ListByPatient(ctx context.Context, patientID int64) ([]domain.Consultation, error) {
	return r.query(ctx, `
SELECT `+consultationColumns+`
FROM consultations
WHERE patient_id = ?
ORDER BY created_at ASC, id ASC`, patientID)
}

func (r *ConsultationRepository) Update(ctx context.Context, c *domain.Consultation) error {
	c.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
UPDATE consultations
SET patient_id=?, date=?, reason=?, diagnosis=?, treatment=?, notes=?, updated_at=?
WHERE id=?`,
		c.PatientID,
		c.Date,
		c.Reason,
		c.Diagnosis,
		c.Treatment,
		c.Notes,
		c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return fmt.Errorf("update consultation: %w", repository.ErrConflict)
		case isForeignKeyViolation(err):
			return fmt.Errorf("update consultation patient: %w", repository.ErrNotFound)
		}
		return fmt.Errorf("update consultation: %w", err)
	}
	return notFoundUnlessAffected(res, "update consultation")
}

func (r *ConsultationRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM consultations WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete consultation: %w", err)
	}
	return notFoundUnlessAffected(res, "delete consultation")
}

func (r *ConsultationRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM consultations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count consultations: %w", err)
	}
	return count, nil
}

func (r *ConsultationRepository) CountMonths(ctx context.Context) (int, error) {
	var months int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT substr(date, 1, 7)) FROM consultations`).Scan(&months); err != nil {
		return 0, fmt.Errorf("count consultation months: %w", err)
	}
	return months, nil
}

func (r *ConsultationRepository) PerDay(ctx context.Context) ([]domain.DailyPoint, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT date, COUNT(*)
FROM consultations
GROUP BY date
ORDER BY date ASC`)
	if err != nil {
		return nil, fmt.Errorf("query consultations per day: %w", err)
	}
	defer rows.Close()

	points := []domain.DailyPoint{}
	for rows.Next() {
		var p domain.DailyPoint
		if err := rows.Scan(&p.Timestamp, &p.Value); err != nil {
			return nil, fmt.Errorf("scan consultations per day: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (r *ConsultationRepository) query(ctx context.Context, query string, args ...any) ([]domain.Consultation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query consultations: %w", err)
	}
	defer rows.Close()

	consultations := []domain.Consultation{}
	for rows.Next() {
		c, err := scanConsultation(rows)
		if err != nil {
			return nil, err
		}
		consultations = append(consultations, *c)
	}
	return consultations, rows.Err()
}

func scanConsultation(row scanner) (*domain.Consultation, error) {
	var c domain.Consultation
	if err := row.Scan(
		&c.ID,
		&c.PatientID,
		&c.Date,
		&c.Reason,
		&c.Diagnosis,
		&c.Treatment,
		&c.Notes,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("consultation: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan consultation: %w", err)
	}
	return &c, nil
}
