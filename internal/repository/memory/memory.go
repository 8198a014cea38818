// Package memory holds map backed repositories. They serve demo mode and
// stand in for sqlite in service and handler tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"clinic-api/internal/domain"
	"clinic-api/internal/repository"
)

type db struct {
	mu            sync.RWMutex
	users         map[int64]domain.User
	patients      map[int64]domain.Patient
	consultations map[int64]domain.Consultation
	nextUser      int64
	nextPatient   int64
	nextConsult   int64
}

// NewStore returns empty repositories sharing one in-memory database.
func NewStore() repository.Store {
	d := &db{
		users:         make(map[int64]domain.User),
		patients:      make(map[int64]domain.Patient),
		consultations: make(map[int64]domain.Consultation),
	}
	return repository.Store{
		Users:         &userRepository{db: d},
		Patients:      &patientRepository{db: d},
		Consultations: &consultationRepository{db: d},
	}
}

type userRepository struct{ db *db }

func (r *userRepository) Create(_ context.Context, user *domain.User) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.db.userTaken(0, user.Username, user.Email) {
		return 0, fmt.Errorf("insert user: %w", repository.ErrConflict)
	}
	r.db.nextUser++
	now := time.Now().UTC()
	user.ID = r.db.nextUser
	user.CreatedAt = now
	user.UpdatedAt = now
	r.db.users[user.ID] = *user
	return user.ID, nil
}

func (r *userRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	user, ok := r.db.users[id]
	if !ok {
		return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Username == username })
}

func (r *userRepository) find(match func(domain.User) bool) (*domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.db.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
}

func (r *userRepository) List(_ context.Context) ([]domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	users := make([]domain.User, 0, len(r.db.users))
	for _, u := range r.db.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *userRepository) Update(_ context.Context, user *domain.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[user.ID]; !ok {
		return fmt.Errorf("update user: %w", repository.ErrNotFound)
	}
	if r.db.userTaken(user.ID, user.Username, user.Email) {
		return fmt.Errorf("update user: %w", repository.ErrConflict)
	}
	user.UpdatedAt = time.Now().UTC()
	r.db.users[user.ID] = *user
	return nil
}

func (r *userRepository) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[id]; !ok {
		return fmt.Errorf("delete user: %w", repository.ErrNotFound)
	}
	delete(r.db.users, id)
	return nil
}

// userTaken reports whether another user already owns username or email.
func (d *db) userTaken(self int64, username, email string) bool {
	for id, u := range d.users {
		if id == self {
			continue
		}
		if u.Username == username || u.Email == email {
			return true
		}
	}
	return false
}

type patientRepository struct{ db *db }

func (r *patientRepository) Create(_ context.Context, patient *domain.Patient) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.db.patientTaken(0, patient) {
		return 0, fmt.Errorf("insert patient: %w", repository.ErrConflict)
	}
	r.db.nextPatient++
	now := time.Now().UTC()
	patient.ID = r.db.nextPatient
	patient.CreatedAt = now
	patient.UpdatedAt = now
	r.db.patients[patient.ID] = *patient
	return patient.ID, nil
}

func (r *patientRepository) Get(_ context.Context, id int64) (*domain.Patient, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	patient, ok := r.db.patients[id]
	if !ok {
		return nil, fmt.Errorf("patient: %w", repository.ErrNotFound)
	}
	return &patient, nil
}

func (r *patientRepository) List(_ context.Context, filter domain.PatientFilter) ([]domain.Patient, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	patients := []domain.Patient{}
	for _, p := range r.db.patients {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.FirstName), search) &&
			!strings.Contains(strings.ToLower(p.LastName), search) &&
			!strings.Contains(p.BirthDate, search) {
			continue
		}
		patients = append(patients, p)
	}
	sort.Slice(patients, func(i, j int) bool {
		if patients[i].FirstName != patients[j].FirstName {
			return patients[i].FirstName < patients[j].FirstName
		}
		return patients[i].ID < patients[j].ID
	})
	if filter.Limit > 0 && len(patients) > filter.Limit {
		patients = patients[:filter.Limit]
	}
	return patients, nil
}

func (r *patientRepository) Update(_ context.Context, patient *domain.Patient) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	current, ok := r.db.patients[patient.ID]
	if !ok {
		return fmt.Errorf("update patient: %w", repository.ErrNotFound)
	}
	if r.db.patientTaken(patient.ID, patient) {
		return fmt.Errorf("update patient: %w", repository.ErrConflict)
	}
	patient.CreatedAt = current.CreatedAt
	patient.UpdatedAt = time.Now().UTC()
	r.db.patients[patient.ID] = *patient
	return nil
}

func (r *patientRepository) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.patients[id]; !ok {
		return fmt.Errorf("delete patient: %w", repository.ErrNotFound)
	}
	delete(r.db.patients, id)
	for cid, c := range r.db.consultations {
		if c.PatientID == id {
			delete(r.db.consultations, cid)
		}
	}
	return nil
}

func (r *patientRepository) Count(_ context.Context) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return len(r.db.patients), nil
}

func (r *patientRepository) AverageAge(_ context.Context) (float64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	if len(r.db.patients) == 0 {
		return 0, nil
	}
	var total int
	for _, p := range r.db.patients {
		total += p.Age
	}
	return float64(total) / float64(len(r.db.patients)), nil
}

func (r *patientRepository) CreatedPerDay(_ context.Context) ([]domain.DailyPoint, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	days := make(map[string]int)
	for _, p := range r.db.patients {
		days[p.CreatedAt.UTC().Format(time.DateOnly)]++
	}
	return sortedPoints(days), nil
}

func (d *db) patientTaken(self int64, patient *domain.Patient) bool {
	for id, p := range d.patients {
		if id == self {
			continue
		}
		if p.FirstName == patient.FirstName && p.LastName == patient.LastName && p.BirthDate == patient.BirthDate {
			return true
		}
	}
	return false
}

type consultationRepository struct{ db *db }

func (r *consultationRepository) Create(_ context.Context, c *domain.Consultation) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.patients[c.PatientID]; !ok {
		return 0, fmt.Errorf("insert consultation patient: %w", repository.ErrNotFound)
	}
	if r.db.consultationTaken(0, c) {
		return 0, fmt.Errorf("insert consultation: %w", repository.ErrConflict)
	}
	r.db.nextConsult++
	now := time.Now().UTC()
	c.ID = r.db.nextConsult
	c.CreatedAt = now
	c.UpdatedAt = now
	r.db.consultations[c.ID] = *c
	return c.ID, nil
}

func (r *consultationRepository) Get(_ context.Context, id int64) (*domain.Consultation, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	c, ok := r.db.consultations[id]
	if !ok {
		return nil, fmt.Errorf("consultation: %w", repository.ErrNotFound)
	}
	return &c, nil
}

func (r *consultationRepository) List(_ context.Context, search string) ([]domain.Consultation, error) {
	search = strings.ToLower(strings.TrimSpace(search))
	return r.filter(func(c domain.Consultation) bool {
		if search == "" {
			return true
		}
		return strings.Contains(strings.ToLower(c.Reason), search) ||
			strings.Contains(strings.ToLower(c.Diagnosis), search) ||
			strings.Contains(strings.ToLower(c.Treatment), search)
	}), nil
}

func (r *consultationRepository) ListByPatient(_ context.Context, patientID int64) ([]domain.Consultation, error) {
	return r.filter(func(c domain.Consultation) bool { return c.PatientID == patientID }), nil
}

func (r *consultationRepository) filter(keep func(domain.Consultation) bool) []domain.Consultation {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := []domain.Consultation{}
	for _, c := range r.db.consultations {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *consultationRepository) Update(_ context.Context, c *domain.Consultation) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	current, ok := r.db.consultations[c.ID]
	if !ok {
		return fmt.Errorf("update consultation: %w", repository.ErrNotFound)
	}
	if _, ok := r.db.patients[c.PatientID]; !ok {
		return fmt.Errorf("update consultation patient: %w", repository.ErrNotFound)
	}
	if r.db.consultationTaken(c.ID, c) {
		return fmt.Errorf("update consultation: %w", repository.ErrConflict)
	}
	c.CreatedAt = current.CreatedAt
	c.UpdatedAt = time.Now().UTC()
	r.db.consultations[c.ID] = *c
	return nil
}

func (r *consultationRepository) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.consultations[id]; !ok {
		return fmt.Errorf("delete consultation: %w", repository.ErrNotFound)
	}
	delete(r.db.consultations, id)
	return nil
}

func (r *consultationRepository) Count(_ context.Context) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return len(r.db.consultations), nil
}

func (r *consultationRepository) CountMonths(_ context.Context) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	months := make(map[string]struct{})
	for _, c := range r.db.consultations {
		if len(c.Date) >= 7 {
			months[c.Date[:7]] = struct{}{}
		}
	}
	return len(months), nil
}

func (r *consultationRepository) PerDay(_ context.Context) ([]domain.DailyPoint, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	days := make(map[string]int)
	for _, c := range r.db.consultations {
		days[c.Date]++
	}
	return sortedPoints(days), nil
}

func (d *db) consultationTaken(self int64, c *domain.Consultation) bool {
	for id, other := range d.consultations {
		if id != self && other.PatientID == c.PatientID && other.Date == c.Date {
			return true
		}
	}
	return false
}

func sortedPoints(days map[string]int) []domain.DailyPoint {
	points := make([]domain.DailyPoint, 0, len(days))
	for day, n := range days {
		points = append(points, domain.DailyPoint{Timestamp: day, Value: n})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Timestamp < points[j].Timestamp })
	return points
}
