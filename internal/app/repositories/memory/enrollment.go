package memory

import (
	"context"

	"github.com/kelibin/secretaria/internal/app/models"
	"github.com/kelibin/secretaria/internal/app/repositories"
	"github.com/kelibin/secretaria/internal/pkg/apperrors"
)

// EnrollmentRepository implements repositories.EnrollmentRepository
type EnrollmentRepository struct {
	db *DB
}

// Create inserts an enrollment
func (r *EnrollmentRepository) Create(_ context.Context, enrollment *models.Enrollment) error {
	if err := repositories.Validate("create enrollment", enrollment); err != nil {
		return err
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	row := *enrollment
	row.ID = newID()
	row.Subject = nil
	r.db.enrollments.insert(row.ID, &row)
	enrollment.ID = row.ID
	return nil
}

// GetByID returns an enrollment with its subject
func (r *EnrollmentRepository) GetByID(_ context.Context, id string) (*models.Enrollment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	row, ok := r.db.enrollments.rows[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("get enrollment")
	}
	return r.resolve(row), nil
}

// ListByStudent returns the student's enrollments in insertion order
func (r *EnrollmentRepository) ListByStudent(_ context.Context, studentID string) ([]*models.Enrollment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	enrollments := []*models.Enrollment{}
	r.db.enrollments.each(func(e *models.Enrollment) bool {
		if e.StudentID == studentID {
			enrollments = append(enrollments, r.resolve(e))
		}
		return true
	})
	return enrollments, nil
}

// UpdateStatus compares the stored status with expected and swaps in next
func (r *EnrollmentRepository) UpdateStatus(_ context.Context, id string, expected, next models.EnrollmentStatus) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	row, ok := r.db.enrollments.rows[id]
	if !ok {
		return apperrors.NewNotFoundError("update enrollment status")
	}
	if row.Status != expected {
		return apperrors.ErrInvalidTransition
	}
	row.Status = next
	return nil
}

// Count returns the number of stored enrollments
func (r *EnrollmentRepository) Count(_ context.Context) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return int64(len(r.db.enrollments.rows)), nil
}

func (r *EnrollmentRepository) resolve(row *models.Enrollment) *models.Enrollment {
	e := *row
	if subject, ok := r.db.subjects.rows[row.SubjectID]; ok {
		sub := *subject
		e.Subject = &sub
	}
	return &e
}
