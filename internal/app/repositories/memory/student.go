package memory

import (
	"context"
	"strings"

	"github.com/kelibin/secretaria/internal/app/models"
	"github.com/kelibin/secretaria/internal/app/repositories"
	"github.com/kelibin/secretaria/internal/pkg/apperrors"
)

// StudentRepository implements repositories.StudentRepository
type StudentRepository struct {
	db *DB
}

// Create inserts a student, enforcing the unique registration number
func (r *StudentRepository) Create(_ context.Context, student *models.Student) error {
	const op = "create student"
	if err := repositories.Validate(op, student); err != nil {
		return err
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.registrationTaken(student.RegistrationNumber, "") {
		return apperrors.NewDuplicateKeyError(op, repositories.FieldRegistrationNumber, nil)
	}

	row := *student
	row.ID = newID()
	row.Subject = nil
	r.db.students.insert(row.ID, &row)
	student.ID = row.ID
	return nil
}

// GetByID returns the student with its subject
func (r *StudentRepository) GetByID(_ context.Context, id string) (*models.Student, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	row, ok := r.db.students.rows[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("get student")
	}
	return r.resolve(row), nil
}

// FindByRegistrationNumber returns the student holding number other than excludeID
func (r *StudentRepository) FindByRegistrationNumber(_ context.Context, number, excludeID string) (*models.Student, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var found *models.Student
	r.db.students.each(func(s *models.Student) bool {
		if s.RegistrationNumber == number && s.ID != excludeID {
			found = r.resolve(s)
			return false
		}
		return true
	})
	if found == nil {
		return nil, apperrors.NewNotFoundError("find student by registration number")
	}
	return found, nil
}

// List returns students in insertion order, optionally filtered by name
func (r *StudentRepository) List(_ context.Context, filter models.StudentFilter) ([]*models.Student, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	needle := strings.ToLower(filter.NameContains)
	students := []*models.Student{}
	r.db.students.each(func(s *models.Student) bool {
		if needle == "" || strings.Contains(strings.ToLower(s.Name), needle) {
			students = append(students, r.resolve(s))
		}
		return true
	})
	return students, nil
}

// Update replaces the stored fields of an existing student
func (r *StudentRepository) Update(_ context.Context, student *models.Student) error {
	const op = "update student"
	if err := repositories.Validate(op, student); err != nil {
		return err
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	row, ok := r.db.students.rows[student.ID]
	if !ok {
		return apperrors.NewNotFoundError(op)
	}
	if r.registrationTaken(student.RegistrationNumber, student.ID) {
		return apperrors.NewDuplicateKeyError(op, repositories.FieldRegistrationNumber, nil)
	}

	row.RegistrationNumber = student.RegistrationNumber
	row.Name = student.Name
	row.SubjectID = student.SubjectID
	return nil
}

// Delete removes the student and its enrollments
func (r *StudentRepository) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if !r.db.students.remove(id) {
		return apperrors.NewNotFoundError("delete student")
	}

	var orphaned []string
	r.db.enrollments.each(func(e *models.Enrollment) bool {
		if e.StudentID == id {
			orphaned = append(orphaned, e.ID)
		}
		return true
	})
	for _, eid := range orphaned {
		r.db.enrollments.remove(eid)
	}
	return nil
}

// Count returns the number of stored students
func (r *StudentRepository) Count(_ context.Context) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return int64(len(r.db.students.rows)), nil
}

// registrationTaken must be called with the lock held
func (r *StudentRepository) registrationTaken(number, excludeID string) bool {
	taken := false
	r.db.students.each(func(s *models.Student) bool {
		if s.RegistrationNumber == number && s.ID != excludeID {
			taken = true
			return false
		}
		return true
	})
	return taken
}

// resolve copies row and attaches its subject; must be called with the lock held
func (r *StudentRepository) resolve(row *models.Student) *models.Student {
	s := *row
	if subject, ok := r.db.subjects.rows[row.SubjectID]; ok {
		sub := *subject
		s.Subject = &sub
	}
	return &s
}
