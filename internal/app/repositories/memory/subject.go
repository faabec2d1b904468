package memory

import (
	"context"

	"github.com/kelibin/secretaria/internal/app/models"
	"github.com/kelibin/secretaria/internal/app/repositories"
	"github.com/kelibin/secretaria/internal/pkg/apperrors"
)

// SubjectRepository implements repositories.SubjectRepository
type SubjectRepository struct {
	db *DB
}

// FindOrCreate returns the subject named name, inserting it under the write lock if absent
func (r *SubjectRepository) FindOrCreate(_ context.Context, name string) (*models.Subject, error) {
	candidate := &models.Subject{Name: name}
	if err := repositories.Validate("find or create subject", candidate); err != nil {
		return nil, err
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var found *models.Subject
	r.db.subjects.each(func(s *models.Subject) bool {
		if s.Name == name {
			found = s
			return false
		}
		return true
	})
	if found != nil {
		sub := *found
		return &sub, nil
	}

	candidate.ID = newID()
	row := *candidate
	r.db.subjects.insert(row.ID, &row)
	return candidate, nil
}

// GetByID returns a subject
func (r *SubjectRepository) GetByID(_ context.Context, id string) (*models.Subject, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	row, ok := r.db.subjects.rows[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("get subject")
	}
	sub := *row
	return &sub, nil
}

// Count returns the number of stored subjects
func (r *SubjectRepository) Count(_ context.Context) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return int64(len(r.db.subjects.rows)), nil
}
