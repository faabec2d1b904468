package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/kelibin/secretaria/internal/app/models"
	"github.com/kelibin/secretaria/internal/app/repositories"
	"github.com/kelibin/secretaria/internal/pkg/apperrors"
)

// SubjectRepository implements repositories.SubjectRepository
type SubjectRepository struct {
	base
}

// FindOrCreate inserts the subject or, when the name is taken, returns the existing row.
// The no-op DO UPDATE makes RETURNING yield the conflicting row in one statement.
func (r *SubjectRepository) FindOrCreate(ctx context.Context, name string) (*models.Subject, error) {
	const op = "find or create subject"
	subject := &models.Subject{Name: name}
	if err := repositories.Validate(op, subject); err != nil {
		return nil, err
	}

	sql, args, err := r.sb.Insert("subjects").
		Columns("name").
		Values(name).
		Suffix("ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name RETURNING id::text").
		ToSql()
	if err != nil {
		return nil, apperrors.NewStoreError(op, fmt.Errorf("failed to build query: %w", err))
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&subject.ID); err != nil {
		return nil, classify(op, err)
	}
	return subject, nil
}

// GetByID returns a subject
func (r *SubjectRepository) GetByID(ctx context.Context, id string) (*models.Subject, error) {
	const op = "get subject"
	if !validID(id) {
		return nil, apperrors.NewNotFoundError(op)
	}

	sql, args, err := r.sb.Select("id::text", "name").From("subjects").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, apperrors.NewStoreError(op, fmt.Errorf("failed to build query: %w", err))
	}

	subject := &models.Subject{}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&subject.ID, &subject.Name); err != nil {
		return nil, classify(op, err)
	}
	return subject, nil
}

// Count returns the number of stored subjects
func (r *SubjectRepository) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.base, "subjects")
}
