package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/kelibin/secretaria/internal/app/models"
	"github.com/kelibin/secretaria/internal/app/repositories"
	"github.com/kelibin/secretaria/internal/pkg/apperrors"
)

// EnrollmentRepository implements repositories.EnrollmentRepository
type EnrollmentRepository struct {
	base
}

func (r *EnrollmentRepository) selectEnrollments() squirrel.SelectBuilder {
	return r.sb.Select("e.id::text", "e.student_id::text", "e.subject_id::text", "e.status", "d.id::text", "d.name").
		From("enrollments e").
		Join("subjects d ON d.id = e.subject_id")
}

func scanEnrollment(row pgx.Row) (*models.Enrollment, error) {
	e := &models.Enrollment{Subject: &models.Subject{}}
	var status string
	if err := row.Scan(&e.ID, &e.StudentID, &e.SubjectID, &status, &e.Subject.ID, &e.Subject.Name); err != nil {
		return nil, err
	}
	e.Status = models.EnrollmentStatus(status)
	return e, nil
}

// Create inserts an enrollment
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	const op = "create enrollment"
	if err := repositories.Validate(op, enrollment); err != nil {
		return err
	}
	if !validID(enrollment.StudentID) || !validID(enrollment.SubjectID) {
		return apperrors.NewValidationError(op, []string{"referência de matrícula inválida"})
	}

	sql, args, err := r.sb.Insert("enrollments").
		Columns("student_id", "subject_id", "status").
		Values(enrollment.StudentID, enrollment.SubjectID, string(enrollment.Status)).
		Suffix("RETURNING id::text").
		ToSql()
	if err != nil {
		return apperrors.NewStoreError(op, fmt.Errorf("failed to build query: %w", err))
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&enrollment.ID); err != nil {
		return classify(op, err)
	}
	return nil
}

// GetByID returns an enrollment with its subject
func (r *EnrollmentRepository) GetByID(ctx context.Context, id string) (*models.Enrollment, error) {
	const op = "get enrollment"
	if !validID(id) {
		return nil, apperrors.NewNotFoundError(op)
	}

	sql, args, err := r.selectEnrollments().Where(squirrel.Eq{"e.id": id}).ToSql()
	if err != nil {
		return nil, apperrors.NewStoreError(op, fmt.Errorf("failed to build query: %w", err))
	}

	e, err := scanEnrollment(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, classify(op, err)
	}
	return e, nil
}

// ListByStudent returns the student's enrollments in insertion order
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]*models.Enrollment, error) {
	const op = "list enrollments"
	enrollments := []*models.Enrollment{}
	if !validID(studentID) {
		return enrollments, nil
	}

	sql, args, err := r.selectEnrollments().
		Where(squirrel.Eq{"e.student_id": studentID}).
		OrderBy("e.created_at ASC", "e.id ASC").
		ToSql()
	if err != nil {
		return nil, apperrors.NewStoreError(op, fmt.Errorf("failed to build query: %w", err))
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, classify(op, err)
		}
		enrollments = append(enrollments, e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return enrollments, nil
}

// UpdateStatus swaps the status only when the stored one equals expected
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id string, expected, next models.EnrollmentStatus) error {
	const op = "update enrollment status"
	if !validID(id) {
		return apperrors.NewNotFoundError(op)
	}

	sql, args, err := r.sb.Update("enrollments").
		Set("status", string(next)).
		Where(squirrel.Eq{"id": id, "status": string(expected)}).
		ToSql()
	if err != nil {
		return apperrors.NewStoreError(op, fmt.Errorf("failed to build query: %w", err))
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return classify(op, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// Nothing changed: either the row is gone or its status moved on
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return apperrors.ErrInvalidTransition
}

// Count returns the number of stored enrollments
func (r *EnrollmentRepository) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.base, "enrollments")
}
