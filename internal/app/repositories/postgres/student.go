package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/kelibin/secretaria/internal/app/models"
	"github.com/kelibin/secretaria/internal/app/repositories"
	"github.com/kelibin/secretaria/internal/pkg/apperrors"
	"github.com/kelibin/secretaria/internal/pkg/logger"
)

// StudentRepository implements repositories.StudentRepository
type StudentRepository struct {
	base
}

var studentColumns = []string{
	"s.id::text", "s.registration_number", "s.name", "s.subject_id::text", "d.id::text", "d.name",
}

func (r *StudentRepository) selectStudents() squirrel.SelectBuilder {
	return r.sb.Select(studentColumns...).
		From("students s").
		Join("subjects d ON d.id = s.subject_id")
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	s := &models.Student{Subject: &models.Subject{}}
	if err := row.Scan(&s.ID, &s.RegistrationNumber, &s.Name, &s.SubjectID, &s.Subject.ID, &s.Subject.Name); err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a student
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	const op = "create student"
	if err := repositories.Validate(op, student); err != nil {
		return err
	}
	if !validID(student.SubjectID) {
		return apperrors.NewValidationError(op, []string{"disciplina é inválida"})
	}

	sql, args, err := r.sb.Insert("students").
		Columns("registration_number", "name", "subject_id").
		Values(student.RegistrationNumber, student.Name, student.SubjectID).
		Suffix("RETURNING id::text").
		ToSql()
	if err != nil {
		return apperrors.NewStoreError(op, fmt.Errorf("failed to build query: %w", err))
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&student.ID); err != nil {
		logger.Error().Err(err).Str("registrationNumber", student.RegistrationNumber).Msg("Error executing create student query")
		return classify(op, err)
	}
	return nil
}

// GetByID returns the student with its subject
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*models.Student, error) {
	const op = "get student"
	if !validID(id) {
		return nil, apperrors.NewNotFoundError(op)
	}

	sql, args, err := r.selectStudents().Where(squirrel.Eq{"s.id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, apperrors.NewStoreError(op, fmt.Errorf("failed to build query: %w", err))
	}

	student, err := scanStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, classify(op, err)
	}
	return student, nil
}

// FindByRegistrationNumber returns the student holding number other than excludeID
func (r *StudentRepository) FindByRegistrationNumber(ctx context.Context, number, excludeID string) (*models.Student, error) {
	const op = "find student by registration number"

	q := r.selectStudents().Where(squirrel.Eq{"s.registration_number": number})
	if id := nullableID(excludeID); id != nil {
		q = q.Where(squirrel.NotEq{"s.id": id})
	}
	sql, args, err := q.Limit(1).ToSql()
	if err != nil {
		return nil, apperrors.NewStoreError(op, fmt.Errorf("failed to build query: %w", err))
	}

	student, err := scanStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, classify(op, err)
	}
	return student, nil
}

// List returns students in insertion order, optionally filtered by name
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]*models.Student, error) {
	const op = "list students"

	q := r.selectStudents()
	if filter.NameContains != "" {
		q = q.Where(squirrel.ILike{"s.name": "%" + escapeLike(filter.NameContains) + "%"})
	}
	sql, args, err := q.OrderBy("s.created_at ASC", "s.id ASC").ToSql()
	if err != nil {
		return nil, apperrors.NewStoreError(op, fmt.Errorf("failed to build query: %w", err))
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list students query")
		return nil, classify(op, err)
	}
	defer rows.Close()

	students := []*models.Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, classify(op, err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return students, nil
}

// Update replaces the stored fields of an existing student
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	const op = "update student"
	if err := repositories.Validate(op, student); err != nil {
		return err
	}
	if !validID(student.ID) {
		return apperrors.NewNotFoundError(op)
	}

	sql, args, err := r.sb.Update("students").
		SetMap(map[string]interface{}{
			"registration_number": student.RegistrationNumber,
			"name":                student.Name,
			"subject_id":          student.SubjectID,
		}).
		Where(squirrel.Eq{"id": student.ID}).
		ToSql()
	if err != nil {
		return apperrors.NewStoreError(op, fmt.Errorf("failed to build query: %w", err))
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return classify(op, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(op)
	}
	return nil
}

// Delete removes the student; enrollments go with it through ON DELETE CASCADE
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	const op = "delete student"
	if !validID(id) {
		return apperrors.NewNotFoundError(op)
	}

	sql, args, err := r.sb.Delete("students").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return apperrors.NewStoreError(op, fmt.Errorf("failed to build query: %w", err))
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return classify(op, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(op)
	}
	return nil
}

// Count returns the number of stored students
func (r *StudentRepository) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.base, "students")
}

func count(ctx context.Context, b base, table string) (int64, error) {
	sql, args, err := b.sb.Select("COUNT(*)").From(table).ToSql()
	if err != nil {
		return 0, apperrors.NewStoreError("count "+table, err)
	}
	var n int64
	if err := b.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, classify("count "+table, err)
	}
	return n, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes term match literally inside a LIKE pattern
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
