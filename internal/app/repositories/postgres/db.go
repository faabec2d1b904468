// Package postgres implements the repositories on PostgreSQL with pgx and squirrel.
package postgres

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kelibin/secretaria/internal/app/repositories"
	"github.com/kelibin/secretaria/internal/pkg/apperrors"
	"github.com/kelibin/secretaria/internal/pkg/dberrors"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// base carries the pool and the dollar-placeholder statement builder
type base struct {
	db querier
	sb squirrel.StatementBuilderType
}

func newBase(db querier) base {
	return base{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// NewRepositories wires every PostgreSQL repository over one pool
func NewRepositories(pool *pgxpool.Pool) *repositories.Repositories {
	return &repositories.Repositories{
		Students:    &StudentRepository{base: newBase(pool)},
		Subjects:    &SubjectRepository{base: newBase(pool)},
		Enrollments: &EnrollmentRepository{base: newBase(pool)},
		Accounts:    &AccountRepository{base: newBase(pool)},
	}
}

// constraint name => domain field
var uniqueConstraints = map[string]string{
	"students_registration_number_key": repositories.FieldRegistrationNumber,
	"subjects_name_key":                repositories.FieldSubjectName,
	"accounts_email_key":               repositories.FieldEmail,
}

// classify maps a pgx error onto the store error kinds
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if dberrors.IsPgNoRows(err) {
		return apperrors.NewNotFoundError(op)
	}
	if constraint, ok := dberrors.PgDuplicateConstraint(err); ok {
		return apperrors.NewDuplicateKeyError(op, uniqueConstraints[constraint], err)
	}
	return apperrors.NewStoreError(op, err)
}

// validID reports whether id can be compared against a UUID column
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// nullableID turns an empty or malformed exclusion id into SQL NULL
func nullableID(id string) interface{} {
	if !validID(id) {
		return nil
	}
	return id
}
