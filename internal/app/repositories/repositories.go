package repositories

import (
	"context"

	"github.com/kelibin/secretaria/internal/app/models"
	"github.com/kelibin/secretaria/internal/pkg/apperrors"
	"github.com/kelibin/secretaria/internal/pkg/validation"
)

// Domain fields reported by duplicate-key errors
const (
	FieldRegistrationNumber = "registrationNumber"
	FieldSubjectName        = "subjectName"
	FieldEmail              = "email"
)

// StudentRepository persists students. Reads resolve the student's Subject.
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id string) (*models.Student, error)
	// FindByRegistrationNumber returns the student holding number, ignoring excludeID when set
	FindByRegistrationNumber(ctx context.Context, number, excludeID string) (*models.Student, error)
	List(ctx context.Context, filter models.StudentFilter) ([]*models.Student, error)
	Update(ctx context.Context, student *models.Student) error
	// Delete removes the student and its enrollments
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// SubjectRepository persists subjects
type SubjectRepository interface {
	// FindOrCreate atomically returns the subject named name, inserting it if absent
	FindOrCreate(ctx context.Context, name string) (*models.Subject, error)
	GetByID(ctx context.Context, id string) (*models.Subject, error)
	Count(ctx context.Context) (int64, error)
}

// EnrollmentRepository persists enrollments
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	GetByID(ctx context.Context, id string) (*models.Enrollment, error)
	// ListByStudent returns the student's enrollments with their Subject resolved
	ListByStudent(ctx context.Context, studentID string) ([]*models.Enrollment, error)
	// UpdateStatus moves the enrollment from expected to next. It fails with
	// apperrors.ErrInvalidTransition when the stored status is not expected.
	UpdateStatus(ctx context.Context, id string, expected, next models.EnrollmentStatus) error
	Count(ctx context.Context) (int64, error)
}

// AccountRepository persists accounts
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	// ListExcept returns every account but excludeID, without password hashes
	ListExcept(ctx context.Context, excludeID string) ([]models.AccountSummary, error)
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, id string) error
}

// Repositories holds all the repository instances of one driver
type Repositories struct {
	Students    StudentRepository
	Subjects    SubjectRepository
	Enrollments EnrollmentRepository
	Accounts    AccountRepository
}

// Validate runs the schema-level checks every driver applies before a write
func Validate(op string, record interface{}) error {
	details, err := validation.Default().Struct(record)
	if err != nil {
		return apperrors.NewStoreError(op, err)
	}
	if len(details) > 0 {
		return apperrors.NewValidationError(op, details)
	}
	return nil
}
