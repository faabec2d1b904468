package models

import "github.com/kelibin/secretaria/internal/pkg/apperrors"

// EnrollmentStatus is the lifecycle state of an enrollment
type EnrollmentStatus string

const (
	EnrollmentPending   EnrollmentStatus = "Pendente"
	EnrollmentCompleted EnrollmentStatus = "Concluída"
	EnrollmentCancelled EnrollmentStatus = "Cancelada"
)

// IsTerminal reports whether no further transition is allowed
func (s EnrollmentStatus) IsTerminal() bool {
	return s == EnrollmentCompleted || s == EnrollmentCancelled
}

// CanTransitionTo reports whether s may move to next.
// Only Pending moves, and only to Completed or Cancelled.
func (s EnrollmentStatus) CanTransitionTo(next EnrollmentStatus) bool {
	return s == EnrollmentPending && next.IsTerminal()
}

// Enrollment links a student to a subject
type Enrollment struct {
	ID        string           `json:"id" db:"id"`
	StudentID string           `json:"alunoId" db:"student_id" label:"aluno" validate:"required"`
	SubjectID string           `json:"disciplinaId" db:"subject_id" label:"disciplina" validate:"required"`
	Status    EnrollmentStatus `json:"status" db:"status" label:"status" validate:"enrollment_status"`

	// Relations (populated when needed)
	Subject *Subject `json:"disciplina,omitempty" db:"-"`
}

// NewEnrollment returns a pending enrollment
func NewEnrollment(studentID, subjectID string) *Enrollment {
	return &Enrollment{
		StudentID: studentID,
		SubjectID: subjectID,
		Status:    EnrollmentPending,
	}
}

// Transition moves the enrollment to next, rejecting anything but Pending to a terminal state
func (e *Enrollment) Transition(next EnrollmentStatus) error {
	if !e.Status.CanTransitionTo(next) {
		return apperrors.ErrInvalidTransition
	}
	e.Status = next
	return nil
}
