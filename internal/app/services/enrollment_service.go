package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kelibin/secretaria/internal/app/models"
	"github.com/kelibin/secretaria/internal/app/repositories"
)

// EnrollmentService handles enrollment listing and status transitions
type EnrollmentService struct {
	enrollments repositories.EnrollmentRepository
	log         zerolog.Logger
}

// NewEnrollmentService creates a new enrollment service instance
func NewEnrollmentService(enrollments repositories.EnrollmentRepository, log zerolog.Logger) *EnrollmentService {
	return &EnrollmentService{enrollments: enrollments, log: log}
}

// ListForStudent returns the student's enrollments with their subjects
func (s *EnrollmentService) ListForStudent(ctx context.Context, studentID string) ([]*models.Enrollment, error) {
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("error listing enrollments: %w", err)
	}
	return enrollments, nil
}

// Complete moves a pending enrollment to Concluída
func (s *EnrollmentService) Complete(ctx context.Context, id string) (*models.Enrollment, error) {
	return s.transition(ctx, id, models.EnrollmentCompleted)
}

// Cancel moves a pending enrollment to Cancelada
func (s *EnrollmentService) Cancel(ctx context.Context, id string) (*models.Enrollment, error) {
	return s.transition(ctx, id, models.EnrollmentCancelled)
}

// transition returns the loaded enrollment even when the move is rejected,
// so callers can still route back to its student
func (s *EnrollmentService) transition(ctx context.Context, id string, next models.EnrollmentStatus) (*models.Enrollment, error) {
	enrollment, err := s.enrollments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting enrollment: %w", err)
	}

	current := enrollment.Status
	if err := enrollment.Transition(next); err != nil {
		return enrollment, err
	}

	if err := s.enrollments.UpdateStatus(ctx, id, current, next); err != nil {
		enrollment.Status = current
		return enrollment, fmt.Errorf("error updating enrollment: %w", err)
	}

	s.log.Info().Str("enrollmentID", id).Str("from", string(current)).Str("to", string(next)).Msg("Enrollment status changed")
	return enrollment, nil
}
