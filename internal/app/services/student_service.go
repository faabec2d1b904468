package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kelibin/secretaria/internal/app/models"
	"github.com/kelibin/secretaria/internal/app/repositories"
	"github.com/kelibin/secretaria/internal/pkg/apperrors"
)

// StudentInput carries the student form fields
type StudentInput struct {
	RegistrationNumber string
	Name               string
	SubjectName        string
}

// StudentService handles student-related operations
type StudentService struct {
	students    repositories.StudentRepository
	subjects    repositories.SubjectRepository
	enrollments repositories.EnrollmentRepository
	log         zerolog.Logger
}

// NewStudentService creates a new student service instance
func NewStudentService(repos *repositories.Repositories, log zerolog.Logger) *StudentService {
	return &StudentService{
		students:    repos.Students,
		subjects:    repos.Subjects,
		enrollments: repos.Enrollments,
		log:         log,
	}
}

// List returns students whose name contains nameFilter, or all of them
func (s *StudentService) List(ctx context.Context, nameFilter string) ([]*models.Student, error) {
	students, err := s.students.List(ctx, models.StudentFilter{NameContains: nameFilter})
	if err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	return students, nil
}

// Get returns one student with its subject
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting student: %w", err)
	}
	return student, nil
}

// Register creates the student, provisioning its subject when new, and a
// pending enrollment linking them
func (s *StudentService) Register(ctx context.Context, input StudentInput) (*models.Student, error) {
	subject, err := s.subjects.FindOrCreate(ctx, input.SubjectName)
	if err != nil {
		return nil, fmt.Errorf("error provisioning subject: %w", err)
	}

	student := &models.Student{
		RegistrationNumber: input.RegistrationNumber,
		Name:               input.Name,
		SubjectID:          subject.ID,
		Subject:            subject,
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, fmt.Errorf("error creating student: %w", err)
	}

	if err := s.enrollments.Create(ctx, models.NewEnrollment(student.ID, subject.ID)); err != nil {
		return nil, fmt.Errorf("error creating enrollment: %w", err)
	}

	s.log.Info().Str("studentID", student.ID).Str("subject", subject.Name).Msg("Student registered")
	return student, nil
}

// Update applies input to the student. Moving to a registration number held
// by another student fails with apperrors.ErrRegistrationInUse.
func (s *StudentService) Update(ctx context.Context, id string, input StudentInput) error {
	subject, err := s.subjects.FindOrCreate(ctx, input.SubjectName)
	if err != nil {
		return fmt.Errorf("error provisioning subject: %w", err)
	}

	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("error getting student: %w", err)
	}

	if input.RegistrationNumber != student.RegistrationNumber {
		_, err := s.students.FindByRegistrationNumber(ctx, input.RegistrationNumber, student.ID)
		switch {
		case err == nil:
			return apperrors.ErrRegistrationInUse
		case !errors.Is(err, apperrors.ErrNotFound):
			return fmt.Errorf("error checking registration number: %w", err)
		}
	}

	student.RegistrationNumber = input.RegistrationNumber
	student.Name = input.Name
	student.SubjectID = subject.ID
	student.Subject = subject

	if err := s.students.Update(ctx, student); err != nil {
		return fmt.Errorf("error updating student: %w", err)
	}
	return nil
}

// Delete removes the student and its enrollments. Deleting an unknown id succeeds.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	err := s.students.Delete(ctx, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		s.log.Warn().Str("studentID", id).Msg("Delete requested for unknown student")
		return nil
	}
	if err != nil {
		return fmt.Errorf("error deleting student: %w", err)
	}
	return nil
}
