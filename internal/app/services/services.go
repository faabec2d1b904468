// Package services holds the business logic behind the HTTP handlers.
//
// Services defined in this package:
//   - StudentService: student registration, edits, listing and deletion
//   - EnrollmentService: enrollment listing and status transitions
//   - AccountService: account registration, login and management
package services

import (
	"github.com/rs/zerolog"

	"github.com/kelibin/secretaria/internal/app/repositories"
	"github.com/kelibin/secretaria/internal/pkg/auth"
)

// Services groups every service the router needs
type Services struct {
	Students    *StudentService
	Enrollments *EnrollmentService
	Accounts    *AccountService
}

// New wires all services over one set of repositories
func New(repos *repositories.Repositories, hasher auth.Hasher, log zerolog.Logger) *Services {
	return &Services{
		Students:    NewStudentService(repos, log.With().Str("service", "students").Logger()),
		Enrollments: NewEnrollmentService(repos.Enrollments, log.With().Str("service", "enrollments").Logger()),
		Accounts:    NewAccountService(repos.Accounts, hasher, log.With().Str("service", "accounts").Logger()),
	}
}
