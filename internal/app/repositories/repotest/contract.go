// Package repotest holds the behaviour every repository driver must share.
package repotest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelibin/secretaria/internal/app/models"
	"github.com/kelibin/secretaria/internal/app/repositories"
	"github.com/kelibin/secretaria/internal/pkg/apperrors"
)

// Factory returns a fresh, empty set of repositories
type Factory func(t *testing.T) *repositories.Repositories

// Run exercises the repositories returned by newRepos against the shared contract.
// MissingID must be a well-formed id of the driver's format that is never assigned.
func Run(t *testing.T, newRepos Factory, missingID string) {
	ctx := context.Background()

	t.Run("subject find or create is idempotent", func(t *testing.T) {
		repos := newRepos(t)

		first, err := repos.Subjects.FindOrCreate(ctx, "Math")
		require.NoError(t, err)
		second, err := repos.Subjects.FindOrCreate(ctx, "Math")
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		count, err := repos.Subjects.Count(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
	})

	t.Run("subject name is required", func(t *testing.T) {
		repos := newRepos(t)

		_, err := repos.Subjects.FindOrCreate(ctx, " ")
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("student registration number is unique", func(t *testing.T) {
		repos := newRepos(t)
		math := mustSubject(t, repos, "Math")

		a := &models.Student{RegistrationNumber: "S1", Name: "Ana", SubjectID: math.ID}
		require.NoError(t, repos.Students.Create(ctx, a))
		assert.NotEmpty(t, a.ID)

		err := repos.Students.Create(ctx, &models.Student{RegistrationNumber: "S1", Name: "Caio", SubjectID: math.ID})
		assert.True(t, apperrors.IsDuplicateOn(err, repositories.FieldRegistrationNumber), "got %v", err)

		count, err := repos.Students.Count(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
	})

	t.Run("student validation lists every missing field", func(t *testing.T) {
		repos := newRepos(t)

		err := repos.Students.Create(ctx, &models.Student{})
		require.ErrorIs(t, err, apperrors.ErrValidation)
		se, ok := apperrors.AsStoreError(err)
		require.True(t, ok)
		assert.Len(t, se.Details, 3)
	})

	t.Run("student get resolves subject", func(t *testing.T) {
		repos := newRepos(t)
		math := mustSubject(t, repos, "Math")
		a := mustStudent(t, repos, "S1", "Ana", math.ID)

		got, err := repos.Students.GetByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "S1", got.RegistrationNumber)
		require.NotNil(t, got.Subject)
		assert.Equal(t, "Math", got.Subject.Name)
	})

	t.Run("student not found for unknown and malformed ids", func(t *testing.T) {
		repos := newRepos(t)

		_, err := repos.Students.GetByID(ctx, missingID)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		_, err = repos.Students.GetByID(ctx, "not-an-id")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.ErrorIs(t, repos.Students.Delete(ctx, missingID), apperrors.ErrNotFound)
	})

	t.Run("student list filters by literal case-insensitive substring", func(t *testing.T) {
		repos := newRepos(t)
		math := mustSubject(t, repos, "Math")
		mustStudent(t, repos, "S1", "Ana Souza", math.ID)
		mustStudent(t, repos, "S2", "Bruno", math.ID)
		mustStudent(t, repos, "S3", "Mari.a", math.ID)

		all, err := repos.Students.List(ctx, models.StudentFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 3)

		got, err := repos.Students.List(ctx, models.StudentFilter{NameContains: "souz"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Ana Souza", got[0].Name)
		assert.Equal(t, "Math", got[0].SubjectName())

		got, err = repos.Students.List(ctx, models.StudentFilter{NameContains: "."})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Mari.a", got[0].Name)
	})

	t.Run("student registration lookup excludes given id", func(t *testing.T) {
		repos := newRepos(t)
		math := mustSubject(t, repos, "Math")
		a := mustStudent(t, repos, "S1", "Ana", math.ID)

		_, err := repos.Students.FindByRegistrationNumber(ctx, "S1", a.ID)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)

		got, err := repos.Students.FindByRegistrationNumber(ctx, "S1", "")
		require.NoError(t, err)
		assert.Equal(t, a.ID, got.ID)
	})

	t.Run("student update enforces uniqueness and reports missing rows", func(t *testing.T) {
		repos := newRepos(t)
		math := mustSubject(t, repos, "Math")
		a := mustStudent(t, repos, "S1", "Ana", math.ID)
		b := mustStudent(t, repos, "S2", "Bruno", math.ID)

		b.RegistrationNumber = "S1"
		err := repos.Students.Update(ctx, b)
		assert.True(t, apperrors.IsDuplicateOn(err, repositories.FieldRegistrationNumber), "got %v", err)

		a.Name = "Ana Lima"
		require.NoError(t, repos.Students.Update(ctx, a))
		got, err := repos.Students.GetByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ana Lima", got.Name)

		ghost := &models.Student{ID: missingID, RegistrationNumber: "S9", Name: "X", SubjectID: math.ID}
		assert.ErrorIs(t, repos.Students.Update(ctx, ghost), apperrors.ErrNotFound)
	})

	t.Run("student delete removes enrollments", func(t *testing.T) {
		repos := newRepos(t)
		math := mustSubject(t, repos, "Math")
		a := mustStudent(t, repos, "S1", "Ana", math.ID)
		require.NoError(t, repos.Enrollments.Create(ctx, models.NewEnrollment(a.ID, math.ID)))

		require.NoError(t, repos.Students.Delete(ctx, a.ID))

		enrollments, err := repos.Enrollments.ListByStudent(ctx, a.ID)
		require.NoError(t, err)
		assert.Empty(t, enrollments)
		_, err = repos.Students.GetByID(ctx, a.ID)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("enrollment status compare and set", func(t *testing.T) {
		repos := newRepos(t)
		math := mustSubject(t, repos, "Math")
		a := mustStudent(t, repos, "S1", "Ana", math.ID)
		e := models.NewEnrollment(a.ID, math.ID)
		require.NoError(t, repos.Enrollments.Create(ctx, e))

		listed, err := repos.Enrollments.ListByStudent(ctx, a.ID)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, models.EnrollmentPending, listed[0].Status)
		require.NotNil(t, listed[0].Subject)
		assert.Equal(t, "Math", listed[0].Subject.Name)

		require.NoError(t, repos.Enrollments.UpdateStatus(ctx, e.ID, models.EnrollmentPending, models.EnrollmentCompleted))
		err = repos.Enrollments.UpdateStatus(ctx, e.ID, models.EnrollmentPending, models.EnrollmentCancelled)
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

		got, err := repos.Enrollments.GetByID(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, models.EnrollmentCompleted, got.Status)

		err = repos.Enrollments.UpdateStatus(ctx, missingID, models.EnrollmentPending, models.EnrollmentCompleted)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("enrollment rejects unknown status", func(t *testing.T) {
		repos := newRepos(t)
		math := mustSubject(t, repos, "Math")
		a := mustStudent(t, repos, "S1", "Ana", math.ID)

		err := repos.Enrollments.Create(ctx, &models.Enrollment{StudentID: a.ID, SubjectID: math.ID, Status: "Aprovada"})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("account email is unique", func(t *testing.T) {
		repos := newRepos(t)
		require.NoError(t, repos.Accounts.Create(ctx, &models.Account{Email: "a@x.com", PasswordHash: "h"}))

		err := repos.Accounts.Create(ctx, &models.Account{Email: "a@x.com", PasswordHash: "h"})
		assert.True(t, apperrors.IsDuplicateOn(err, repositories.FieldEmail), "got %v", err)
	})

	t.Run("account lookup update and delete", func(t *testing.T) {
		repos := newRepos(t)
		a := &models.Account{Email: "a@x.com", PasswordHash: "h", Name: "Ana"}
		require.NoError(t, repos.Accounts.Create(ctx, a))
		b := &models.Account{Email: "b@x.com", PasswordHash: "h"}
		require.NoError(t, repos.Accounts.Create(ctx, b))

		got, err := repos.Accounts.GetByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, a.ID, got.ID)
		assert.Equal(t, "h", got.PasswordHash)

		_, err = repos.Accounts.GetByEmail(ctx, "nobody@x.com")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)

		b.Email = "a@x.com"
		err = repos.Accounts.Update(ctx, b)
		assert.True(t, apperrors.IsDuplicateOn(err, repositories.FieldEmail), "got %v", err)

		a.Name = "Ana Maria"
		require.NoError(t, repos.Accounts.Update(ctx, a))
		got, err = repos.Accounts.GetByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ana Maria", got.Name)

		require.NoError(t, repos.Accounts.Delete(ctx, b.ID))
		assert.ErrorIs(t, repos.Accounts.Delete(ctx, b.ID), apperrors.ErrNotFound)
	})

	t.Run("account listing excludes caller", func(t *testing.T) {
		repos := newRepos(t)
		a := &models.Account{Email: "a@x.com", PasswordHash: "h", Name: "Ana"}
		require.NoError(t, repos.Accounts.Create(ctx, a))
		require.NoError(t, repos.Accounts.Create(ctx, &models.Account{Email: "b@x.com", PasswordHash: "h", Name: "Bia"}))

		list, err := repos.Accounts.ListExcept(ctx, a.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "b@x.com", list[0].Email)
		assert.Equal(t, "Bia", list[0].Name)
	})
}

func mustSubject(t *testing.T, repos *repositories.Repositories, name string) *models.Subject {
	t.Helper()
	s, err := repos.Subjects.FindOrCreate(context.Background(), name)
	require.NoError(t, err)
	return s
}

func mustStudent(t *testing.T, repos *repositories.Repositories, number, name, subjectID string) *models.Student {
	t.Helper()
	s := &models.Student{RegistrationNumber: number, Name: name, SubjectID: subjectID}
	require.NoError(t, repos.Students.Create(context.Background(), s))
	return s
}
