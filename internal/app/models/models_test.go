package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kelibin/secretaria/internal/pkg/apperrors"
)

func TestEnrollmentTransitions(t *testing.T) {
	tests := []struct {
		from    EnrollmentStatus
		to      EnrollmentStatus
		allowed bool
	}{
		{EnrollmentPending, EnrollmentCompleted, true},
		{EnrollmentPending, EnrollmentCancelled, true},
		{EnrollmentPending, EnrollmentPending, false},
		{EnrollmentCompleted, EnrollmentCancelled, false},
		{EnrollmentCancelled, EnrollmentCompleted, false},
		{EnrollmentCompleted, EnrollmentPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			e := &Enrollment{Status: tt.from}
			err := e.Transition(tt.to)
			if tt.allowed {
				assert.NoError(t, err)
				assert.Equal(t, tt.to, e.Status)
			} else {
				assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
				assert.Equal(t, tt.from, e.Status)
			}
		})
	}
}

func TestNewEnrollmentIsPending(t *testing.T) {
	e := NewEnrollment("s", "d")
	assert.Equal(t, EnrollmentPending, e.Status)
}

func TestAccountSummaryOmitsHash(t *testing.T) {
	a := &Account{ID: "1", Email: "a@b.c", PasswordHash: "hash", Name: "Ana"}
	assert.Equal(t, AccountSummary{ID: "1", Name: "Ana", Email: "a@b.c"}, a.Summary())
}
