package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestPgDuplicateConstraint(t *testing.T) {
	err := fmt.Errorf("insert student: %w", &pgconn.PgError{Code: "23505", ConstraintName: "students_registration_number_key"})

	name, ok := PgDuplicateConstraint(err)
	assert.True(t, ok)
	assert.Equal(t, "students_registration_number_key", name)
	assert.True(t, IsDuplicateConstraintError(err, "students_registration_number_key"))
	assert.False(t, IsDuplicateConstraintError(err, "accounts_email_key"))

	_, ok = PgDuplicateConstraint(&pgconn.PgError{Code: "23502"})
	assert.False(t, ok)
}

func TestIsPgNoRows(t *testing.T) {
	assert.True(t, IsPgNoRows(fmt.Errorf("find: %w", pgx.ErrNoRows)))
	assert.False(t, IsPgNoRows(errors.New("boom")))
}

func TestMongoDuplicateIndex(t *testing.T) {
	err := mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{
			Code:    11000,
			Message: "E11000 duplicate key error collection: kelibin.alunos index: matricula_1 dup key: { matricula: \"S1\" }",
		}},
	}

	index, ok := MongoDuplicateIndex(err)
	assert.True(t, ok)
	assert.Equal(t, "matricula_1", index)

	_, ok = MongoDuplicateIndex(errors.New("network down"))
	assert.False(t, ok)
}

func TestIsMongoNoDocuments(t *testing.T) {
	assert.True(t, IsMongoNoDocuments(fmt.Errorf("find: %w", mongo.ErrNoDocuments)))
	assert.False(t, IsMongoNoDocuments(errors.New("boom")))
}
