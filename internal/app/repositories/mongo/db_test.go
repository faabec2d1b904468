package mongo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kelibin/secretaria/internal/app/repositories"
	"github.com/kelibin/secretaria/internal/app/repositories/repotest"
	"github.com/kelibin/secretaria/internal/config"
	"github.com/kelibin/secretaria/internal/db"
)

// openTestDB returns nil when TEST_MONGO_URI is unset
func openTestDB(t *testing.T) *db.MongoDB {
	t.Helper()
	uri := config.GetEnv("TEST_MONGO_URI", "")
	if uri == "" {
		return nil
	}

	name := fmt.Sprintf("secretaria_test_%d", time.Now().UnixNano())
	database, err := db.NewMongoDBFromURI(uri, name, 10*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.Database.Drop(context.Background())
		database.Close()
	})
	return database
}

func reset(t *testing.T, database *mongo.Database) {
	t.Helper()
	ctx := context.Background()
	for _, c := range []string{studentsCollection, subjectsCollection, enrollmentsCollection, accountsCollection} {
		_, err := database.Collection(c).DeleteMany(ctx, map[string]interface{}{})
		require.NoError(t, err)
	}
	require.NoError(t, EnsureIndexes(ctx, database))
}

func TestContract(t *testing.T) {
	database := openTestDB(t)
	if database == nil {
		t.Skip("TEST_MONGO_URI not set")
	}

	repotest.Run(t, func(t *testing.T) *repositories.Repositories {
		reset(t, database.Database)
		return NewRepositories(database.Database)
	}, primitive.NewObjectID().Hex())
}

func TestObjectID(t *testing.T) {
	oid := primitive.NewObjectID()
	got, ok := objectID(oid.Hex())
	assert.True(t, ok)
	assert.Equal(t, oid, got)

	_, ok = objectID("nope")
	assert.False(t, ok)
}

func TestStudentDocModel(t *testing.T) {
	subject := subjectDoc{ID: primitive.NewObjectID(), Nome: "Math"}
	doc := studentDoc{
		ID:         primitive.NewObjectID(),
		Matricula:  "S1",
		Nome:       "Ana",
		Disciplina: subject.ID,
		Resolved:   []subjectDoc{subject},
	}

	s := doc.model()
	assert.Equal(t, "S1", s.RegistrationNumber)
	assert.Equal(t, subject.ID.Hex(), s.SubjectID)
	require.NotNil(t, s.Subject)
	assert.Equal(t, "Math", s.Subject.Name)
}

func TestEnrollmentDocDefaultsToPending(t *testing.T) {
	e := (&enrollmentDoc{ID: primitive.NewObjectID()}).model()
	assert.Equal(t, "Pendente", string(e.Status))
}
