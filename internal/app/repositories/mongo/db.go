// Package mongo implements the repositories on MongoDB. Collection and field
// names follow the existing kelibin database so old records stay readable.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kelibin/secretaria/internal/app/repositories"
	"github.com/kelibin/secretaria/internal/pkg/apperrors"
	"github.com/kelibin/secretaria/internal/pkg/dberrors"
)

// Collection names
const (
	studentsCollection    = "alunos"
	subjectsCollection    = "disciplinas"
	enrollmentsCollection = "matriculas"
	accountsCollection    = "usuarios"
)

// unique index name => domain field
var uniqueIndexes = map[string]string{
	"matricula_1": repositories.FieldRegistrationNumber,
	"nome_1":      repositories.FieldSubjectName,
	"email_1":     repositories.FieldEmail,
}

// NewRepositories wires every MongoDB repository over one database
func NewRepositories(db *mongo.Database) *repositories.Repositories {
	return &repositories.Repositories{
		Students: &StudentRepository{
			students:    db.Collection(studentsCollection),
			enrollments: db.Collection(enrollmentsCollection),
		},
		Subjects:    &SubjectRepository{subjects: db.Collection(subjectsCollection)},
		Enrollments: &EnrollmentRepository{enrollments: db.Collection(enrollmentsCollection)},
		Accounts:    &AccountRepository{accounts: db.Collection(accountsCollection)},
	}
}

// EnsureIndexes creates the unique indexes the repositories rely on
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		studentsCollection: {
			{Keys: bson.D{{Key: "matricula", Value: 1}}, Options: options.Index().SetUnique(true).SetName("matricula_1")},
		},
		subjectsCollection: {
			{Keys: bson.D{{Key: "nome", Value: 1}}, Options: options.Index().SetUnique(true).SetName("nome_1")},
		},
		enrollmentsCollection: {
			{Keys: bson.D{{Key: "aluno", Value: 1}}, Options: options.Index().SetName("aluno_1")},
		},
		accountsCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("email_1")},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// classify maps a driver error onto the store error kinds
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if dberrors.IsMongoNoDocuments(err) {
		return apperrors.NewNotFoundError(op)
	}
	if index, ok := dberrors.MongoDuplicateIndex(err); ok {
		return apperrors.NewDuplicateKeyError(op, uniqueIndexes[index], err)
	}
	return apperrors.NewStoreError(op, err)
}

// objectID parses a hex id; ok is false for malformed ids
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	return oid, err == nil
}

// lookupSubject joins the referenced subject document into field "ref" as "as"
func lookupSubject(ref, as string) bson.D {
	return bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: subjectsCollection},
		{Key: "localField", Value: ref},
		{Key: "foreignField", Value: "_id"},
		{Key: "as", Value: as},
	}}}
}
