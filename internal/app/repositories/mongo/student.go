package mongo

import (
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kelibin/secretaria/internal/app/models"
	"github.com/kelibin/secretaria/internal/app/repositories"
	"github.com/kelibin/secretaria/internal/pkg/apperrors"
	"github.com/kelibin/secretaria/internal/pkg/logger"
)

type studentDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Matricula  string             `bson:"matricula"`
	Nome       string             `bson:"nome"`
	Disciplina primitive.ObjectID `bson:"disciplina"`
	Resolved   []subjectDoc       `bson:"disciplinaDoc,omitempty"`
}

func (d *studentDoc) model() *models.Student {
	s := &models.Student{
		ID:                 d.ID.Hex(),
		RegistrationNumber: d.Matricula,
		Name:               d.Nome,
		SubjectID:          d.Disciplina.Hex(),
	}
	if len(d.Resolved) > 0 {
		s.Subject = d.Resolved[0].model()
	}
	return s
}

// StudentRepository implements repositories.StudentRepository
type StudentRepository struct {
	students    *mongo.Collection
	enrollments *mongo.Collection
}

// Create inserts a student
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	const op = "create student"
	if err := repositories.Validate(op, student); err != nil {
		return err
	}
	subjectID, ok := objectID(student.SubjectID)
	if !ok {
		return apperrors.NewValidationError(op, []string{"disciplina é inválida"})
	}

	doc := studentDoc{Matricula: student.RegistrationNumber, Nome: student.Name, Disciplina: subjectID}
	res, err := r.students.InsertOne(ctx, doc)
	if err != nil {
		logger.Error().Err(err).Str("registrationNumber", student.RegistrationNumber).Msg("Error inserting student")
		return classify(op, err)
	}
	student.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

// find runs the student pipeline for filter and returns the resolved students
func (r *StudentRepository) find(ctx context.Context, op string, filter bson.D, limit int64) ([]*models.Student, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}
	pipeline = append(pipeline, lookupSubject("disciplina", "disciplinaDoc"))

	cursor, err := r.students.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, classify(op, err)
	}
	defer cursor.Close(ctx)

	students := []*models.Student{}
	for cursor.Next(ctx) {
		var doc studentDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, classify(op, err)
		}
		students = append(students, doc.model())
	}
	if err := cursor.Err(); err != nil {
		return nil, classify(op, err)
	}
	return students, nil
}

// GetByID returns the student with its subject
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*models.Student, error) {
	const op = "get student"
	oid, ok := objectID(id)
	if !ok {
		return nil, apperrors.NewNotFoundError(op)
	}

	students, err := r.find(ctx, op, bson.D{{Key: "_id", Value: oid}}, 1)
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return nil, apperrors.NewNotFoundError(op)
	}
	return students[0], nil
}

// FindByRegistrationNumber returns the student holding number other than excludeID
func (r *StudentRepository) FindByRegistrationNumber(ctx context.Context, number, excludeID string) (*models.Student, error) {
	const op = "find student by registration number"

	filter := bson.D{{Key: "matricula", Value: number}}
	if oid, ok := objectID(excludeID); ok {
		filter = append(filter, bson.E{Key: "_id", Value: bson.D{{Key: "$ne", Value: oid}}})
	}

	students, err := r.find(ctx, op, filter, 1)
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return nil, apperrors.NewNotFoundError(op)
	}
	return students[0], nil
}

// List returns students in insertion order, optionally filtered by name
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]*models.Student, error) {
	match := bson.D{}
	if filter.NameContains != "" {
		match = append(match, bson.E{Key: "nome", Value: primitive.Regex{
			Pattern: regexp.QuoteMeta(filter.NameContains),
			Options: "i",
		}})
	}
	return r.find(ctx, "list students", match, 0)
}

// Update replaces the stored fields of an existing student
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	const op = "update student"
	if err := repositories.Validate(op, student); err != nil {
		return err
	}
	oid, ok := objectID(student.ID)
	if !ok {
		return apperrors.NewNotFoundError(op)
	}
	subjectID, ok := objectID(student.SubjectID)
	if !ok {
		return apperrors.NewValidationError(op, []string{"disciplina é inválida"})
	}

	res, err := r.students.UpdateByID(ctx, oid, bson.D{{Key: "$set", Value: bson.D{
		{Key: "matricula", Value: student.RegistrationNumber},
		{Key: "nome", Value: student.Name},
		{Key: "disciplina", Value: subjectID},
	}}})
	if err != nil {
		return classify(op, err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NewNotFoundError(op)
	}
	return nil
}

// Delete removes the student and then its enrollments
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	const op = "delete student"
	oid, ok := objectID(id)
	if !ok {
		return apperrors.NewNotFoundError(op)
	}

	res, err := r.students.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return classify(op, err)
	}
	if res.DeletedCount == 0 {
		return apperrors.NewNotFoundError(op)
	}

	if _, err := r.enrollments.DeleteMany(ctx, bson.D{{Key: "aluno", Value: oid}}); err != nil {
		logger.Error().Err(err).Str("studentID", id).Msg("Error deleting enrollments of removed student")
		return classify(op, err)
	}
	return nil
}

// Count returns the number of stored students
func (r *StudentRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.students.CountDocuments(ctx, bson.D{})
	return n, classify("count students", err)
}
