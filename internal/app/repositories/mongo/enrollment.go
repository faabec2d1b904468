package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kelibin/secretaria/internal/app/models"
	"github.com/kelibin/secretaria/internal/app/repositories"
	"github.com/kelibin/secretaria/internal/pkg/apperrors"
)

type enrollmentDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Aluno      primitive.ObjectID `bson:"aluno"`
	Disciplina primitive.ObjectID `bson:"disciplina"`
	Status     string             `bson:"status"`
	Resolved   []subjectDoc       `bson:"disciplinaDoc,omitempty"`
}

func (d *enrollmentDoc) model() *models.Enrollment {
	e := &models.Enrollment{
		ID:        d.ID.Hex(),
		StudentID: d.Aluno.Hex(),
		SubjectID: d.Disciplina.Hex(),
		Status:    models.EnrollmentStatus(d.Status),
	}
	if e.Status == "" {
		e.Status = models.EnrollmentPending
	}
	if len(d.Resolved) > 0 {
		e.Subject = d.Resolved[0].model()
	}
	return e
}

// EnrollmentRepository implements repositories.EnrollmentRepository
type EnrollmentRepository struct {
	enrollments *mongo.Collection
}

// Create inserts an enrollment
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	const op = "create enrollment"
	if err := repositories.Validate(op, enrollment); err != nil {
		return err
	}
	studentID, ok1 := objectID(enrollment.StudentID)
	subjectID, ok2 := objectID(enrollment.SubjectID)
	if !ok1 || !ok2 {
		return apperrors.NewValidationError(op, []string{"referência de matrícula inválida"})
	}

	res, err := r.enrollments.InsertOne(ctx, enrollmentDoc{
		Aluno:      studentID,
		Disciplina: subjectID,
		Status:     string(enrollment.Status),
	})
	if err != nil {
		return classify(op, err)
	}
	enrollment.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (r *EnrollmentRepository) find(ctx context.Context, op string, filter bson.D) ([]*models.Enrollment, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		lookupSubject("disciplina", "disciplinaDoc"),
	}

	cursor, err := r.enrollments.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, classify(op, err)
	}
	defer cursor.Close(ctx)

	enrollments := []*models.Enrollment{}
	for cursor.Next(ctx) {
		var doc enrollmentDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, classify(op, err)
		}
		enrollments = append(enrollments, doc.model())
	}
	if err := cursor.Err(); err != nil {
		return nil, classify(op, err)
	}
	return enrollments, nil
}

// GetByID returns an enrollment with its subject
func (r *EnrollmentRepository) GetByID(ctx context.Context, id string) (*models.Enrollment, error) {
	const op = "get enrollment"
	oid, ok := objectID(id)
	if !ok {
		return nil, apperrors.NewNotFoundError(op)
	}

	found, err := r.find(ctx, op, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, apperrors.NewNotFoundError(op)
	}
	return found[0], nil
}

// ListByStudent returns the student's enrollments in insertion order
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]*models.Enrollment, error) {
	oid, ok := objectID(studentID)
	if !ok {
		return []*models.Enrollment{}, nil
	}
	return r.find(ctx, "list enrollments", bson.D{{Key: "aluno", Value: oid}})
}

// UpdateStatus swaps the status only when the stored one equals expected
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id string, expected, next models.EnrollmentStatus) error {
	const op = "update enrollment status"
	oid, ok := objectID(id)
	if !ok {
		return apperrors.NewNotFoundError(op)
	}

	var current interface{} = string(expected)
	if expected == models.EnrollmentPending {
		// older documents carry no status and read as pending
		current = bson.D{{Key: "$in", Value: bson.A{string(expected), nil}}}
	}

	res, err := r.enrollments.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}, {Key: "status", Value: current}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: string(next)}}}},
	)
	if err != nil {
		return classify(op, err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	n, err := r.enrollments.CountDocuments(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return classify(op, err)
	}
	if n == 0 {
		return apperrors.NewNotFoundError(op)
	}
	return apperrors.ErrInvalidTransition
}

// Count returns the number of stored enrollments
func (r *EnrollmentRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.enrollments.CountDocuments(ctx, bson.D{})
	return n, classify("count enrollments", err)
}
