package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kelibin/secretaria/internal/app/models"
	"github.com/kelibin/secretaria/internal/app/repositories"
	"github.com/kelibin/secretaria/internal/pkg/apperrors"
	"github.com/kelibin/secretaria/internal/pkg/dberrors"
)

type subjectDoc struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	Nome string             `bson:"nome"`
}

func (d *subjectDoc) model() *models.Subject {
	return &models.Subject{ID: d.ID.Hex(), Name: d.Nome}
}

// SubjectRepository implements repositories.SubjectRepository
type SubjectRepository struct {
	subjects *mongo.Collection
}

// FindOrCreate upserts the subject by name. Two concurrent upserts can race on
// the unique index; the loser retries and then finds the winner's document.
func (r *SubjectRepository) FindOrCreate(ctx context.Context, name string) (*models.Subject, error) {
	const op = "find or create subject"
	if err := repositories.Validate(op, &models.Subject{Name: name}); err != nil {
		return nil, err
	}

	filter := bson.D{{Key: "nome", Value: name}}
	update := bson.D{{Key: "$setOnInsert", Value: bson.D{{Key: "nome", Value: name}}}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc subjectDoc
	err := r.subjects.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if _, dup := dberrors.MongoDuplicateIndex(err); dup {
		err = r.subjects.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	}
	if err != nil {
		return nil, classify(op, err)
	}
	return doc.model(), nil
}

// GetByID returns a subject
func (r *SubjectRepository) GetByID(ctx context.Context, id string) (*models.Subject, error) {
	const op = "get subject"
	oid, ok := objectID(id)
	if !ok {
		return nil, apperrors.NewNotFoundError(op)
	}

	var doc subjectDoc
	if err := r.subjects.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return nil, classify(op, err)
	}
	return doc.model(), nil
}

// Count returns the number of stored subjects
func (r *SubjectRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.subjects.CountDocuments(ctx, bson.D{})
	return n, classify("count subjects", err)
}
