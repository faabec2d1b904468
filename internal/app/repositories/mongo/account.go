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
)

type accountDoc struct {
	ID    primitive.ObjectID `bson:"_id,omitempty"`
	Email string             `bson:"email"`
	Senha string             `bson:"senha,omitempty"`
	Nome  string             `bson:"nome"`
}

func (d *accountDoc) model() *models.Account {
	return &models.Account{ID: d.ID.Hex(), Email: d.Email, PasswordHash: d.Senha, Name: d.Nome}
}

// AccountRepository implements repositories.AccountRepository
type AccountRepository struct {
	accounts *mongo.Collection
}

// Create inserts an account
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	const op = "create account"
	if err := repositories.Validate(op, account); err != nil {
		return err
	}

	res, err := r.accounts.InsertOne(ctx, accountDoc{
		Email: account.Email,
		Senha: account.PasswordHash,
		Nome:  account.Name,
	})
	if err != nil {
		return classify(op, err)
	}
	account.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (r *AccountRepository) findOne(ctx context.Context, op string, filter bson.D) (*models.Account, error) {
	var doc accountDoc
	if err := r.accounts.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, classify(op, err)
	}
	return doc.model(), nil
}

// GetByID returns an account
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, apperrors.NewNotFoundError("get account")
	}
	return r.findOne(ctx, "get account", bson.D{{Key: "_id", Value: oid}})
}

// GetByEmail returns the account registered under email
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.findOne(ctx, "get account by email", bson.D{{Key: "email", Value: email}})
}

// ListExcept returns summaries of every account but excludeID; the hash is never fetched
func (r *AccountRepository) ListExcept(ctx context.Context, excludeID string) ([]models.AccountSummary, error) {
	const op = "list accounts"

	filter := bson.D{}
	if oid, ok := objectID(excludeID); ok {
		filter = append(filter, bson.E{Key: "_id", Value: bson.D{{Key: "$ne", Value: oid}}})
	}
	opts := options.Find().
		SetProjection(bson.D{{Key: "nome", Value: 1}, {Key: "email", Value: 1}}).
		SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.accounts.Find(ctx, filter, opts)
	if err != nil {
		return nil, classify(op, err)
	}
	defer cursor.Close(ctx)

	summaries := []models.AccountSummary{}
	for cursor.Next(ctx) {
		var doc accountDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, classify(op, err)
		}
		summaries = append(summaries, doc.model().Summary())
	}
	if err := cursor.Err(); err != nil {
		return nil, classify(op, err)
	}
	return summaries, nil
}

// Update replaces the stored fields of an existing account
func (r *AccountRepository) Update(ctx context.Context, account *models.Account) error {
	const op = "update account"
	if err := repositories.Validate(op, account); err != nil {
		return err
	}
	oid, ok := objectID(account.ID)
	if !ok {
		return apperrors.NewNotFoundError(op)
	}

	res, err := r.accounts.UpdateByID(ctx, oid, bson.D{{Key: "$set", Value: bson.D{
		{Key: "email", Value: account.Email},
		{Key: "senha", Value: account.PasswordHash},
		{Key: "nome", Value: account.Name},
	}}})
	if err != nil {
		return classify(op, err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NewNotFoundError(op)
	}
	return nil
}

// Delete removes an account
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	const op = "delete account"
	oid, ok := objectID(id)
	if !ok {
		return apperrors.NewNotFoundError(op)
	}

	res, err := r.accounts.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return classify(op, err)
	}
	if res.DeletedCount == 0 {
		return apperrors.NewNotFoundError(op)
	}
	return nil
}
