package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/kelibin/secretaria/internal/app/models"
	"github.com/kelibin/secretaria/internal/app/repositories"
	"github.com/kelibin/secretaria/internal/pkg/apperrors"
	"github.com/kelibin/secretaria/internal/pkg/logger"
)

// AccountRepository implements repositories.AccountRepository
type AccountRepository struct {
	base
}

func (r *AccountRepository) getBy(ctx context.Context, op string, where squirrel.Eq) (*models.Account, error) {
	sql, args, err := r.sb.Select("id::text", "email", "password_hash", "name").
		From("accounts").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, apperrors.NewStoreError(op, fmt.Errorf("failed to build query: %w", err))
	}

	a := &models.Account{}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Name); err != nil {
		return nil, classify(op, err)
	}
	return a, nil
}

// Create inserts an account
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	const op = "create account"
	if err := repositories.Validate(op, account); err != nil {
		return err
	}

	sql, args, err := r.sb.Insert("accounts").
		Columns("email", "password_hash", "name").
		Values(account.Email, account.PasswordHash, account.Name).
		Suffix("RETURNING id::text").
		ToSql()
	if err != nil {
		return apperrors.NewStoreError(op, fmt.Errorf("failed to build query: %w", err))
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&account.ID); err != nil {
		logger.Error().Err(err).Msg("Error executing create account query")
		return classify(op, err)
	}
	return nil
}

// GetByID returns an account
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	if !validID(id) {
		return nil, apperrors.NewNotFoundError("get account")
	}
	return r.getBy(ctx, "get account", squirrel.Eq{"id": id})
}

// GetByEmail returns the account registered under email
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getBy(ctx, "get account by email", squirrel.Eq{"email": email})
}

// ListExcept returns summaries of every account but excludeID
func (r *AccountRepository) ListExcept(ctx context.Context, excludeID string) ([]models.AccountSummary, error) {
	const op = "list accounts"

	q := r.sb.Select("id::text", "name", "email").From("accounts")
	if id := nullableID(excludeID); id != nil {
		q = q.Where(squirrel.NotEq{"id": id})
	}
	sql, args, err := q.OrderBy("created_at ASC", "id ASC").ToSql()
	if err != nil {
		return nil, apperrors.NewStoreError(op, fmt.Errorf("failed to build query: %w", err))
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	summaries := []models.AccountSummary{}
	for rows.Next() {
		var s models.AccountSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Email); err != nil {
			return nil, classify(op, err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
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
	if !validID(account.ID) {
		return apperrors.NewNotFoundError(op)
	}

	sql, args, err := r.sb.Update("accounts").
		SetMap(map[string]interface{}{
			"email":         account.Email,
			"password_hash": account.PasswordHash,
			"name":          account.Name,
			"updated_at":    squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": account.ID}).
		ToSql()
	if err != nil {
		return apperrors.NewStoreError(op, fmt.Errorf("failed to build query: %w", err))
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return classify(op, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(op)
	}
	return nil
}

// Delete removes an account
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	const op = "delete account"
	if !validID(id) {
		return apperrors.NewNotFoundError(op)
	}

	sql, args, err := r.sb.Delete("accounts").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return apperrors.NewStoreError(op, fmt.Errorf("failed to build query: %w", err))
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return classify(op, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(op)
	}
	return nil
}
