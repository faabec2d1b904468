package memory

import (
	"context"

	"github.com/kelibin/secretaria/internal/app/models"
	"github.com/kelibin/secretaria/internal/app/repositories"
	"github.com/kelibin/secretaria/internal/pkg/apperrors"
)

// AccountRepository implements repositories.AccountRepository
type AccountRepository struct {
	db *DB
}

// Create inserts an account, enforcing the unique email
func (r *AccountRepository) Create(_ context.Context, account *models.Account) error {
	const op = "create account"
	if err := repositories.Validate(op, account); err != nil {
		return err
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.emailTaken(account.Email, "") {
		return apperrors.NewDuplicateKeyError(op, repositories.FieldEmail, nil)
	}

	row := *account
	row.ID = newID()
	r.db.accounts.insert(row.ID, &row)
	account.ID = row.ID
	return nil
}

// GetByID returns an account
func (r *AccountRepository) GetByID(_ context.Context, id string) (*models.Account, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	row, ok := r.db.accounts.rows[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("get account")
	}
	a := *row
	return &a, nil
}

// GetByEmail returns the account registered under email
func (r *AccountRepository) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var found *models.Account
	r.db.accounts.each(func(a *models.Account) bool {
		if a.Email == email {
			cp := *a
			found = &cp
			return false
		}
		return true
	})
	if found == nil {
		return nil, apperrors.NewNotFoundError("get account by email")
	}
	return found, nil
}

// ListExcept returns summaries of every account but excludeID
func (r *AccountRepository) ListExcept(_ context.Context, excludeID string) ([]models.AccountSummary, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	summaries := []models.AccountSummary{}
	r.db.accounts.each(func(a *models.Account) bool {
		if a.ID != excludeID {
			summaries = append(summaries, a.Summary())
		}
		return true
	})
	return summaries, nil
}

// Update replaces the stored fields of an existing account
func (r *AccountRepository) Update(_ context.Context, account *models.Account) error {
	const op = "update account"
	if err := repositories.Validate(op, account); err != nil {
		return err
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	row, ok := r.db.accounts.rows[account.ID]
	if !ok {
		return apperrors.NewNotFoundError(op)
	}
	if r.emailTaken(account.Email, account.ID) {
		return apperrors.NewDuplicateKeyError(op, repositories.FieldEmail, nil)
	}

	row.Email = account.Email
	row.Name = account.Name
	row.PasswordHash = account.PasswordHash
	return nil
}

// Delete removes an account
func (r *AccountRepository) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if !r.db.accounts.remove(id) {
		return apperrors.NewNotFoundError("delete account")
	}
	return nil
}

func (r *AccountRepository) emailTaken(email, excludeID string) bool {
	taken := false
	r.db.accounts.each(func(a *models.Account) bool {
		if a.Email == email && a.ID != excludeID {
			taken = true
			return false
		}
		return true
	})
	return taken
}
