package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kelibin/secretaria/internal/app/models"
	"github.com/kelibin/secretaria/internal/app/repositories"
	"github.com/kelibin/secretaria/internal/pkg/apperrors"
	"github.com/kelibin/secretaria/internal/pkg/auth"
)

// AccountInput carries the account form fields. On updates an empty
// Password keeps the stored hash.
type AccountInput struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation string
}

// AccountService handles registration, login and account management
type AccountService struct {
	accounts repositories.AccountRepository
	hasher   auth.Hasher
	log      zerolog.Logger
}

// NewAccountService creates a new account service instance
func NewAccountService(accounts repositories.AccountRepository, hasher auth.Hasher, log zerolog.Logger) *AccountService {
	return &AccountService{accounts: accounts, hasher: hasher, log: log}
}

// Register creates an account. A confirmation mismatch is rejected before
// the store is touched.
func (s *AccountService) Register(ctx context.Context, input AccountInput) (*models.Account, error) {
	if input.Password != input.PasswordConfirmation {
		return nil, apperrors.ErrPasswordMismatch
	}

	_, err := s.accounts.GetByEmail(ctx, input.Email)
	switch {
	case err == nil:
		return nil, apperrors.ErrEmailAlreadyExists
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, fmt.Errorf("error checking email: %w", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	account := &models.Account{Email: input.Email, PasswordHash: hash, Name: input.Name}
	if err := s.accounts.Create(ctx, account); err != nil {
		if apperrors.IsDuplicateOn(err, repositories.FieldEmail) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	s.log.Info().Str("accountID", account.ID).Msg("Account registered")
	return account, nil
}

// Authenticate returns the account matching email and password. Unknown
// emails and wrong passwords both yield apperrors.ErrInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error finding account: %w", err)
	}

	ok, err := s.hasher.Compare(account.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrInvalidCredentials
	}
	return account, nil
}

// Get returns one account
func (s *AccountService) Get(ctx context.Context, id string) (*models.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting account: %w", err)
	}
	return account, nil
}

// ListOthers returns every account except callerID, without password hashes
func (s *AccountService) ListOthers(ctx context.Context, callerID string) ([]models.AccountSummary, error) {
	accounts, err := s.accounts.ListExcept(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("error listing accounts: %w", err)
	}
	return accounts, nil
}

// Update sets name and email, and re-hashes the password when a new one is given
func (s *AccountService) Update(ctx context.Context, id string, input AccountInput) (*models.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting account: %w", err)
	}

	if input.Password != "" {
		if input.Password != input.PasswordConfirmation {
			return nil, apperrors.ErrPasswordMismatch
		}
		hash, err := s.hasher.Hash(input.Password)
		if err != nil {
			return nil, err
		}
		account.PasswordHash = hash
	}

	account.Name = input.Name
	account.Email = input.Email

	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("error updating account: %w", err)
	}
	return account, nil
}

// Delete removes the account id on behalf of callerID, who may not remove itself
func (s *AccountService) Delete(ctx context.Context, callerID, id string) error {
	if callerID == id {
		return apperrors.ErrSelfDelete
	}
	if err := s.accounts.Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting account: %w", err)
	}
	s.log.Info().Str("accountID", id).Str("by", callerID).Msg("Account deleted")
	return nil
}
