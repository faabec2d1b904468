package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/kelibin/secretaria/internal/app/services"
	"github.com/kelibin/secretaria/internal/config"
	"github.com/kelibin/secretaria/internal/pkg/apperrors"
)

// CreateDefaultAccount registers the configured bootstrap account unless it
// already exists. Nothing happens when no seed email is configured.
func CreateDefaultAccount(ctx context.Context, cfg *config.Config, accounts *services.AccountService, lgr zerolog.Logger) error {
	if cfg.Seed.Email == "" {
		return nil
	}

	_, err := accounts.Register(ctx, services.AccountInput{
		Name:                 cfg.Seed.Name,
		Email:                cfg.Seed.Email,
		Password:             cfg.Seed.Password,
		PasswordConfirmation: cfg.Seed.Password,
	})
	switch {
	case err == nil:
		lgr.Info().Str("email", cfg.Seed.Email).Msg("Default account created")
		return nil
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		lgr.Debug().Str("email", cfg.Seed.Email).Msg("Default account already exists")
		return nil
	default:
		return err
	}
}
