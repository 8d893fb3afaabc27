package refbackend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/household-hub/companion/config"
	"github.com/household-hub/companion/internal/domain/entity"
	domainerror "github.com/household-hub/companion/internal/domain/error"
)

// Seed creates the configured user unless one with the same email already exists.
func Seed(ctx context.Context, users UserRepository, cfg config.SeedConfig) error {
	if cfg.Email == "" {
		return nil
	}

	existing, err := users.FindByEmail(ctx, cfg.Email)
	if err == nil {
		slog.Info("Seed user already present", "user_id", existing.ID)
		return nil
	}
	if !errors.Is(err, domainerror.ErrNotFound) {
		return fmt.Errorf("failed to look up seed user: %w", err)
	}

	hash, err := HashPassword(cfg.Password)
	if err != nil {
		return err
	}

	user := entity.NewUser(cfg.Email, cfg.Name, hash, entity.UserRole(cfg.Role), cfg.HomeID)
	if err := users.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create seed user: %w", err)
	}

	slog.Info("Seed user created", "user_id", user.ID, "home_id", user.HomeID, "role", user.Role)
	return nil
}
