package migrate

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/inventory/internal/hash"
	"github.com/Skotchmaster/inventory/internal/logging"
	"github.com/Skotchmaster/inventory/internal/models"
	"github.com/Skotchmaster/inventory/internal/repo"
)

type Options struct {
	AdminUsername string
	AdminPassword string
}

type Step struct {
	Name string
	Run  func(ctx context.Context, db *gorm.DB) error
}

// Steps is the ordered schema initialisation. Every step is idempotent.
func Steps(opts Options) []Step {
	return []Step{
		{Name: "create_tables", Run: createTables},
		{Name: "seed_default_admin", Run: seedAdmin(opts.AdminUsername, opts.AdminPassword)},
	}
}

func Run(ctx context.Context, db *gorm.DB, opts Options) error {
	l := logging.FromContext(ctx).With("component", "migrate")
	for _, step := range Steps(opts) {
		if err := step.Run(ctx, db); err != nil {
			l.Error("migration_failed", "step", step.Name, "error", err)
			return fmt.Errorf("migration %s: %w", step.Name, err)
		}
		l.Info("migration_applied", "step", step.Name)
	}
	return nil
}

func createTables(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(&models.Product{}, &models.User{})
}

func seedAdmin(username, password string) func(ctx context.Context, db *gorm.DB) error {
	return func(ctx context.Context, db *gorm.DB) error {
		if username == "" {
			return nil
		}

		r := &repo.GormRepo{DB: db}
		existing, err := r.FindUser(ctx, username)
		if err != nil {
			return err
		}
		if existing != nil {
			if !hash.IsHash(existing.Password) {
				logging.FromContext(ctx).Warn("seed_admin_unusable",
					"username", username,
					"reason", "stored password is not a bcrypt hash, login as this user will always fail; reset it or drop the row")
			}
			return nil
		}

		pwHash, err := hash.HashPassword(password)
		if err != nil {
			return err
		}
		err = r.CreateUserIfNotExists(ctx, &models.User{Username: username, Password: pwHash})
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			return nil
		}
		return err
	}
}
