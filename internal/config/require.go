package config

import (
	"errors"
	"fmt"
)

var ErrMissingEnv = errors.New("missing required env")

func NonEmpty(value, envName string) error {
	if value == "" {
		return fmt.Errorf("%w %s", ErrMissingEnv, envName)
	}
	return nil
}

// Validate checks the values that have no usable fallback.
func (c Config) Validate() error {
	checks := []error{
		NonEmpty(c.DBDriver, "DB_DRIVER"),
		NonEmpty(c.DatabaseURL, "DATABASE_URL"),
		NonEmpty(c.AdminUsername, "ADMIN_USERNAME"),
		NonEmpty(c.AdminPassword, "ADMIN_PASSWORD"),
	}
	if c.SessionTTL <= 0 {
		checks = append(checks, fmt.Errorf("SESSION_TTL_MIN must be positive, got %s", c.SessionTTL))
	}
	if c.ESURL != "" {
		checks = append(checks, NonEmpty(c.ESIndex, "ES_INDEX"))
	}
	return errors.Join(checks...)
}
