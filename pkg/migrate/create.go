package migrate

import (
	"fmt"

	"github.com/pressly/goose/v3"
)

// Create writes a new timestamped SQL migration file into dir.
func Create(dir string, name string) error {
	if name == "" {
		return fmt.Errorf("migration name is required")
	}
	if err := goose.Create(nil, dir, name, "sql"); err != nil {
		return fmt.Errorf("create migration: %w", err)
	}
	return nil
}
