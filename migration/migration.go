package migration

import (
	"context"
	"fmt"
)

type migrator struct {
	version string
	migrate func(context.Context) error
}

// migrators are ordered by version.
var migrators = []migrator{
	{version: "0000", migrate: migrate0000},
	{version: "0001", migrate: migrate0001},
}

// Migrate runs a single version.
func Migrate(ctx context.Context, version string) error {
	for _, m := range migrators {
		if m.version == version {
			return m.migrate(ctx)
		}
	}

	return fmt.Errorf("not found version %s", version)
}

// AutoMigrate brings the database to the latest version by running every migrator in order.
func AutoMigrate(ctx context.Context) error {
	for _, m := range migrators {
		if err := m.migrate(ctx); err != nil {
			return fmt.Errorf("migrate %s: %w", m.version, err)
		}
	}

	return nil
}
