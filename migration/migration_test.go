package migration_test

import (
	"testing"

	"github.com/questx-lab/social-discord/internal/entity"
	"github.com/questx-lab/social-discord/migration"
	"github.com/questx-lab/social-discord/pkg/testutil"
	"github.com/questx-lab/social-discord/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func TestMigrate(t *testing.T) {
	ctx := testutil.MockContext()

	// Bypass the repository, it would set the status itself.
	require.NoError(t, xcontext.DB(ctx).Exec(
		"INSERT INTO users (id, name, status) VALUES (?, ?, ?)", "user1", "foo", "").Error)

	require.NoError(t, migration.Migrate(ctx, "0001"))

	var user entity.User
	require.NoError(t, xcontext.DB(ctx).Where("id=?", "user1").Take(&user).Error)
	require.Equal(t, entity.UserActive, user.Status)

	require.Error(t, migration.Migrate(ctx, "9999"))
	require.NoError(t, migration.AutoMigrate(ctx))
}
