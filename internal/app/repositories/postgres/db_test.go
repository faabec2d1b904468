package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelibin/secretaria/internal/app/migrations"
	"github.com/kelibin/secretaria/internal/app/repositories"
	"github.com/kelibin/secretaria/internal/app/repositories/repotest"
	"github.com/kelibin/secretaria/internal/config"
	"github.com/kelibin/secretaria/internal/db"
)

// openTestDB returns nil when TEST_DATABASE_URL is unset
func openTestDB(t *testing.T) *db.PostgresDB {
	t.Helper()
	dsn := config.GetEnv("TEST_DATABASE_URL", "")
	if dsn == "" {
		return nil
	}

	database, err := db.NewPostgresDBFromURL(dsn, nil)
	require.NoError(t, err)
	t.Cleanup(database.Close)

	require.NoError(t, migrations.NewMigrator(database).Migrate(context.Background(), migrations.Embedded()))
	return database
}

func truncate(t *testing.T, database *db.PostgresDB) {
	t.Helper()
	_, err := database.Pool.Exec(context.Background(), `TRUNCATE enrollments, students, subjects, accounts CASCADE`)
	require.NoError(t, err)
}

func TestContract(t *testing.T) {
	database := openTestDB(t)
	if database == nil {
		t.Skip("TEST_DATABASE_URL not set")
	}

	repotest.Run(t, func(t *testing.T) *repositories.Repositories {
		truncate(t, database)
		return NewRepositories(database.Pool)
	}, uuid.NewString())
}

func TestMigrateIsIdempotent(t *testing.T) {
	database := openTestDB(t)
	if database == nil {
		t.Skip("TEST_DATABASE_URL not set")
	}

	assert.NoError(t, migrations.NewMigrator(database).Migrate(context.Background(), migrations.Embedded()))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_x\\y`, escapeLike(`50% off_x\y`))
}

func TestClassify(t *testing.T) {
	assert.Nil(t, classify("op", nil))
	assert.True(t, validID(uuid.NewString()))
	assert.False(t, validID("abc"))
	assert.Nil(t, nullableID(""))
}
