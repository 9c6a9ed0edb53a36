package testutil

import (
	"testing"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/infrastructure/persistence/postgres/connection"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// NewDB opens a private in-memory SQLite database and migrates the given models.
func NewDB(t testing.TB, models ...interface{}) *connection.Database {
	t.Helper()
	db, err := connection.NewInMemory("test_" + uuid.NewString())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	if len(models) > 0 {
		require.NoError(t, db.AutoMigrate(models...))
	}
	return db
}

func Ptr[T any](v T) *T {
	return &v
}
