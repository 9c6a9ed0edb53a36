package connection

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func newTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := NewInMemory(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.AutoMigrate(&widget{}))
	return db
}

func TestInTransaction_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := db.InTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, db.Conn(ctx).Create(&widget{Name: "a"}).Error)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Conn(ctx).Model(&widget{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestInTransaction_NestedCallsJoinOuter(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	err := db.InTransaction(ctx, func(ctx context.Context) error {
		outer := db.Conn(ctx)
		return db.InTransaction(ctx, func(ctx context.Context) error {
			assert.Same(t, outer, db.Conn(ctx))
			return db.Conn(ctx).Create(&widget{Name: "nested"}).Error
		})
	})
	require.NoError(t, err)

	var got widget
	require.NoError(t, db.Conn(ctx).First(&got).Error)
	assert.Equal(t, "nested", got.Name)
}

func TestForUpdate_IsAcceptedBySQLite(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.Conn(ctx).Create(&widget{Name: "locked"}).Error)

	err := db.InTransaction(ctx, func(ctx context.Context) error {
		var w widget
		return ForUpdate(db.Conn(ctx)).First(&w).Error
	})
	assert.NoError(t, err)
	assert.NoError(t, db.HealthCheck(ctx))
	assert.Equal(t, "sqlite", db.Driver())
}
