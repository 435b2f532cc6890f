package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"placehold/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMigrate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, model := range PersistentModels() {
		assert.True(t, db.Migrator().HasTable(model), "missing table for %T", model)
	}

	// Unique constraints come out of the migration, not just the struct tags
	u1 := &models.User{Username: "a", Email: "same@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(u1).Error)
	u2 := &models.User{Username: "b", Email: "same@example.com", PasswordHash: "x"}
	err = db.Create(u2).Error
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}

func TestPersistentModels(t *testing.T) {
	ms := PersistentModels()
	require.Len(t, ms, 4)
}

func TestSlogGormLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := &SlogGormLogger{
		logger: slog.New(slog.NewJSONHandler(&buf, nil)),
		Config: logger.Config{LogLevel: logger.Warn},
	}

	ctx := context.Background()
	l.Info(ctx, "should be dropped")
	assert.Empty(t, buf.String())

	l.Warn(ctx, "should appear")
	assert.Contains(t, buf.String(), "should appear")
}

func TestSlogGormLogger_LogMode(t *testing.T) {
	base := &SlogGormLogger{
		logger: slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil)),
		Config: logger.Config{LogLevel: logger.Warn},
	}

	silent := base.LogMode(logger.Silent)
	require.NotSame(t, base, silent)
	assert.Equal(t, logger.Warn, base.Config.LogLevel)
}

func TestSlogGormLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	l := &SlogGormLogger{
		logger: slog.New(slog.NewJSONHandler(&buf, nil)),
		Config: logger.Config{
			LogLevel:      logger.Warn,
			SlowThreshold: time.Millisecond,
		},
	}
	ctx := context.Background()
	fc := func() (string, int64) { return "SELECT 1", 1 }

	// Fast successful query at Warn level stays quiet
	l.Trace(ctx, time.Now(), fc, nil)
	assert.Empty(t, buf.String())

	// Slow query crosses the threshold
	l.Trace(ctx, time.Now().Add(-time.Second), fc, nil)
	assert.Contains(t, buf.String(), "slow query")

	// Errors are always reported
	buf.Reset()
	l.Trace(ctx, time.Now(), fc, errors.New("syntax error"))
	assert.Contains(t, buf.String(), "query error")
}
