package repository

import (
	"context"
	"testing"
	"time"

	"eduapp-backend/internal/dispatchlog/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) DispatchRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every new connection would open a fresh in-memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo, err := NewGormDispatchRepository(db)
	require.NoError(t, err)
	return repo
}

func TestGormDispatchRepository_CreateAndList(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	first := &domain.DispatchRecord{Trigger: "news", Mode: domain.ModeTopic, Target: "news", NewsID: "n1", SuccessCount: 1, CreatedAt: base}
	second := &domain.DispatchRecord{Trigger: "reply", Mode: domain.ModeTokens, Target: "u1", NewsID: "n1", Recipients: 2, SuccessCount: 1, FailureCount: 1, CreatedAt: base.Add(time.Minute)}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	assert.NotEmpty(t, first.ID)

	records, total, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, records, 2)
	assert.Equal(t, "reply", records[0].Trigger)
	assert.Equal(t, domain.ModeTokens, records[0].Mode)
	assert.Equal(t, 1, records[0].FailureCount)

	page, total, err := repo.List(ctx, 1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, page, 1)
	assert.Equal(t, "news", page[0].Trigger)
}

func TestGormDispatchRepository_CreateSetsDefaults(t *testing.T) {
	repo := newTestRepo(t)
	rec := &domain.DispatchRecord{Trigger: "news", Mode: domain.ModeTopic}

	require.NoError(t, repo.Create(context.Background(), rec))

	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())
}
