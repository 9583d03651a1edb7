package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Tijo-11/Vector-Ecom-sub001/internal/clock"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/payment/domain"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/payment/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:scheduler_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.RunRecord{}))
	t.Cleanup(func() {
		db.Exec("DELETE FROM payment_reconciliation_runs")
	})
	return db
}

func TestRunOnceSweepsStaleRuns(t *testing.T) {
	db := newTestDB(t)
	repo := repository.Provide()
	now := time.Unix(1700000000, 0).UTC()
	fake := clock.NewFakeClock(now)

	sched, err := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: fake,
		Repo:  repo,
	})
	require.NoError(t, err)

	ctx := context.Background()
	stale := &domain.RunRecord{
		ID:             snowflake.ID(1),
		OrderID:        "ord_stale",
		ProofKind:      string(domain.ProofGatewaySession),
		IdempotencyKey: "key_stale",
		State:          string(domain.StateVerifying),
		StartedAt:      now.Add(-time.Hour),
	}
	fresh := &domain.RunRecord{
		ID:             snowflake.ID(2),
		OrderID:        "ord_fresh",
		ProofKind:      string(domain.ProofNone),
		IdempotencyKey: "key_fresh",
		State:          string(domain.StateVerifying),
		StartedAt:      now.Add(-time.Minute),
	}
	for _, run := range []*domain.RunRecord{stale, fresh} {
		inserted, err := repo.InsertRun(ctx, db, run)
		require.NoError(t, err)
		require.True(t, inserted)
	}

	require.NoError(t, sched.RunOnce(ctx))

	swept, err := repo.FindRunByKey(ctx, db, "key_stale")
	require.NoError(t, err)
	require.NotNil(t, swept)
	assert.Equal(t, string(domain.StateAbandoned), swept.State)
	assert.NotNil(t, swept.FinishedAt)

	kept, err := repo.FindRunByKey(ctx, db, "key_fresh")
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.Equal(t, string(domain.StateVerifying), kept.State)
}

func TestNewRejectsMissingDependencies(t *testing.T) {
	_, err := New(Params{Log: zap.NewNop()})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
