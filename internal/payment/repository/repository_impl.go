package repository

import (
	"context"
	"time"

	"github.com/Tijo-11/Vector-Ecom-sub001/internal/payment/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertRun(ctx context.Context, db *gorm.DB, run *domain.RunRecord) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`INSERT INTO payment_reconciliation_runs (
			id, order_id, proof_kind, idempotency_key, state, attempts,
			proof, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (idempotency_key) DO NOTHING`,
		run.ID,
		run.OrderID,
		run.ProofKind,
		run.IdempotencyKey,
		run.State,
		run.Attempts,
		run.Proof,
		run.StartedAt,
		run.FinishedAt,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) FindRunByKey(ctx context.Context, db *gorm.DB, idempotencyKey string) (*domain.RunRecord, error) {
	var item domain.RunRecord
	err := db.WithContext(ctx).Raw(
		`SELECT id, order_id, proof_kind, idempotency_key, state, attempts,
			proof, started_at, finished_at
		 FROM payment_reconciliation_runs
		 WHERE idempotency_key = ?
		 LIMIT 1`,
		idempotencyKey,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) SweepStaleRuns(ctx context.Context, db *gorm.DB, cutoff time.Time, finishedAt time.Time, limit int) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE payment_reconciliation_runs
		 SET state = ?, finished_at = ?
		 WHERE id IN (
			SELECT id FROM payment_reconciliation_runs
			WHERE state = ? AND started_at < ?
			ORDER BY started_at
			LIMIT ?
		 )`,
		string(domain.StateAbandoned),
		finishedAt,
		string(domain.StateVerifying),
		cutoff,
		limit,
	)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repo) MarkFinished(ctx context.Context, db *gorm.DB, id snowflake.ID, state domain.State, attempts int, finishedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE payment_reconciliation_runs
		 SET state = ?, attempts = ?, finished_at = ?
		 WHERE id = ?`,
		string(state),
		attempts,
		finishedAt,
		id,
	).Error
}
