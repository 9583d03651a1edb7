package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Tijo-11/Vector-Ecom-sub001/internal/clock"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/payment/domain"
)

var ErrInvalidConfig = errors.New("scheduler dependencies are incomplete")

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository

	Config Config `optional:"true"`
}

// Scheduler periodically closes out reconciliation runs left in the
// verifying state by a crashed or restarted process. An abandoned run is
// safe (settlement is idempotent server-side); the sweep only keeps run
// records from lingering as in-flight forever.
type Scheduler struct {
	db    *gorm.DB
	log   *zap.Logger
	cfg   Config
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.Clock == nil || p.Repo == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:    p.DB,
		log:   p.Log.Named("scheduler"),
		cfg:   p.Config.withDefaults(),
		clock: p.Clock,
		repo:  p.Repo,
	}, nil
}

// RunOnce executes a single sweep.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	now := s.clock.Now()
	cutoff := now.Add(-s.cfg.StaleThreshold)

	swept, err := s.repo.SweepStaleRuns(ctx, s.db, cutoff, now, s.cfg.BatchSize)
	if err != nil {
		return err
	}
	if swept > 0 {
		s.log.Info("swept stale reconciliation runs",
			zap.Int64("count", swept),
			zap.Time("cutoff", cutoff),
		)
	}
	return nil
}

// RunForever sweeps on a fixed interval until ctx is torn down.
func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
