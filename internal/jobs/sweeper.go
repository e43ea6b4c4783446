package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"memestash/api/internal/config"
)

// KeyLister enumerates stored object keys past a minimum age.
type KeyLister interface {
	ListKeysOlderThan(ctx context.Context, age time.Duration) ([]string, error)
	Delete(ctx context.Context, key string) error
}

// RecordChecker answers whether a storage key is still referenced by a
// catalog record.
type RecordChecker interface {
	ExistsByStorageKey(ctx context.Context, key string) (bool, error)
}

// Sweeper periodically removes stored objects that no catalog record
// references. Objects younger than MinAge are skipped so an upload whose
// record has not been committed yet is never reaped.
type Sweeper struct {
	cron  *cron.Cron
	store KeyLister
	memes RecordChecker
	cfg   config.SweepConfig
	log   zerolog.Logger
}

func NewSweeper(store KeyLister, memes RecordChecker, cfg config.SweepConfig, log zerolog.Logger) *Sweeper {
	return &Sweeper{
		cron:  cron.New(cron.WithSeconds()),
		store: store,
		memes: memes,
		cfg:   cfg,
		log:   log,
	}
}

func (s *Sweeper) Start() error {
	if !s.cfg.Enabled {
		return nil
	}
	if _, err := s.cron.AddFunc(s.cfg.Schedule, s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := s.Run(ctx); err != nil {
		s.log.Error().Err(err).Msg("orphan sweep failed")
	}
}

// Run executes one sweep pass. Exposed so it can be triggered outside the
// cron schedule.
func (s *Sweeper) Run(ctx context.Context) error {
	keys, err := s.store.ListKeysOlderThan(ctx, s.cfg.MinAge)
	if err != nil {
		return err
	}

	removed := 0
	for _, key := range keys {
		exists, err := s.memes.ExistsByStorageKey(ctx, key)
		if err != nil {
			s.log.Error().Err(err).Str("key", key).Msg("orphan check failed")
			continue
		}
		if exists {
			continue
		}
		if err := s.store.Delete(ctx, key); err != nil {
			s.log.Error().Err(err).Str("key", key).Msg("orphan delete failed")
			continue
		}
		removed++
	}

	if removed > 0 {
		s.log.Info().Int("removed", removed).Msg("orphan sweep completed")
	}
	return nil
}
