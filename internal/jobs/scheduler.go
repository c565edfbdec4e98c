// Package jobs runs the periodic maintenance work of the API process.
package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// TokenPurger clears pending-action tokens issued more than ttl ago.
type TokenPurger interface {
	PurgeStaleTokens(ctx context.Context, ttl time.Duration) (int64, error)
}

type Scheduler struct {
	cron     *cron.Cron
	purger   TokenPurger
	tokenTTL time.Duration
}

func NewScheduler(purger TokenPurger, tokenTTL time.Duration) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		purger:   purger,
		tokenTTL: tokenTTL,
	}
}

// Start registers the purge job on spec (six fields, seconds first) and
// starts the cron runner.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.PurgeTokens); err != nil {
		return fmt.Errorf("schedule token purge %q: %w", spec, err)
	}

	log.Printf("[info] cron scheduler started token_purge=%q pending_token_ttl=%s", spec, s.tokenTTL)
	s.cron.Start()
	return nil
}

// Stop waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) PurgeTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := s.purger.PurgeStaleTokens(ctx, s.tokenTTL)
	if err != nil {
		log.Printf("[error] operation=jobs.purge_tokens error=%v", err)
		return
	}
	if n > 0 {
		log.Printf("[info] operation=jobs.purge_tokens cleared=%d", n)
	}
}
