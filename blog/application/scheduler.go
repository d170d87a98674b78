package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/blogcafe/blogcafe/blog/domain"
	"github.com/blogcafe/blogcafe/internal/telemetry"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultSweepInterval is how often the sweeper looks for due posts.
	DefaultSweepInterval = time.Minute

	// DefaultSweepBatchSize caps the posts handled in one tick. A backlog
	// larger than this drains over multiple ticks instead of producing an
	// unbounded work spike after downtime.
	DefaultSweepBatchSize = 50
)

// SweepResult summarizes one sweep tick.
type SweepResult struct {
	Published int `json:"published"`
	Failed    int `json:"failed"`
}

// Sweeper periodically promotes due scheduled posts to published.
//
// All scheduling state lives in the post store, not in memory: a missed or
// interrupted tick is simply caught up by a later one, so the process can be
// stopped and restarted at any point.
type Sweeper struct {
	repo      domain.PostRepository
	interval  time.Duration
	batchSize int

	// nowFn supplies the clock; replaced in tests.
	nowFn func() time.Time

	// tickMu serializes ticks so a slow batch can never overlap the next
	// timer fire or a manually triggered sweep.
	tickMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	publishedTotal  telemetry.Counter
	itemErrorsTotal telemetry.Counter
	tickSeconds     telemetry.Histogram
}

func NewSweeper(repo domain.PostRepository, interval time.Duration, batchSize int) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if batchSize <= 0 {
		batchSize = DefaultSweepBatchSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Sweeper{
		repo:            repo,
		interval:        interval,
		batchSize:       batchSize,
		nowFn:           time.Now,
		ctx:             ctx,
		cancel:          cancel,
		publishedTotal:  telemetry.NewCounter("sweep_published_total", "Scheduled posts promoted to published by the sweeper"),
		itemErrorsTotal: telemetry.NewCounter("sweep_item_errors_total", "Individual posts that failed to publish during a sweep tick"),
		tickSeconds:     telemetry.NewHistogram("sweep_tick_seconds", "Wall time of a sweep tick"),
	}
}

// Start launches the ticking loop. It returns immediately.
func (s *Sweeper) Start() {
	ticker := time.NewTicker(s.interval)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Tick(s.ctx); err != nil {
					log.Error().Err(err).Msg("Sweep tick failed")
				}
			}
		}
	}()
	log.Info().Dur("interval", s.interval).Int("batchSize", s.batchSize).Msg("Post sweeper started")
}

// Stop halts the loop and waits for an in-flight tick to finish. Due posts
// not yet processed are picked up by the first tick after the next Start.
func (s *Sweeper) Stop() {
	s.cancel()
	s.wg.Wait()
	log.Info().Msg("Post sweeper stopped")
}

// Tick runs one sweep: fetch up to batchSize due posts and publish each.
// A failure on one post is logged and counted but does not abort the rest
// of the batch.
func (s *Sweeper) Tick(ctx context.Context) (SweepResult, error) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	started := s.nowFn()
	defer func() {
		s.tickSeconds.Observe(s.nowFn().Sub(started).Seconds())
	}()

	now := started
	due, err := s.repo.FindDue(ctx, now, s.batchSize)
	if err != nil {
		return SweepResult{}, fmt.Errorf("failed to find due posts: %w", err)
	}

	var result SweepResult
	for _, p := range due {
		published, err := s.repo.MarkPublished(ctx, p.ID, now)
		if err != nil {
			result.Failed++
			s.itemErrorsTotal.Inc()
			log.Error().Err(err).Str("postID", p.ID).Msg("Failed to publish scheduled post")
			continue
		}
		if !published {
			// Lost the race to a concurrent publish-now. Harmless.
			continue
		}
		result.Published++
		s.publishedTotal.Inc()
		log.Info().Str("postID", p.ID).Str("slug", p.Slug).Msg("Published scheduled post")
	}

	return result, nil
}
