package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"damper/internal/config"
	"damper/internal/engine"
	"damper/internal/logger"
	"damper/internal/models"
	"damper/internal/repository"
	"damper/internal/timerange"

	"github.com/google/uuid"
)

// PlaybackService moves currentTime forward one frame per tick, looping over
// [start, end] when end > start.
type PlaybackService struct {
	session   *engine.Session
	eventRepo repository.EventRepo
	log       *logger.Logger
	enabled   bool
	start     timerange.Time
	end       timerange.Time

	mu     sync.Mutex
	cursor timerange.Time
}

func NewPlaybackService(session *engine.Session, eventRepo repository.EventRepo, cfg config.PlaybackConfig, log *logger.Logger) *PlaybackService {
	start := timerange.FromSeconds(cfg.StartS)
	return &PlaybackService{
		session:   session,
		eventRepo: eventRepo,
		log:       log,
		enabled:   cfg.Enabled,
		start:     start,
		end:       timerange.FromSeconds(cfg.EndS),
		cursor:    start,
	}
}

// Run ticks at the given interval until ctx is canceled. It returns at once
// when playback is disabled.
func (s *PlaybackService) Run(ctx context.Context, tick time.Duration) {
	if !s.enabled || tick <= 0 {
		return
	}
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_, _ = s.Step(ctx)
		}
	}
}

// Step evaluates the frame under the cursor and advances it. Failures are
// logged and recorded as ERROR events; the cursor advances either way.
func (s *PlaybackService) Step(ctx context.Context) (engine.Result, error) {
	s.mu.Lock()
	at := s.cursor
	s.cursor = s.next(at)
	s.mu.Unlock()

	res, err := s.session.Evaluate(at)
	if err == nil {
		return res, nil
	}

	s.log.Errorw("playback_evaluate_failed", "time", at.String(), "err", err)
	if aerr := s.eventRepo.Append(ctx, models.NodeEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  time.Now().UTC(),
		Type:        models.EventError,
		Description: fmt.Sprintf("evaluate at %s: %v", at, err),
		Metadata:    map[string]any{"time_s": at.Seconds()},
	}); aerr != nil {
		s.log.Errorw("playback_event_append_failed", "err", aerr)
	}
	return engine.Result{}, err
}

// Cursor returns the time the next Step evaluates.
func (s *PlaybackService) Cursor() timerange.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

func (s *PlaybackService) next(at timerange.Time) timerange.Time {
	n := at.Add(s.session.FrameStep())
	if s.end > s.start && n > s.end {
		return s.start
	}
	return n
}
