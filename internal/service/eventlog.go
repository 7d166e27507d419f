package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"damper/internal/models"
	"damper/internal/repository"
)

const maxLogLimit = 1000

type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

var (
	errInvalidTimeRange = errors.New("invalid time range: From must be <= To")
	errInvalidLimit     = errors.New("invalid limit: must be >= 0")
)

func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeFilter validates f and caps the limit.
func normalizeFilter(f LogFilter) (repository.EventFilter, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return repository.EventFilter{}, errInvalidTimeRange
	}
	if f.Limit < 0 {
		return repository.EventFilter{}, errInvalidLimit
	}
	limit := f.Limit
	if limit == 0 || limit > maxLogLimit {
		limit = maxLogLimit
	}
	return repository.EventFilter{
		From:  from,
		To:    to,
		Type:  strings.ToUpper(strings.TrimSpace(f.Type)),
		Limit: limit,
	}, nil
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.NodeEvent, error) {
	rf, err := normalizeFilter(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return s.eventRepo.List(ctx, rf)
}
