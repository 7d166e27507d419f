package service

import (
	"context"
	"fmt"
	"time"

	"damper/internal/damper"
	"damper/internal/engine"
	"damper/internal/logger"
	"damper/internal/models"
	"damper/internal/repository"
	"damper/internal/timerange"

	"github.com/google/uuid"
)

type NodeService struct {
	session   *engine.Session
	paramRepo repository.ParamRepo
	eventRepo repository.EventRepo
	log       *logger.Logger
}

func NewNodeService(session *engine.Session, paramRepo repository.ParamRepo, eventRepo repository.EventRepo, log *logger.Logger) *NodeService {
	return &NodeService{session: session, paramRepo: paramRepo, eventRepo: eventRepo, log: log}
}

// UpdateParams applies u to the session, persists the storable parameters and
// logs PARAM_CHANGE and INVALIDATE events. Once the session has accepted the
// change, persistence failures are logged and not returned.
func (s *NodeService) UpdateParams(ctx context.Context, u ParamsUpdate) (engine.Applied, error) {
	change, err := u.change()
	if err != nil {
		return engine.Applied{}, err
	}
	applied, err := s.session.Apply(change)
	if err != nil {
		return engine.Applied{}, fmt.Errorf("apply params: %w", err)
	}

	now := time.Now().UTC()
	if len(change.Values) > 0 {
		params := paramsFromValues(s.session.StorableValues())
		params.UpdatedAt = now
		if err := s.paramRepo.Save(ctx, params); err != nil {
			s.log.Errorw("node_params_save_failed", "err", err)
		}
		s.appendEvent(ctx, models.NodeEvent{
			EventID:     uuid.NewString(),
			OccurredAt:  now,
			Type:        models.EventParamChange,
			Description: fmt.Sprintf("%d parameter(s) changed", len(change.Values)),
			Metadata:    names(change.Values),
		})
	}

	inv := applied.Invalidation
	s.log.Infow("node_invalidated", "range", inv.Range.String(), "reason", inv.Reason, "evicted", applied.Evicted)
	s.appendEvent(ctx, models.NodeEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  now,
		Type:        models.EventInvalidate,
		Description: fmt.Sprintf("invalidated %s (%s)", inv.Range, inv.Reason),
		Metadata: map[string]any{
			"range":              inv.Range,
			"reason":             inv.Reason,
			"evicted":            applied.Evicted,
			"simulation_support": applied.Requirement.SimulationSupport,
		},
	})
	return applied, nil
}

func (s *NodeService) appendEvent(ctx context.Context, ev models.NodeEvent) {
	if err := s.eventRepo.Append(ctx, ev); err != nil {
		s.log.Errorw("node_event_append_failed", "type", ev.Type, "err", err)
	}
}

// Evaluate returns the node output at t.
func (s *NodeService) Evaluate(ctx context.Context, t timerange.Time) (engine.Result, error) {
	res, err := s.session.Evaluate(t)
	if err != nil {
		s.log.Warnw("node_evaluate_failed", "time", t.String(), "err", err)
		return engine.Result{}, err
	}
	return res, nil
}

// Invalidation describes what query would invalidate without evicting anything.
func (s *NodeService) Invalidation(ctx context.Context, query timerange.Interval) damper.Invalidation {
	return s.session.Invalidation(query)
}

func (s *NodeService) CacheSetup(ctx context.Context) damper.CacheRequirement {
	return s.session.CacheSetup()
}
