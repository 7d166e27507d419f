package service

import (
	"context"
	"time"

	"damper/internal/config"
	"damper/internal/damper"
	"damper/internal/engine"
	"damper/internal/logger"
	"damper/internal/models"
	"damper/internal/repository"
	"damper/internal/timerange"
)

type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Node changes parameters and queries the hosted damper node.
type Node interface {
	UpdateParams(ctx context.Context, u ParamsUpdate) (engine.Applied, error)
	Evaluate(ctx context.Context, t timerange.Time) (engine.Result, error)
	Invalidation(ctx context.Context, query timerange.Interval) damper.Invalidation
	CacheSetup(ctx context.Context) damper.CacheRequirement
}

// Monitoring exposes a read-only snapshot of the node.
type Monitoring interface {
	GetState(ctx context.Context) (models.NodeState, error)
}

// EventLog exposes the append-only node event history.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.NodeEvent, error)
}

// Playback advances currentTime in the background until ctx is canceled.
type Playback interface {
	Run(ctx context.Context, tick time.Duration)
}

type Service struct {
	Node
	Monitoring
	EventLog
	Playback
	Authorization
}

// NewService wires repositories and the node session into the services.
func NewService(repos *repository.Repository, session *engine.Session, cfg config.Config, log *logger.Logger) *Service {
	return &Service{
		Node:          NewNodeService(session, repos.ParamRepo, repos.EventRepo, log),
		Monitoring:    NewMonitoringService(session),
		EventLog:      NewEventLogService(repos.EventRepo),
		Playback:      NewPlaybackService(session, repos.EventRepo, cfg.Playback, log),
		Authorization: NewAuthService(repos.Auth, cfg.Auth),
	}
}
