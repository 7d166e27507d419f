package service

import (
	"context"
	"sync"

	"damper/internal/damper"
	"damper/internal/engine"
	"damper/internal/models"
	"damper/internal/repository"
	"damper/internal/timerange"
)

type paramRepoStub struct {
	loadResp models.NodeParams
	loadErr  error
	saveErr  error
	saves    []models.NodeParams
}

func (s *paramRepoStub) Save(ctx context.Context, p models.NodeParams) error {
	s.saves = append(s.saves, p)
	return s.saveErr
}

func (s *paramRepoStub) Load(ctx context.Context) (models.NodeParams, error) {
	return s.loadResp, s.loadErr
}

type eventRepoStub struct {
	mu        sync.Mutex
	appendErr error
	appends   []models.NodeEvent

	listResp []models.NodeEvent
	listErr  error
	gotList  repository.EventFilter
	calls    int
}

func (e *eventRepoStub) Append(ctx context.Context, ev models.NodeEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.appends = append(e.appends, ev)
	return e.appendErr
}

func (e *eventRepoStub) List(ctx context.Context, f repository.EventFilter) ([]models.NodeEvent, error) {
	e.calls++
	e.gotList = f
	return e.listResp, e.listErr
}

func (e *eventRepoStub) types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.appends))
	for i, ev := range e.appends {
		out[i] = ev.Type
	}
	return out
}

func newTestSession(maxReplay int) *engine.Session {
	return engine.NewSession(damper.NewSchema(), engine.Options{FrameRate: 1, MaxReplayFrames: maxReplay})
}

func sec(s float64) timerange.Time { return timerange.FromSeconds(s) }

func f64(v float64) *float64 { return &v }

func boolp(v bool) *bool { return &v }

func span(a, b timerange.Time) *timerange.Interval {
	r := timerange.New(a, b)
	return &r
}
