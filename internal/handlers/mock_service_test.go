package handlers

import (
	"context"
	"net/http"
	"sync"

	"damper/internal/damper"
	"damper/internal/engine"
	"damper/internal/models"
	"damper/internal/service"
	"damper/internal/timerange"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastGenUsername    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(ctx context.Context, username, password string) (int, error) {
	m.lastSignUpUsername = username
	return m.signUpID, m.signUpErr
}

func (m *mockAuth) GenerateToken(ctx context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	return m.genTokenToken, m.genTokenErr
}

func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockNode struct {
	mu sync.Mutex

	applied   engine.Applied
	updateErr error
	result    engine.Result
	evalErr   error
	inv       damper.Invalidation
	req       damper.CacheRequirement

	lastUpdate service.ParamsUpdate
	lastEval   timerange.Time
	lastQuery  timerange.Interval
	evalCalls  int
}

func (m *mockNode) UpdateParams(ctx context.Context, u service.ParamsUpdate) (engine.Applied, error) {
	m.lastUpdate = u
	return m.applied, m.updateErr
}

func (m *mockNode) Evaluate(ctx context.Context, t timerange.Time) (engine.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastEval = t
	m.evalCalls++
	if m.evalErr != nil {
		return engine.Result{}, m.evalErr
	}
	r := m.result
	r.Time = t
	return r, nil
}

func (m *mockNode) Invalidation(ctx context.Context, q timerange.Interval) damper.Invalidation {
	m.lastQuery = q
	return m.inv
}

func (m *mockNode) CacheSetup(ctx context.Context) damper.CacheRequirement {
	return m.req
}

type mockMonitoring struct {
	state models.NodeState
	err   error
}

func (m *mockMonitoring) GetState(ctx context.Context) (models.NodeState, error) {
	return m.state, m.err
}

type mockEventLog struct {
	resp []models.NodeEvent
	err  error
	last service.LogFilter
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.NodeEvent, error) {
	m.last = f
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewHandler(s, nil).InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func withAuth(req *http.Request) *http.Request {
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	return req
}
