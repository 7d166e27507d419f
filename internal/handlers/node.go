package handlers

import (
	"errors"
	"net/http"

	"damper/internal/damper"
	"damper/internal/engine"
	"damper/internal/repository"
	"damper/internal/service"
	"damper/internal/timerange"

	"github.com/gin-gonic/gin"
)

const (
	statusOK      = "ok"
	statusUpdated = "updated"

	errGetState        = "failed to load state"
	errInvalidBodyPref = "invalid body: "
)

// statusFor maps service and engine errors onto HTTP codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidParams),
		errors.Is(err, service.ErrInvalidPassword),
		errors.Is(err, damper.ErrKindMismatch),
		errors.Is(err, damper.ErrUnknownParameter),
		errors.Is(err, engine.ErrNotWritable),
		errors.Is(err, engine.ErrEngineDriven):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrReplayLimit),
		errors.Is(err, repository.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// logAndJSONError logs err under logKey and writes {"error": msg}. Client
// errors carry the error text, server errors the generic userMsg.
func (h *Handler) logAndJSONError(c *gin.Context, userMsg, logKey string, err error, kv ...any) {
	code := statusFor(err)
	fields := append([]any{"err", err, "status", code}, kv...)
	if code >= http.StatusInternalServerError {
		h.log.Errorw(logKey, fields...)
		c.JSON(code, gin.H{"error": userMsg})
		return
	}
	h.log.Infow(logKey, fields...)
	c.JSON(code, gin.H{"error": err.Error()})
}

func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.log.Infow("bad_request_body", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return false
	}
	return true
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}

// @Summary      Get node state
// @Tags         node
// @Produce      json
// @Success      200  {object}  models.NodeState
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/node/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	st, err := h.services.Monitoring.GetState(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, errGetState, "node_get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Update node parameters
// @Description  Applies any subset of target, damping_factor, simulation_enabled, simulation_start_s for all time, or reports an upstream change over an edit span on its own. The cached frames the change invalidates are evicted.
// @Tags         node
// @Accept       json
// @Produce      json
// @Param        body  body      UpdateParamsRequest  true  "Parameter change"
// @Success      200   {object}  map[string]interface{}  "status, invalidation, evicted, cache_setup, state"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/node/params [put]
// @Security     BearerAuth
func (h *Handler) updateParams(c *gin.Context) {
	var req UpdateParamsRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	u := service.ParamsUpdate{
		Target:            req.Target,
		DampingFactor:     req.DampingFactor,
		SimulationEnabled: req.SimulationEnabled,
		SimulationStartS:  req.SimulationStartS,
	}
	if req.Edit != nil {
		edit := req.Edit.interval()
		u.Edit = &edit
	}

	ctx := c.Request.Context()
	applied, err := h.services.Node.UpdateParams(ctx, u)
	if err != nil {
		h.logAndJSONError(c, "failed to update params", "node_update_params_failed", err)
		return
	}

	resp := gin.H{
		"status":       statusUpdated,
		"invalidation": invalidationResponse(applied.Invalidation),
		"evicted":      applied.Evicted,
		"cache_setup":  cacheSetupResponse(applied.Requirement),
	}
	if st, err := h.services.Monitoring.GetState(ctx); err == nil {
		resp["state"] = st
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary      Evaluate node output
// @Tags         node
// @Accept       json
// @Produce      json
// @Param        body  body      EvaluateRequest  true  "Evaluation time"
// @Success      200   {object}  EvaluateResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string  "replay limit exceeded"
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/node/evaluate [post]
// @Security     BearerAuth
func (h *Handler) evaluate(c *gin.Context) {
	var req EvaluateRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	res, err := h.services.Node.Evaluate(c.Request.Context(), timerange.FromSeconds(*req.TimeS))
	if err != nil {
		h.logAndJSONError(c, "failed to evaluate", "node_evaluate_failed", err, "time_s", *req.TimeS)
		return
	}
	c.JSON(http.StatusOK, evaluateResponse(res))
}

// @Summary      Describe invalidation
// @Description  Returns the span of cached frames an upstream change over the given span would invalidate. Nothing is evicted.
// @Tags         node
// @Accept       json
// @Produce      json
// @Param        body  body      SpanRequest  true  "Invalidated span; omitted bounds are infinite"
// @Success      200   {object}  InvalidationResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/node/invalidation [post]
// @Security     BearerAuth
func (h *Handler) invalidation(c *gin.Context) {
	var req SpanRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	inv := h.services.Node.Invalidation(c.Request.Context(), req.interval())
	c.JSON(http.StatusOK, invalidationResponse(inv))
}

// @Summary      Cache setup
// @Tags         node
// @Produce      json
// @Success      200  {object}  CacheSetupResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/node/cache-setup [get]
// @Security     BearerAuth
func (h *Handler) cacheSetup(c *gin.Context) {
	c.JSON(http.StatusOK, cacheSetupResponse(h.services.Node.CacheSetup(c.Request.Context())))
}
