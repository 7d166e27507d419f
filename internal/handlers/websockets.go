package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"damper/internal/timerange"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12
	defaultInterval  = 1 * time.Second
	maxInterval      = 10 * time.Second
	maxIntervalMilli = 10_000
	requestBacklog   = 8
)

// Message types on /ws.
const (
	wsTypeState    = "node_state"
	wsTypeEvaluate = "evaluate"
	wsTypeResult   = "result"
	wsTypeError    = "error"
)

type wsEnvelope struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// wsRequest is a client message. Only "evaluate" is understood.
type wsRequest struct {
	Type  string   `json:"type"`
	TimeS *float64 `json:"time_s"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origins once the UI host is known
}

const errWSAuthRequired = "evaluate requires a valid token"

// wsConnect streams node snapshots every interval and answers evaluate
// requests. All writes happen on this goroutine. Snapshots are public;
// evaluate needs a bearer token on the upgrade request, in the Authorization
// header or the token query parameter.
func (h *Handler) wsConnect(c *gin.Context) {
	interval := h.parseInterval(c)
	authed := h.wsAuthenticated(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Errorw("ws_upgrade_failed", "err", err)
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	ctx := c.Request.Context()
	done := make(chan struct{})
	requests := make(chan wsRequest, requestBacklog)
	go h.startReader(conn, requests, done)

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	if err := h.sendState(ctx, conn); err != nil {
		h.log.Infow("ws_write_failed_initial", "err", err)
		return
	}

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case req := <-requests:
			if err := h.answer(ctx, conn, req, authed); err != nil {
				h.log.Infow("ws_write_failed", "err", err)
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.log.Infow("ws_ping_failed", "err", err)
				return
			}
		case <-ticker.C:
			if err := h.sendState(ctx, conn); err != nil {
				h.log.Infow("ws_write_failed", "err", err)
				return
			}
		}
	}
}

// parseInterval reads ?interval=2s or ?interval_ms=2000 within bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}
	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}
	return defaultInterval
}

// startReader decodes client messages until the connection closes. Requests
// that do not fit the backlog are dropped.
func (h *Handler) startReader(conn *websocket.Conn, requests chan<- wsRequest, done chan<- struct{}) {
	defer close(done)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			h.log.Infow("ws_read_closed", "err", err)
			return
		}
		var req wsRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			h.log.Debugw("ws_bad_message", "err", err)
			continue
		}
		select {
		case requests <- req:
		default:
			h.log.Warnw("ws_request_dropped", "type", req.Type)
		}
	}
}

// wsAuthenticated reports whether the upgrade request carries a valid token.
func (h *Handler) wsAuthenticated(c *gin.Context) bool {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		token = c.Query("token")
	}
	if token == "" {
		return false
	}
	if _, err := h.services.ParseToken(token); err != nil {
		h.log.Debugw("ws_token_rejected", "err", err)
		return false
	}
	return true
}

func (h *Handler) answer(ctx context.Context, conn *websocket.Conn, req wsRequest, authed bool) error {
	var env wsEnvelope
	switch {
	case req.Type != wsTypeEvaluate:
		env = wsEnvelope{Type: wsTypeError, Error: "unknown message type " + strconv.Quote(req.Type)}
	case !authed:
		env = wsEnvelope{Type: wsTypeError, Error: errWSAuthRequired}
	case req.TimeS == nil:
		env = wsEnvelope{Type: wsTypeError, Error: "time_s is required"}
	default:
		res, err := h.services.Node.Evaluate(ctx, timerange.FromSeconds(*req.TimeS))
		if err != nil {
			env = wsEnvelope{Type: wsTypeError, Error: err.Error()}
		} else {
			env = wsEnvelope{Type: wsTypeResult, Data: evaluateResponse(res)}
		}
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(env)
}

// sendState writes the current node snapshot.
func (h *Handler) sendState(ctx context.Context, conn *websocket.Conn) error {
	st, err := h.services.Monitoring.GetState(ctx)
	if err != nil {
		h.log.Errorw("ws_get_state_failed", "err", err)
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(wsEnvelope{Type: wsTypeState, Data: st})
}
