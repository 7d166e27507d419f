package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"damper/internal/models"
	"damper/internal/service"
)

func TestLogsHandler_ListAndValidation(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	events := []models.NodeEvent{
		{EventID: "e1", OccurredAt: now, Type: models.EventParamChange, Description: "1 parameter(s) changed"},
		{EventID: "e2", OccurredAt: now.Add(time.Second), Type: models.EventInvalidate, Description: "invalidated"},
	}
	logs := &mockEventLog{resp: events}
	r := newTestRouter(&service.Service{Authorization: &mockAuth{parseID: 99}, EventLog: logs})

	for _, q := range []string{"?from=notatime", "?to=2025-13-01", "?limit=-1", "?limit=x"} {
		if w := do(r, http.MethodGet, "/api/v1/logs/"+q, ""); w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", q, w.Code)
		}
	}

	q := fmt.Sprintf("/api/v1/logs/?from=%s&to=2025-08-31&type=invalidate&limit=5", now.Format(time.RFC3339))
	w := do(r, http.MethodGet, q, "")
	if w.Code != http.StatusOK {
		t.Fatalf("logs status=%d, body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Count  int                `json:"count"`
		Events []models.NodeEvent `json:"events"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Count != 2 || len(out.Events) != 2 {
		t.Fatalf("unexpected response: %+v", out)
	}
	if !logs.last.From.Equal(now) || logs.last.Type != "invalidate" || logs.last.Limit != 5 {
		t.Fatalf("unexpected filter %+v", logs.last)
	}
	wantTo := time.Date(2025, 8, 31, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
	if !logs.last.To.Equal(wantTo) {
		t.Fatalf("date-only 'to' should cover the day: %v", logs.last.To)
	}
}

func TestLogsHandler_ServiceErrors(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: bad range", service.ErrInvalidParams), http.StatusBadRequest},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		r := newTestRouter(&service.Service{Authorization: &mockAuth{}, EventLog: &mockEventLog{err: tc.err}})
		if w := do(r, http.MethodGet, "/api/v1/logs/", ""); w.Code != tc.want {
			t.Fatalf("%v: status=%d, want %d", tc.err, w.Code, tc.want)
		}
	}
}

func TestParseQueryTime(t *testing.T) {
	cases := map[string]time.Time{
		"2025-08-27T15:04:05Z":      time.Date(2025, 8, 27, 15, 4, 5, 0, time.UTC),
		"2025-08-27T17:04:05+02:00": time.Date(2025, 8, 27, 15, 4, 5, 0, time.UTC),
		"2025-08-27 15:04:05":       time.Date(2025, 8, 27, 15, 4, 5, 0, time.UTC),
		"2025-08-27":                time.Date(2025, 8, 27, 0, 0, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got, err := parseQueryTime(in)
		if err != nil || !got.Equal(want) || got.Location() != time.UTC {
			t.Fatalf("parseQueryTime(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := parseQueryTime("yesterday"); err == nil {
		t.Fatalf("expected error")
	}
}
