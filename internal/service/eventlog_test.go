package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"damper/internal/models"
)

func TestNormalizeFilter(t *testing.T) {
	t.Parallel()

	fromLocal := time.Date(2025, time.September, 10, 10, 0, 0, 0, time.FixedZone("UTC+2", 2*3600))
	toUTC := time.Date(2025, time.September, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		in        LogFilter
		wantFrom  time.Time
		wantType  string
		wantLimit int
		wantErr   error
	}{
		{
			name:      "zero filter gets the default limit",
			in:        LogFilter{},
			wantLimit: maxLogLimit,
		},
		{
			name: "from after to",
			in: LogFilter{
				From: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
				To:   time.Date(2025, 1, 1, 23, 0, 0, 0, time.UTC),
			},
			wantErr: errInvalidTimeRange,
		},
		{
			name:    "negative limit",
			in:      LogFilter{Limit: -1},
			wantErr: errInvalidLimit,
		},
		{
			name:      "normalize tz, type and cap limit",
			in:        LogFilter{From: fromLocal, To: toUTC, Type: " invalidate ", Limit: 5000},
			wantFrom:  time.Date(2025, time.September, 10, 8, 0, 0, 0, time.UTC),
			wantType:  models.EventInvalidate,
			wantLimit: maxLogLimit,
		},
		{
			name:      "small limit kept",
			in:        LogFilter{Limit: 10},
			wantLimit: 10,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := normalizeFilter(tc.in)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected err %v; got %v", tc.wantErr, err)
			}
			if tc.wantErr != nil {
				return
			}
			if !tc.wantFrom.IsZero() && (!got.From.Equal(tc.wantFrom) || got.From.Location() != time.UTC) {
				t.Fatalf("from: got %v; want %v", got.From, tc.wantFrom)
			}
			if got.Type != tc.wantType || got.Limit != tc.wantLimit {
				t.Fatalf("got %+v", got)
			}
		})
	}
}

func TestEventLogService_List(t *testing.T) {
	t.Parallel()

	repo := &eventRepoStub{listResp: []models.NodeEvent{{EventID: "1"}}}
	svc := NewEventLogService(repo)

	out, err := svc.List(context.Background(), LogFilter{Type: "error"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || repo.calls != 1 || repo.gotList.Type != models.EventError {
		t.Fatalf("unexpected delegation: %+v, %+v", out, repo.gotList)
	}
}

func TestEventLogService_List_ValidationError(t *testing.T) {
	t.Parallel()

	repo := &eventRepoStub{}
	_, err := NewEventLogService(repo).List(context.Background(), LogFilter{
		From: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, ErrInvalidParams) || !errors.Is(err, errInvalidTimeRange) {
		t.Fatalf("got %v", err)
	}
	if repo.calls != 0 {
		t.Fatalf("repo should not be called on validation error")
	}
}

func TestEventLogService_List_RepoError(t *testing.T) {
	t.Parallel()

	repo := &eventRepoStub{listErr: errors.New("db down")}
	if _, err := NewEventLogService(repo).List(context.Background(), LogFilter{}); !errors.Is(err, repo.listErr) {
		t.Fatalf("expected repo error to propagate; got %v", err)
	}
}
