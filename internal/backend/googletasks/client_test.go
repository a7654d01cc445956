package googletasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dayplan/internal/service"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewWithHTTPClient(context.Background(), srv.Client(), srv.URL+"/", "")
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c, srv
}

func TestQueryTasks_FollowsPageTokens(t *testing.T) {
	var tokens []string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tasks/v1/lists/@default/tasks" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		tokens = append(tokens, q.Get("pageToken"))
		if q.Get("showCompleted") != "false" {
			t.Errorf("expected showCompleted=false, got %q", q.Get("showCompleted"))
		}
		if q.Get("dueMin") != "2026-10-19T00:00:00Z" {
			t.Errorf("unexpected dueMin: %q", q.Get("dueMin"))
		}
		if q.Get("dueMax") != "2026-10-19T23:59:59Z" {
			t.Errorf("unexpected dueMax: %q", q.Get("dueMax"))
		}

		w.Header().Set("Content-Type", "application/json")
		switch q.Get("pageToken") {
		case "":
			fmt.Fprint(w, `{"items":[{"id":"1","title":"Meditar (Diáriamente)","notes":"10 minutos","status":"needsAction","due":"2026-10-19T00:00:00.000Z"}],"nextPageToken":"p2"}`)
		case "p2":
			fmt.Fprint(w, `{"items":[{"id":"2","title":"Treino","status":"needsAction","due":"2026-10-19T00:00:00.000Z"}]}`)
		default:
			t.Errorf("unexpected page token %q", q.Get("pageToken"))
		}
	})

	filter := service.DueOn(time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC))
	got, err := c.QueryTasks(context.Background(), filter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(tokens) != 2 || tokens[0] != "" || tokens[1] != "p2" {
		t.Errorf("unexpected page tokens: %v", tokens)
	}
	want := []service.Task{
		{ID: "1", Title: "Meditar (Diáriamente)", Description: "10 minutos", Deadline: "2026-10-19"},
		{ID: "2", Title: "Treino", Deadline: "2026-10-19"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d tasks, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("task %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestQueryTasks_DropsTasksOutsideFilter(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[
			{"id":"1","title":"today","status":"needsAction","due":"2026-10-19T00:00:00.000Z"},
			{"id":"2","title":"done","status":"completed","due":"2026-10-19T00:00:00.000Z"},
			{"id":"3","title":"undated","status":"needsAction"}
		]}`)
	})

	got, err := c.QueryTasks(context.Background(), &service.Filter{Date: "2026-10-19"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "1" {
		t.Errorf("expected only task 1, got %+v", got)
	}
}

func TestQueryTasks_NoFilterReturnsAll(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("dueMin") != "" {
			t.Errorf("expected no dueMin without filter")
		}
		fmt.Fprint(w, `{"items":[{"id":"1","title":"a"},{"id":"2","title":"b","status":"completed"}]}`)
	})

	got, err := c.QueryTasks(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || !got[1].Done {
		t.Errorf("unexpected tasks: %+v", got)
	}
}

func TestQueryTasks_FailedPageIsPartial(t *testing.T) {
	calls := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error":{"code":500,"message":"backend down"}}`)
			return
		}
		fmt.Fprint(w, `{"items":[{"id":"1","title":"a"}],"nextPageToken":"p2"}`)
	})

	got, err := c.QueryTasks(context.Background(), nil)
	if !errors.Is(err, service.ErrPartial) {
		t.Fatalf("expected ErrPartial, got %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 accumulated task, got %d", len(got))
	}
}

func TestQueryTasks_InvalidFilterDate(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	if _, err := c.QueryTasks(context.Background(), &service.Filter{Date: "tomorrow"}); err == nil {
		t.Fatal("expected error for invalid date")
	}
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Get ...: context deadline exceeded", "request timed out"},
		{"googleapi: Error 401: bad creds", "token expired or revoked (run: dayplan login)"},
		{"googleapi: Error 404: missing", "task list not found"},
		{"something else", "something else"},
	}
	for _, tt := range tests {
		if got := wrapError(errors.New(tt.in)).Error(); got != tt.want {
			t.Errorf("wrapError(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if wrapError(nil) != nil {
		t.Error("expected nil for nil error")
	}
}
