package notion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dayplan/internal/service"
)

var testSchema = Schema{
	Title:       "🐈 Sistema",
	Description: "🍀 Descrição",
	Status:      "✅ Status",
	Deadline:    "📅 Deadline",
}

// fakeDB is a synthetic paginated query endpoint.
type fakeDB struct {
	mu       sync.Mutex
	pages    [][]map[string]any
	cursors  []string // cursors[i] is returned with page i when more pages follow
	failAt   int      // 1-based page number that returns 500; 0 = never
	requests []queryRequest
	headers  []http.Header
}

func (f *fakeDB) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/databases/db-123/query", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req queryRequest
		require.NoError(t, json.Unmarshal(body, &req))

		f.mu.Lock()
		f.requests = append(f.requests, req)
		f.headers = append(f.headers, r.Header.Clone())
		n := len(f.requests)
		f.mu.Unlock()

		if n == f.failAt {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"object":"error","message":"boom"}`)
			return
		}

		idx := n - 1
		resp := map[string]any{
			"object":      "list",
			"results":     f.pages[idx],
			"has_more":    idx < len(f.pages)-1,
			"next_cursor": nil,
		}
		if idx < len(f.pages)-1 {
			resp["next_cursor"] = f.cursors[idx]
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}
}

func page(id, title, desc string, done bool, deadline string) map[string]any {
	return map[string]any{
		"object": "page",
		"id":     id,
		"properties": map[string]any{
			"🐈 Sistema": map[string]any{
				"type":  "title",
				"title": []any{map[string]any{"plain_text": title}},
			},
			"🍀 Descrição": map[string]any{
				"type":      "rich_text",
				"rich_text": []any{map[string]any{"plain_text": desc}},
			},
			"✅ Status": map[string]any{"type": "checkbox", "checkbox": done},
			"📅 Deadline": map[string]any{
				"type": "date",
				"date": map[string]any{"start": deadline},
			},
		},
	}
}

func newTestClient(t *testing.T, srv *httptest.Server, opts Options) *Client {
	t.Helper()
	opts.BaseURL = srv.URL
	opts.Token = "secret-token"
	opts.DatabaseID = "db-123"
	opts.Schema = testSchema
	opts.HTTPClient = srv.Client()
	c, err := New(opts)
	require.NoError(t, err)
	return c
}

func TestQuery_FollowsCursorsAcrossPages(t *testing.T) {
	db := &fakeDB{
		pages: [][]map[string]any{
			{page("1", "a", "", false, "2026-10-19"), page("2", "b", "", false, "2026-10-19")},
			{page("3", "c", "", false, "2026-10-19"), page("4", "d", "", false, "2026-10-19")},
			{page("5", "e", "", false, "2026-10-19"), page("6", "f", "", false, "2026-10-19")},
		},
		cursors: []string{"c1", "c2"},
	}
	srv := httptest.NewServer(db.handler(t))
	defer srv.Close()

	c := newTestClient(t, srv, Options{})
	pages, err := c.Query(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, pages, 6)
	for i, p := range pages {
		assert.Equal(t, fmt.Sprint(i+1), p.ID)
	}

	require.Len(t, db.requests, 3)
	assert.Equal(t, "", db.requests[0].StartCursor)
	assert.Equal(t, "c1", db.requests[1].StartCursor)
	assert.Equal(t, "c2", db.requests[2].StartCursor)
	for _, req := range db.requests {
		assert.Equal(t, PageSize, req.PageSize)
		assert.Nil(t, req.Filter)
	}
}

func TestQuery_SendsAuthAndVersionHeaders(t *testing.T) {
	db := &fakeDB{pages: [][]map[string]any{{}}}
	srv := httptest.NewServer(db.handler(t))
	defer srv.Close()

	c := newTestClient(t, srv, Options{})
	_, err := c.Query(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, db.headers, 1)
	assert.Equal(t, "Bearer secret-token", db.headers[0].Get("Authorization"))
	assert.Equal(t, DefaultVersion, db.headers[0].Get("Notion-Version"))
	assert.Equal(t, "application/json", db.headers[0].Get("Content-Type"))
}

func TestQuery_SendsCompoundFilter(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		fmt.Fprint(w, `{"results":[],"has_more":false,"next_cursor":null}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Options{PageSize: 25})
	filter := service.DueOn(time.Date(2026, 10, 19, 23, 30, 0, 0, time.UTC))
	_, err := c.Query(context.Background(), filter)
	require.NoError(t, err)

	want := map[string]any{
		"page_size": float64(25),
		"filter": map[string]any{
			"and": []any{
				map[string]any{"property": "✅ Status", "checkbox": map[string]any{"equals": false}},
				map[string]any{"property": "📅 Deadline", "date": map[string]any{"equals": "2026-10-19"}},
			},
		},
	}
	assert.Equal(t, want, captured)
}

func TestQuery_FilteredTasksMatchPredicate(t *testing.T) {
	// The synthetic backend honours the filter the way the real API does.
	all := []map[string]any{
		page("1", "open today", "", false, "2026-10-19"),
		page("2", "done today", "", true, "2026-10-19"),
		page("3", "open tomorrow", "", false, "2026-10-20"),
		page("4", "open today too", "", false, "2026-10-19"),
	}
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var req struct {
			Filter struct {
				And []struct {
					Property string `json:"property"`
					Checkbox *struct {
						Equals bool `json:"equals"`
					} `json:"checkbox"`
					Date *struct {
						Equals string `json:"equals"`
					} `json:"date"`
				} `json:"and"`
			} `json:"filter"`
			StartCursor string `json:"start_cursor"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		var matched []map[string]any
		for _, p := range all {
			props := p["properties"].(map[string]any)
			ok := true
			for _, cond := range req.Filter.And {
				prop := props[cond.Property].(map[string]any)
				if cond.Checkbox != nil && prop["checkbox"].(bool) != cond.Checkbox.Equals {
					ok = false
				}
				if cond.Date != nil && prop["date"].(map[string]any)["start"].(string) != cond.Date.Equals {
					ok = false
				}
			}
			if ok {
				matched = append(matched, p)
			}
		}
		// one record per page
		idx := 0
		if req.StartCursor != "" {
			fmt.Sscanf(req.StartCursor, "p%d", &idx)
		}
		resp := map[string]any{"results": matched[idx : idx+1], "has_more": idx+1 < len(matched), "next_cursor": nil}
		if idx+1 < len(matched) {
			resp["next_cursor"] = fmt.Sprintf("p%d", idx+1)
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Options{})
	filter := service.DueOn(time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC))
	tasks, err := c.QueryTasks(context.Background(), filter)
	require.NoError(t, err)

	require.Len(t, tasks, 2)
	assert.Equal(t, 2, calls)
	for _, task := range tasks {
		assert.True(t, filter.Matches(task), "task %+v should match filter", task)
	}
	assert.Equal(t, "open today", tasks[0].Title)
	assert.Equal(t, "open today too", tasks[1].Title)
}

func TestQuery_FailedPageReturnsPartialResults(t *testing.T) {
	db := &fakeDB{
		pages: [][]map[string]any{
			{page("1", "a", "", false, ""), page("2", "b", "", false, "")},
			{page("3", "c", "", false, "")},
			{page("4", "d", "", false, "")},
		},
		cursors: []string{"c1", "c2"},
		failAt:  2,
	}
	srv := httptest.NewServer(db.handler(t))
	defer srv.Close()

	c := newTestClient(t, srv, Options{})
	pages, err := c.Query(context.Background(), nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrPartial))
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
	assert.Contains(t, statusErr.Body, "boom")

	require.Len(t, pages, 2)
	assert.Len(t, db.requests, 2)
}

func TestQuery_FirstPageFailureReturnsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"unauthorized"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Options{})
	tasks, err := c.QueryTasks(context.Background(), nil)
	assert.ErrorIs(t, err, service.ErrPartial)
	assert.Empty(t, tasks)
}

func TestQuery_StopsAtMaxPages(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprintf(w, `{"results":[{"id":"%d"}],"has_more":true,"next_cursor":"c%d"}`, calls, calls)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Options{MaxPages: 3})
	pages, err := c.Query(context.Background(), nil)
	assert.ErrorIs(t, err, service.ErrPartial)
	assert.Len(t, pages, 3)
	assert.Equal(t, 3, calls)
}

func TestQuery_HasMoreWithoutCursorStops(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"results":[{"id":"x"}],"has_more":true,"next_cursor":null}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Options{})
	pages, err := c.Query(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, pages, 1)
	assert.Equal(t, 1, calls)
}

func TestQuery_MalformedBodyIsPartial(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Options{})
	_, err := c.Query(context.Background(), nil)
	assert.ErrorIs(t, err, service.ErrPartial)
}

func TestNew_RequiresDatabaseID(t *testing.T) {
	_, err := New(Options{Token: "x"})
	require.Error(t, err)
}

func TestNew_Defaults(t *testing.T) {
	c, err := New(Options{DatabaseID: "db"})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, DefaultVersion, c.version)
	assert.Equal(t, PageSize, c.pageSize)
	assert.Equal(t, MaxPages, c.maxPages)
	assert.Equal(t, APITimeout, c.timeout)
}

func TestNew_PageSizeAboveEndpointLimitIsCapped(t *testing.T) {
	c, err := New(Options{DatabaseID: "db", PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, PageSize, c.pageSize)
}
