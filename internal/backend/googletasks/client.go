// Package googletasks implements service.TaskSource using the Google Tasks API.
package googletasks

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"dayplan/internal/config"
	"dayplan/internal/googleauth"
	"dayplan/internal/log"
	"dayplan/internal/service"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of tasks per page.
	PageSize = 100

	// MaxPages bounds the pagination loop.
	MaxPages = 50

	// APITimeout is the timeout for API calls.
	APITimeout = 10 * time.Second

	statusCompleted = "completed"
)

// Client implements service.TaskSource using Google Tasks API.
type Client struct {
	svc      *tasks.Service
	listID   string
	pageSize int
	maxPages int
}

// New creates a new Google Tasks client.
// Requires oauth_client.json and token.json to exist.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	httpClient, err := googleauth.HTTPClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	svc, err := tasks.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}

	return &Client{
		svc:      svc,
		listID:   listOrDefault(cfg.GoogleTaskList),
		pageSize: cfg.PageSize,
		maxPages: cfg.MaxPages,
	}, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client and endpoint (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, endpoint, listID string) (*Client, error) {
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{svc: svc, listID: listOrDefault(listID)}, nil
}

func listOrDefault(id string) string {
	if strings.TrimSpace(id) == "" {
		return DefaultListID
	}
	return id
}

// QueryTasks implements service.TaskSource.
//
// Expectations:
//   - Requests only tasks due within the filter's calendar day when a filter is given
//   - Hides completed tasks when the filter asks for open tasks
//   - Follows nextPageToken until it is empty
//   - On a failed page returns the tasks accumulated so far and an error wrapping service.ErrPartial
func (c *Client) QueryTasks(ctx context.Context, filter *service.Filter) ([]service.Task, error) {
	pageSize := c.pageSize
	if pageSize <= 0 {
		pageSize = PageSize
	}
	maxPages := c.maxPages
	if maxPages <= 0 {
		maxPages = MaxPages
	}

	call := c.svc.Tasks.List(c.listID).
		MaxResults(int64(pageSize)).
		ShowDeleted(false).
		ShowHidden(false)

	if filter != nil {
		day, err := time.Parse(service.DateLayout, filter.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid filter date: %s", filter.Date)
		}
		// Due is stored as midnight UTC of the due date.
		call = call.
			DueMin(day.Format(time.RFC3339)).
			DueMax(day.Add(24 * time.Hour).Add(-time.Second).Format(time.RFC3339)).
			ShowCompleted(filter.Done)
	}

	var result []service.Task
	var pageToken string
	for n := 1; ; n++ {
		if n > maxPages {
			log.Warn().Int("max_pages", maxPages).Int("total", len(result)).Msg("googletasks: page limit reached")
			return result, fmt.Errorf("stopped after %d pages: %w", maxPages, service.ErrPartial)
		}

		log.Info().Int("page", n).Str("list", c.listID).Str("page_token", pageToken).Msg("googletasks: querying")
		resp, err := c.listPage(ctx, call, pageToken)
		if err != nil {
			log.Error().Err(err).Int("page", n).Int("total", len(result)).Msg("googletasks: query failed")
			return result, fmt.Errorf("%w: %w", service.ErrPartial, err)
		}

		for _, item := range resp.Items {
			task := service.Task{
				ID:          item.Id,
				Title:       item.Title,
				Description: item.Notes,
				Done:        item.Status == statusCompleted,
			}
			if len(item.Due) >= len(service.DateLayout) {
				task.Deadline = item.Due[:len(service.DateLayout)]
			}
			if filter != nil && !filter.Matches(task) {
				continue
			}
			result = append(result, task)
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	log.Info().Int("total", len(result)).Msg("googletasks: tasks found")
	return result, nil
}

func (c *Client) listPage(ctx context.Context, call *tasks.TasksListCall, pageToken string) (*tasks.Tasks, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	resp, err := call.PageToken(pageToken).Context(ctx).Do()
	if err != nil {
		return nil, wrapError(err)
	}
	return resp, nil
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	errStr := err.Error()

	// Check for timeout
	if strings.Contains(errStr, "context deadline exceeded") {
		return fmt.Errorf("request timed out")
	}

	// Check for auth errors
	if strings.Contains(errStr, "401") || strings.Contains(errStr, "403") {
		return fmt.Errorf("token expired or revoked (run: dayplan login)")
	}

	// Check for not found
	if strings.Contains(errStr, "404") {
		return fmt.Errorf("task list not found")
	}

	return err
}
