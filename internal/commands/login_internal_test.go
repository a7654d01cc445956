package commands

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dayplan/internal/config"
)

func TestCallbackHandler(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantCode string
		wantErr  string
		status   int
	}{
		{"matching state", "?state=s1&code=abc", "abc", "", http.StatusOK},
		{"foreign state", "?state=other&code=abc", "", "oauth state mismatch", http.StatusBadRequest},
		{"missing state", "?code=abc", "", "oauth state mismatch", http.StatusBadRequest},
		{"missing code", "?state=s1", "", "no code in callback", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codeCh := make(chan string, 1)
			errCh := make(chan error, 1)
			rec := httptest.NewRecorder()

			callbackHandler("s1", codeCh, errCh).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback"+tt.query, nil))

			if rec.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rec.Code)
			}
			select {
			case code := <-codeCh:
				if code != tt.wantCode {
					t.Errorf("expected code %q, got %q", tt.wantCode, code)
				}
			case err := <-errCh:
				if err.Error() != tt.wantErr {
					t.Errorf("expected error %q, got %q", tt.wantErr, err)
				}
			default:
				t.Fatal("handler delivered nothing")
			}
		})
	}
}

func TestCallbackHandler_LaterRequestsDoNotBlock(t *testing.T) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	h := callbackHandler("s1", codeCh, errCh)

	done := make(chan struct{})
	go func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?state=x", nil))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?state=y", nil))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?state=s1&code=c", nil))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?state=s1&code=d", nil))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("callback handler blocked on a full channel")
	}
	if code := <-codeCh; code != "c" {
		t.Errorf("expected first code to win, got %q", code)
	}
}

// writeGoogleFiles stores an OAuth client whose token endpoint is tokenURL
// and an expired token that forces a refresh.
func writeGoogleFiles(t *testing.T, dir, tokenURL string) {
	t.Helper()
	client := `{"installed":{"client_id":"id","client_secret":"secret","redirect_uris":["http://localhost"],` +
		`"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"` + tokenURL + `"}}`
	if err := os.WriteFile(filepath.Join(dir, config.OAuthClientFile), []byte(client), 0600); err != nil {
		t.Fatal(err)
	}
	token := `{"access_token":"old","token_type":"Bearer","refresh_token":"r1","expiry":"2020-01-01T00:00:00Z"}`
	if err := os.WriteFile(filepath.Join(dir, config.TokenFile), []byte(token), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestLoggedIn_RefreshSucceeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"new","token_type":"Bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	writeGoogleFiles(t, dir, srv.URL)

	if !loggedIn(context.Background(), &config.Config{Dir: dir}) {
		t.Error("expected a refreshable token to count as logged in")
	}
}

func TestLoggedIn_TokenCheckTimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	saved := tokenCheckTimeout
	tokenCheckTimeout = 50 * time.Millisecond
	defer func() { tokenCheckTimeout = saved }()

	dir := t.TempDir()
	writeGoogleFiles(t, dir, srv.URL)

	start := time.Now()
	if loggedIn(context.Background(), &config.Config{Dir: dir}) {
		t.Error("expected a hanging token endpoint to fail the check")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("token check ignored its timeout, took %v", elapsed)
	}
}

func TestLoggedIn_NoToken(t *testing.T) {
	if loggedIn(context.Background(), &config.Config{Dir: t.TempDir()}) {
		t.Error("expected no token to mean logged out")
	}
}
