package ghclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spiffcs/focus/internal/focus"
	"github.com/spiffcs/focus/internal/integration"
	"github.com/spiffcs/focus/internal/model"
)

// fakeGitHub serves just enough of the enterprise REST API for one
// authored PR and one PR awaiting review.
func fakeGitHub(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-RateLimit-Remaining", "4999")
		w.Header().Set("X-RateLimit-Limit", "5000")
		w.Header().Set("X-RateLimit-Reset", "1900000000")

		repoURL := srv.URL + "/api/v3/repos/o/r"
		switch r.URL.Path {
		case "/api/v3/user":
			fmt.Fprint(w, `{"login":"me"}`)
		case "/api/v3/search/issues":
			q := r.URL.Query().Get("q")
			switch {
			case strings.Contains(q, "author:me"):
				fmt.Fprintf(w, `{"total_count":1,"items":[{"number":1,"title":"Ship it","state":"open","repository_url":%q,"html_url":"https://ghe/o/r/pull/1","user":{"login":"me"},"pull_request":{"url":"x"}}]}`, repoURL)
			case strings.Contains(q, "review-requested:me"):
				fmt.Fprintf(w, `{"total_count":2,"items":[{"number":2,"title":"Please look","state":"open","repository_url":%q,"html_url":"https://ghe/o/r/pull/2","user":{"login":"alice"},"pull_request":{"url":"y"}},{"number":9,"title":"An issue","state":"open","repository_url":%q,"user":{"login":"alice"}}]}`, repoURL, repoURL)
			default:
				t.Errorf("unexpected query %q", q)
			}
		case "/api/v3/repos/o/r/pulls/1":
			fmt.Fprint(w, `{"number":1,"head":{"sha":"abc"},"mergeable_state":"clean","user":{"login":"me"},"requested_reviewers":[]}`)
		case "/api/v3/repos/o/r/pulls/1/reviews":
			fmt.Fprint(w, `[{"user":{"login":"bob"},"state":"APPROVED"}]`)
		case "/api/v3/repos/o/r/commits/abc/status":
			fmt.Fprint(w, `{"state":"success","total_count":1}`)
		case "/api/v3/repos/o/r/commits/abc/check-runs":
			fmt.Fprint(w, `{"total_count":1,"check_runs":[{"status":"completed","conclusion":"success"}]}`)
		case "/api/v3/repos/o/r/pulls/2":
			fmt.Fprint(w, `{"number":2,"head":{"sha":"def"},"mergeable_state":"blocked","user":{"login":"alice"},"requested_reviewers":[{"login":"me"}]}`)
		case "/api/v3/repos/o/r/pulls/2/reviews":
			fmt.Fprint(w, `[]`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProvider_PullRequests(t *testing.T) {
	srv := fakeGitHub(t)
	client, err := newClient(&http.Client{}, integration.GitHubEnterprise, srv.URL+"/")
	if err != nil {
		t.Fatalf("newClient() error = %v", err)
	}
	p := NewProvider(client, 2)

	prs, err := p.PullRequests(context.Background())
	if err != nil {
		t.Fatalf("PullRequests() error = %v", err)
	}
	if len(prs) != 2 {
		t.Fatalf("PullRequests() returned %d records, want 2", len(prs))
	}

	items := focus.Normalize(prs)
	want := map[int]model.ActionableCategory{
		1: model.CategoryMergeable,
		2: model.CategoryNeedsReview,
	}
	for _, item := range items {
		if item.Category != want[item.Number] {
			t.Errorf("item #%d category = %q, want %q", item.Number, item.Category, want[item.Number])
		}
		if item.Provider != string(integration.GitHubEnterprise) || item.Repository != "o/r" {
			t.Errorf("item #%d provider/repo = %q %q", item.Number, item.Provider, item.Repository)
		}
	}

	remaining, limit, _, limited := client.RateLimitState().Status()
	if remaining != 4999 || limit != 5000 || limited {
		t.Errorf("RateLimitState().Status() = %d, %d, %v", remaining, limit, limited)
	}
}

func TestProvider_CurrentUserCached(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"login":"me"}`)
	}))
	defer srv.Close()

	client, err := newClient(&http.Client{}, integration.GitHubEnterprise, srv.URL+"/")
	if err != nil {
		t.Fatalf("newClient() error = %v", err)
	}
	p := NewProvider(client, 0)
	for range 3 {
		if login, err := p.CurrentUser(context.Background()); err != nil || login != "me" {
			t.Fatalf("CurrentUser() = %q, %v", login, err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("user endpoint called %d times, want 1", calls.Load())
	}
}

func TestRateLimitTransport(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Limit", "5000")
		w.Header().Set("X-RateLimit-Reset", fmt.Sprint(time.Now().Add(time.Hour).Unix()))
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client, err := newClient(&http.Client{}, integration.GitHubEnterprise, srv.URL+"/")
	if err != nil {
		t.Fatalf("newClient() error = %v", err)
	}

	for i := range 2 {
		_, err := client.AuthenticatedUser(context.Background())
		if !errors.Is(err, ErrRateLimited) {
			t.Fatalf("call %d: AuthenticatedUser() error = %v, want ErrRateLimited", i, err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("server called %d times, want 1 (second request short-circuited)", calls.Load())
	}
	if !client.RateLimitState().IsLimited() {
		t.Error("IsLimited() = false after 403")
	}
}

func TestRateLimitState_Expires(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newRateLimitState()
	s.now = func() time.Time { return now }

	s.SetLimited(now.Add(time.Minute))
	if !s.IsLimited() {
		t.Fatal("IsLimited() = false before reset")
	}
	now = now.Add(2 * time.Minute)
	if s.IsLimited() {
		t.Error("IsLimited() = true after reset")
	}
}

func TestParseRateLimitHeaders(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	remaining, limit, resetAt := parseRateLimitHeaders(resp)
	if remaining != -1 || limit != -1 || !resetAt.IsZero() {
		t.Errorf("parseRateLimitHeaders(empty) = %d, %d, %v", remaining, limit, resetAt)
	}

	resp.Header.Set("X-RateLimit-Remaining", "12")
	resp.Header.Set("X-RateLimit-Limit", "60")
	resp.Header.Set("X-RateLimit-Reset", "1700000000")
	remaining, limit, resetAt = parseRateLimitHeaders(resp)
	if remaining != 12 || limit != 60 || resetAt.Unix() != 1700000000 {
		t.Errorf("parseRateLimitHeaders() = %d, %d, %v", remaining, limit, resetAt)
	}
}

func TestSearchQuery_For(t *testing.T) {
	if got := QueryAuthored.For("me"); got != "is:pr is:open author:me archived:false" {
		t.Errorf("QueryAuthored.For() = %q", got)
	}
}
