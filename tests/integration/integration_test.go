package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/linkforge/shortlink/internal/auth"
	"github.com/linkforge/shortlink/internal/config"
	"github.com/linkforge/shortlink/internal/domain"
	"github.com/linkforge/shortlink/internal/logsink"
	"github.com/linkforge/shortlink/internal/repository/sqlite"
	"github.com/linkforge/shortlink/internal/service"
	"github.com/linkforge/shortlink/internal/shortener"
	apiclient "github.com/linkforge/shortlink/internal/transport/client"
	httpTransport "github.com/linkforge/shortlink/internal/transport/http"
)

type stack struct {
	server *httptest.Server
	repo   *sqlite.Repository
}

func newStack(t *testing.T) *stack {
	t.Helper()

	repo, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, repo.Close())
	})

	generator, err := shortener.NewRandomGenerator(shortener.DefaultConfig())
	require.NoError(t, err)

	tokens := auth.NewTokenManager("integration-secret", time.Hour)
	registry := service.NewRegistry(repo, generator)
	accounts := service.NewAccounts(repo, tokens)

	logger := zap.NewNop()
	sink := logsink.New(repo, logger)
	t.Cleanup(sink.Close)

	cfg := config.Config{
		Server:    config.ServerConfig{Port: "0", BaseURL: "http://sho.rt"},
		RateLimit: config.RateLimitConfig{Redirect: "100000-M"},
	}

	router, err := httpTransport.NewRouter(cfg, registry, accounts, sink, logger)
	require.NoError(t, err)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &stack{server: server, repo: repo}
}

// signup registers a fresh account and returns an authenticated client
func (s *stack) signup(t *testing.T, email string) *apiclient.Client {
	t.Helper()
	ctx := context.Background()

	anonymous := apiclient.NewClient(s.server.URL, "")
	_, err := anonymous.Register(ctx, domain.RegisterRequest{
		Email:    email,
		Name:     "Integration Tester",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	token, err := anonymous.Login(ctx, domain.LoginRequest{
		Email:    email,
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.Equal(t, "Bearer", token.TokenType)

	return apiclient.NewClient(s.server.URL, token.AccessToken)
}

// noRedirectGet fetches a short URL without following the redirect
func (s *stack) noRedirectGet(t *testing.T, shortKey string) *http.Response {
	t.Helper()

	httpClient := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := httpClient.Get(s.server.URL + "/" + shortKey)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp
}

func TestLinkLifecycle(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	c := s.signup(t, "alice@example.com")

	created, err := c.CreateLink(ctx, domain.CreateLinkRequest{
		TargetURL:   "https://example.com/docs",
		CustomAlias: "my-docs",
		Description: "team docs",
		Tags:        []string{"work"},
	})
	require.NoError(t, err)
	assert.Equal(t, "my-docs", created.ShortKey)
	assert.Equal(t, "http://sho.rt/my-docs", created.ShortURL)
	assert.True(t, created.Active)

	// Alias is now taken
	_, err = c.CreateLink(ctx, domain.CreateLinkRequest{
		TargetURL:   "https://example.com/other",
		CustomAlias: "my-docs",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")

	// Generated key when no alias is given
	generated, err := c.CreateLink(ctx, domain.CreateLinkRequest{
		TargetURL: "https://example.com/generated",
	})
	require.NoError(t, err)
	assert.Len(t, generated.ShortKey, shortener.DefaultKeyLength)

	list, err := c.ListLinks(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, list.TotalCount)
	assert.Len(t, list.Links, 2)

	// Redirect counts the click
	resp := s.noRedirectGet(t, "my-docs")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://example.com/docs", resp.Header.Get("Location"))

	for i := 0; i < 5; i++ {
		resp := s.noRedirectGet(t, "my-docs")
		assert.Equal(t, http.StatusFound, resp.StatusCode)
	}

	stats, err := c.LinkStats(ctx, "my-docs")
	require.NoError(t, err)
	assert.Equal(t, int64(6), stats.TotalClicks)
	assert.Equal(t, int64(6), stats.ClicksLast7Days)
	assert.Len(t, stats.RecentClicks, 6)

	// Deactivation stops redirects with 410 but keeps history
	inactive := false
	updated, err := c.UpdateLink(ctx, "my-docs", domain.UpdateLinkRequest{Active: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.Equal(t, "https://example.com/docs", updated.TargetURL)
	assert.Equal(t, int64(6), updated.ClickCount)

	resp = s.noRedirectGet(t, "my-docs")
	assert.Equal(t, http.StatusGone, resp.StatusCode)

	stats, err = c.LinkStats(ctx, "my-docs")
	require.NoError(t, err)
	assert.Equal(t, int64(6), stats.TotalClicks)

	// Deletion removes the link and its history
	require.NoError(t, c.DeleteLink(ctx, "my-docs"))

	resp = s.noRedirectGet(t, "my-docs")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, err = c.LinkStats(ctx, "my-docs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestOwnershipIsolation(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	alice := s.signup(t, "alice@example.com")
	bob := s.signup(t, "bob@example.com")

	created, err := alice.CreateLink(ctx, domain.CreateLinkRequest{
		TargetURL:   "https://example.com",
		CustomAlias: "alice-link",
	})
	require.NoError(t, err)

	// Bob cannot see, update, or delete Alice's link
	_, err = bob.LinkStats(ctx, created.ShortKey)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	inactive := false
	_, err = bob.UpdateLink(ctx, created.ShortKey, domain.UpdateLinkRequest{Active: &inactive})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	err = bob.DeleteLink(ctx, created.ShortKey)
	require.Error(t, err)

	list, err := bob.ListLinks(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, list.TotalCount)

	// Anyone can still follow the link
	resp := s.noRedirectGet(t, created.ShortKey)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestExpiredLinkIsGone(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	c := s.signup(t, "alice@example.com")

	expiry := time.Now().Add(150 * time.Millisecond)
	created, err := c.CreateLink(ctx, domain.CreateLinkRequest{
		TargetURL: "https://example.com",
		ExpiresAt: &expiry,
	})
	require.NoError(t, err)

	resp := s.noRedirectGet(t, created.ShortKey)
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	time.Sleep(200 * time.Millisecond)

	resp = s.noRedirectGet(t, created.ShortKey)
	assert.Equal(t, http.StatusGone, resp.StatusCode)
}

func TestConcurrentClickAccounting(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	c := s.signup(t, "alice@example.com")

	created, err := c.CreateLink(ctx, domain.CreateLinkRequest{
		TargetURL:   "https://example.com",
		CustomAlias: "hot-link",
	})
	require.NoError(t, err)

	const clicks = 100

	var wg sync.WaitGroup
	errs := make(chan error, clicks)
	for i := 0; i < clicks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			httpClient := &http.Client{
				CheckRedirect: func(req *http.Request, via []*http.Request) error {
					return http.ErrUseLastResponse
				},
			}
			resp, err := httpClient.Get(s.server.URL + "/" + created.ShortKey)
			if err != nil {
				errs <- err
				return
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusFound {
				errs <- fmt.Errorf("unexpected status %d", resp.StatusCode)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// Counter and history must agree exactly
	stats, err := c.LinkStats(ctx, created.ShortKey)
	require.NoError(t, err)
	assert.Equal(t, int64(clicks), stats.TotalClicks)
	assert.Equal(t, int64(clicks), stats.ClicksLast7Days)

	link, err := s.repo.GetLink(ctx, created.ShortKey)
	require.NoError(t, err)
	historyCount, err := s.repo.CountClicksSince(ctx, link.ID, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, link.ClickCount, historyCount)
}

func TestDashboard(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	c := s.signup(t, "alice@example.com")

	for i := 0; i < 3; i++ {
		_, err := c.CreateLink(ctx, domain.CreateLinkRequest{
			TargetURL:   fmt.Sprintf("https://example.com/page-%d", i),
			CustomAlias: fmt.Sprintf("page-%d-link", i),
		})
		require.NoError(t, err)
	}

	for i := 0; i < 4; i++ {
		resp := s.noRedirectGet(t, "page-1-link")
		require.Equal(t, http.StatusFound, resp.StatusCode)
	}

	dashboard, err := c.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, dashboard.TotalURLs)
	assert.Equal(t, 3, dashboard.ActiveURLs)
	assert.Equal(t, int64(4), dashboard.TotalClicks)
	assert.Equal(t, 3, dashboard.RecentURLs)
	require.NotEmpty(t, dashboard.TopLinks)
	assert.Equal(t, "page-1-link", dashboard.TopLinks[0].ShortKey)
}

func TestUnknownBodyFieldRejected(t *testing.T) {
	s := newStack(t)
	s.signup(t, "alice@example.com")

	token := loginRaw(t, s, "alice@example.com", "correct-horse")

	body := bytes.NewReader([]byte(`{"target_url": "https://example.com", "bogus": 1}`))
	req, err := http.NewRequest(http.MethodPost, s.server.URL+"/urls", body)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func loginRaw(t *testing.T, s *stack, email, password string) string {
	t.Helper()

	payload, err := json.Marshal(domain.LoginRequest{Email: email, Password: password})
	require.NoError(t, err)

	resp, err := http.Post(s.server.URL+"/auth/login", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var token domain.TokenResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&token))
	return token.AccessToken
}
