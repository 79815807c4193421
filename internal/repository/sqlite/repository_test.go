package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkforge/shortlink/internal/domain"
)

func setupTestRepo(t *testing.T) *Repository {
	t.Helper()

	repo, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, repo.Close())
	})

	return repo
}

func createTestUser(t *testing.T, repo *Repository, id, email string) *domain.User {
	t.Helper()

	user, err := repo.CreateUser(context.Background(), &domain.User{
		ID:           id,
		Email:        email,
		Name:         "Test User",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	return user
}

func createTestLink(t *testing.T, repo *Repository, ownerID, shortKey, targetURL string) *domain.ShortLink {
	t.Helper()

	link, err := repo.CreateLink(context.Background(), &domain.ShortLink{
		ShortKey:  shortKey,
		TargetURL: targetURL,
		OwnerID:   ownerID,
	})
	require.NoError(t, err)
	return link
}

func TestRepository_New_InvalidPath(t *testing.T) {
	repo, err := New("/invalid/path/to/database.db")
	assert.Error(t, err)
	assert.Nil(t, repo)
}

func TestRepository_CreateLink(t *testing.T) {
	repo := setupTestRepo(t)
	createTestUser(t, repo, "user-1", "user1@example.com")

	ctx := context.Background()
	link, err := repo.CreateLink(ctx, &domain.ShortLink{
		ShortKey:    "abc1234",
		TargetURL:   "https://example.com",
		OwnerID:     "user-1",
		Description: "test link",
		Tags:        []string{"work", "docs"},
	})
	require.NoError(t, err)

	assert.NotZero(t, link.ID)
	assert.Equal(t, "abc1234", link.ShortKey)
	assert.Equal(t, "https://example.com", link.TargetURL)
	assert.Equal(t, "user-1", link.OwnerID)
	assert.True(t, link.Active)
	assert.Zero(t, link.ClickCount)

	// Round-trip through the store
	stored, err := repo.GetLink(ctx, "abc1234")
	require.NoError(t, err)
	assert.Equal(t, link.ID, stored.ID)
	assert.Equal(t, "test link", stored.Description)
	assert.Equal(t, []string{"work", "docs"}, stored.Tags)
}

func TestRepository_CreateLink_DuplicateKey(t *testing.T) {
	repo := setupTestRepo(t)
	createTestUser(t, repo, "user-1", "user1@example.com")

	ctx := context.Background()
	createTestLink(t, repo, "user-1", "taken01", "https://example.com")

	_, err := repo.CreateLink(ctx, &domain.ShortLink{
		ShortKey:  "taken01",
		TargetURL: "https://other.com",
		OwnerID:   "user-1",
	})
	assert.ErrorIs(t, err, domain.ErrAliasTaken)

	// The original entry must be untouched
	stored, err := repo.GetLink(ctx, "taken01")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", stored.TargetURL)
}

func TestRepository_GetLinkForOwner(t *testing.T) {
	repo := setupTestRepo(t)
	createTestUser(t, repo, "user-1", "user1@example.com")
	createTestUser(t, repo, "user-2", "user2@example.com")
	createTestLink(t, repo, "user-1", "mine123", "https://example.com")

	ctx := context.Background()

	link, err := repo.GetLinkForOwner(ctx, "user-1", "mine123")
	require.NoError(t, err)
	assert.Equal(t, "mine123", link.ShortKey)

	// A foreign owner sees NotFound, not Forbidden
	_, err = repo.GetLinkForOwner(ctx, "user-2", "mine123")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.GetLinkForOwner(ctx, "user-1", "unknown")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepository_ListLinks(t *testing.T) {
	repo := setupTestRepo(t)
	createTestUser(t, repo, "user-1", "user1@example.com")
	createTestUser(t, repo, "user-2", "user2@example.com")

	for i := 0; i < 5; i++ {
		createTestLink(t, repo, "user-1", "key000"+string(rune('a'+i)), "https://example.com")
	}
	createTestLink(t, repo, "user-2", "foreign", "https://example.com")

	ctx := context.Background()

	links, total, err := repo.ListLinks(ctx, "user-1", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, links, 2)

	links, total, err = repo.ListLinks(ctx, "user-1", 2, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, links, 1)

	links, total, err = repo.ListLinks(ctx, "user-3", 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, links)
}

func TestRepository_UpdateLink(t *testing.T) {
	repo := setupTestRepo(t)
	createTestUser(t, repo, "user-1", "user1@example.com")
	created := createTestLink(t, repo, "user-1", "upd1234", "https://example.com")

	ctx := context.Background()
	description := "new description"
	active := false
	tags := []string{"updated"}

	updated, err := repo.UpdateLink(ctx, "user-1", "upd1234", domain.UpdateLinkRequest{
		Description: &description,
		Tags:        &tags,
		Active:      &active,
	})
	require.NoError(t, err)
	assert.Equal(t, "new description", updated.Description)
	assert.Equal(t, []string{"updated"}, updated.Tags)
	assert.False(t, updated.Active)

	// Immutable fields survive the update
	assert.Equal(t, created.ShortKey, updated.ShortKey)
	assert.Equal(t, created.TargetURL, updated.TargetURL)
	assert.Equal(t, created.OwnerID, updated.OwnerID)
	assert.Equal(t, created.ClickCount, updated.ClickCount)

	_, err = repo.UpdateLink(ctx, "user-2", "upd1234", domain.UpdateLinkRequest{Description: &description})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepository_DeleteLink(t *testing.T) {
	repo := setupTestRepo(t)
	createTestUser(t, repo, "user-1", "user1@example.com")
	link := createTestLink(t, repo, "user-1", "del1234", "https://example.com")

	ctx := context.Background()

	// Record a click so the cascade has something to remove
	_, err := repo.RecordClick(ctx, "del1234", domain.Click{Timestamp: time.Now()})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteLink(ctx, "user-1", "del1234"))

	_, err = repo.GetLink(ctx, "del1234")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Click rows are gone with the link
	clicks, err := repo.RecentClicks(ctx, link.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, clicks)

	// Deleting twice reports NotFound
	assert.ErrorIs(t, repo.DeleteLink(ctx, "user-1", "del1234"), domain.ErrNotFound)
}

func TestRepository_RecordClick(t *testing.T) {
	repo := setupTestRepo(t)
	createTestUser(t, repo, "user-1", "user1@example.com")
	link := createTestLink(t, repo, "user-1", "clk1234", "https://example.com/page")

	ctx := context.Background()

	target, err := repo.RecordClick(ctx, "clk1234", domain.Click{
		Timestamp: time.Now(),
		SourceIP:  "10.0.0.1",
		UserAgent: "test-agent",
		Referrer:  "https://referrer.example",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/page", target)

	stored, err := repo.GetLink(ctx, "clk1234")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.ClickCount)

	clicks, err := repo.RecentClicks(ctx, link.ID, 10)
	require.NoError(t, err)
	require.Len(t, clicks, 1)
	assert.Equal(t, "10.0.0.1", clicks[0].SourceIP)
	assert.Equal(t, "test-agent", clicks[0].UserAgent)
	assert.Equal(t, "https://referrer.example", clicks[0].Referrer)
}

func TestRepository_RecordClick_NotFound(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.RecordClick(context.Background(), "missing", domain.Click{Timestamp: time.Now()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepository_RecordClick_Inactive(t *testing.T) {
	repo := setupTestRepo(t)
	createTestUser(t, repo, "user-1", "user1@example.com")
	link := createTestLink(t, repo, "user-1", "off1234", "https://example.com")

	ctx := context.Background()
	active := false
	_, err := repo.UpdateLink(ctx, "user-1", "off1234", domain.UpdateLinkRequest{Active: &active})
	require.NoError(t, err)

	_, err = repo.RecordClick(ctx, "off1234", domain.Click{Timestamp: time.Now()})
	assert.ErrorIs(t, err, domain.ErrLinkGone)

	// No click state mutated
	stored, err := repo.GetLink(ctx, "off1234")
	require.NoError(t, err)
	assert.Zero(t, stored.ClickCount)

	clicks, err := repo.RecentClicks(ctx, link.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, clicks)
}

func TestRepository_RecordClick_Expired(t *testing.T) {
	repo := setupTestRepo(t)
	createTestUser(t, repo, "user-1", "user1@example.com")

	ctx := context.Background()
	expired := time.Now().Add(-time.Hour)
	_, err := repo.CreateLink(ctx, &domain.ShortLink{
		ShortKey:  "exp1234",
		TargetURL: "https://example.com",
		OwnerID:   "user-1",
		ExpiresAt: &expired,
	})
	require.NoError(t, err)

	_, err = repo.RecordClick(ctx, "exp1234", domain.Click{Timestamp: time.Now()})
	assert.ErrorIs(t, err, domain.ErrLinkGone)

	stored, err := repo.GetLink(ctx, "exp1234")
	require.NoError(t, err)
	assert.Zero(t, stored.ClickCount)
}

func TestRepository_RecordClick_FutureExpiryStillResolves(t *testing.T) {
	repo := setupTestRepo(t)
	createTestUser(t, repo, "user-1", "user1@example.com")

	ctx := context.Background()
	future := time.Now().Add(time.Hour)
	_, err := repo.CreateLink(ctx, &domain.ShortLink{
		ShortKey:  "fut1234",
		TargetURL: "https://example.com",
		OwnerID:   "user-1",
		ExpiresAt: &future,
	})
	require.NoError(t, err)

	target, err := repo.RecordClick(ctx, "fut1234", domain.Click{Timestamp: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", target)
}

// Concurrent resolutions of the same key must not lose updates: N racing
// redirects leave click_count == N with N matching history rows.
func TestRepository_RecordClick_Concurrent(t *testing.T) {
	repo := setupTestRepo(t)
	createTestUser(t, repo, "user-1", "user1@example.com")
	link := createTestLink(t, repo, "user-1", "race123", "https://example.com")

	ctx := context.Background()
	const resolvers = 100

	var wg sync.WaitGroup
	errs := make(chan error, resolvers)

	for i := 0; i < resolvers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.RecordClick(ctx, "race123", domain.Click{
				Timestamp: time.Now(),
				SourceIP:  "10.0.0.1",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := repo.GetLink(ctx, "race123")
	require.NoError(t, err)
	assert.Equal(t, int64(resolvers), stored.ClickCount)

	count, err := repo.CountClicksSince(ctx, link.ID, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(resolvers), count)
}

func TestRepository_CountClicksSince(t *testing.T) {
	repo := setupTestRepo(t)
	createTestUser(t, repo, "user-1", "user1@example.com")
	link := createTestLink(t, repo, "user-1", "cnt1234", "https://example.com")

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := repo.RecordClick(ctx, "cnt1234", domain.Click{Timestamp: time.Now()})
		require.NoError(t, err)
	}

	count, err := repo.CountClicksSince(ctx, link.ID, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	count, err = repo.CountClicksSince(ctx, link.ID, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRepository_Users(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, &domain.User{
		ID:           "user-1",
		Email:        "user1@example.com",
		Name:         "First User",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	assert.False(t, user.CreatedAt.IsZero())

	byEmail, err := repo.GetUserByEmail(ctx, "user1@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user-1", byEmail.ID)

	byID, err := repo.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user1@example.com", byID.Email)

	_, err = repo.CreateUser(ctx, &domain.User{
		ID:           "user-2",
		Email:        "user1@example.com",
		Name:         "Duplicate Email",
		PasswordHash: "hash",
	})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	_, err = repo.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepository_InsertRequestLog(t *testing.T) {
	repo := setupTestRepo(t)

	err := repo.InsertRequestLog(context.Background(), &domain.RequestLog{
		Method:     "GET",
		Path:       "/abc1234",
		Status:     302,
		DurationMs: 3,
		SourceIP:   "10.0.0.1",
		Timestamp:  time.Now(),
	})
	require.NoError(t, err)
}
