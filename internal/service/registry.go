package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"time"

	"github.com/linkforge/shortlink/internal/domain"
	"github.com/linkforge/shortlink/internal/repository"
	"github.com/linkforge/shortlink/internal/shortener"
)

const (
	// maxKeyAttempts bounds generation retries when a generated key
	// collides with an existing one.
	maxKeyAttempts = 5

	defaultPageLimit = 10
	maxPageLimit     = 100

	recentClickLimit = 10
	topLinkLimit     = 5
)

var aliasPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{4,32}$`)

// reservedKeys are path segments owned by the API surface; a link with one
// of these keys would shadow a route.
var reservedKeys = map[string]bool{
	"urls":        true,
	"auth":        true,
	"dashboard":   true,
	"health":      true,
	"metrics":     true,
	"favicon.ico": true,
}

// registry implements the Registry interface
type registry struct {
	links     repository.LinkRepository
	generator shortener.Generator
}

// NewRegistry creates a new short link registry service
func NewRegistry(links repository.LinkRepository, generator shortener.Generator) Registry {
	return &registry{
		links:     links,
		generator: generator,
	}
}

// CreateLink creates a new short link for the owner
func (s *registry) CreateLink(ctx context.Context, ownerID string, req domain.CreateLinkRequest) (*domain.ShortLink, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthenticated
	}

	if err := validateTargetURL(req.TargetURL); err != nil {
		return nil, err
	}

	if req.ExpiresAt != nil && !req.ExpiresAt.After(time.Now()) {
		return nil, fmt.Errorf("%w: expiry must be in the future", domain.ErrInvalidTarget)
	}

	link := &domain.ShortLink{
		TargetURL:   req.TargetURL,
		OwnerID:     ownerID,
		Description: req.Description,
		Tags:        req.Tags,
		ExpiresAt:   req.ExpiresAt,
	}

	if req.CustomAlias != "" {
		if err := validateAlias(req.CustomAlias); err != nil {
			return nil, err
		}
		link.ShortKey = req.CustomAlias
		created, err := s.links.CreateLink(ctx, link)
		if err != nil {
			if errors.Is(err, domain.ErrAliasTaken) {
				return nil, domain.ErrAliasTaken
			}
			return nil, fmt.Errorf("failed to create link: %w", err)
		}
		return created, nil
	}

	// No alias given: generate and insert, retrying on the unique
	// constraint rather than checking first. The constraint is the
	// arbiter, so there is no check-then-insert window.
	for attempt := 0; attempt < maxKeyAttempts; attempt++ {
		key, err := s.generator.GenerateShortKey(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to generate short key: %w", err)
		}

		link.ShortKey = key
		created, err := s.links.CreateLink(ctx, link)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, domain.ErrAliasTaken) {
			return nil, fmt.Errorf("failed to create link: %w", err)
		}
	}

	return nil, fmt.Errorf("failed to create link: exhausted %d key generation attempts", maxKeyAttempts)
}

// Resolve records a click and returns the target URL
func (s *registry) Resolve(ctx context.Context, shortKey string, click domain.Click) (string, error) {
	if click.Timestamp.IsZero() {
		click.Timestamp = time.Now()
	}

	target, err := s.links.RecordClick(ctx, shortKey, click)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrLinkGone) {
			return "", err
		}
		return "", fmt.Errorf("failed to resolve %s: %w", shortKey, err)
	}

	return target, nil
}

// ListLinks retrieves one page of an owner's links
func (s *registry) ListLinks(ctx context.Context, ownerID string, page, limit int) (*domain.LinkPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	links, total, err := s.links.ListLinks(ctx, ownerID, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}

	return &domain.LinkPage{
		Links:      links,
		TotalCount: total,
		Page:       page,
		Limit:      limit,
	}, nil
}

// UpdateLink applies a metadata update to an owner's link
func (s *registry) UpdateLink(ctx context.Context, ownerID, shortKey string, req domain.UpdateLinkRequest) (*domain.ShortLink, error) {
	updated, err := s.links.UpdateLink(ctx, ownerID, shortKey, req)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update link: %w", err)
	}
	return updated, nil
}

// DeleteLink removes an owner's link and its click history
func (s *registry) DeleteLink(ctx context.Context, ownerID, shortKey string) error {
	if err := s.links.DeleteLink(ctx, ownerID, shortKey); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to delete link: %w", err)
	}
	return nil
}

// LinkStats computes the analytics projection for an owner's link.
// Window counts are derived from click timestamps against the current
// time on every call.
func (s *registry) LinkStats(ctx context.Context, ownerID, shortKey string) (*domain.LinkStats, error) {
	link, err := s.links.GetLinkForOwner(ctx, ownerID, shortKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load link: %w", err)
	}

	now := time.Now()

	last7, err := s.links.CountClicksSince(ctx, link.ID, now.AddDate(0, 0, -7))
	if err != nil {
		return nil, fmt.Errorf("failed to count clicks: %w", err)
	}

	last30, err := s.links.CountClicksSince(ctx, link.ID, now.AddDate(0, 0, -30))
	if err != nil {
		return nil, fmt.Errorf("failed to count clicks: %w", err)
	}

	recent, err := s.links.RecentClicks(ctx, link.ID, recentClickLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent clicks: %w", err)
	}

	return &domain.LinkStats{
		ShortKey:         link.ShortKey,
		TargetURL:        link.TargetURL,
		TotalClicks:      link.ClickCount,
		ClicksLast7Days:  last7,
		ClicksLast30Days: last30,
		RecentClicks:     recent,
		Active:           link.Active,
		CreatedAt:        link.CreatedAt,
	}, nil
}

// DashboardStats aggregates an owner's links for the dashboard view
func (s *registry) DashboardStats(ctx context.Context, ownerID string) (*domain.DashboardStats, error) {
	links, err := s.links.ListAllForOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load links: %w", err)
	}

	stats := &domain.DashboardStats{
		TotalURLs: len(links),
		TopLinks:  []domain.TopLink{},
	}

	weekAgo := time.Now().AddDate(0, 0, -7)
	for _, link := range links {
		stats.TotalClicks += link.ClickCount
		if link.Active {
			stats.ActiveURLs++
		}
		if link.CreatedAt.After(weekAgo) {
			stats.RecentURLs++
		}
	}

	sorted := make([]*domain.ShortLink, len(links))
	copy(sorted, links)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ClickCount > sorted[j].ClickCount
	})

	for i := 0; i < len(sorted) && i < topLinkLimit; i++ {
		stats.TopLinks = append(stats.TopLinks, domain.TopLink{
			ShortKey:   sorted[i].ShortKey,
			TargetURL:  sorted[i].TargetURL,
			ClickCount: sorted[i].ClickCount,
			CreatedAt:  sorted[i].CreatedAt,
		})
	}

	return stats, nil
}

func validateTargetURL(target string) error {
	if target == "" {
		return fmt.Errorf("%w: target URL is required", domain.ErrInvalidTarget)
	}

	parsed, err := url.ParseRequestURI(target)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidTarget, err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: only HTTP and HTTPS are supported", domain.ErrInvalidTarget)
	}

	if parsed.Host == "" {
		return fmt.Errorf("%w: missing host", domain.ErrInvalidTarget)
	}

	return nil
}

func validateAlias(alias string) error {
	if !aliasPattern.MatchString(alias) {
		return fmt.Errorf("%w: alias must be 4-32 characters of letters, digits, hyphen, or underscore", domain.ErrInvalidTarget)
	}
	if reservedKeys[alias] {
		return fmt.Errorf("%w: alias %q is reserved", domain.ErrAliasTaken, alias)
	}
	return nil
}

// Ensure registry implements Registry interface
var _ Registry = (*registry)(nil)
