package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/linkforge/shortlink/internal/domain"
	"github.com/linkforge/shortlink/internal/repository"
)

// Repository implements the repository interfaces using SQLite
type Repository struct {
	db *sql.DB
}

// New creates a new SQLite repository
func New(databasePath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", databasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Foreign keys gate the clicks cascade; WAL and the busy timeout keep
	// concurrent redirect transactions from failing with SQLITE_BUSY.
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	repo := &Repository{db: db}

	if err := repo.runMigrations(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

const linkColumns = `id, short_key, target_url, owner_id, description, tags, active, expires_at, click_count, created_at, updated_at`

// CreateLink persists a new short link
func (r *Repository) CreateLink(ctx context.Context, link *domain.ShortLink) (*domain.ShortLink, error) {
	tags, err := marshalTags(link.Tags)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var expiresAt any
	if link.ExpiresAt != nil {
		expiresAt = link.ExpiresAt.UTC()
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO links (short_key, target_url, owner_id, description, tags, active, expires_at, click_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 1, ?, 0, ?, ?)`,
		link.ShortKey, link.TargetURL, link.OwnerID, link.Description, tags, expiresAt, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAliasTaken
		}
		return nil, fmt.Errorf("failed to create link: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted link id: %w", err)
	}

	created := *link
	created.ID = id
	created.Active = true
	created.ClickCount = 0
	created.CreatedAt = now
	created.UpdatedAt = now
	return &created, nil
}

// GetLink retrieves a link by its short key regardless of owner
func (r *Repository) GetLink(ctx context.Context, shortKey string) (*domain.ShortLink, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+linkColumns+` FROM links WHERE short_key = ?`, shortKey)
	return scanLink(row)
}

// GetLinkForOwner retrieves a link by short key scoped to an owner
func (r *Repository) GetLinkForOwner(ctx context.Context, ownerID, shortKey string) (*domain.ShortLink, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+linkColumns+` FROM links WHERE short_key = ? AND owner_id = ?`, shortKey, ownerID)
	return scanLink(row)
}

// ListLinks retrieves one page of an owner's links, newest first
func (r *Repository) ListLinks(ctx context.Context, ownerID string, limit, offset int) ([]*domain.ShortLink, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM links WHERE owner_id = ?`, ownerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count links: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+linkColumns+` FROM links WHERE owner_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	links, err := collectLinks(rows)
	if err != nil {
		return nil, 0, err
	}
	return links, total, nil
}

// ListAllForOwner retrieves every link an owner has, newest first
func (r *Repository) ListAllForOwner(ctx context.Context, ownerID string) ([]*domain.ShortLink, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+linkColumns+` FROM links WHERE owner_id = ? ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	return collectLinks(rows)
}

// UpdateLink applies a metadata update to an owner's link.
// The read and write run in one transaction so two racing updates of the
// same link cannot interleave.
func (r *Repository) UpdateLink(ctx context.Context, ownerID, shortKey string, update domain.UpdateLinkRequest) (*domain.ShortLink, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin update: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+linkColumns+` FROM links WHERE short_key = ? AND owner_id = ?`, shortKey, ownerID)
	link, err := scanLink(row)
	if err != nil {
		return nil, err
	}

	if update.Description != nil {
		link.Description = *update.Description
	}
	if update.Tags != nil {
		link.Tags = *update.Tags
	}
	if update.Active != nil {
		link.Active = *update.Active
	}

	tags, err := marshalTags(link.Tags)
	if err != nil {
		return nil, err
	}

	link.UpdatedAt = time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`UPDATE links SET description = ?, tags = ?, active = ?, updated_at = ? WHERE id = ?`,
		link.Description, tags, link.Active, link.UpdatedAt, link.ID); err != nil {
		return nil, fmt.Errorf("failed to update link: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit update: %w", err)
	}

	return link, nil
}

// DeleteLink removes an owner's link; click rows cascade with it
func (r *Repository) DeleteLink(ctx context.Context, ownerID, shortKey string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM links WHERE short_key = ? AND owner_id = ?`, shortKey, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// RecordClick increments the click counter and appends one history entry
// in a single transaction. The counter and the history row commit together
// or not at all, so click_count always equals the number of stored clicks.
func (r *Repository) RecordClick(ctx context.Context, shortKey string, click domain.Click) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin click transaction: %w", err)
	}
	defer tx.Rollback()

	ts := click.Timestamp.UTC()

	// The gating conditions live inside the UPDATE itself: an inactive or
	// expired row is simply not matched, and never mutated.
	result, err := tx.ExecContext(ctx, `
		UPDATE links SET click_count = click_count + 1, updated_at = ?
		WHERE short_key = ? AND active = 1 AND (expires_at IS NULL OR expires_at > ?)`,
		ts, shortKey, ts)
	if err != nil {
		return "", fmt.Errorf("failed to count click: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to read click result: %w", err)
	}

	if affected == 0 {
		var id int64
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM links WHERE short_key = ?`, shortKey).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		if err != nil {
			return "", fmt.Errorf("failed to look up link: %w", err)
		}
		return "", domain.ErrLinkGone
	}

	var linkID int64
	var targetURL string
	if err := tx.QueryRowContext(ctx,
		`SELECT id, target_url FROM links WHERE short_key = ?`, shortKey).Scan(&linkID, &targetURL); err != nil {
		return "", fmt.Errorf("failed to read link target: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO clicks (link_id, ts, source_ip, user_agent, referrer)
		VALUES (?, ?, ?, ?, ?)`,
		linkID, ts, click.SourceIP, click.UserAgent, click.Referrer); err != nil {
		return "", fmt.Errorf("failed to record click: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit click: %w", err)
	}

	return targetURL, nil
}

// CountClicksSince counts a link's clicks at or after the cutoff
func (r *Repository) CountClicksSince(ctx context.Context, linkID int64, since time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM clicks WHERE link_id = ? AND ts >= ?`, linkID, since.UTC()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count clicks: %w", err)
	}
	return count, nil
}

// RecentClicks retrieves a link's most recent clicks, newest first
func (r *Repository) RecentClicks(ctx context.Context, linkID int64, limit int) ([]domain.Click, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ts, source_ip, user_agent, referrer FROM clicks
		WHERE link_id = ? ORDER BY ts DESC, id DESC LIMIT ?`, linkID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load clicks: %w", err)
	}
	defer rows.Close()

	var clicks []domain.Click
	for rows.Next() {
		var click domain.Click
		if err := rows.Scan(&click.Timestamp, &click.SourceIP, &click.UserAgent, &click.Referrer); err != nil {
			return nil, fmt.Errorf("failed to scan click: %w", err)
		}
		clicks = append(clicks, click)
	}

	return clicks, rows.Err()
}

// Close closes the repository connection
func (r *Repository) Close() error {
	return r.db.Close()
}

func scanLink(row *sql.Row) (*domain.ShortLink, error) {
	var link domain.ShortLink
	var tags string
	var expiresAt sql.NullTime

	err := row.Scan(&link.ID, &link.ShortKey, &link.TargetURL, &link.OwnerID,
		&link.Description, &tags, &link.Active, &expiresAt, &link.ClickCount,
		&link.CreatedAt, &link.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan link: %w", err)
	}

	if expiresAt.Valid {
		t := expiresAt.Time
		link.ExpiresAt = &t
	}
	if link.Tags, err = unmarshalTags(tags); err != nil {
		return nil, err
	}

	return &link, nil
}

func collectLinks(rows *sql.Rows) ([]*domain.ShortLink, error) {
	links := []*domain.ShortLink{}
	for rows.Next() {
		var link domain.ShortLink
		var tags string
		var expiresAt sql.NullTime

		if err := rows.Scan(&link.ID, &link.ShortKey, &link.TargetURL, &link.OwnerID,
			&link.Description, &tags, &link.Active, &expiresAt, &link.ClickCount,
			&link.CreatedAt, &link.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}

		if expiresAt.Valid {
			t := expiresAt.Time
			link.ExpiresAt = &t
		}
		var err error
		if link.Tags, err = unmarshalTags(tags); err != nil {
			return nil, err
		}

		links = append(links, &link)
	}

	return links, rows.Err()
}

func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(data), nil
}

func unmarshalTags(raw string) ([]string, error) {
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return tags, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// Ensure Repository implements the interfaces
var (
	_ repository.LinkRepository = (*Repository)(nil)
	_ repository.UserRepository = (*Repository)(nil)
	_ repository.LogRepository  = (*Repository)(nil)
)
