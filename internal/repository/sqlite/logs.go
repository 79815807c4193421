package sqlite

import (
	"context"
	"fmt"

	"github.com/linkforge/shortlink/internal/domain"
)

// InsertRequestLog stores one request log entry
func (r *Repository) InsertRequestLog(ctx context.Context, entry *domain.RequestLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO request_logs (method, path, status, duration_ms, source_ip, owner_id, error, ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Method, entry.Path, entry.Status, entry.DurationMs,
		entry.SourceIP, entry.OwnerID, entry.Error, entry.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert request log: %w", err)
	}
	return nil
}
