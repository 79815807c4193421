package logsink

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/linkforge/shortlink/internal/domain"
	"github.com/linkforge/shortlink/internal/repository"
)

const (
	defaultBufferSize = 256
	writeTimeout      = 5 * time.Second
)

// Sink persists request log entries off the request path. Record never
// blocks the caller; entries are dropped when the buffer is full.
type Sink struct {
	logs   repository.LogRepository
	logger *zap.Logger

	entries chan *domain.RequestLog
	done    chan struct{}
	once    sync.Once
}

// New creates a sink and starts its background writer
func New(logs repository.LogRepository, logger *zap.Logger) *Sink {
	s := &Sink{
		logs:    logs,
		logger:  logger,
		entries: make(chan *domain.RequestLog, defaultBufferSize),
		done:    make(chan struct{}),
	}

	go s.run()

	return s
}

// Record enqueues one entry for persistence
func (s *Sink) Record(entry *domain.RequestLog) {
	select {
	case s.entries <- entry:
	default:
		s.logger.Warn("request log buffer full, dropping entry",
			zap.String("path", entry.Path))
	}
}

// Close stops the writer after draining the buffered entries
func (s *Sink) Close() {
	s.once.Do(func() {
		close(s.entries)
		<-s.done
	})
}

func (s *Sink) run() {
	defer close(s.done)

	for entry := range s.entries {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := s.logs.InsertRequestLog(ctx, entry); err != nil {
			s.logger.Error("failed to persist request log", zap.Error(err))
		}
		cancel()
	}
}
