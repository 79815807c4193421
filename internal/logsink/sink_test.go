package logsink

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/linkforge/shortlink/internal/domain"
	repoMocks "github.com/linkforge/shortlink/internal/repository/mocks"
)

func TestSink_RecordAndClose(t *testing.T) {
	logs := &repoMocks.LogRepository{}
	logs.On("InsertRequestLog", mock.Anything, mock.AnythingOfType("*domain.RequestLog")).
		Return(nil)

	sink := New(logs, zap.NewNop())
	for i := 0; i < 10; i++ {
		sink.Record(&domain.RequestLog{
			Method:    "GET",
			Path:      "/abc1234",
			Status:    302,
			Timestamp: time.Now(),
		})
	}
	sink.Close()

	logs.AssertNumberOfCalls(t, "InsertRequestLog", 10)
}

func TestSink_SurvivesWriterErrors(t *testing.T) {
	logs := &repoMocks.LogRepository{}
	logs.On("InsertRequestLog", mock.Anything, mock.AnythingOfType("*domain.RequestLog")).
		Return(assert.AnError)

	sink := New(logs, zap.NewNop())
	sink.Record(&domain.RequestLog{Method: "GET", Path: "/health", Status: 200})
	sink.Record(&domain.RequestLog{Method: "GET", Path: "/health", Status: 200})
	sink.Close()

	logs.AssertNumberOfCalls(t, "InsertRequestLog", 2)
}

func TestSink_CloseIsIdempotent(t *testing.T) {
	logs := &repoMocks.LogRepository{}
	sink := New(logs, zap.NewNop())

	sink.Close()
	assert.NotPanics(t, sink.Close)
}
