package jobqueue

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/asset-draft/internal/platform/logging"
	"github.com/riskibarqy/asset-draft/internal/platform/resilience"
	"github.com/riskibarqy/asset-draft/internal/usecase"
	"github.com/stretchr/testify/require"
)

type capturedPublish struct {
	path    string
	headers http.Header
	body    string
}

func newCapturingServer(t *testing.T, status int) (*httptest.Server, func() []capturedPublish) {
	t.Helper()

	var (
		mu       sync.Mutex
		captured []capturedPublish
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		mu.Lock()
		captured = append(captured, capturedPublish{path: r.URL.Path, headers: r.Header.Clone(), body: string(raw)})
		mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"messageId":"msg-1"}`))
	}))
	t.Cleanup(srv.Close)

	return srv, func() []capturedPublish {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedPublish(nil), captured...)
	}
}

func TestQStashQueue_EnqueueSendsUpstashHeaders(t *testing.T) {
	srv, captured := newCapturingServer(t, http.StatusOK)

	queue, err := NewQStashQueue(QStashConfig{
		BaseURL:          srv.URL,
		Token:            "qstash-token",
		TargetBaseURL:    "https://draft.example.com/",
		Retries:          3,
		InternalJobToken: "job-secret",
	}, logging.NewNop())
	require.NoError(t, err)

	payload := map[string]any{"league_id": "lg-1"}
	err = queue.Enqueue(context.Background(), "v1/internal/jobs/draft-tick", payload, 1500*time.Millisecond, " draft-tick-lg-1-3-7 ")
	require.NoError(t, err)

	calls := captured()
	require.Len(t, calls, 1)
	call := calls[0]
	require.Equal(t, "/v2/publish/https://draft.example.com/v1/internal/jobs/draft-tick", call.path)
	require.Equal(t, "Bearer qstash-token", call.headers.Get("Authorization"))
	require.Equal(t, "POST", call.headers.Get("Upstash-Method"))
	require.Equal(t, "3", call.headers.Get("Upstash-Retries"))
	require.Equal(t, "2s", call.headers.Get("Upstash-Delay"))
	require.Equal(t, "draft-tick-lg-1-3-7", call.headers.Get("Upstash-Deduplication-Id"))
	require.Equal(t, "job-secret", call.headers.Get("Upstash-Forward-X-Internal-Job-Token"))
	require.JSONEq(t, `{"league_id":"lg-1"}`, call.body)
}

func TestQStashQueue_EnqueueWithoutDelayOmitsDelayHeader(t *testing.T) {
	srv, captured := newCapturingServer(t, http.StatusCreated)

	queue, err := NewQStashQueue(QStashConfig{BaseURL: srv.URL, Token: "t", TargetBaseURL: "http://localhost:8080"}, logging.NewNop())
	require.NoError(t, err)
	require.NoError(t, queue.Enqueue(context.Background(), "/v1/internal/jobs/weekly", nil, 0, ""))

	calls := captured()
	require.Len(t, calls, 1)
	require.Empty(t, calls[0].headers.Get("Upstash-Delay"))
	require.Empty(t, calls[0].headers.Get("Upstash-Deduplication-Id"))
	require.Empty(t, calls[0].headers.Get("Upstash-Retries"))
	require.JSONEq(t, `{}`, calls[0].body)
}

func TestQStashQueue_EnqueueErrors(t *testing.T) {
	t.Run("server error is a dependency failure", func(t *testing.T) {
		srv, _ := newCapturingServer(t, http.StatusBadGateway)
		queue, err := NewQStashQueue(QStashConfig{BaseURL: srv.URL, Token: "t", TargetBaseURL: "http://localhost"}, logging.NewNop())
		require.NoError(t, err)

		err = queue.Enqueue(context.Background(), "/jobs/x", nil, 0, "")
		require.ErrorIs(t, err, usecase.ErrDependencyUnavailable)
	})

	t.Run("client error is returned as is", func(t *testing.T) {
		srv, _ := newCapturingServer(t, http.StatusBadRequest)
		queue, err := NewQStashQueue(QStashConfig{BaseURL: srv.URL, Token: "t", TargetBaseURL: "http://localhost"}, logging.NewNop())
		require.NoError(t, err)

		err = queue.Enqueue(context.Background(), "/jobs/x", nil, 0, "")
		require.Error(t, err)
		require.False(t, errors.Is(err, usecase.ErrDependencyUnavailable))
		require.Contains(t, err.Error(), "status=400")
	})

	t.Run("empty path", func(t *testing.T) {
		queue, err := NewQStashQueue(QStashConfig{Token: "t", TargetBaseURL: "http://localhost"}, logging.NewNop())
		require.NoError(t, err)
		require.ErrorIs(t, queue.Enqueue(context.Background(), " / ", nil, 0, ""), usecase.ErrInvalidInput)
	})
}

func TestQStashQueue_CircuitBreakerOpens(t *testing.T) {
	srv, captured := newCapturingServer(t, http.StatusServiceUnavailable)
	queue, err := NewQStashQueue(QStashConfig{
		BaseURL:       srv.URL,
		Token:         "t",
		TargetBaseURL: "http://localhost",
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	}, logging.NewNop())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		err := queue.Enqueue(context.Background(), "/jobs/x", nil, 0, "")
		require.ErrorIs(t, err, usecase.ErrDependencyUnavailable)
	}
	require.Len(t, captured(), 1)
}

func TestNewQStashQueue_ValidatesConfig(t *testing.T) {
	_, err := NewQStashQueue(QStashConfig{Token: "t", TargetBaseURL: "ftp://example.com"}, nil)
	require.ErrorContains(t, err, "QSTASH_TARGET_BASE_URL")

	_, err = NewQStashQueue(QStashConfig{TargetBaseURL: "https://example.com"}, nil)
	require.ErrorContains(t, err, "QSTASH_TOKEN")
}

func TestQStashQueue_CurlPreviewMasksSecrets(t *testing.T) {
	queue, err := NewQStashQueue(QStashConfig{Token: "secret", TargetBaseURL: "https://draft.example.com", InternalJobToken: "job-secret"}, nil)
	require.NoError(t, err)

	preview := queue.curlPreview(publishRequest{publishURL: "https://qstash.upstash.io/v2/publish/x", delay: "0s"}, `{"a":"it's"}`)
	require.NotContains(t, preview, "secret")
	require.True(t, strings.HasPrefix(preview, "curl -X POST 'https://qstash.upstash.io/v2/publish/x'"))
	require.Contains(t, preview, `'{"a":"it'"'"'s"}'`)
}
