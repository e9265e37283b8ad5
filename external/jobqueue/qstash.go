package jobqueue

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/asset-draft/internal/platform/logging"
	"github.com/riskibarqy/asset-draft/internal/platform/resilience"
	"github.com/riskibarqy/asset-draft/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultQStashBaseURL = "https://qstash.upstash.io"
	maxLoggedBodyBytes   = 4096
)

var errQStashTransient = crerr.New("qstash transient failure")

type QStashConfig struct {
	BaseURL string
	Token   string
	// TargetBaseURL is the public base URL QStash calls back, e.g. https://api.example.com.
	TargetBaseURL string
	Retries       int
	// InternalJobToken is forwarded as X-Internal-Job-Token on the callback.
	InternalJobToken string
	Timeout          time.Duration
	CircuitBreaker   resilience.CircuitBreakerConfig
}

// QStashQueue schedules delayed HTTP callbacks into the internal job routes.
// Upstash deduplicates by the id passed to Enqueue, so re-enqueueing the
// same draft tick is harmless.
type QStashQueue struct {
	client           *http.Client
	baseURL          string
	token            string
	targetBaseURL    string
	retries          int
	internalJobToken string
	logger           *logging.Logger
	breaker          *resilience.CircuitBreaker
}

func NewQStashQueue(cfg QStashConfig, logger *logging.Logger) (*QStashQueue, error) {
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rawBase := strings.TrimSpace(cfg.BaseURL)
	if rawBase == "" {
		rawBase = defaultQStashBaseURL
	}
	baseURL, err := validateHTTPBaseURL(rawBase)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid QSTASH_BASE_URL")
	}
	targetBaseURL, err := validateHTTPBaseURL(cfg.TargetBaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid QSTASH_TARGET_BASE_URL")
	}
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, crerr.New("QSTASH_TOKEN is required")
	}

	return &QStashQueue{
		client:           &http.Client{Timeout: timeout},
		baseURL:          baseURL,
		token:            token,
		targetBaseURL:    targetBaseURL,
		retries:          max(cfg.Retries, 0),
		internalJobToken: strings.TrimSpace(cfg.InternalJobToken),
		logger:           logger,
		breaker:          resilience.NewCircuitBreaker(cfg.CircuitBreaker),
	}, nil
}

func (q *QStashQueue) Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error {
	path = "/" + strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "/" {
		return fmt.Errorf("%w: job path is required", usecase.ErrInvalidInput)
	}
	if err := q.breaker.Allow(); err != nil {
		q.logger.WarnContext(ctx, "qstash circuit breaker rejected request", "state", q.breaker.State(), "path", path)
		return fmt.Errorf("%w: qstash is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	if payload == nil {
		payload = map[string]any{}
	}
	body, err := sonic.Marshal(payload)
	if err != nil {
		q.recordCircuitResult(nil)
		return crerr.Wrap(err, "marshal job payload")
	}

	job := publishRequest{
		targetURL:       q.targetBaseURL + path,
		path:            path,
		delay:           formatDelay(delay),
		deduplicationID: strings.TrimSpace(deduplicationID),
		body:            body,
	}
	job.publishURL = q.baseURL + "/v2/publish/" + job.targetURL

	bodyText := truncateForLog(string(body), maxLoggedBodyBytes)
	curlPreview := q.curlPreview(job, bodyText)
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.String("qstash.target_url", job.targetURL),
			attribute.String("qstash.path", path),
			attribute.String("qstash.delay", job.delay),
			attribute.String("qstash.deduplication_id", job.deduplicationID),
			attribute.String("qstash.request_curl_preview", curlPreview),
		)
	}
	q.logger.DebugContext(ctx, "qstash publish request", "path", path, "target_url", job.targetURL, "curl_preview", curlPreview)

	err = q.publish(ctx, job)
	q.recordCircuitResult(err)
	if err != nil {
		q.logger.WarnContext(ctx, "qstash publish failed", "path", path, "deduplication_id", job.deduplicationID, "error", err)
		if stderrors.Is(err, errQStashTransient) {
			return fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
		}
		return err
	}

	q.logger.InfoContext(ctx, "qstash job published", "path", path, "delay", job.delay, "deduplication_id", job.deduplicationID)
	return nil
}

type publishRequest struct {
	publishURL      string
	targetURL       string
	path            string
	delay           string
	deduplicationID string
	body            []byte
}

func (q *QStashQueue) publish(ctx context.Context, job publishRequest) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, job.publishURL, bytes.NewReader(job.body))
	if err != nil {
		return crerr.Wrap(err, "create qstash request")
	}
	for key, value := range q.headers(job) {
		req.Header.Set(key, value)
	}
	req.Header.Set("Authorization", "Bearer "+q.token)

	resp, err := q.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: publish job target_url=%s: %v", errQStashTransient, job.targetURL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 == 2 {
		return nil
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBodyBytes))
	if isRetryableStatus(resp.StatusCode) {
		return fmt.Errorf("%w: publish job status=%d target_url=%s body=%s", errQStashTransient, resp.StatusCode, job.targetURL, strings.TrimSpace(string(raw)))
	}
	return crerr.Newf("publish job status=%d target_url=%s body=%s", resp.StatusCode, job.targetURL, strings.TrimSpace(string(raw)))
}

// headers returns the Upstash-* headers for a job, without Authorization.
func (q *QStashQueue) headers(job publishRequest) map[string]string {
	out := map[string]string{
		"Content-Type":   "application/json",
		"Upstash-Method": http.MethodPost,
	}
	if q.retries > 0 {
		out["Upstash-Retries"] = strconv.Itoa(q.retries)
	}
	if job.delay != "0s" {
		out["Upstash-Delay"] = job.delay
	}
	if job.deduplicationID != "" {
		out["Upstash-Deduplication-Id"] = job.deduplicationID
	}
	if q.internalJobToken != "" {
		out["Upstash-Forward-X-Internal-Job-Token"] = q.internalJobToken
	}
	return out
}

func (q *QStashQueue) curlPreview(job publishRequest, body string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	appendPart := func(part string) {
		if buf.Len() > 0 {
			_ = buf.WriteByte(' ')
		}
		_, _ = buf.WriteString(part)
	}
	appendHeader := func(name, value string) {
		appendPart("-H")
		appendPart(shellQuote(name + ": " + value))
	}

	appendPart("curl -X POST")
	appendPart(shellQuote(job.publishURL))
	appendHeader("Authorization", "Bearer ***")
	headers := q.headers(job)
	for _, name := range []string{"Content-Type", "Upstash-Method", "Upstash-Retries", "Upstash-Delay", "Upstash-Deduplication-Id"} {
		if value, ok := headers[name]; ok {
			appendHeader(name, value)
		}
	}
	if _, ok := headers["Upstash-Forward-X-Internal-Job-Token"]; ok {
		appendHeader("Upstash-Forward-X-Internal-Job-Token", "***")
	}
	appendPart("-d")
	appendPart(shellQuote(body))
	return buf.String()
}

func (q *QStashQueue) recordCircuitResult(err error) {
	q.breaker.Done(err != nil && stderrors.Is(err, errQStashTransient))
}

func formatDelay(delay time.Duration) string {
	seconds := int(delay.Round(time.Second).Seconds())
	if seconds <= 0 {
		return "0s"
	}
	return strconv.Itoa(seconds) + "s"
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}
	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}
	return strings.TrimRight(candidate, "/"), nil
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}

func truncateForLog(value string, limit int) string {
	if limit <= 0 || len(value) <= limit {
		return value
	}
	return value[:limit] + "...(truncated)"
}
