package market

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/asset-draft/internal/domain/asset"
	"github.com/riskibarqy/asset-draft/internal/platform/logging"
	"github.com/riskibarqy/asset-draft/internal/platform/resilience"
	"github.com/riskibarqy/asset-draft/internal/usecase"
	"github.com/valyala/fasthttp"
)

const (
	defaultKrakenBaseURL = "https://api.kraken.com"
	defaultKrakenTimeout = 10 * time.Second
	maxKrakenBodyBytes   = 2 << 20
)

var (
	errKrakenTransient = crerr.New("kraken transient failure")
	nonLetterRegex     = regexp.MustCompile(`[^A-Z]`)
)

type KrakenConfig struct {
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	// HTTPClient overrides the pooled fasthttp client, mainly for tests.
	HTTPClient *fasthttp.Client
}

// KrakenClient reads last trade prices from the public Ticker endpoint.
type KrakenClient struct {
	http       *fasthttp.Client
	baseURL    string
	timeout    time.Duration
	maxRetries int
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     resilience.SingleFlight[[]byte]
}

func NewKrakenClient(cfg KrakenConfig) *KrakenClient {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultKrakenTimeout
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultKrakenBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			Name:                "asset-draft",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxResponseBodySize: maxKrakenBodyBytes,
		}
	}

	return &KrakenClient{
		http:       httpClient,
		baseURL:    baseURL,
		timeout:    timeout,
		maxRetries: max(cfg.MaxRetries, 0),
		logger:     logger,
		breaker:    resilience.NewCircuitBreaker(cfg.CircuitBreaker),
	}
}

type tickerEnvelope struct {
	Error  []string                `json:"error"`
	Result map[string]tickerRecord `json:"result"`
}

type tickerRecord struct {
	// C is [last trade price, lot volume].
	C []string `json:"c"`
}

// LastPrices returns the last trade price keyed by the pair name Kraken
// answered with, which may differ from the requested spelling.
func (c *KrakenClient) LastPrices(ctx context.Context, pairs []string) (map[string]float64, error) {
	if len(pairs) == 0 {
		return map[string]float64{}, nil
	}
	sorted := append([]string(nil), pairs...)
	sort.Strings(sorted)
	joined := strings.Join(sorted, ",")
	fullURL := c.baseURL + "/0/public/Ticker?pair=" + url.QueryEscape(joined)

	raw, _, err := c.flight.Do(joined, func() ([]byte, error) {
		var body []byte
		reqErr := c.breaker.Execute(func() error {
			var execErr error
			body, execErr = c.executeRequest(ctx, fullURL)
			return execErr
		}, isTransient)
		return body, reqErr
	})
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "kraken circuit breaker rejected request", "state", c.breaker.State())
		return nil, fmt.Errorf("%w: kraken is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}
	if err != nil {
		return nil, err
	}

	var envelope tickerEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return nil, crerr.Wrap(err, "decode kraken ticker")
	}
	if len(envelope.Error) > 0 {
		return nil, crerr.Newf("kraken error: %s", strings.Join(envelope.Error, ", "))
	}

	prices := make(map[string]float64, len(envelope.Result))
	for pair, record := range envelope.Result {
		if len(record.C) == 0 {
			continue
		}
		price, err := strconv.ParseFloat(record.C[0], 64)
		if err != nil || price <= 0 {
			continue
		}
		prices[pair] = price
	}
	return prices, nil
}

func (c *KrakenClient) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, status, err := c.get(ctx, fullURL)
		switch {
		case err != nil:
			lastErr = fmt.Errorf("%w: send request: %v", errKrakenTransient, err)
		case status >= 200 && status < 300:
			return raw, nil
		case isRetryableStatus(status):
			lastErr = fmt.Errorf("%w: kraken status=%d body=%s", errKrakenTransient, status, abbreviate(raw))
		default:
			return nil, crerr.Newf("kraken status=%d body=%s", status, abbreviate(raw))
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * 500 * time.Millisecond)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "kraken request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func (c *KrakenClient) get(ctx context.Context, fullURL string) ([]byte, int, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, 0, err
	}

	body := append([]byte(nil), resp.Body()...)
	return body, resp.StatusCode(), nil
}

func isTransient(err error) bool {
	return stderrors.Is(err, errKrakenTransient)
}

func isRetryableStatus(status int) bool {
	return status == fasthttp.StatusRequestTimeout ||
		status == fasthttp.StatusTooManyRequests ||
		status >= fasthttp.StatusInternalServerError
}

func abbreviate(raw []byte) string {
	const limit = 256
	text := strings.TrimSpace(string(raw))
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}

// KrakenFeed prices crypto assets from Kraken. Other kinds are delegated to
// the secondary feed so valuation keeps moving for every asset.
type KrakenFeed struct {
	client *KrakenClient
	others asset.PriceFeed
	now    func() time.Time
}

func NewKrakenFeed(client *KrakenClient, others asset.PriceFeed) *KrakenFeed {
	return &KrakenFeed{client: client, others: others, now: time.Now}
}

func (f *KrakenFeed) Name() string {
	return "kraken"
}

func (f *KrakenFeed) Quotes(ctx context.Context, assets []asset.Asset, previous map[string]asset.Price) ([]asset.Price, error) {
	crypto := make([]asset.Asset, 0, len(assets))
	other := make([]asset.Asset, 0, len(assets))
	for _, a := range assets {
		if a.Kind == asset.KindCrypto {
			crypto = append(crypto, a)
		} else {
			other = append(other, a)
		}
	}

	out := make([]asset.Price, 0, len(assets))
	if len(other) > 0 && f.others != nil {
		quotes, err := f.others.Quotes(ctx, other, previous)
		if err != nil {
			return nil, fmt.Errorf("quote non-crypto assets via %s: %w", f.others.Name(), err)
		}
		out = append(out, quotes...)
	}
	if len(crypto) == 0 {
		return out, nil
	}

	pairByAsset := make(map[string]string, len(crypto))
	pairs := make([]string, 0, len(crypto))
	for _, a := range crypto {
		pair := KrakenPair(a)
		pairByAsset[a.ID] = pair
		pairs = append(pairs, pair)
	}

	last, err := f.client.LastPrices(ctx, pairs)
	if err != nil {
		return nil, fmt.Errorf("fetch kraken ticker: %w", err)
	}

	asOf := f.now().UTC()
	for _, a := range crypto {
		price, ok := matchPair(last, pairByAsset[a.ID])
		if !ok {
			continue
		}
		out = append(out, asset.Price{AssetID: a.ID, Price: price, AsOf: asOf})
	}
	return out, nil
}

// KrakenPair returns the explicit exchange pair of an asset, or a USD pair
// guessed from its id with BTC spelled XBT.
func KrakenPair(a asset.Asset) string {
	if pair := strings.TrimSpace(a.KrakenPair); pair != "" {
		return strings.ToUpper(pair)
	}
	base := asset.NormalizeID(a.ID)
	if base == "BTC" {
		base = "XBT"
	}
	return base + "USD"
}

// matchPair looks the requested pair up directly, then by its letters, since
// Kraken answers some pairs under their legacy names (XBTUSD -> XXBTZUSD).
func matchPair(prices map[string]float64, requested string) (float64, bool) {
	if price, ok := prices[requested]; ok {
		return price, true
	}
	base := nonLetterRegex.ReplaceAllString(strings.TrimSuffix(strings.ToUpper(requested), "USD"), "")
	if base == "" {
		return 0, false
	}

	keys := make([]string, 0, len(prices))
	for key := range prices {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		upper := strings.ToUpper(key)
		if strings.Contains(upper, base) && strings.Contains(upper, "USD") {
			return prices[key], true
		}
	}
	return 0, false
}
