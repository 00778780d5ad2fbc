package relayer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"bridgescope/internal/metrics"
	"bridgescope/internal/model"
)

const (
	eventsPath    = "/events"
	blockInfoPath = "/blockInfo"

	// EventMessageSent is the event filter used for bridge transaction queries.
	EventMessageSent = "MessageSent"
)

var errDecode = errors.New("decode response")

// StatusError is returned when the relayer answers with an HTTP error status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("relayer returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("relayer returned status %d: %s", e.StatusCode, e.Body)
}

// Config configures the relayer API client.
type Config struct {
	BaseURL      string
	HTTPClient   *http.Client
	MaxRetries   int
	RetryBackoff time.Duration
}

// EventsParams are the query parameters of the /events endpoint.
type EventsParams struct {
	Address string
	ChainID *uint64
	Event   string
	Page    int
	Size    int
}

// Client fetches bridge events and indexing progress from the relayer API.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	maxRetries   int
	retryBackoff time.Duration
	logger       *zap.Logger
	metrics      *metrics.Metrics
}

// NewClient creates a relayer API client.
func NewClient(cfg Config, logger *zap.Logger, m *metrics.Metrics) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:   httpClient,
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		logger:       logger,
		metrics:      m,
	}
}

// FetchEvents returns one page of events matching params.
func (c *Client) FetchEvents(ctx context.Context, params EventsParams) (*model.EventsResponse, error) {
	query := url.Values{}
	query.Set("address", params.Address)
	if params.ChainID != nil {
		query.Set("chainID", strconv.FormatUint(*params.ChainID, 10))
	}
	if params.Event != "" {
		query.Set("event", params.Event)
	}
	query.Set("page", strconv.Itoa(params.Page))
	query.Set("size", strconv.Itoa(params.Size))

	c.logger.Debug("fetch events",
		zap.String("address", params.Address),
		zap.Int("page", params.Page),
		zap.Int("size", params.Size),
	)

	var resp model.EventsResponse
	if err := c.getJSON(ctx, eventsPath, query, &resp); err != nil {
		return nil, fmt.Errorf("could not fetch transactions from API: %w", err)
	}

	c.logger.Debug("events fetched", zap.Int("items", len(resp.Items)), zap.Int("total", resp.Total))
	return &resp, nil
}

type blockInfoResponse struct {
	Data []model.BlockInfo `json:"data"`
}

// FetchBlockInfo returns the relayer's per-chain indexing progress.
func (c *Client) FetchBlockInfo(ctx context.Context) ([]model.BlockInfo, error) {
	var resp blockInfoResponse
	if err := c.getJSON(ctx, blockInfoPath, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch block info: %w", err)
	}
	return resp.Data, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	attempt := 0
	return withRetry(ctx, c.maxRetries, c.retryBackoff, isRetryable, func(ctx context.Context) error {
		if attempt > 0 {
			c.metrics.RecordFeedRetry(path)
		}
		attempt++

		err := c.doGet(ctx, path, u, out)
		if err != nil {
			c.logger.Warn("relayer request failed", zap.String("path", path), zap.Int("attempt", attempt), zap.Error(err))
		}
		return err
	})
}

func (c *Client) doGet(ctx context.Context, path, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordFeedRequest(path, 0, time.Since(start).Seconds())
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	c.metrics.RecordFeedRequest(path, resp.StatusCode, time.Since(start).Seconds())

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", errDecode, err)
	}
	return nil
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= http.StatusInternalServerError
	}
	return !errors.Is(err, errDecode)
}
