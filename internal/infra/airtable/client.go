// Package airtable adapts the hosted record store's REST API to the
// repository ports. Reads run behind retry-with-backoff inside a circuit
// breaker; failures surface as typed domain errors, never raw HTTP ones.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/dmelton/splitbook/internal/domain"
	"github.com/dmelton/splitbook/internal/infra/observability"
	"github.com/dmelton/splitbook/internal/infra/resilience"
)

var tracer = otel.Tracer("airtable")

// Table names in the record store base.
const (
	tableUsers         = "Users"
	tableAccounts      = "Accounts"
	tableCategories    = "Categories"
	tableTransactions  = "Transactions"
	tableRefreshTokens = "RefreshTokens"
)

// Client wraps HTTP calls to the record store's REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewClient creates a record-store client. baseURL includes the base id,
// e.g. "https://api.airtable.com/v0/appXXXX".
func NewClient(httpClient *http.Client, baseURL, apiKey string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, metrics *observability.Metrics, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		cb:         cb,
		cfg:        cfg,
		metrics:    metrics,
		logger:     logger,
	}
}

// errRecordNotFound marks a 404 from the store so execute() does not
// retry or count it against the breaker.
var errRecordNotFound = errors.New("record not found")

// execute runs fn behind the circuit breaker with retries, then maps
// failures to domain errors. A 404 from the store is terminal (no retry,
// not a breaker failure) and surfaces as errRecordNotFound for the store
// layer to translate.
func (c *Client) execute(ctx context.Context, table string, fn func() error) error {
	var notFound bool
	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			notFound = false
			err := fn()
			if errors.Is(err, errRecordNotFound) {
				notFound = true
				return nil
			}
			return err
		})
	})
	if err != nil {
		c.metrics.IncrStoreError(table)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return &domain.ErrCircuitOpen{Service: "recordstore/" + table}
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return &domain.ErrTimeout{Operation: "recordstore/" + table}
		}
		return &domain.ErrRepositoryUnavailable{Store: table, Err: err}
	}
	if notFound {
		return errRecordNotFound
	}
	return nil
}

// listAll fetches every page of a table matching the query.
func (c *Client) listAll(ctx context.Context, table string, query url.Values) ([]record, error) {
	var out []record
	offset := ""
	for {
		q := url.Values{}
		for k, vs := range query {
			q[k] = vs
		}
		if offset != "" {
			q.Set("offset", offset)
		}

		body, err := c.doRequest(ctx, http.MethodGet, table, q, nil)
		if err != nil {
			return nil, err
		}

		var page recordList
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decode %s page: %w", table, err)
		}
		out = append(out, page.Records...)
		if page.Offset == "" {
			return out, nil
		}
		offset = page.Offset
	}
}

// getRecord fetches one record by id through the resilience wrapper. A
// missing record surfaces as errRecordNotFound from execute; callers map
// it to the typed not-found error for their resource.
func (c *Client) getRecord(ctx context.Context, table, recordID string) (*record, error) {
	var rec record
	err := c.execute(ctx, table, func() error {
		body, err := c.doRequest(ctx, http.MethodGet, table+"/"+recordID, nil, nil)
		if err != nil {
			return err
		}
		return json.Unmarshal(body, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// createRecord inserts one record and returns the stored envelope.
func (c *Client) createRecord(ctx context.Context, table string, fields map[string]any) (*record, error) {
	payload := map[string]any{"fields": fields, "typecast": true}
	body, err := c.doRequest(ctx, http.MethodPost, table, nil, payload)
	if err != nil {
		return nil, err
	}

	var rec record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("decode created %s record: %w", table, err)
	}
	return &rec, nil
}

// patchRecord updates fields on one record.
func (c *Client) patchRecord(ctx context.Context, table, recordID string, fields map[string]any) (*record, error) {
	payload := map[string]any{"fields": fields, "typecast": true}
	body, err := c.doRequest(ctx, http.MethodPatch, table+"/"+recordID, nil, payload)
	if err != nil {
		return nil, err
	}

	var rec record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("decode patched %s record: %w", table, err)
	}
	return &rec, nil
}

// deleteRecord removes one record.
func (c *Client) deleteRecord(ctx context.Context, table, recordID string) error {
	_, err := c.doRequest(ctx, http.MethodDelete, table+"/"+recordID, nil, nil)
	return err
}

// doRequest executes one authenticated call against the store.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	u := fmt.Sprintf("%s/%s", c.baseURL, path)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		c.logger.Error("recordstore: failed to create request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("recordstore: request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("recordstore: failed to read response body",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, errRecordNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("recordstore: non-2xx response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return nil, fmt.Errorf("record store returned status %d: %s", resp.StatusCode, string(body))
	}

	c.logger.Debug("recordstore: request OK",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	return body, nil
}
