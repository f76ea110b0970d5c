package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lootledger/internal/core"
	"lootledger/internal/log"
)

// HTTPStore talks to a remote record API over JSON. Requests that fail with a
// network error or a 5xx response are retried a fixed number of times with a
// fixed delay between attempts. 4xx responses are terminal.
type HTTPStore struct {
	baseURL    string
	client     *http.Client
	maxRetries int
	retryDelay time.Duration
	logger     *log.Logger
}

type HTTPStoreConfig struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

var _ Store = (*HTTPStore)(nil)

func NewHTTPStore(cfg HTTPStoreConfig, logger *log.Logger) (*HTTPStore, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("remote base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid remote base URL: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}

	return &HTTPStore{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		client:     &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     logger.WithComponent(log.ComponentRemote),
	}, nil
}

func (s *HTTPStore) FetchUserRecord(ctx context.Context, username string) (*core.UserRecord, error) {
	body, status, err := s.do(ctx, http.MethodGet, "/api/users/"+url.PathEscape(username)+"/record", nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("fetch record: unexpected status %d", status)
	}

	var rec core.UserRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("decode remote record: %w", err)
	}
	return &rec, nil
}

func (s *HTTPStore) PushUserRecord(ctx context.Context, rec *core.UserRecord) (PushResult, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return PushResult{}, fmt.Errorf("encode record: %w", err)
	}

	body, status, err := s.do(ctx, http.MethodPut, "/api/users/"+url.PathEscape(rec.Username)+"/record", payload)
	if err != nil {
		return PushResult{}, err
	}
	if status != http.StatusOK {
		return PushResult{}, fmt.Errorf("push record: unexpected status %d", status)
	}

	var resp struct {
		Success        bool `json:"success"`
		TotalUserCount int  `json:"totalUserCount"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return PushResult{}, fmt.Errorf("decode push response: %w", err)
	}
	if !resp.Success {
		return PushResult{}, fmt.Errorf("remote rejected record for %s", rec.Username)
	}
	return PushResult{TotalUserCount: resp.TotalUserCount}, nil
}

func (s *HTTPStore) CheckUsernameAvailable(ctx context.Context, username string) (bool, error) {
	body, status, err := s.do(ctx, http.MethodGet, "/api/users/"+url.PathEscape(username)+"/available", nil)
	if err != nil {
		return false, err
	}
	if status != http.StatusOK {
		return false, fmt.Errorf("check username: unexpected status %d", status)
	}

	var resp struct {
		Available bool `json:"available"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return false, fmt.Errorf("decode availability response: %w", err)
	}
	return resp.Available, nil
}

func (s *HTTPStore) Ping(ctx context.Context) error {
	_, status, err := s.do(ctx, http.MethodGet, "/api/health", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("health check: unexpected status %d", status)
	}
	return nil
}

// do performs one request with retries. It returns the response body and
// status for any non-5xx response; 5xx responses and transport errors are
// retried until attempts run out.
func (s *HTTPStore) do(ctx context.Context, method, path string, payload []byte) ([]byte, int, error) {
	var lastErr error

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			s.logger.Warn("retrying remote request",
				log.FieldAttempt, attempt,
				"method", method,
				"path", path,
			)
			select {
			case <-time.After(s.retryDelay):
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			}
		}

		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reqBody)
		if err != nil {
			return nil, 0, fmt.Errorf("build request: %w", err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%s %s: %w", method, path, err)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("read response body: %w", readErr)
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("%s %s: server error %d", method, path, resp.StatusCode)
			continue
		}

		return body, resp.StatusCode, nil
	}

	return nil, 0, fmt.Errorf("remote request failed after %d attempts: %w", s.maxRetries+1, lastErr)
}
