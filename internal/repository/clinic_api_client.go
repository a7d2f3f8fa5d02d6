package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vetclinic-portal/config"
	domainRepo "vetclinic-portal/internal/domain/repository"
	"vetclinic-portal/internal/infrastructure/metrics"

	"github.com/sirupsen/logrus"
)

const (
	defaultTimeout = 15 * time.Second
	maxLoggedBody  = 256
)

// envelope is the backend's standard response wrapper.
type envelope struct {
	IsSuccess bool            `json:"is_success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
}

// ClinicAPIClient wraps the REST calls of the clinic backend.
type ClinicAPIClient struct {
	httpClient *http.Client
	baseURL    string
	log        *logrus.Logger
	metrics    *metrics.APIMetrics
}

func NewClinicAPIClient(cfg config.APIConfig, log *logrus.Logger, m *metrics.APIMetrics) *ClinicAPIClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ClinicAPIClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		log:        log,
		metrics:    m,
	}
}

// doJSON sends one request and returns the raw body of a 2xx response.
func (c *ClinicAPIClient) doJSON(ctx context.Context, operation, method, path, token string, body interface{}) ([]byte, error) {
	endpoint := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.log.Debugf("Clinic API request: %s %s", method, endpoint)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(operation, "error", time.Since(start).Seconds())
		c.log.Warnf("Clinic API unreachable: %s %s: %+v", method, path, err)
		return nil, &domainRepo.APIError{Message: err.Error()}
	}
	defer resp.Body.Close()

	c.metrics.ObserveRequest(operation, statusClass(resp.StatusCode), time.Since(start).Seconds())

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(respBody, &errBody)
		c.log.Warnf("Clinic API non-2xx response: status=%d, path=%s, message=%s", resp.StatusCode, path, errBody.Message)
		return nil, &domainRepo.APIError{Status: resp.StatusCode, Message: errBody.Message}
	}

	return respBody, nil
}

// getData performs the request and decodes the envelope's data field into out.
func (c *ClinicAPIClient) getData(ctx context.Context, operation, method, path, token string, body, out interface{}) error {
	raw, err := c.doJSON(ctx, operation, method, path, token, body)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

// truncateBody shortens a response body for log lines.
func truncateBody(raw []byte) string {
	if len(raw) > maxLoggedBody {
		return string(raw[:maxLoggedBody]) + "..."
	}
	return string(raw)
}

func statusClass(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}
