package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/speedwagon-io/labelscore/internal/config"
	"github.com/speedwagon-io/labelscore/internal/lib/logger/sl"
	"github.com/speedwagon-io/labelscore/internal/model"
)

// RuleResponse is the JSON body served for a single threshold rule.
type RuleResponse struct {
	Nutrient string  `json:"nutrient"`
	Unit     string  `json:"unit"`
	Lower    float64 `json:"lower"`
	Upper    float64 `json:"upper"`
}

func NewRuleResponse(rule model.ThresholdRule) RuleResponse {
	return RuleResponse{
		Nutrient: rule.Key.Nutrient.String(),
		Unit:     rule.Key.Unit.String(),
		Lower:    rule.Thresholds.Lower,
		Upper:    rule.Thresholds.Upper,
	}
}

// HTTPProvider looks thresholds up in a remote threshold service.
type HTTPProvider struct {
	log     *slog.Logger
	baseURL string
	token   string
	client  *http.Client
	retry   retryPolicy
}

func NewHTTPProvider(log *slog.Logger, cfg *config.RemoteConfig) *HTTPProvider {
	return &HTTPProvider{
		log:     log,
		baseURL: strings.TrimRight(cfg.URL, "/"),
		token:   cfg.Token,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		retry: newRetryPolicy(cfg.Retry),
	}
}

func (p *HTTPProvider) Name() string {
	return "http"
}

func (p *HTTPProvider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

// GetThresholds fetches the rule for key. Missing and malformed rules are not
// retried; transport errors and unexpected statuses are, up to the configured
// attempts.
func (p *HTTPProvider) GetThresholds(ctx context.Context, key model.ThresholdKey) (model.Thresholds, error) {
	var lastErr error

	for attempt := 1; attempt <= p.retry.attempts; attempt++ {
		t, err := p.fetch(ctx, key)
		if err == nil {
			return t, nil
		}
		if errors.Is(err, model.ErrThresholdsNotFound) || errors.Is(err, model.ErrInvalidThresholds) {
			return model.Thresholds{}, err
		}

		lastErr = err
		p.log.Warn("threshold lookup attempt failed",
			slog.String("key", key.String()),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", p.retry.attempts),
			sl.Err(err),
		)

		if attempt < p.retry.attempts {
			select {
			case <-ctx.Done():
				return model.Thresholds{}, ctx.Err()
			case <-time.After(p.retry.wait(attempt)):
			}
		}
	}

	return model.Thresholds{}, fmt.Errorf("all %d attempts failed: %w", p.retry.attempts, lastErr)
}

func (p *HTTPProvider) fetch(ctx context.Context, key model.ThresholdKey) (model.Thresholds, error) {
	endpoint := fmt.Sprintf("%s/thresholds/%s/%s",
		p.baseURL,
		url.PathEscape(key.Nutrient.String()),
		url.PathEscape(key.Unit.String()),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.Thresholds{}, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return model.Thresholds{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return model.Thresholds{}, fmt.Errorf("%w: %s", model.ErrThresholdsNotFound, key)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return model.Thresholds{}, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var body ruleBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return model.Thresholds{}, fmt.Errorf("failed to decode response: %w", err)
	}

	t, err := body.thresholds()
	if err != nil {
		return model.Thresholds{}, fmt.Errorf("%s: %w", key, err)
	}

	p.log.Debug("thresholds fetched",
		slog.String("key", key.String()),
		slog.String("request_id", requestID),
	)

	return t, nil
}

// ruleBody is the decoding side of RuleResponse; absent bounds stay nil.
type ruleBody struct {
	Lower *float64 `json:"lower"`
	Upper *float64 `json:"upper"`
}

func (b ruleBody) thresholds() (model.Thresholds, error) {
	if b.Lower == nil || b.Upper == nil {
		return model.Thresholds{}, fmt.Errorf("%w: lower and upper are required", model.ErrInvalidThresholds)
	}

	t := model.Thresholds{Lower: *b.Lower, Upper: *b.Upper}
	if err := t.Validate(); err != nil {
		return model.Thresholds{}, err
	}

	return t, nil
}

func (p *HTTPProvider) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}

	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("server unhealthy: status %d", resp.StatusCode)
	}

	return nil
}
