package server

import (
	"context"
	"fmt"
	"time"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

type ComponentHealth struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status     Status            `json:"status"`
	Components []ComponentHealth `json:"components"`
	Timestamp  time.Time         `json:"timestamp"`
}

type HealthChecker interface {
	Name() string
	Check(ctx context.Context) (Status, string)
}

// StoreHealthChecker reports unhealthy when the rule count cannot be read and
// degraded when the store holds no rules at all.
type StoreHealthChecker struct {
	name      string
	countFunc func(ctx context.Context) (int64, error)
}

func NewStoreHealthChecker(name string, countFunc func(ctx context.Context) (int64, error)) *StoreHealthChecker {
	return &StoreHealthChecker{name: name, countFunc: countFunc}
}

func (c *StoreHealthChecker) Name() string {
	return c.name
}

func (c *StoreHealthChecker) Check(ctx context.Context) (Status, string) {
	count, err := c.countFunc(ctx)
	if err != nil {
		return StatusUnhealthy, err.Error()
	}

	if count == 0 {
		return StatusDegraded, "no thresholds configured"
	}

	return StatusHealthy, fmt.Sprintf("%d rules", count)
}
