package provider

import (
	"math/rand"
	"time"

	"github.com/speedwagon-io/labelscore/internal/config"
)

const (
	backoffFactor = 2.0
	backoffJitter = 0.1
)

// retryPolicy decides how many lookups a remote source may make for one key
// and how long it waits between them.
type retryPolicy struct {
	attempts int
	initial  time.Duration
	ceiling  time.Duration
}

func newRetryPolicy(cfg config.RetryConfig) retryPolicy {
	p := retryPolicy{
		attempts: cfg.MaxAttempts,
		initial:  cfg.InitialDelay,
		ceiling:  cfg.MaxDelay,
	}
	if p.attempts < 1 {
		p.attempts = 1
	}
	if p.ceiling < p.initial {
		p.ceiling = p.initial
	}
	return p
}

// wait returns the pause after failed lookup number failed (1-based). The
// first pause is the initial delay; later ones double, carry +/-10% jitter
// and never exceed the ceiling.
func (p retryPolicy) wait(failed int) time.Duration {
	if failed <= 1 {
		return p.initial
	}

	d := float64(p.initial)
	for i := 1; i < failed && d < float64(p.ceiling); i++ {
		d *= backoffFactor
	}
	d += d * backoffJitter * (2*rand.Float64() - 1)

	return min(time.Duration(d), p.ceiling)
}
