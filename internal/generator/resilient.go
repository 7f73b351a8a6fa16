package generator

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"
	openai "github.com/sashabaranov/go-openai"
)

// ResilientProvider wraps a CompletionProvider with retry and a circuit
// breaker.
type ResilientProvider struct {
	provider       CompletionProvider
	circuitBreaker circuitbreaker.CircuitBreaker[json.RawMessage]
	retrier        retry.Retry[json.RawMessage]
	logger         *slog.Logger
}

type ResilientConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration

	// FailureThreshold is the number of consecutive failures that opens the
	// circuit.
	FailureThreshold int
	OpenTimeout      time.Duration

	Logger *slog.Logger
}

func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		MaxAttempts:      3,
		InitialDelay:     time.Second,
		MaxDelay:         30 * time.Second,
		FailureThreshold: 5,
		OpenTimeout:      60 * time.Second,
	}
}

func NewResilientProvider(provider CompletionProvider, cfg ResilientConfig) *ResilientProvider {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}

	rp := &ResilientProvider{provider: provider, logger: logger}

	rp.circuitBreaker = circuitbreaker.New[json.RawMessage](circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return int(counts.ConsecutiveFailures) >= cfg.FailureThreshold
		},
		OnStateChange: func(from, to circuitbreaker.State) {
			rp.logger.Warn("completion circuit breaker state change",
				"from", from.String(),
				"to", to.String())
		},
	})

	rp.retrier = retry.New[json.RawMessage](retry.Config{
		MaxAttempts:   cfg.MaxAttempts,
		InitialDelay:  cfg.InitialDelay,
		MaxDelay:      cfg.MaxDelay,
		Multiplier:    2.0,
		BackoffPolicy: retry.BackoffExponential,
		Jitter:        true,
		IsRetryable:   isRetryable,
	})

	return rp
}

func (p *ResilientProvider) Complete(ctx context.Context, prompt string) (json.RawMessage, error) {
	return p.circuitBreaker.Execute(ctx, func(ctx context.Context) (json.RawMessage, error) {
		return p.retrier.Do(ctx, func(ctx context.Context) (json.RawMessage, error) {
			return p.provider.Complete(ctx, prompt)
		})
	})
}

// isRetryable retries throttling, server errors and transport failures.
// Client errors and cancellation are final.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	return true
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
