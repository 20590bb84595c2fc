package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"aegis/internal/directory/metrics"
)

// TokenRegistry exposes cleanup for expired token registrations.
type TokenRegistry interface {
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// CleanupResult summarizes the deletions performed by a cleanup run.
type CleanupResult struct {
	DeletedTokens int
}

// CleanupService periodically reaps expired token registrations so the
// registry does not grow without bound.
type CleanupService struct {
	registry TokenRegistry
	interval time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// CleanupOption configures CleanupService.
type CleanupOption func(*CleanupService)

// WithCleanupInterval overrides the cleanup interval when greater than zero.
func WithCleanupInterval(interval time.Duration) CleanupOption {
	return func(s *CleanupService) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithCleanupLogger overrides the logger used for cleanup errors.
func WithCleanupLogger(logger *slog.Logger) CleanupOption {
	return func(s *CleanupService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCleanupMetrics wires cleanup counters.
func WithCleanupMetrics(m *metrics.Metrics) CleanupOption {
	return func(s *CleanupService) {
		s.metrics = m
	}
}

// WithCleanupClock overrides the wall clock used to judge expiry.
func WithCleanupClock(now func() time.Time) CleanupOption {
	return func(s *CleanupService) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a CleanupService with the required registry and options applied.
func New(registry TokenRegistry, opts ...CleanupOption) (*CleanupService, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	svc := &CleanupService{
		registry: registry,
		interval: 5 * time.Minute,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// Start runs cleanup periodically until ctx is cancelled.
func (s *CleanupService) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.ErrorContext(ctx, "token cleanup failed", "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunOnce performs a single cleanup sweep over the token registry.
func (s *CleanupService) RunOnce(ctx context.Context) (CleanupResult, error) {
	var res CleanupResult

	deleted, err := s.registry.DeleteExpired(ctx, s.now())
	if err != nil {
		return res, fmt.Errorf("delete expired tokens: %w", err)
	}
	res.DeletedTokens = deleted

	if deleted > 0 {
		s.metrics.AddTokensReaped(deleted)
		s.logger.DebugContext(ctx, "reaped expired tokens", "count", deleted)
	}
	return res, nil
}
