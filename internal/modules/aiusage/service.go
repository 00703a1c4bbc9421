package aiusage

import (
	"context"
	"time"
)

// Service enforces the per-session allowance.
type Service struct {
	store  Store
	limit  int64
	window time.Duration
}

// NewService creates a Service; non-positive limit or window select the defaults.
func NewService(store Store, limit int, window time.Duration) *Service {
	if limit <= 0 {
		limit = DefaultTokens
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Service{store: store, limit: int64(limit), window: window}
}

// UseToken consumes one call for sessionID.
// Returns ErrInsufficientTokens when the allowance for the current window is exhausted.
func (s *Service) UseToken(ctx context.Context, sessionID string) error {
	n, err := s.store.Use(ctx, sessionID, s.window)
	if err != nil {
		return err
	}
	if n > s.limit {
		return ErrInsufficientTokens
	}
	return nil
}
