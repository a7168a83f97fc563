package store

import (
	"context"
	"time"
)

// RefreshCreditsEvery re-fetches the balance on every tick while a session is
// active, bounding drift from local debits. It returns when ctx is done.
func (s *Store) RefreshCreditsEvery(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if !s.IsLoggedIn() {
				continue
			}
			if _, err := s.FetchCredits(ctx); err != nil && ctx.Err() == nil {
				s.log.Warn(ctx, "periodic credit refresh failed", "error", err)
			}
		}
	}
}
