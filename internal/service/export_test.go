package service

import "time"

// LockUser takes the per-user trade lock, letting tests hold a trade at the lock.
func (s *TradeService) LockUser(userID string) (unlock func()) {
	return s.userLocks.Lock(userID)
}

// SetClock replaces the clock used to stamp trades.
func (s *TradeService) SetClock(now func() time.Time) {
	s.now = now
}
