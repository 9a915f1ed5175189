package util

import "time"

// RateLimiter spaces dependent remote calls by a fixed delay. There is no backoff: a call
// rejected for rate limiting fails instead of being retried.
type RateLimiter struct {
	ticker   *time.Ticker
	baseRate time.Duration
}

func NewRateLimiter(baseRate time.Duration) RateLimiter {
	rl := RateLimiter{}
	rl.baseRate = baseRate
	if baseRate > 0 {
		rl.ticker = time.NewTicker(rl.baseRate)
	}

	return rl
}

func (rl *RateLimiter) Tick() {

	if rl.ticker != nil {
		<-rl.ticker.C
	}
}

func (rl *RateLimiter) Close() {
	if rl.ticker != nil {
		rl.ticker.Stop()
	}
}
