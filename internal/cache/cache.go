// Package cache holds the dashboard snapshot cache and its cleanup loop.
package cache

import (
	"context"
	"time"

	"financeiro/internal/log"
)

// Cache defines a generic cache interface
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	// Purge drops every entry.
	Purge()
	Size() int
}

// Cleaner interface for caches that support cleanup
type Cleaner interface {
	CleanExpired() int
}

// Janitor periodically removes expired entries from registered caches.
type Janitor struct {
	caches []Cleaner
	logger *log.Logger
}

func NewJanitor(logger *log.Logger, caches ...Cleaner) *Janitor {
	if logger == nil {
		logger = log.Discard()
	}
	return &Janitor{caches: caches, logger: logger.WithComponent(log.ComponentCache)}
}

// Run blocks until ctx is done, sweeping every interval.
func (j *Janitor) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := j.Sweep(); n > 0 {
				j.logger.Debug("Expired cache entries removed", "removed", n)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// Sweep cleans every registered cache once and returns the number of
// entries removed.
func (j *Janitor) Sweep() int {
	total := 0
	for _, c := range j.caches {
		total += c.CleanExpired()
	}
	return total
}
