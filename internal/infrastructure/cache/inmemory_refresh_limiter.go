package cache

import (
	"context"
	"sync"
	"time"
)

// cooldownEntry records when a member's cooldown window ends
type cooldownEntry struct {
	expiresAt time.Time
}

// InMemoryRefreshLimiter implements RefreshLimiter using an in-memory map.
// Suitable for single-instance deployments and testing.
type InMemoryRefreshLimiter struct {
	mu        sync.Mutex
	entries   map[string]cooldownEntry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryRefreshLimiter creates an in-memory limiter and starts a
// background goroutine that evicts expired cooldowns
func NewInMemoryRefreshLimiter() *InMemoryRefreshLimiter {
	limiter := &InMemoryRefreshLimiter{
		entries:  make(map[string]cooldownEntry),
		stopChan: make(chan struct{}),
	}

	limiter.wg.Add(1)
	go limiter.cleanupLoop()

	return limiter
}

// Allow grants the refresh and starts the cooldown when the member is not
// already inside a cooldown window
func (l *InMemoryRefreshLimiter) Allow(_ context.Context, memberNo string, cooldown time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if e, exists := l.entries[memberNo]; exists && now.Before(e.expiresAt) {
		return false, nil
	}

	l.entries[memberNo] = cooldownEntry{expiresAt: now.Add(cooldown)}
	return true, nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (l *InMemoryRefreshLimiter) Close() error {
	l.closeOnce.Do(func() {
		close(l.stopChan)
		l.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired cooldown entries
func (l *InMemoryRefreshLimiter) cleanupLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

func (l *InMemoryRefreshLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for memberNo, e := range l.entries {
		if now.After(e.expiresAt) {
			delete(l.entries, memberNo)
		}
	}
}

// Size returns the number of tracked cooldowns (for testing/monitoring)
func (l *InMemoryRefreshLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Ensure InMemoryRefreshLimiter implements RefreshLimiter
var _ RefreshLimiter = (*InMemoryRefreshLimiter)(nil)
