package messaging

import (
	"sync"
	"time"
)

// FlashDuration is how long an error banner stays visible.
const FlashDuration = 5 * time.Second

// Flash holds the transient banner a view shows after a failed operation.
type Flash struct {
	mu      sync.RWMutex
	message string
	expires time.Time
}

// Set stores a message that expires after d.
func (f *Flash) Set(msg string, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.message = msg
	f.expires = time.Now().Add(d)
}

// Get returns the current message, or "" once it expired.
func (f *Flash) Get() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if time.Now().After(f.expires) {
		return ""
	}
	return f.message
}

// Clear dismisses the banner.
func (f *Flash) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.message = ""
	f.expires = time.Time{}
}
