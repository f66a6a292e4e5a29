package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryBackend keeps storage areas in process memory. Entries expire after ttl
// when ttl is positive.
type MemoryBackend struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryBackend(ttl time.Duration) *MemoryBackend {
	return &MemoryBackend{ttl: ttl, entries: map[string]memoryEntry{}, now: time.Now}
}

func (b *MemoryBackend) Get(_ context.Context, clientID, key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := memoryKey(clientID, key)
	entry, ok := b.entries[id]
	if !ok {
		return "", false, nil
	}
	if !entry.expiresAt.IsZero() && b.now().After(entry.expiresAt) {
		delete(b.entries, id)
		return "", false, nil
	}
	return entry.value, true, nil
}

func (b *MemoryBackend) Set(_ context.Context, clientID, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry := memoryEntry{value: value}
	if b.ttl > 0 {
		entry.expiresAt = b.now().Add(b.ttl)
	}
	b.entries[memoryKey(clientID, key)] = entry
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, clientID, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.entries, memoryKey(clientID, key))
	return nil
}

func (b *MemoryBackend) Ping(context.Context) error {
	return nil
}

// PurgeExpired drops entries past their expiry and reports how many were removed.
func (b *MemoryBackend) PurgeExpired(_ context.Context) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	var n int64
	for id, entry := range b.entries {
		if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
			delete(b.entries, id)
			n++
		}
	}
	return n, nil
}

func memoryKey(clientID, key string) string {
	return clientID + "\x00" + key
}
