package session

import "context"

// Storage is a key-value area private to one browser.
type Storage interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// Backend holds storage areas for many browsers, partitioned by client id.
type Backend interface {
	Get(ctx context.Context, clientID, key string) (string, bool, error)
	Set(ctx context.Context, clientID, key, value string) error
	Delete(ctx context.Context, clientID, key string) error
	Ping(ctx context.Context) error
}

// Scope returns the storage area of one client inside a backend.
func Scope(b Backend, clientID string) Storage {
	return scopedStorage{backend: b, clientID: clientID}
}

type scopedStorage struct {
	backend  Backend
	clientID string
}

func (s scopedStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	return s.backend.Get(ctx, s.clientID, key)
}

func (s scopedStorage) SetItem(ctx context.Context, key, value string) error {
	return s.backend.Set(ctx, s.clientID, key, value)
}

func (s scopedStorage) RemoveItem(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, s.clientID, key)
}
