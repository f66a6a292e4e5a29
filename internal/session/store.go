package session

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/benpsk/weather-gate/internal/user"
)

// Key is the single storage key holding the signed-in user.
const Key = "weatherAppUser"

// ErrCorrupt marks a stored value that could not be turned back into a session.
var ErrCorrupt = errors.New("stored session is corrupt")

// Store persists the one user.Session of a browser.
type Store struct {
	storage Storage
}

func NewStore(storage Storage) *Store {
	return &Store{storage: storage}
}

// Load returns the stored session. A value that fails to decode is removed and
// reported as absent.
func (s *Store) Load(ctx context.Context) (user.Session, bool) {
	sess, err := s.load(ctx)
	switch {
	case err == nil:
		return sess, true
	case errors.Is(err, user.ErrNotFound):
		return user.Session{}, false
	case errors.Is(err, ErrCorrupt):
		log.Printf("session: clearing corrupt record: %v", err)
		if err := s.Clear(ctx); err != nil {
			log.Printf("session: %v", err)
		}
		return user.Session{}, false
	default:
		log.Printf("session: %v", err)
		return user.Session{}, false
	}
}

func (s *Store) load(ctx context.Context) (user.Session, error) {
	raw, ok, err := s.storage.GetItem(ctx, Key)
	if err != nil {
		if errors.Is(err, ErrCorrupt) {
			return user.Session{}, err
		}
		return user.Session{}, fmt.Errorf("read session: %w", err)
	}
	if !ok {
		return user.Session{}, user.ErrNotFound
	}
	sess, err := user.Decode(raw)
	if err != nil {
		return user.Session{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return sess, nil
}

func (s *Store) Save(ctx context.Context, sess user.Session) error {
	raw, err := user.Encode(sess)
	if err != nil {
		return err
	}
	if err := s.storage.SetItem(ctx, Key, raw); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.storage.RemoveItem(ctx, Key); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
