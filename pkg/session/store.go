package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/matzehuels/masonry/pkg/cache"
	"github.com/matzehuels/masonry/pkg/errors"
)

// Store keeps sessions in a cache.
//
// Update serializes read-modify-write cycles on the same session within one
// process. Replicas sharing a Redis backend do not coordinate; the last
// write wins.
type Store struct {
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration

	mu    sync.Mutex
	locks map[string]*sessionLock
}

// sessionLock is held only while some Update on its session is running.
type sessionLock struct {
	sync.Mutex
	refs int
}

// NewStore creates a store over c. A ttl of zero keeps sessions forever.
func NewStore(c cache.Cache, keyer cache.Keyer, ttl time.Duration) *Store {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Store{
		cache: c,
		keyer: keyer,
		ttl:   ttl,
		locks: make(map[string]*sessionLock),
	}
}

// Get loads a session. A missing or expired session is ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	if err := errors.ValidateSessionID(id); err != nil {
		return nil, err
	}

	var data []byte
	var hit bool
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		data, hit, err = s.cache.Get(ctx, s.keyer.SessionKey(id))
		return err
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "load session %s", id)
	}
	if !hit {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode session %s", id)
	}
	return &sess, nil
}

// Save stores a session and refreshes its expiry.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	if err := errors.ValidateSessionID(sess.ID); err != nil {
		return err
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	err = cache.RetryWithBackoff(ctx, func() error {
		return s.cache.Set(ctx, s.keyer.SessionKey(sess.ID), data, s.ttl)
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "save session %s", sess.ID)
	}
	return nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateSessionID(id); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, s.keyer.SessionKey(id)); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "delete session %s", id)
	}
	return nil
}

// Update loads a session, applies fn and saves the result. Nothing is saved
// when fn fails.
func (s *Store) Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	lock := s.acquire(id)
	lock.Lock()
	defer s.release(id, lock)

	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	if err := s.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Store) acquire(id string) *sessionLock {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sessionLock{}
		s.locks[id] = l
	}
	l.refs++
	return l
}

func (s *Store) release(id string, l *sessionLock) {
	l.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, id)
	}
}
