// Package session holds the console's authenticated session and announces
// its changes to subscribers.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jwalitptl/practice-admin/internal/model"
	apperrors "github.com/jwalitptl/practice-admin/pkg/errors"
	"github.com/jwalitptl/practice-admin/pkg/logger"
)

type EventType string

const (
	SignedIn  EventType = "SIGNED_IN"
	SignedOut EventType = "SIGNED_OUT"
	Restored  EventType = "RESTORED"
)

var ErrClosed = errors.New("session store closed")

// AuthClient is the authentication backend. auth.Service satisfies it.
type AuthClient interface {
	SignIn(ctx context.Context, email, password string) (*model.SessionResponse, error)
	Session(ctx context.Context, token string) (*model.SessionResponse, error)
	SignOut(ctx context.Context, token string) error
}

// Event is delivered to subscribers on every auth state change.
type Event struct {
	Type    EventType
	Session *model.SessionResponse
}

type Store struct {
	client AuthClient
	log    *logger.Logger

	mu      sync.RWMutex
	current *model.SessionResponse
	subs    map[int]chan Event
	nextSub int
	closed  bool
}

func NewStore(client AuthClient, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{
		client: client,
		log:    log.With("session"),
		subs:   make(map[int]chan Event),
	}
}

// Init restores a previous session from token. An empty token leaves the
// store signed out. An invalid or expired token is not an error.
func (s *Store) Init(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	sess, err := s.client.Session(ctx, token)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUnauthorized) {
			s.log.Info("stored session is no longer valid")
			return nil
		}
		return fmt.Errorf("failed to restore session: %w", err)
	}
	return s.set(sess, Restored)
}

func (s *Store) SignIn(ctx context.Context, email, password string) (*model.SessionResponse, error) {
	sess, err := s.client.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.set(sess, SignedIn); err != nil {
		return nil, err
	}
	return sess, nil
}

// SignOut clears the local session even when the backend call fails.
func (s *Store) SignOut(ctx context.Context) error {
	token := s.Token()
	if token == "" {
		return nil
	}
	err := s.client.SignOut(ctx, token)
	if setErr := s.set(nil, SignedOut); setErr != nil {
		return setErr
	}
	if err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}

func (s *Store) Current() *model.SessionResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) Token() string {
	if sess := s.Current(); sess != nil {
		return sess.AccessToken
	}
	return ""
}

func (s *Store) Profile() *model.Profile {
	if sess := s.Current(); sess != nil {
		return sess.Profile
	}
	return nil
}

// Verify re-checks the current token with the backend. A rejected token
// clears the session and emits SignedOut.
func (s *Store) Verify(ctx context.Context) error {
	token := s.Token()
	if token == "" {
		return nil
	}
	if _, err := s.client.Session(ctx, token); err != nil {
		if apperrors.Is(err, apperrors.ErrUnauthorized) {
			s.log.Info("session is no longer valid")
			return s.set(nil, SignedOut)
		}
		return fmt.Errorf("failed to verify session: %w", err)
	}
	return nil
}

// Subscribe returns a stream of auth state changes and a func that ends
// the subscription. Slow subscribers miss events rather than block.
func (s *Store) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Event, 8)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *Store) set(sess *model.SessionResponse, typ EventType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.current = sess
	ev := Event{Type: typ, Session: sess}
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			s.log.Warn("dropping auth event for slow subscriber", "event", string(typ))
		}
	}
	return nil
}
