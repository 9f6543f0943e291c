// Package session exposes the signed-in identity as an explicit value.
//
// Components receive a Provider instead of reaching for a global; each
// subscription is a scoped resource released by the func Subscribe returns.
package session

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskpad/internal/auth"
)

var ErrNoSignInURL = errors.New("sign-in url is not configured")

type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

type State struct {
	User          *User `json:"user"`
	Loading       bool  `json:"loading"`
	Authenticated bool  `json:"authenticated"`
}

// OwnerID is the id of the signed-in user, or "" when signed out.
func (s State) OwnerID() string {
	if !s.Authenticated || s.User == nil {
		return ""
	}
	return s.User.ID
}

type Provider interface {
	State() State
	// Subscribe calls fn with the current state and again on every change.
	Subscribe(fn func(State)) (unsubscribe func())
	// SignIn returns the provider URL the user must be redirected to.
	SignIn(ctx context.Context, redirectURL string) (string, error)
	SignOut(ctx context.Context) error
}

// Manager is a Provider backed by bearer tokens from the identity provider.
//
// Deliveries are serialized: every subscriber sees states in the order they
// were set, and the last state it sees is the current one. A state set while
// another goroutine is delivering is queued and delivered by that goroutine,
// so a callback may itself change the session without deadlocking.
type Manager struct {
	tokens    *auth.TokenManager
	signInURL string
	logger    *zap.Logger

	mu         sync.Mutex
	state      State
	token      string
	subs       map[int]func(State)
	next       int
	queue      []delivery
	delivering bool
}

type delivery struct {
	sub   int
	state State
}

func NewManager(tokens *auth.TokenManager, signInURL string, logger *zap.Logger) *Manager {
	return &Manager{
		tokens:    tokens,
		signInURL: signInURL,
		logger:    logger,
		state:     State{Loading: true},
		subs:      make(map[int]func(State)),
	}
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Token is the bearer token of the current session, "" when signed out.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *Manager) Subscribe(fn func(State)) func() {
	m.mu.Lock()
	id := m.next
	m.next++
	m.subs[id] = fn
	m.queue = append(m.queue, delivery{sub: id, state: m.state})
	start := m.claimDelivery()
	m.mu.Unlock()

	if start {
		m.deliver()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}
}

// Resolve finishes loading with the given token. An invalid or empty token
// leaves the session signed out.
func (m *Manager) Resolve(token string) error {
	if token == "" {
		m.set(State{}, "")
		return nil
	}

	id, err := m.tokens.Validate(token)
	if err != nil {
		m.logger.Warn("session token rejected", zap.Error(err))
		m.set(State{}, "")
		return err
	}

	m.set(State{
		User:          &User{ID: id.UserID, Email: id.Email, DisplayName: id.DisplayName},
		Authenticated: true,
	}, token)
	m.logger.Debug("session resolved", zap.String("user_id", id.UserID))
	return nil
}

func (m *Manager) SignIn(ctx context.Context, redirectURL string) (string, error) {
	if m.signInURL == "" {
		return "", ErrNoSignInURL
	}
	u, err := url.Parse(m.signInURL)
	if err != nil {
		return "", err
	}
	if redirectURL != "" {
		q := u.Query()
		q.Set("redirect_url", redirectURL)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (m *Manager) SignOut(ctx context.Context) error {
	m.set(State{}, "")
	return nil
}

func (m *Manager) set(st State, token string) {
	m.mu.Lock()
	m.state = st
	m.token = token
	for id := range m.subs {
		m.queue = append(m.queue, delivery{sub: id, state: st})
	}
	start := m.claimDelivery()
	m.mu.Unlock()

	if start {
		m.deliver()
	}
}

// claimDelivery reports whether the caller must run deliver. m.mu is held.
func (m *Manager) claimDelivery() bool {
	if m.delivering || len(m.queue) == 0 {
		return false
	}
	m.delivering = true
	return true
}

// deliver drains the queue, calling each callback outside the lock.
func (m *Manager) deliver() {
	defer func() {
		if r := recover(); r != nil {
			m.mu.Lock()
			m.delivering = false
			m.mu.Unlock()
			panic(r)
		}
	}()
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.delivering = false
			m.mu.Unlock()
			return
		}
		d := m.queue[0]
		m.queue = m.queue[1:]
		fn, ok := m.subs[d.sub]
		m.mu.Unlock()

		if ok {
			fn(d.state)
		}
	}
}
