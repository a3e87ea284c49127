package session

import (
	"context"
	"log"
	"sync"
	"time"

	"club18/models"
)

// ProfileSource resolves a member profile by uid. Satisfied by the
// handlers' Mongo-backed store; tests supply fakes.
type ProfileSource interface {
	ProfileByID(ctx context.Context, uid string) (*models.User, error)
}

// Machine owns one session's State and serializes every transition
// through a single event queue. Listeners observe transitions; nothing
// mutates State directly.
type Machine struct {
	profiles ProfileSource
	listener func(State)

	events chan Event

	mu    sync.RWMutex
	state State

	// RetryAttempts and RetryDelay control the profile-lookup retry on
	// a fresh sign-in, where the token may not have propagated to the
	// store yet.
	RetryAttempts int
	RetryDelay    time.Duration
}

func NewMachine(profiles ProfileSource, listener func(State)) *Machine {
	return &Machine{
		profiles:      profiles,
		listener:      listener,
		events:        make(chan Event, 32),
		state:         Initial(),
		RetryAttempts: 2,
		RetryDelay:    time.Second,
	}
}

// Run drains the event queue until ctx is cancelled.
func (m *Machine) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-m.events:
			m.mu.Lock()
			m.state = Reduce(m.state, e)
			next := m.state
			m.mu.Unlock()
			if m.listener != nil {
				m.listener(next)
			}
		}
	}
}

func (m *Machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Dispatch enqueues an event. A full queue drops the event rather than
// blocking the caller.
func (m *Machine) Dispatch(e Event) {
	select {
	case m.events <- e:
	default:
		log.Printf("[session] event queue full, dropping %s", e.Type)
	}
}

// AuthChanged feeds an auth-state callback into the machine. An empty
// uid means signed out. A non-empty uid triggers a profile lookup with
// the fixed-delay retry policy; if every attempt fails the session
// falls back to guest access instead of surfacing a hard error.
func (m *Machine) AuthChanged(ctx context.Context, uid string) {
	if uid == "" {
		m.Dispatch(Event{Type: EventSignedOut})
		return
	}

	user, err := m.resolveProfile(ctx, uid)
	if err != nil {
		log.Printf("[session] profile lookup for %s failed after retries: %v", uid, err)
		m.Dispatch(Event{Type: EventProfileResolved, UserID: uid, Status: models.StatusGuest})
		return
	}

	user.Normalize()
	m.Dispatch(Event{Type: EventProfileResolved, UserID: uid, Status: user.Status})
}

func (m *Machine) resolveProfile(ctx context.Context, uid string) (*models.User, error) {
	var lastErr error
	for attempt := 0; attempt <= m.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(m.RetryDelay):
			}
		}

		user, err := m.profiles.ProfileByID(ctx, uid)
		if err == nil {
			return user, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
