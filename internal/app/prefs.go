package app

import (
	"context"
	"sync"

	"mathsense-service/internal/domain"
)

// UserStore reads identity rows and persists the one preference the
// service owns.
type UserStore interface {
	GetUser(ctx context.Context, id string) (domain.User, error)
	SetDarkMode(ctx context.Context, id string, dark bool) error
}

// PreferenceChange notifies subscribers of a persisted preference update.
type PreferenceChange struct {
	UserID   string `json:"userId"`
	DarkMode bool   `json:"darkMode"`
}

// Preferences is the application-scoped settings object. State lives in
// the user store; subscribers are notified after every successful
// mutation, so presentation layers observe changes explicitly instead
// of through ambient globals.
type Preferences struct {
	store UserStore

	mu          sync.Mutex
	subscribers map[chan PreferenceChange]struct{}
}

func NewPreferences(store UserStore) *Preferences {
	return &Preferences{
		store:       store,
		subscribers: make(map[chan PreferenceChange]struct{}),
	}
}

func (p *Preferences) Get(ctx context.Context, userID string) (domain.User, error) {
	return p.store.GetUser(ctx, userID)
}

// SetDarkMode persists the flag and notifies subscribers.
func (p *Preferences) SetDarkMode(ctx context.Context, userID string, dark bool) error {
	if err := p.store.SetDarkMode(ctx, userID, dark); err != nil {
		return err
	}

	change := PreferenceChange{UserID: userID, DarkMode: dark}
	p.mu.Lock()
	for ch := range p.subscribers {
		select {
		case ch <- change:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- change
		}
	}
	p.mu.Unlock()
	return nil
}

// Subscribe returns a channel receiving preference changes. The caller
// must invoke the returned cancel function to avoid leaks.
func (p *Preferences) Subscribe() (<-chan PreferenceChange, func()) {
	ch := make(chan PreferenceChange, 8)
	p.mu.Lock()
	p.subscribers[ch] = struct{}{}
	p.mu.Unlock()

	cancel := func() {
		p.mu.Lock()
		if _, ok := p.subscribers[ch]; ok {
			delete(p.subscribers, ch)
			close(ch)
		}
		p.mu.Unlock()
	}
	return ch, cancel
}
