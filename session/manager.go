// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/animal-portrait/auth"
	"github.com/danielhkuo/animal-portrait/cliparse"
	"github.com/danielhkuo/animal-portrait/store"
	"github.com/danielhkuo/animal-portrait/wizard"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrPhotoNotFound   = errors.New("photo not found")
)

// Photo is an uploaded image held in memory for the lifetime of its session
type Photo struct {
	ID          string
	ContentType string
	Filename    string
	Data        []byte
	UploadedAt  time.Time
}

// URL is the displayable reference for the photo
func (p *Photo) URL() string {
	return "/photos/" + p.ID
}

type Options struct {
	Store   store.Store
	Timings cliparse.Timings
	TTL     time.Duration
}

// Manager keeps every live wizard session and the photos uploaded to them
type Manager struct {
	opts   Options
	ctx    context.Context
	cancel context.CancelFunc
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	photos   map[string]*Photo
}

// NewManager creates a manager. Generation jobs stop when ctx is done or
// Close is called.
func NewManager(ctx context.Context, opts Options) *Manager {
	ctx, cancel := context.WithCancel(ctx)
	return &Manager{
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
		now:      time.Now,
		sessions: make(map[string]*Session),
		photos:   make(map[string]*Photo),
	}
}

// Create starts a new wizard session on the sign-up step
func (m *Manager) Create() (*Session, error) {
	token, err := auth.GenerateSessionToken()
	if err != nil {
		return nil, err
	}

	s := &Session{
		Token:  token,
		m:      m,
		wizard: wizard.NewController(),
		owned:  make(map[string]struct{}),
	}

	m.mu.Lock()
	s.lastSeen = m.now()
	m.sessions[token] = s
	m.mu.Unlock()

	slog.Info("session created")
	return s, nil
}

// Get returns the session for token and marks it as recently used
func (m *Manager) Get(token string) (*Session, error) {
	if err := auth.ValidateSessionToken(token); err != nil {
		return nil, ErrSessionNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.lastSeen = m.now()
	return s, nil
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Photo looks up an uploaded photo by id
func (m *Manager) Photo(id string) (*Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.photos[id]
	if !ok {
		return nil, ErrPhotoNotFound
	}
	return p, nil
}

func (m *Manager) addPhoto(contentType, filename string, data []byte) *Photo {
	p := &Photo{
		ID:          uuid.NewString(),
		ContentType: contentType,
		Filename:    filename,
		Data:        data,
		UploadedAt:  m.now(),
	}

	m.mu.Lock()
	m.photos[p.ID] = p
	m.mu.Unlock()
	return p
}

func (m *Manager) releasePhoto(id string) {
	m.mu.Lock()
	delete(m.photos, id)
	m.mu.Unlock()
}

// Sweep ends every session idle for longer than the TTL and returns how
// many were removed
func (m *Manager) Sweep() int {
	if m.opts.TTL <= 0 {
		return 0
	}

	m.mu.Lock()
	cutoff := m.now().Add(-m.opts.TTL)
	var expired []*Session
	for token, s := range m.sessions {
		if s.lastSeen.Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, token)
		}
	}
	m.mu.Unlock()

	// Sessions take the manager lock while releasing photos, so close them
	// without holding it.
	for _, s := range expired {
		s.close()
	}
	if len(expired) > 0 {
		slog.Info("sessions expired", "count", len(expired))
	}
	return len(expired)
}

// Run sweeps expired sessions every interval until ctx is done
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Close cancels all running generations
func (m *Manager) Close() {
	m.cancel()
}
