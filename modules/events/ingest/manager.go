package ingest

import (
	"context"
	"sync"

	"github.com/suimeet/eventgraph/core/objectgraph"
	"github.com/suimeet/eventgraph/core/types"
	"github.com/suimeet/eventgraph/modules/events/datagateway"
	"github.com/suimeet/eventgraph/pkg/logger"
	"github.com/suimeet/eventgraph/pkg/logger/slogx"
)

// Manager owns at most one ingestion session per user address. Sessions are
// started on first use and torn down together on shutdown; the previous
// user's in-memory state is never reused for another address.
type Manager struct {
	// runCtx outlives any single request; session loops run under it.
	runCtx context.Context
	graph  objectgraph.Client
	feedDg datagateway.FeedDataGateway
	cfg    Config

	mu       sync.Mutex
	sessions map[types.Address]*Ingestor
	closed   bool
}

func NewManager(ctx context.Context, graph objectgraph.Client, feedDg datagateway.FeedDataGateway, cfg Config) *Manager {
	return &Manager{
		runCtx:   ctx,
		graph:    graph,
		feedDg:   feedDg,
		cfg:      cfg,
		sessions: make(map[types.Address]*Ingestor),
	}
}

// Acquire returns the user's running session, starting one if needed.
func (m *Manager) Acquire(user types.Address) *Ingestor {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session, ok := m.sessions[user]; ok {
		return session
	}

	session := New(user, m.graph, m.feedDg, m.cfg)
	if m.closed {
		// after shutdown no new loops start; the caller still gets a session
		// it can poll explicitly
		return session
	}
	m.sessions[user] = session
	go func() {
		if err := session.Run(m.runCtx); err != nil {
			logger.ErrorContext(m.runCtx, "ingestion session stopped", err, slogx.Stringer("user", user))
		}
	}()
	return session
}

// Release tears down one user's session.
func (m *Manager) Release(user types.Address) {
	m.mu.Lock()
	session, ok := m.sessions[user]
	delete(m.sessions, user)
	m.mu.Unlock()
	if ok {
		session.Shutdown()
	}
}

// Shutdown tears down every session. No further persistence writes happen
// after it returns.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	m.closed = true
	sessions := make([]*Ingestor, 0, len(m.sessions))
	for _, session := range m.sessions {
		sessions = append(sessions, session)
	}
	m.sessions = make(map[types.Address]*Ingestor)
	m.mu.Unlock()

	for _, session := range sessions {
		session.Shutdown()
	}
}
