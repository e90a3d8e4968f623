// Package conn owns the set of socket connections, their lifecycle and their
// message history.
package conn

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	wserrors "wsup/pkg/errors"

	"wsup/internal/storage"
	"wsup/internal/storage/models"
)

// EventType identifies what changed in the manager's state.
type EventType string

const (
	EventListChanged      EventType = "list"
	EventSelectionChanged EventType = "selection"
	EventStatusChanged    EventType = "status"
	EventMessageAdded     EventType = "message"
)

// Event is delivered to subscribers after a state change. Events originating
// from transport callbacks arrive on transport goroutines.
type Event struct {
	Type         EventType
	ConnectionID string
}

// Manager owns all connection state. Every mutation happens behind one mutex,
// via Manager methods; observers are notified after the fact. Transport
// callbacks re-resolve their connection by id and carry the generation of the
// transport attempt that spawned them: a callback whose generation is no
// longer current is a no-op, so a late open/error/close from a replaced
// transport can never corrupt the state of a newer attempt.
type Manager struct {
	store  storage.Store
	dialer *websocket.Dialer

	mu         sync.Mutex
	conns      []*models.Connection
	selectedID string
	transports map[string]*transport
	gens       map[string]uint64

	listenerMu sync.RWMutex
	listeners  []func(Event)
}

// NewManager creates a Manager and loads the saved connection list. Runtime
// fields are always reinitialized: every loaded connection starts
// disconnected with an empty message log.
func NewManager(ctx context.Context, store storage.Store) *Manager {
	m := &Manager{
		store: store,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
		transports: make(map[string]*transport),
		gens:       make(map[string]uint64),
	}
	m.load(ctx)
	return m
}

func (m *Manager) load(ctx context.Context) {
	raw, err := m.store.GetItem(ctx, storage.KeyConnections)
	if err != nil {
		if err != storage.ErrNotFound {
			log.Printf("conn: load connections: %v", err)
		}
		return
	}

	var saved models.SavedConnectionList
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		log.Printf("conn: decode connections: %v", err)
		return
	}

	for _, sc := range saved.Connections {
		m.conns = append(m.conns, &models.Connection{
			ID:        sc.ID,
			URL:       sc.URL,
			Status:    models.StatusDisconnected,
			Messages:  []*models.Message{},
			CreatedAt: sc.CreatedAt,
		})
	}
	if m.find(saved.SelectedID) != nil {
		m.selectedID = saved.SelectedID
	} else if len(m.conns) > 0 {
		m.selectedID = m.conns[0].ID
	}
}

// persist writes {id,url,createdAt} triples and the selection. Runtime fields
// are never stored. Callers hold the lock.
func (m *Manager) persist(ctx context.Context) {
	saved := models.SavedConnectionList{SelectedID: m.selectedID}
	for _, c := range m.conns {
		saved.Connections = append(saved.Connections, models.SavedConnection{
			ID:        c.ID,
			URL:       c.URL,
			CreatedAt: c.CreatedAt,
		})
	}
	data, err := json.Marshal(saved)
	if err != nil {
		log.Printf("conn: encode connections: %v", err)
		return
	}
	if err := m.store.SetItem(ctx, storage.KeyConnections, string(data)); err != nil {
		log.Printf("conn: save connections: %v", err)
	}
}

// Subscribe registers an observer for state change events.
func (m *Manager) Subscribe(fn func(Event)) {
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *Manager) notify(ev Event) {
	m.listenerMu.RLock()
	defer m.listenerMu.RUnlock()
	for _, fn := range m.listeners {
		fn(ev)
	}
}

// find returns the connection with the given id. Callers hold the lock.
func (m *Manager) find(id string) *models.Connection {
	for _, c := range m.conns {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// clone copies a connection for observers. Messages are immutable once
// created, so sharing the message pointers is safe; the slice header is
// copied so later appends never race with a reader.
func clone(c *models.Connection) *models.Connection {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Messages = append([]*models.Message(nil), c.Messages...)
	return &cp
}

// Connections returns a snapshot of the connection list.
func (m *Manager) Connections() []*models.Connection {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Connection, len(m.conns))
	for i, c := range m.conns {
		out[i] = clone(c)
	}
	return out
}

// SelectedID returns the id of the current connection, or "".
func (m *Manager) SelectedID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selectedID
}

// Selected returns a snapshot of the current connection, or nil.
func (m *Manager) Selected() *models.Connection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.find(m.selectedID))
}

// Get returns a snapshot of the connection with the given id, or nil.
func (m *Manager) Get(id string) *models.Connection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.find(id))
}

// AddConnection creates a disconnected connection for url, selects it and
// persists the list. Returns the new id.
func (m *Manager) AddConnection(ctx context.Context, url string) string {
	m.mu.Lock()
	c := &models.Connection{
		ID:        uuid.NewString(),
		URL:       url,
		Status:    models.StatusDisconnected,
		Messages:  []*models.Message{},
		CreatedAt: time.Now(),
	}
	m.conns = append(m.conns, c)
	m.selectedID = c.ID
	m.persist(ctx)
	m.mu.Unlock()

	m.notify(Event{Type: EventListChanged, ConnectionID: c.ID})
	return c.ID
}

// RemoveConnection closes any open transport for the connection, deletes it,
// and moves the selection to the first remaining connection if the removed
// one was selected.
func (m *Manager) RemoveConnection(ctx context.Context, id string) {
	m.mu.Lock()
	if m.find(id) == nil {
		m.mu.Unlock()
		return
	}

	m.closeTransportLocked(id)

	kept := m.conns[:0]
	for _, c := range m.conns {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	m.conns = kept
	delete(m.gens, id)

	if m.selectedID == id {
		m.selectedID = ""
		if len(m.conns) > 0 {
			m.selectedID = m.conns[0].ID
		}
	}
	m.persist(ctx)
	m.mu.Unlock()

	m.notify(Event{Type: EventListChanged, ConnectionID: id})
}

// SelectConnection changes which connection is current for send/view
// purposes. Unknown ids are ignored.
func (m *Manager) SelectConnection(ctx context.Context, id string) {
	m.mu.Lock()
	if m.find(id) == nil || m.selectedID == id {
		m.mu.Unlock()
		return
	}
	m.selectedID = id
	m.persist(ctx)
	m.mu.Unlock()

	m.notify(Event{Type: EventSelectionChanged, ConnectionID: id})
}

// UpdateConnectionURL rewrites a connection's URL. The change only affects
// the next connect attempt.
func (m *Manager) UpdateConnectionURL(ctx context.Context, id, url string) {
	m.mu.Lock()
	c := m.find(id)
	if c == nil {
		m.mu.Unlock()
		return
	}
	c.URL = url
	m.persist(ctx)
	m.mu.Unlock()

	m.notify(Event{Type: EventListChanged, ConnectionID: id})
}

// closeTransportLocked tears down any live transport for id and invalidates
// in-flight callbacks from it by bumping the generation.
func (m *Manager) closeTransportLocked(id string) {
	if tr, ok := m.transports[id]; ok {
		tr.close()
		delete(m.transports, id)
	}
	m.gens[id]++
}

// Connect starts a new transport attempt for the connection. Any existing
// transport is closed first. The attempt is asynchronous: the connection
// enters the connecting state and the outcome arrives as an event.
// A no-op if the id is unknown.
func (m *Manager) Connect(id string) {
	m.mu.Lock()
	c := m.find(id)
	if c == nil {
		m.mu.Unlock()
		return
	}

	m.closeTransportLocked(id)
	gen := m.gens[id]

	c.Status = models.StatusConnecting
	c.Error = ""
	url := c.URL
	m.mu.Unlock()

	m.notify(Event{Type: EventStatusChanged, ConnectionID: id})
	go m.dial(id, gen, url)
}

// Disconnect closes the transport if present and forces the disconnected
// state.
func (m *Manager) Disconnect(id string) {
	m.mu.Lock()
	c := m.find(id)
	if c == nil {
		m.mu.Unlock()
		return
	}

	m.closeTransportLocked(id)
	c.Status = models.StatusDisconnected
	m.mu.Unlock()

	m.notify(Event{Type: EventStatusChanged, ConnectionID: id})
}

// Send transmits message over the currently selected connection, which must
// be connected. For the json format the message must be well-formed JSON;
// malformed input aborts the send without appending anything, and the caller
// is expected to have pre-validated.
func (m *Manager) Send(message string, msgFormat models.MessageFormat) error {
	m.mu.Lock()
	c := m.find(m.selectedID)
	if c == nil {
		m.mu.Unlock()
		return wserrors.ErrNoConnectionSelected
	}
	tr, ok := m.transports[c.ID]
	if !ok || c.Status != models.StatusConnected {
		m.mu.Unlock()
		return wserrors.ErrNotConnected
	}

	if message == "" {
		m.mu.Unlock()
		return wserrors.ErrEmptyMessage
	}

	if msgFormat == models.FormatJSON && !json.Valid([]byte(message)) {
		m.mu.Unlock()
		return wserrors.ErrInvalidJSON
	}

	if err := tr.writeText(message); err != nil {
		m.mu.Unlock()
		return &wserrors.ConnectionError{ID: c.ID, URL: c.URL, Err: err}
	}

	c.Messages = append(c.Messages, &models.Message{
		ID:        uuid.NewString(),
		Type:      models.MessageSent,
		Content:   message,
		Format:    msgFormat,
		Timestamp: time.Now(),
		Size:      len(message),
	})
	id := c.ID
	m.mu.Unlock()

	m.notify(Event{Type: EventMessageAdded, ConnectionID: id})
	return nil
}

// ClearMessages clears the message log for the given id, or for the selected
// connection when id is empty. A no-op when no target resolves.
func (m *Manager) ClearMessages(id string) {
	m.mu.Lock()
	if id == "" {
		id = m.selectedID
	}
	c := m.find(id)
	if c == nil {
		m.mu.Unlock()
		return
	}
	c.Messages = []*models.Message{}
	m.mu.Unlock()

	m.notify(Event{Type: EventMessageAdded, ConnectionID: id})
}

// PingAll sends a ping frame on every connected transport. A transport that
// fails to accept the ping surfaces the failure through its read loop.
func (m *Manager) PingAll() {
	m.mu.Lock()
	trs := make([]*transport, 0, len(m.transports))
	for id, tr := range m.transports {
		if c := m.find(id); c != nil && c.Status == models.StatusConnected {
			trs = append(trs, tr)
		}
	}
	m.mu.Unlock()

	for _, tr := range trs {
		tr.ping()
	}
}

// CloseAll tears down every live transport, leaving all connections
// disconnected. Used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	var ids []string
	for id := range m.transports {
		ids = append(ids, id)
	}
	for _, id := range ids {
		m.closeTransportLocked(id)
		if c := m.find(id); c != nil {
			c.Status = models.StatusDisconnected
		}
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.notify(Event{Type: EventStatusChanged, ConnectionID: id})
	}
}
