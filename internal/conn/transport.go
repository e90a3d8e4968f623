package conn

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"wsup/internal/storage/models"
)

// transport wraps one live socket. A Connection has at most one transport,
// identified by the generation of the connect attempt that created it.
type transport struct {
	ws  *websocket.Conn
	gen uint64
}

func (t *transport) writeText(message string) error {
	return t.ws.WriteMessage(websocket.TextMessage, []byte(message))
}

func (t *transport) ping() {
	t.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
}

func (t *transport) close() {
	t.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	t.ws.Close()
}

// dial performs one connect attempt. It runs on its own goroutine; every
// outcome is routed through a generation-checked handler.
func (m *Manager) dial(id string, gen uint64, url string) {
	ws, _, err := m.dialer.Dial(url, nil)
	if err != nil {
		m.handleDialError(id, gen, err)
		return
	}

	m.mu.Lock()
	c := m.find(id)
	if c == nil || m.gens[id] != gen {
		// The connection was removed or a newer attempt replaced this one
		// while the handshake was in flight.
		m.mu.Unlock()
		ws.Close()
		return
	}
	m.transports[id] = &transport{ws: ws, gen: gen}
	c.Status = models.StatusConnected
	m.mu.Unlock()

	m.notify(Event{Type: EventStatusChanged, ConnectionID: id})
	go m.readLoop(id, gen, ws)
}

// readLoop pumps inbound frames until the transport dies.
func (m *Manager) readLoop(id string, gen uint64, ws *websocket.Conn) {
	for {
		messageType, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived) {
				m.handleClose(id, gen)
			} else {
				m.handleTransportError(id, gen, err)
			}
			return
		}
		m.handleInbound(id, gen, messageType, data)
	}
}

// handleInbound classifies and appends a received frame. Binary payloads are
// never decoded; only their byte length is surfaced. Textual payloads are
// sniffed as json when they parse, text otherwise.
func (m *Manager) handleInbound(id string, gen uint64, messageType int, data []byte) {
	var content string
	var payloadFormat models.MessageFormat
	size := len(data)

	if messageType == websocket.BinaryMessage {
		content = fmt.Sprintf("Binary data (%d bytes)", size)
		payloadFormat = models.FormatBinary
	} else {
		content = string(data)
		if json.Valid(data) {
			payloadFormat = models.FormatJSON
		} else {
			payloadFormat = models.FormatText
		}
	}

	m.mu.Lock()
	c := m.find(id)
	if c == nil || m.gens[id] != gen {
		m.mu.Unlock()
		return
	}
	c.Messages = append(c.Messages, &models.Message{
		ID:        uuid.NewString(),
		Type:      models.MessageReceived,
		Content:   content,
		Format:    payloadFormat,
		Timestamp: time.Now(),
		Size:      size,
	})
	m.mu.Unlock()

	m.notify(Event{Type: EventMessageAdded, ConnectionID: id})
}

// handleDialError records a failed connect attempt.
func (m *Manager) handleDialError(id string, gen uint64, err error) {
	m.mu.Lock()
	c := m.find(id)
	if c == nil || m.gens[id] != gen {
		m.mu.Unlock()
		return
	}
	c.Status = models.StatusError
	c.Error = fmt.Sprintf("Failed to connect: %v", err)
	m.mu.Unlock()

	m.notify(Event{Type: EventStatusChanged, ConnectionID: id})
}

// handleTransportError records a runtime transport failure. The error is
// terminal for this transport but not for the connection: the user may retry.
func (m *Manager) handleTransportError(id string, gen uint64, err error) {
	m.mu.Lock()
	c := m.find(id)
	if c == nil || m.gens[id] != gen {
		m.mu.Unlock()
		return
	}
	c.Status = models.StatusError
	c.Error = fmt.Sprintf("Connection error: %v", err)
	if tr, ok := m.transports[id]; ok && tr.gen == gen {
		tr.ws.Close()
		delete(m.transports, id)
	}
	m.mu.Unlock()

	m.notify(Event{Type: EventStatusChanged, ConnectionID: id})
}

// handleClose records a clean transport close. If the connection already hit
// an error the error state wins; either way the transport handle is cleared.
func (m *Manager) handleClose(id string, gen uint64) {
	m.mu.Lock()
	c := m.find(id)
	if c == nil || m.gens[id] != gen {
		m.mu.Unlock()
		return
	}
	if c.Status != models.StatusError {
		c.Status = models.StatusDisconnected
	}
	if tr, ok := m.transports[id]; ok && tr.gen == gen {
		tr.ws.Close()
		delete(m.transports, id)
	}
	m.mu.Unlock()

	m.notify(Event{Type: EventStatusChanged, ConnectionID: id})
}
