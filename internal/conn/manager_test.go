package conn

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wserrors "wsup/pkg/errors"

	"wsup/internal/storage"
	"wsup/internal/storage/memory"
	"wsup/internal/storage/models"
)

var upgrader = websocket.Upgrader{}

// newEchoServer starts a server that echoes every frame back.
func newEchoServer(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		for {
			mt, msg, err := c.ReadMessage()
			if err != nil {
				return
			}
			if err := c.WriteMessage(mt, msg); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func newTestManager(t *testing.T) (*Manager, *memory.Store) {
	t.Helper()
	mem := memory.New()
	m := NewManager(context.Background(), mem)
	t.Cleanup(m.CloseAll)
	return m, mem
}

func waitStatus(t *testing.T, m *Manager, id string, want models.ConnectionStatus) {
	t.Helper()
	require.Eventually(t, func() bool {
		c := m.Get(id)
		return c != nil && c.Status == want
	}, 5*time.Second, 10*time.Millisecond, "waiting for status %s", want)
}

func waitMessages(t *testing.T, m *Manager, id string, count int) []*models.Message {
	t.Helper()
	require.Eventually(t, func() bool {
		c := m.Get(id)
		return c != nil && len(c.Messages) >= count
	}, 5*time.Second, 10*time.Millisecond, "waiting for %d messages", count)
	return m.Get(id).Messages
}

func TestAddConnectionSelectsAndPersists(t *testing.T) {
	ctx := context.Background()
	m, mem := newTestManager(t)

	id := m.AddConnection(ctx, "ws://example.test/socket")
	require.NotEmpty(t, id)
	assert.Equal(t, id, m.SelectedID())

	c := m.Get(id)
	require.NotNil(t, c)
	assert.Equal(t, models.StatusDisconnected, c.Status)
	assert.Empty(t, c.Messages)

	// Only {id, url, createdAt} and the selection are persisted.
	raw, err := mem.GetItem(ctx, storage.KeyConnections)
	require.NoError(t, err)
	var saved models.SavedConnectionList
	require.NoError(t, json.Unmarshal([]byte(raw), &saved))
	require.Len(t, saved.Connections, 1)
	assert.Equal(t, id, saved.Connections[0].ID)
	assert.Equal(t, "ws://example.test/socket", saved.Connections[0].URL)
	assert.Equal(t, id, saved.SelectedID)
	assert.NotContains(t, raw, "status")
	assert.NotContains(t, raw, "messages")
}

func TestLoadReinitializesRuntimeState(t *testing.T) {
	ctx := context.Background()
	m, mem := newTestManager(t)
	id := m.AddConnection(ctx, newEchoServer(t))
	m.Connect(id)
	waitStatus(t, m, id, models.StatusConnected)

	// A manager loading the same persistence starts from scratch.
	m2 := NewManager(ctx, mem)
	c := m2.Get(id)
	require.NotNil(t, c)
	assert.Equal(t, models.StatusDisconnected, c.Status)
	assert.Empty(t, c.Messages)
	assert.Equal(t, id, m2.SelectedID())
}

func TestConnectAndEcho(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	id := m.AddConnection(ctx, newEchoServer(t))

	m.Connect(id)
	waitStatus(t, m, id, models.StatusConnected)

	require.NoError(t, m.Send(`{"op": "ping"}`, models.FormatJSON))

	msgs := waitMessages(t, m, id, 2)
	assert.Equal(t, models.MessageSent, msgs[0].Type)
	assert.Equal(t, `{"op": "ping"}`, msgs[0].Content)
	assert.Equal(t, models.FormatJSON, msgs[0].Format)
	assert.Equal(t, len(`{"op": "ping"}`), msgs[0].Size)

	// The echoed frame parses as JSON, so it is sniffed as json.
	assert.Equal(t, models.MessageReceived, msgs[1].Type)
	assert.Equal(t, `{"op": "ping"}`, msgs[1].Content)
	assert.Equal(t, models.FormatJSON, msgs[1].Format)

	// A plain text frame is sniffed as text.
	require.NoError(t, m.Send("hello there", models.FormatText))
	msgs = waitMessages(t, m, id, 4)
	assert.Equal(t, models.FormatText, msgs[3].Format)

	m.Disconnect(id)
	waitStatus(t, m, id, models.StatusDisconnected)
}

func TestSendValidation(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	// Nothing selected.
	err := m.Send("hi", models.FormatText)
	assert.ErrorIs(t, err, wserrors.ErrNoConnectionSelected)

	// Selected but not connected.
	id := m.AddConnection(ctx, newEchoServer(t))
	err = m.Send("hi", models.FormatText)
	assert.ErrorIs(t, err, wserrors.ErrNotConnected)

	// Malformed JSON aborts the send without appending.
	m.Connect(id)
	waitStatus(t, m, id, models.StatusConnected)
	err = m.Send(`{"broken": `, models.FormatJSON)
	assert.ErrorIs(t, err, wserrors.ErrInvalidJSON)
	assert.Empty(t, m.Get(id).Messages)

	err = m.Send("", models.FormatText)
	assert.ErrorIs(t, err, wserrors.ErrEmptyMessage)
	assert.Empty(t, m.Get(id).Messages)
}

func TestDialFailureIsRetryable(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	id := m.AddConnection(ctx, "ws://127.0.0.1:1")

	m.Connect(id)
	waitStatus(t, m, id, models.StatusError)
	assert.NotEmpty(t, m.Get(id).Error)

	// The error state is not terminal: connect again against a live server.
	m.UpdateConnectionURL(ctx, id, newEchoServer(t))
	m.Connect(id)
	waitStatus(t, m, id, models.StatusConnected)
	assert.Empty(t, m.Get(id).Error)
}

func TestServerCloseMovesToDisconnected(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
			time.Now().Add(time.Second))
		c.Close()
	}))
	t.Cleanup(srv.Close)

	m, _ := newTestManager(t)
	id := m.AddConnection(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"))
	m.Connect(id)

	// Clean server close without a prior error ends in disconnected.
	waitStatus(t, m, id, models.StatusDisconnected)
	c := m.Get(id)
	assert.NotEqual(t, models.StatusError, c.Status)
}

func TestBinaryFramesSurfaceSizeOnly(t *testing.T) {
	ctx := context.Background()
	payload := []byte{0x01, 0x02, 0x03}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		c.WriteMessage(websocket.BinaryMessage, payload)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	m, _ := newTestManager(t)
	id := m.AddConnection(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"))
	m.Connect(id)

	msgs := waitMessages(t, m, id, 1)
	assert.Equal(t, models.FormatBinary, msgs[0].Format)
	assert.Equal(t, "Binary data (3 bytes)", msgs[0].Content)
	assert.Equal(t, 3, msgs[0].Size)
}

func TestRemoveConnectionSelection(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	a := m.AddConnection(ctx, "ws://a.test")
	b := m.AddConnection(ctx, "ws://b.test")

	m.SelectConnection(ctx, a)
	m.RemoveConnection(ctx, a)
	assert.Equal(t, b, m.SelectedID())

	// Removing an unselected connection keeps the selection.
	c := m.AddConnection(ctx, "ws://c.test")
	m.SelectConnection(ctx, b)
	m.RemoveConnection(ctx, c)
	assert.Equal(t, b, m.SelectedID())

	m.RemoveConnection(ctx, b)
	assert.Equal(t, "", m.SelectedID())
	assert.Empty(t, m.Connections())
}

func TestClearMessages(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	id := m.AddConnection(ctx, newEchoServer(t))
	m.Connect(id)
	waitStatus(t, m, id, models.StatusConnected)
	require.NoError(t, m.Send("one", models.FormatText))
	waitMessages(t, m, id, 2)

	// Empty id targets the selected connection.
	m.ClearMessages("")
	assert.Empty(t, m.Get(id).Messages)

	// Unknown target is a no-op.
	m.ClearMessages("missing")
}

func TestStaleTransportEventsAreIgnored(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	id := m.AddConnection(ctx, "ws://a.test")

	// Handlers carrying a generation that was never current must not touch
	// state, no matter what they report.
	m.handleDialError(id, 99, errors.New("late dial failure"))
	assert.Equal(t, models.StatusDisconnected, m.Get(id).Status)

	m.handleTransportError(id, 99, errors.New("late read failure"))
	assert.Equal(t, models.StatusDisconnected, m.Get(id).Status)

	m.handleInbound(id, 99, websocket.TextMessage, []byte("late frame"))
	assert.Empty(t, m.Get(id).Messages)

	m.handleClose(id, 99)
	assert.Equal(t, models.StatusDisconnected, m.Get(id).Status)

	// After removal, handlers resolve nothing and stay silent.
	m.RemoveConnection(ctx, id)
	m.handleClose(id, 0)
	m.handleInbound(id, 0, websocket.TextMessage, []byte("ghost"))
	assert.Empty(t, m.Connections())
}

func TestSubscribeReceivesEvents(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	events := make(chan Event, 16)
	m.Subscribe(func(ev Event) { events <- ev })

	id := m.AddConnection(ctx, "ws://a.test")

	select {
	case ev := <-events:
		assert.Equal(t, EventListChanged, ev.Type)
		assert.Equal(t, id, ev.ConnectionID)
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}
