package conn

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wsup/internal/storage/models"
)

func TestKeepaliveStartStop(t *testing.T) {
	m, _ := newTestManager(t)
	k, err := NewKeepalive(m)
	require.NoError(t, err)

	require.NoError(t, k.Start(50*time.Millisecond))
	// Starting twice is rejected.
	require.Error(t, k.Start(50*time.Millisecond))
	require.NoError(t, k.Stop())
	// Stopping twice is a no-op.
	require.NoError(t, k.Stop())
}

func TestKeepalivePingsConnectedTransport(t *testing.T) {
	url := newEchoServer(t)
	m, _ := newTestManager(t)
	ctx := context.Background()

	id := m.AddConnection(ctx, url)
	m.Connect(id)
	waitStatus(t, m, id, models.StatusConnected)

	k, err := NewKeepalive(m)
	require.NoError(t, err)
	require.NoError(t, k.Start(20*time.Millisecond))
	defer k.Stop()

	// Pings are control frames; the connection stays healthy and no messages
	// are appended.
	time.Sleep(100 * time.Millisecond)
	c := m.Get(id)
	assert.Equal(t, models.StatusConnected, c.Status)
	assert.Empty(t, c.Messages)
}
