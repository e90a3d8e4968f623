package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsValidJSON(t *testing.T) {
	assert.True(t, IsValidJSON(`{"a": 1}`))
	assert.True(t, IsValidJSON(`[1, 2, 3]`))
	assert.True(t, IsValidJSON(`"plain string"`))
	assert.False(t, IsValidJSON(`{"a": }`))
	assert.False(t, IsValidJSON(``))
}

func TestJSON(t *testing.T) {
	assert.Equal(t, "{\n  \"a\": 1\n}", JSON(`{"a":1}`))

	// Identity on parse failure.
	assert.Equal(t, `not json`, JSON(`not json`))
}

func TestBytes(t *testing.T) {
	assert.Equal(t, "0 B", Bytes(0))
	assert.Equal(t, "512 B", Bytes(512))
	assert.Equal(t, "1.0 KB", Bytes(1024))
	assert.Equal(t, "1.5 MB", Bytes(1536*1024))
}

func TestTruncateURL(t *testing.T) {
	assert.Equal(t, "ws://short", TruncateURL("ws://short", 30))

	got := TruncateURL("wss://very-long-hostname.example.com/path/to/socket", 30)
	assert.Len(t, got, 30)
	assert.Equal(t, "wss://", got[:6])
	assert.Equal(t, "...", got[len(got)-3:])
}

func TestRelativeTime(t *testing.T) {
	now := time.Now()
	assert.Equal(t, "just now", RelativeTime(now.Add(-10*time.Second)))
	assert.Equal(t, "5m ago", RelativeTime(now.Add(-5*time.Minute)))
	assert.Equal(t, "3h ago", RelativeTime(now.Add(-3*time.Hour)))
	assert.Equal(t, "2d ago", RelativeTime(now.Add(-49*time.Hour)))
}
