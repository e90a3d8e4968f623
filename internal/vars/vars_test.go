package vars

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "no variables",
			content: `{"message": "hello"}`,
			want:    nil,
		},
		{
			name:    "single variable",
			content: `{"name": "{{name}}"}`,
			want:    []string{"name"},
		},
		{
			name:    "dedup in first-occurrence order",
			content: "Hello {{name}}, id={{id}} again {{name}}",
			want:    []string{"name", "id"},
		},
		{
			name:    "underscores and digits",
			content: "{{user_id}} {{token2}}",
			want:    []string{"user_id", "token2"},
		},
		{
			name:    "malformed braces ignored",
			content: "{{ spaced }} {single} {{}}",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.content))
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		content string
		values  map[string]string
		want    string
	}{
		{
			name:    "full resolution",
			content: "{{a}}-{{b}}",
			values:  map[string]string{"a": "1", "b": "2"},
			want:    "1-2",
		},
		{
			name:    "partial resolution leaves tokens literal",
			content: "{{a}}-{{b}}",
			values:  map[string]string{"a": "1"},
			want:    "1-{{b}}",
		},
		{
			name:    "empty value counts as unresolved",
			content: "{{a}}-{{b}}",
			values:  map[string]string{"a": "1", "b": ""},
			want:    "1-{{b}}",
		},
		{
			name:    "repeated occurrences all replaced",
			content: "{{x}} and {{x}}",
			values:  map[string]string{"x": "y"},
			want:    "y and y",
		},
		{
			name:    "substituted value is not re-resolved",
			content: "{{a}}",
			values:  map[string]string{"a": "{{b}}", "b": "2"},
			want:    "{{b}}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.content, tt.values))
		})
	}
}

func TestSync(t *testing.T) {
	t.Run("preserves surviving values", func(t *testing.T) {
		got, changed := Sync("{{a}} {{b}}", map[string]string{"a": "kept", "c": "dropped"})
		assert.True(t, changed)
		assert.Equal(t, map[string]string{"a": "kept", "b": ""}, got)
	})

	t.Run("no change when sets match", func(t *testing.T) {
		got, changed := Sync("{{a}} {{b}}", map[string]string{"a": "1", "b": "2"})
		assert.False(t, changed)
		assert.Equal(t, map[string]string{"a": "1", "b": "2"}, got)
	})

	t.Run("empty content drops everything", func(t *testing.T) {
		got, changed := Sync("plain text", map[string]string{"a": "1"})
		assert.True(t, changed)
		assert.Empty(t, got)
	})
}

func TestHasUnresolved(t *testing.T) {
	assert.True(t, HasUnresolved("hello {{name}}"))
	assert.False(t, HasUnresolved("hello world"))

	// A placeholder surfacing from a substituted value still counts.
	resolved := Resolve("{{a}}", map[string]string{"a": "{{b}}"})
	assert.True(t, HasUnresolved(resolved))
}
