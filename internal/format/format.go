// Package format holds the small pure text helpers shared by the TUI and the
// plain CLI commands.
package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// IsValidJSON reports whether str parses as JSON.
func IsValidJSON(str string) bool {
	return json.Valid([]byte(str))
}

// JSON pretty-prints str with 2-space indentation. On parse failure the input
// is returned unchanged.
func JSON(str string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(str), "", "  "); err != nil {
		return str
	}
	return buf.String()
}

// Bytes renders a byte count in human-readable form.
func Bytes(n int) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)
	switch {
	case n >= gb:
		return fmt.Sprintf("%.1f GB", float64(n)/float64(gb))
	case n >= mb:
		return fmt.Sprintf("%.1f MB", float64(n)/float64(mb))
	case n >= kb:
		return fmt.Sprintf("%.1f KB", float64(n)/float64(kb))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// Time renders a timestamp as HH:MM:SS for the message log.
func Time(t time.Time) string {
	return t.Format("15:04:05")
}

// TruncateURL shortens a URL to maxLen runes, keeping the scheme readable.
func TruncateURL(url string, maxLen int) string {
	if len(url) <= maxLen {
		return url
	}

	scheme := ""
	for _, p := range []string{"wss://", "ws://"} {
		if strings.HasPrefix(url, p) {
			scheme = p
			break
		}
	}
	rest := url[len(scheme):]

	avail := maxLen - len(scheme) - 3
	if avail <= 0 {
		return url[:maxLen-3] + "..."
	}
	return scheme + rest[:avail] + "..."
}

// RelativeTime renders how long ago t was, for the history list.
func RelativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours())/24)
	case d >= time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d >= time.Minute:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return "just now"
	}
}
