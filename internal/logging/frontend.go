package logging

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// Limits applied to entries coming from the webview
const (
	MaxMessageLength   = 10000
	MaxDataKeys        = 50
	MaxDataValueLength = 1000
)

const truncatedMark = "...[truncated]"

var frontendLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// LogEntry is a log line sent by the UI through App.Log
type LogEntry struct {
	Level   string                 `json:"level"`
	Module  string                 `json:"module"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// LogFromFrontend writes a UI log entry. Unknown levels are logged as info.
func LogFromFrontend(entry LogEntry) {
	logger := Logger().With("source", "frontend", "module", entry.Module)

	level, ok := parseLevel(entry.Level)
	if !ok {
		logger.Warn("Unknown frontend log level", "level", clip(entry.Level, 32))
	}
	if data := sanitize(entry.Data); len(data) > 0 {
		logger = logger.With("data", data)
	}
	logger.Log(context.Background(), level, clip(entry.Message, MaxMessageLength))
}

func parseLevel(s string) (slog.Level, bool) {
	level, ok := frontendLevels[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return slog.LevelInfo, false
	}
	return level, true
}

// sanitize caps the number of keys, masks secrets and clips long strings.
// Keys beyond the cap are dropped in no particular order.
func sanitize(data map[string]interface{}) map[string]interface{} {
	if data == nil {
		return nil
	}

	out := make(map[string]interface{}, min(len(data), MaxDataKeys+1))
	for k, v := range data {
		if len(out) == MaxDataKeys {
			out["_truncated"] = true
			break
		}
		switch {
		case isSecretKey(k):
			out[k] = redacted
		default:
			if s, ok := v.(string); ok {
				v = clip(s, MaxDataValueLength)
			}
			out[k] = v
		}
	}
	return out
}

// clip shortens s to at most n bytes without splitting a rune
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + truncatedMark
}
