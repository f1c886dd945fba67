// Package logging sets up the process-wide slog logger. Records go to a dated
// file under the config directory and, in dev mode, to stdout as well.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxAge is how long dated log files are kept
const DefaultMaxAge = 3 * 24 * time.Hour

const redacted = "[REDACTED]"

// secretKeys are substrings of attribute keys whose values never reach the log.
// Matching is case-insensitive.
var secretKeys = []string{
	"password", "passwd", "pwd",
	"token", "secret", "auth",
	"api_key", "apikey", "api-key",
	"credential", "private_key", "privatekey",
	"cookie", "session_id", "sessionid",
	"pubkey", "signature",
}

// Config controls Init
type Config struct {
	LogDir     string
	Prefix     string
	MaxAge     time.Duration
	JSONOutput bool
	DevMode    bool
}

var (
	mu        sync.RWMutex
	logger    *slog.Logger
	sink      *dailyWriter
	devMode   bool
	sessionID = uuid.NewString()
)

// SessionID identifies this process in every record
func SessionID() string {
	return sessionID
}

// IsDevMode reports whether Init was called with DevMode
func IsDevMode() bool {
	mu.RLock()
	defer mu.RUnlock()
	return devMode
}

// Init replaces the global logger. Calling it again closes the previous file.
func Init(cfg Config) error {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "panel"
	}
	w, err := newDailyWriter(cfg.LogDir, prefix, cfg.MaxAge)
	if err != nil {
		return err
	}

	var out io.Writer = w
	if cfg.DevMode {
		out = io.MultiWriter(w, os.Stdout)
	}
	opts := &slog.HandlerOptions{Level: slog.LevelDebug, ReplaceAttr: replaceAttr}

	var h slog.Handler
	if cfg.JSONOutput {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}

	mu.Lock()
	defer mu.Unlock()
	if sink != nil {
		sink.Close()
	}
	sink, devMode = w, cfg.DevMode
	logger = slog.New(h).With("session", sessionID)
	slog.SetDefault(logger)
	return nil
}

// Close flushes and closes the log file. Safe to call without Init.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if sink == nil {
		return nil
	}
	err := sink.Close()
	sink = nil
	return err
}

// Logger returns the global logger, or slog's default before Init
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if logger == nil {
		return slog.Default()
	}
	return logger
}

func Debug(msg string, args ...any) { Logger().Debug(msg, args...) }
func Info(msg string, args ...any)  { Logger().Info(msg, args...) }
func Warn(msg string, args ...any)  { Logger().Warn(msg, args...) }
func Error(msg string, args ...any) { Logger().Error(msg, args...) }

// replaceAttr formats time as RFC3339Nano and masks secret attributes
func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey && len(groups) == 0 {
		if t, ok := a.Value.Any().(time.Time); ok {
			a.Value = slog.StringValue(t.Format(time.RFC3339Nano))
		}
		return a
	}
	if isSecretKey(a.Key) {
		a.Value = slog.StringValue(redacted)
	}
	return a
}

func isSecretKey(key string) bool {
	k := strings.ToLower(key)
	for _, s := range secretKeys {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

// MaskPath replaces the home directory prefix with ~
func MaskPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if path == home {
		return "~"
	}
	if rest, ok := strings.CutPrefix(path, home+string(os.PathSeparator)); ok {
		return "~" + string(os.PathSeparator) + rest
	}
	return path
}
