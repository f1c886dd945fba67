package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const dayLayout = "2006-01-02"

// dailyWriter appends to <prefix>.<date>.log and switches files at midnight.
// <prefix>.log always points at the file in use.
type dailyWriter struct {
	dir    string
	prefix string
	maxAge time.Duration
	now    func() time.Time

	mu      sync.Mutex
	file    *os.File
	day     string
	pruning atomic.Bool
}

func newDailyWriter(dir, prefix string, maxAge time.Duration) (*dailyWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	w := &dailyWriter{dir: dir, prefix: prefix, maxAge: maxAge, now: time.Now}
	if err := w.open(w.now().Format(dayLayout)); err != nil {
		return nil, err
	}
	w.startPrune()
	return w, nil
}

func (w *dailyWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, os.ErrClosed
	}
	if day := w.now().Format(dayLayout); day != w.day {
		if err := w.open(day); err != nil {
			return 0, err
		}
		w.startPrune()
	}
	return w.file.Write(p)
}

func (w *dailyWriter) open(day string) error {
	name := filepath.Join(w.dir, w.prefix+"."+day+".log")
	f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if w.file != nil {
		w.file.Close()
	}
	w.file, w.day = f, day

	link := filepath.Join(w.dir, w.prefix+".log")
	_ = os.Remove(link)
	// symlinks need elevated rights on some Windows setups; the dated file is enough
	_ = os.Symlink(name, link)
	return nil
}

func (w *dailyWriter) startPrune() {
	if w.maxAge <= 0 || !w.pruning.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer w.pruning.Store(false)
		w.prune()
	}()
}

// prune deletes dated logs older than maxAge. The current file is never touched.
func (w *dailyWriter) prune() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return
	}
	cutoff := w.now().Add(-w.maxAge)
	for _, e := range entries {
		if e.IsDir() || !isDatedLog(e.Name(), w.prefix) {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		_ = os.Remove(filepath.Join(w.dir, e.Name()))
	}
}

func (w *dailyWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// isDatedLog reports whether name is <prefix>.<YYYY-MM-DD>.log
func isDatedLog(name, prefix string) bool {
	rest, ok := strings.CutPrefix(name, prefix+".")
	if !ok {
		return false
	}
	day, ok := strings.CutSuffix(rest, ".log")
	if !ok {
		return false
	}
	_, err := time.Parse(dayLayout, day)
	return err == nil
}
