// Package shell runs allowlisted programs for the UI, either to completion or
// as interactive sessions attached to a pseudo-terminal.
package shell

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"

	"codefendpanel/internal/logging"
	"codefendpanel/internal/plugin"

	"github.com/creack/pty"
	"github.com/google/uuid"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

const (
	// OutputEvent carries base64 encoded session output
	OutputEvent = "shell:output"
	// ExitEvent is emitted once a session's process has exited
	ExitEvent = "shell:exit"

	defaultRows = 24
	defaultCols = 80
	maxRows     = 500
	maxCols     = 500

	executeTimeout = 2 * time.Minute
)

var (
	// ErrNotAllowed is returned for programs missing from the allowlist
	ErrNotAllowed = errors.New("program is not allowed")
	// ErrNotFound is returned for unknown session ids
	ErrNotFound = errors.New("session not found")
)

// Output is the payload of OutputEvent
type Output struct {
	ID   string `json:"id"`
	Data string `json:"data"`
}

// Exit is the payload of ExitEvent
type Exit struct {
	ID   string `json:"id"`
	Code int    `json:"code"`
}

// Result is the outcome of Execute
type Result struct {
	Code   int    `json:"code"`
	Output string `json:"output"`
}

// Info describes a session for the UI
type Info struct {
	ID      string   `json:"id"`
	Program string   `json:"program"`
	Args    []string `json:"args"`
	Dir     string   `json:"dir"`
	Running bool     `json:"running"`
}

type session struct {
	info Info
	cmd  *exec.Cmd
	term io.ReadWriteCloser

	mu      sync.Mutex
	running bool
}

// Shell owns running sessions
type Shell struct {
	ctx   context.Context
	allow map[string]bool

	mu       sync.RWMutex
	sessions map[string]*session

	emit  func(ctx context.Context, name string, data ...interface{})
	start func(cmd *exec.Cmd) (io.ReadWriteCloser, error)
}

// New creates a shell that may run the given program names. Entries are
// looked up on PATH; entries containing a path separator are ignored.
func New(allow []string) *Shell {
	s := &Shell{
		allow:    make(map[string]bool, len(allow)),
		sessions: make(map[string]*session),
		emit:     runtime.EventsEmit,
		start:    startPTY,
	}
	for _, name := range allow {
		name = strings.TrimSpace(name)
		switch {
		case name == "":
		case strings.ContainsAny(name, `/\`):
			logging.Warn("Ignoring shell allowlist entry with a path", "entry", name)
		default:
			s.allow[name] = true
		}
	}
	return s
}

// Plugin registers the shell as the "shell" plugin. Sessions are killed on stop.
func Plugin(s *Shell) plugin.Plugin {
	return plugin.Plugin{
		Name:    "shell",
		Service: s,
		Start: func(ctx context.Context) error {
			s.ctx = ctx
			return nil
		},
		Stop: func(context.Context) {
			s.KillAll()
		},
	}
}

func startPTY(cmd *exec.Cmd) (io.ReadWriteCloser, error) {
	return pty.StartWithSize(cmd, &pty.Winsize{Rows: defaultRows, Cols: defaultCols})
}

// command resolves program against the allowlist and PATH
func (s *Shell) command(ctx context.Context, program string, args []string, dir string) (*exec.Cmd, error) {
	// bare names only: a path would run a file the allowlist never named
	if strings.ContainsAny(program, `/\`) || !s.allow[program] {
		return nil, fmt.Errorf("%w: %q", ErrNotAllowed, program)
	}
	path, err := exec.LookPath(program)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"COLORTERM=truecolor",
	)
	return cmd, nil
}

// Allowed returns the allowlisted program names
func (s *Shell) Allowed() []string {
	names := make([]string, 0, len(s.allow))
	for name := range s.allow {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs a program to completion and returns its combined output.
// A non-zero exit is reported in Result.Code, not as an error.
func (s *Shell) Execute(program string, args []string, dir string) (*Result, error) {
	parent := s.ctx
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, executeTimeout)
	defer cancel()

	cmd, err := s.command(ctx, program, args, dir)
	if err != nil {
		return nil, err
	}

	out, err := cmd.CombinedOutput()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return nil, err
	}

	logging.Info("Program executed", "program", program, "code", cmd.ProcessState.ExitCode())
	return &Result{Code: cmd.ProcessState.ExitCode(), Output: string(out)}, nil
}

// Spawn starts an interactive session and returns its id. Output and exit
// are delivered as events.
func (s *Shell) Spawn(program string, args []string, dir string) (string, error) {
	cmd, err := s.command(context.Background(), program, args, dir)
	if err != nil {
		return "", err
	}

	term, err := s.start(cmd)
	if err != nil {
		logging.Error("Failed to start session", "program", program, "dir", logging.MaskPath(dir), "error", err)
		return "", err
	}

	sess := &session{
		info: Info{
			ID:      uuid.NewString(),
			Program: program,
			Args:    args,
			Dir:     dir,
		},
		cmd:     cmd,
		term:    term,
		running: true,
	}

	s.mu.Lock()
	s.sessions[sess.info.ID] = sess
	s.mu.Unlock()

	// Output is fully drained before the exit event is sent
	done := make(chan struct{})
	go s.readOutput(sess, done)
	go s.waitForExit(sess, done)

	logging.Info("Session started", "id", sess.info.ID, "program", program, "dir", logging.MaskPath(dir))
	return sess.info.ID, nil
}

func (s *Shell) send(name string, data interface{}) {
	if s.ctx == nil {
		return
	}
	s.emit(s.ctx, name, data)
}

func (s *Shell) readOutput(sess *session, done chan<- struct{}) {
	defer close(done)
	buf := make([]byte, 4096)
	for {
		n, err := sess.term.Read(buf)
		if n > 0 {
			s.send(OutputEvent, Output{
				ID:   sess.info.ID,
				Data: base64.StdEncoding.EncodeToString(buf[:n]),
			})
		}
		if err != nil {
			return
		}
	}
}

func (s *Shell) waitForExit(sess *session, done <-chan struct{}) {
	_ = sess.cmd.Wait()
	// Pseudo-terminals do not always report EOF after the child exits
	select {
	case <-done:
	case <-time.After(time.Second):
		sess.term.Close()
		<-done
	}

	sess.mu.Lock()
	sess.running = false
	sess.mu.Unlock()

	code := sess.cmd.ProcessState.ExitCode()
	s.send(ExitEvent, Exit{ID: sess.info.ID, Code: code})
	logging.Info("Session exited", "id", sess.info.ID, "code", code)
}

func (s *Shell) get(id string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sess, nil
}

// Write sends input to a session
func (s *Shell) Write(id, data string) error {
	sess, err := s.get(id)
	if err != nil {
		return err
	}
	_, err = sess.term.Write([]byte(data))
	return err
}

// Resize changes the terminal size of a session. Values are clamped.
func (s *Shell) Resize(id string, rows, cols int) error {
	sess, err := s.get(id)
	if err != nil {
		return err
	}
	f, ok := sess.term.(*os.File)
	if !ok {
		return nil
	}
	return pty.Setsize(f, &pty.Winsize{
		Rows: uint16(clamp(rows, 1, maxRows)),
		Cols: uint16(clamp(cols, 1, maxCols)),
	})
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Kill terminates a session and forgets it
func (s *Shell) Kill(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	logging.Info("Session killed", "id", id)
	sess.close()
	return nil
}

// KillAll terminates every session
func (s *Shell) KillAll() {
	s.mu.Lock()
	sessions := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.sessions = make(map[string]*session)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.close()
	}
}

func (sess *session) close() {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.running && sess.cmd.Process != nil {
		sess.cmd.Process.Kill()
	}
	sess.term.Close()
}

// List returns sessions sorted by id
func (s *Shell) List() []Info {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Info, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sess.mu.Lock()
		info := sess.info
		info.Running = sess.running
		sess.mu.Unlock()
		list = append(list, info)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}
