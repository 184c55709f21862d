package lsp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog"

	xlog "github.com/dshills/toolz/internal/log"
)

// ServerConfig defines how to start a language server.
type ServerConfig struct {
	// Command is the executable to run.
	Command string

	// Args are command-line arguments.
	Args []string

	// Env are additional environment variables.
	Env map[string]string

	// WorkDir is the working directory of the process.
	WorkDir string

	// KillTimeout is how long Close waits for the process to exit after
	// closing its stdin before killing it (default: 2s).
	KillTimeout time.Duration
}

// ServerConnection runs a language server process and exchanges messages
// with it over stdin and stdout. Lines the process writes to stderr are
// passed to the handler when it implements ErrorOutputHandler.
type ServerConnection struct {
	mu sync.Mutex

	config ServerConfig
	logger zerolog.Logger

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr io.ReadCloser

	conn       *Connection
	exitCh     chan error
	stderrDone chan struct{}

	closeOnce sync.Once
}

// NewServerConnection creates a server connection (not yet started).
func NewServerConnection(config ServerConfig) *ServerConnection {
	if config.KillTimeout <= 0 {
		config.KillTimeout = 2 * time.Second
	}
	return &ServerConnection{
		config:     config,
		logger:     xlog.WithComponent("lsp").With().Str("server", config.Command).Logger(),
		exitCh:     make(chan error, 1),
		stderrDone: make(chan struct{}),
	}
}

// Start launches the server process and begins passing its messages to h.
func (s *ServerConnection) Start(ctx context.Context, h Handler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd != nil {
		return ErrAlreadyStarted
	}
	if err := s.startProcess(); err != nil {
		return &ServerError{Command: s.config.Command, Err: err}
	}

	s.conn = NewConnection(s.stdout, s.stdin, s.stdin)
	if err := s.conn.Start(ctx, h); err != nil {
		s.stopProcess()
		return err
	}

	go s.pumpErrorOutput(h)
	go s.monitorProcess()

	s.logger.Debug().Int("pid", s.cmd.Process.Pid).Msg("server started")
	return nil
}

// startProcess starts the language server executable.
func (s *ServerConnection) startProcess() error {
	cmd := exec.Command(s.config.Command, s.config.Args...)

	cmd.Env = os.Environ()
	for k, v := range s.config.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	cmd.Dir = s.config.WorkDir

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return fmt.Errorf("stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		stdin.Close()
		stdout.Close()
		return fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		stdin.Close()
		stdout.Close()
		stderr.Close()
		return fmt.Errorf("start process: %w", err)
	}

	s.cmd = cmd
	s.stdin = stdin
	s.stdout = stdout
	s.stderr = stderr
	return nil
}

// pumpErrorOutput forwards stderr lines until the pipe closes.
func (s *ServerConnection) pumpErrorOutput(h Handler) {
	defer close(s.stderrDone)

	eh, _ := h.(ErrorOutputHandler)
	scanner := bufio.NewScanner(s.stderr)
	scanner.Buffer(make([]byte, 0, 4096), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if eh == nil {
			s.logger.Debug().Str("stderr", line).Msg("server error output")
			continue
		}
		eh.HandleErrorOutput(line)
	}
}

// monitorProcess waits for the process and reports its exit. Wait closes
// the pipes, so it is only called once stdout and stderr are drained.
func (s *ServerConnection) monitorProcess() {
	<-s.conn.Done()
	<-s.stderrDone
	err := s.cmd.Wait()
	if err != nil && !s.conn.IsClosed() {
		s.logger.Error().Err(err).Msg("server exited")
		err = fmt.Errorf("%w: %v", ErrServerCrashed, err)
	}
	s.exitCh <- err
	close(s.exitCh)
}

// Send writes msg to the server's stdin.
func (s *ServerConnection) Send(msg Message) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return ErrNotStarted
	}
	return conn.Send(msg)
}

// Exited returns a channel that receives the process exit error (nil for
// a clean exit) and is then closed.
func (s *ServerConnection) Exited() <-chan error {
	return s.exitCh
}

// Done returns a channel that is closed when the read loop exits, or nil
// before Start.
func (s *ServerConnection) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	return s.conn.Done()
}

// Pid returns the server process ID, or zero before Start.
func (s *ServerConnection) Pid() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd == nil || s.cmd.Process == nil {
		return 0
	}
	return s.cmd.Process.Pid
}

// Close closes the server's stdin and kills the process if it has not
// exited within the kill timeout.
func (s *ServerConnection) Close() error {
	s.mu.Lock()
	started := s.cmd != nil
	s.mu.Unlock()
	if !started {
		return nil
	}

	s.closeOnce.Do(func() {
		s.conn.Close()
		select {
		case <-s.conn.Done():
		case <-time.After(s.config.KillTimeout):
			s.stopProcess()
		}
		<-s.conn.Done()
	})
	return nil
}

// stopProcess kills the server process.
func (s *ServerConnection) stopProcess() {
	if s.cmd != nil && s.cmd.Process != nil {
		if err := s.cmd.Process.Kill(); err != nil {
			s.logger.Debug().Err(err).Msg("kill server")
		}
	}
}
