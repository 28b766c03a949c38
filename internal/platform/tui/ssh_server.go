package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/muesli/termenv"

	"github.com/vovakirdan/tui-handheld/internal/config"
	"github.com/vovakirdan/tui-handheld/internal/console"
	"github.com/vovakirdan/tui-handheld/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.handheld/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// Console configures the console of every session.
	Console config.ConsoleConfig
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		IdleTimeout: 30 * time.Minute,
		Console:     config.DefaultConsoleConfig(),
	}
}

// SSHServer serves one console per SSH session. The session's user name is
// its save slot.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	dev    storage.Device
	logger *log.Logger

	mu    sync.Mutex
	slots map[string]bool // slots with a running console
}

// NewSSHServer creates a new SSH server with the given configuration.
// Every console saves to dev.
func NewSSHServer(cfg SSHServerConfig, dev storage.Device, logger *log.Logger) (*SSHServer, error) {
	srv := &SSHServer{
		config: cfg,
		dev:    dev,
		logger: logger.WithPrefix("ssh"),
		slots:  make(map[string]bool),
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".handheld", "host_key")
	}

	hostKeyDir := filepath.Dir(hostKeyPath)
	if mkdirErr := os.MkdirAll(hostKeyDir, 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.MiddlewareWithProgramHandler(srv.programHandler, termenv.ANSI256),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// programHandler boots a console for the session and starts its frame loop.
// The loop stops, and the console saves, when the session ends.
func (s *SSHServer) programHandler(sess ssh.Session) *tea.Program {
	slot := sess.User()
	if _, _, ok := sess.Pty(); !ok {
		s.logger.Warn("no PTY requested", "user", slot)
		wish.Fatalln(sess, "a terminal is required")
		return nil
	}
	if !storage.ValidSlot(slot) {
		wish.Fatalln(sess, "user name cannot be used as a save slot")
		return nil
	}
	if !s.acquire(slot) {
		wish.Fatalln(sess, "this slot is already being played")
		return nil
	}

	logger := s.logger.With("slot", slot)
	c, err := console.New(s.config.Console, s.dev, slot, logger)
	if err == nil {
		err = c.Load()
	}
	if err != nil {
		s.release(slot)
		logger.Error("console boot failed", "error", err)
		wish.Fatalln(sess, "the console failed to boot")
		return nil
	}

	opts := append(bubbletea.MakeOptions(sess), tea.WithAltScreen())
	session := NewSession(c, s.config.Console.Runtime(), bubbletea.MakeRenderer(sess), logger, opts...)
	done := session.Start(sess.Context())
	go func() {
		<-done
		s.release(slot)
	}()
	return session.Program()
}

func (s *SSHServer) acquire(slot string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slots[slot] {
		return false
	}
	s.slots[slot] = true
	return true
}

func (s *SSHServer) release(slot string) {
	s.mu.Lock()
	delete(s.slots, slot)
	s.mu.Unlock()
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server. Open sessions end, which saves
// their consoles.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
