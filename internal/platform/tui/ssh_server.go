package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/retroplay/internal/config"
	"github.com/vovakirdan/retroplay/internal/core"
	"github.com/vovakirdan/retroplay/internal/identity"
	"github.com/vovakirdan/retroplay/internal/profile"
	"github.com/vovakirdan/retroplay/internal/remote"
	"github.com/vovakirdan/retroplay/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.retroplay/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	FPS  int
	Sync config.SyncConfig
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		IdleTimeout: 30 * time.Minute,
		FPS:         60,
		Sync:        config.DefaultSyncConfig(),
	}
}

// SSHServer serves the app to SSH clients. Every session plays under the
// SSH user's identity; sessions share the local database and remote store.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	kv     core.KV
	store  remote.Store
	outbox *profile.Outbox
	board  *storage.Leaderboard
	logger *log.Logger
}

// NewSSHServer creates the server. store may be nil for offline play.
func NewSSHServer(cfg SSHServerConfig, kv core.KV, store remote.Store, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.Default()
	}
	if kv == nil {
		kv = storage.NewMemory()
	}

	srv := &SSHServer{
		config: cfg,
		kv:     kv,
		store:  store,
		outbox: profile.NewOutbox(kv),
		board:  storage.NewLeaderboard(kv, cfg.Sync.CacheCap),
		logger: logger,
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".retroplay", "host_key")
	}
	if mkdirErr := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}
	srv.server = server
	return srv, nil
}

// sessionIdentity resolves the identity of an SSH session. The host's
// environment is never consulted.
func sessionIdentity(user string) identity.Identity {
	return identity.Resolve(identity.Source{
		SSHUser: user,
		Env:     func(string) string { return "" },
	})
}

func (s *SSHServer) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sess.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sess.User())
		return nil, nil
	}

	ident := sessionIdentity(sess.User())
	svc := profile.New(profile.Options{
		Store:    s.store,
		KV:       s.kv,
		Identity: ident,
		Config:   s.config.Sync,
		Logger:   s.logger.With("user", ident.ID),
		Outbox:   s.outbox,
		Board:    s.board,
	})
	svc.Start(sess.Context())
	go func() {
		<-sess.Context().Done()
		svc.Close()
	}()

	cfg := core.DefaultConfig()
	cfg.ScreenW, cfg.ScreenH = pty.Window.Width, pty.Window.Height
	cfg.TickRate = s.config.FPS
	cfg.Seed = time.Now().UnixNano()

	app := NewApp(AppOptions{
		Config:  cfg,
		FPS:     s.config.FPS,
		KV:      storage.NewNamespaced(s.kv, ident.ID),
		Profile: svc,
	})
	return app, []tea.ProgramOption{tea.WithAltScreen(), tea.WithReportFocus()}
}

func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		s.logger.Info("session started",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
		)
		next(sess)
		s.logger.Info("session ended",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
		)
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
