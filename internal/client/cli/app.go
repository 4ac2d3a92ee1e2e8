package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/anchor/internal/client/client"
	"github.com/dmitrijs2005/anchor/internal/client/config"
	"github.com/dmitrijs2005/anchor/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/anchor/internal/client/services"
	"github.com/dmitrijs2005/anchor/internal/logging"
	"github.com/dmitrijs2005/anchor/internal/mockai"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOffline  Mode = "offline"
	ModeOnline   Mode = "online"
	ModeDisabled Mode = "disabled"
)

const pingTimeout = 3 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	logOut io.Closer

	authService services.AuthService
	onboarding  *services.OnboardingService
	creation    *services.CreationService
	vault       *services.VaultService
	rituals     *services.RitualService
	syncer      *services.SyncService
	orders      *services.OrderService

	mu       sync.Mutex
	mode     Mode
	userName string
	loggedIn bool

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the log file and the local database, applies migrations and
// wires the services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logFile, err := os.OpenFile(c.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logger := logging.NewTextLogger(logFile, logging.ParseLevel(c.LogLevel))

	db, err := sql.Open("sqlite", c.DatabasePath)
	if err != nil {
		_ = logFile.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}

	m := repomanager.NewSQLiteRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		_ = logFile.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr)
	if err != nil {
		_ = db.Close()
		_ = logFile.Close()
		return nil, err
	}

	a := newApp(c, logger, db, m, apiClient, mockai.New())
	a.logOut = logFile
	return a, nil
}

func newApp(c *config.Config, l logging.Logger, db *sql.DB, m repomanager.RepositoryManager, apiClient client.Client, ai services.Analyzer) *App {
	syncer := services.NewSyncService(apiClient, db, m, l)
	vault := services.NewVaultService(db, m)
	return &App{
		config:      c,
		logger:      l.With("module", "cli"),
		db:          db,
		authService: services.NewAuthService(apiClient, db, m),
		onboarding:  services.NewOnboardingService(db, m),
		creation:    services.NewCreationService(db, m, ai),
		vault:       vault,
		rituals:     services.NewRitualService(db, m, syncer, services.NewLogReporter(l), l),
		syncer:      syncer,
		orders:      services.NewOrderService(apiClient, vault),
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// setMode reports whether the mode changed.
func (a *App) setMode(mode Mode) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode == mode {
		return false
	}
	a.mode = mode
	a.logger.Info(context.Background(), "mode switched", "mode", mode)
	return true
}

func (a *App) isLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loggedIn
}

func (a *App) setUser(name string, loggedIn bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.userName = name
	a.loggedIn = loggedIn
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := ""
	if a.userName != "" {
		s = a.userName + " "
	}
	s += string(a.mode)
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Run blocks until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer a.close(ctx)

	a.println("Welcome to Anchor (type 'help' for commands)")

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader), a.out)
}

func (a *App) close(ctx context.Context) {
	if err := a.authService.Close(ctx); err != nil {
		a.logger.Error(ctx, "close client", "error", err)
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error(ctx, "close database", "error", err)
	}
	if a.logOut != nil {
		_ = a.logOut.Close()
	}
}

// checkOnline pings the server once. Going from offline to online while
// logged in flushes the pending actions.
func (a *App) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := a.authService.Ping(pctx)
	cancel()

	if err != nil {
		if a.Mode() == ModeOnline {
			a.setMode(ModeOffline)
		}
		return
	}
	if a.Mode() == ModeOnline {
		return
	}
	if a.setMode(ModeOnline) && a.isLoggedIn() {
		if _, err := a.syncer.Flush(ctx); err != nil {
			a.logger.Warn(ctx, "sync after reconnect failed", "error", err)
		}
	}
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}
