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

	"github.com/dmitrijs2005/shopkeeper/internal/client/client"
	"github.com/dmitrijs2005/shopkeeper/internal/client/config"
	"github.com/dmitrijs2005/shopkeeper/internal/client/localdb"
	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/dmitrijs2005/shopkeeper/internal/client/services"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
)

type Mode string

const (
	ModeUnknown Mode = ""
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config *config.Config
	db     *sql.DB
	client client.Client
	logger logging.Logger

	session    *services.SessionManager
	index      *services.CategoryIndex
	categories *services.CategoryList
	products   *services.ProductList
	dashboard  *services.Dashboard

	reader *bufio.Reader
	out    io.Writer

	// pendingRegistration keeps the profile of a failed sign-up, without
	// passwords, so it can be offered again.
	pendingRegistration models.RegisterRequest

	modeMu sync.Mutex
	mode   Mode
}

// NewApp opens the session database, builds the HTTP transport and wires
// the session manager in as its token source.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stderr, c.LogLevel)

	db, err := localdb.InitDatabase(ctx, c.SessionDBPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	httpClient, err := client.NewHTTPClient(client.Options{
		BaseURL:   c.ServerBaseURL,
		Timeout:   c.RequestTimeout,
		RateLimit: c.RateLimit,
		RateBurst: c.RateBurst,
		Logger:    logger,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := newApp(c, db, httpClient, logger, bufio.NewReader(os.Stdin), os.Stdout)
	httpClient.SetTokenSource(a.session)
	return a, nil
}

func newApp(c *config.Config, db *sql.DB, api client.Client, logger logging.Logger, r *bufio.Reader, w io.Writer) *App {
	a := &App{
		config:  c,
		db:      db,
		client:  api,
		logger:  logger,
		session: services.NewSessionManager(api, db, logger),
		reader:  r,
		out:     w,
	}
	a.resetScreens()
	return a
}

// resetScreens drops every list and chart so nothing loaded under one
// session is shown under the next.
func (a *App) resetScreens() {
	a.index = services.NewCategoryIndex()
	a.categories = services.NewCategoryList(a.client, a.index, a.config.PageSize, a.logger)
	a.products = services.NewProductList(a.client, a.index, a.config.PageSize, a.logger)
	a.dashboard = services.NewDashboard(a.client, a.logger)
}

// Run restores any persisted session, starts the connectivity watcher and
// blocks in the REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.session.Initialize(ctx)

	fmt.Fprintln(a.out, "Welcome to shopkeeper admin console (type 'help' for commands)")
	if u := a.session.User(); u != nil {
		fmt.Fprintf(a.out, "Signed in as %s\n", u.DisplayName())
	} else {
		fmt.Fprintln(a.out, "Not signed in. Use 'login' or 'register'.")
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) Close() {
	if err := a.client.Close(); err != nil {
		a.logger.Warn(context.Background(), "closing client", "error", err)
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) currentMode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		a.logger.Info(context.Background(), "connectivity changed", "mode", mode)
	}
}

func (a *App) getStatus() string {
	s := ""
	if u := a.session.User(); u != nil {
		s = u.DisplayName() + " "
	}
	if m := a.currentMode(); m != ModeUnknown {
		s += string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// StartOnlineStatusWatcher pings the backend every interval and flips the
// online/offline indicator until ctx is cancelled.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.checkOnline(ctx)

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

func (a *App) checkOnline(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.client.Ping(pingCtx)
	cancel()

	if err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}
