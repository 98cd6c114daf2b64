// Package server assembles the account server: storage backends, session
// store, mailer, metrics and the HTTP transport, and runs it until a
// termination signal arrives.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/config"
	"github.com/dmitrijs2005/gatekeeper/internal/server/mailer"
	"github.com/dmitrijs2005/gatekeeper/internal/server/metrics"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/gatekeeper/internal/server/services"
	"github.com/dmitrijs2005/gatekeeper/internal/server/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	redis       *redis.Client
	accounts    *services.AccountService
	server      *web.Server
}

// NewApp wires every component from c. Empty DSN and Redis address select
// the in-memory backends; an empty SMTP address logs mail instead of
// sending it.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)
	return newApp(ctx, c, logger)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	app := &App{config: c, logger: logger}

	var sess sessions.Repository
	if c.RedisAddr != "" {
		app.redis = redis.NewClient(&redis.Options{Addr: c.RedisAddr, Password: c.RedisPassword})
		if err := app.redis.Ping(ctx).Err(); err != nil {
			_ = app.redis.Close()
			return nil, fmt.Errorf("redis init error: %w", err)
		}
		sess = sessions.NewRedisRepository(app.redis, "")
	} else {
		logger.Warn(ctx, "no redis address configured, sessions are kept in memory")
		sess = sessions.NewMemoryRepository()
	}

	if c.DatabaseDSN != "" {
		db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			app.closeRedis()
			return nil, fmt.Errorf("db init error: %w", err)
		}
		app.repomanager = repomanager.NewPostgresRepositoryManager(db, sess)
	} else {
		logger.Warn(ctx, "no database DSN configured, users are kept in memory")
		app.repomanager = repomanager.NewMemoryRepositoryManager(sess)
	}

	if err := app.repomanager.RunMigrations(ctx); err != nil {
		app.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	ml, err := newMailer(c, logger)
	if err != nil {
		app.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	met := metrics.New(registry)

	app.accounts, err = services.NewAccountService(app.repomanager, ml, c, nil, met, logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("account service init error: %w", err)
	}

	app.server = web.NewServer(c.EndpointAddrHTTP, logger, app.accounts, met, c.SessionValidityDuration, c.BaseURL)
	return app, nil
}

func newMailer(c *config.Config, logger logging.Logger) (mailer.Mailer, error) {
	if c.SMTPAddr == "" {
		return mailer.NewLogMailer(logger), nil
	}
	m, err := mailer.NewSMTPMailer(c.SMTPAddr, c.SMTPUser, c.SMTPPassword, c.MailFrom)
	if err != nil {
		return nil, fmt.Errorf("mailer init error: %w", err)
	}
	return m, nil
}

// Accounts exposes the account service for command-line tools.
func (app *App) Accounts() *services.AccountService {
	return app.accounts
}

func (app *App) closeRedis() {
	if app.redis != nil {
		_ = app.redis.Close()
	}
}

// Close releases the database and Redis connections.
func (app *App) Close() {
	if app.repomanager != nil {
		if err := app.repomanager.Close(); err != nil {
			app.logger.Error(context.Background(), "db close error", "error", err)
		}
	}
	app.closeRedis()
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.Close()
	app.logger.Info(ctx, "App stopped")
}
