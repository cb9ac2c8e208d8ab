// Package server initializes and runs the signin application: storage,
// migrations, services and the HTTP and gRPC front ends.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/signin/internal/logging"
	"github.com/dmitrijs2005/signin/internal/server/admin"
	"github.com/dmitrijs2005/signin/internal/server/config"
	"github.com/dmitrijs2005/signin/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/signin/internal/server/services"
	"github.com/dmitrijs2005/signin/internal/server/web"
	"github.com/dmitrijs2005/signin/internal/telemetry"

	gs "github.com/dmitrijs2005/signin/internal/server/grpc"
)

const serviceName = "signin"

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	accounts *services.AccountManager
	sessions *services.SessionService
	console  *admin.AccountAdmin
}

// NewApp opens the database, applies migrations and builds the services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	am := services.NewAccountManager(db, rm, logger)
	ss := services.NewSessionService(db, rm, c, logger)

	var exporter admin.Exporter
	if c.S3Bucket != "" {
		exporter = services.NewExportService(am, c, logger)
	}

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		accounts: am,
		sessions: ss,
		console:  admin.NewAccountAdmin(am, exporter, logger),
	}, nil
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

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.console, app.sessions)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := web.NewServer(app.config.EndpointAddrHTTP, app.logger, web.Deps{
		Accounts: app.accounts,
		Sessions: app.sessions,
		Console:  app.console,
		DB:       app.db,
	})
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves HTTP and gRPC until a signal arrives or either server fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	shutdown, err := telemetry.Setup(ctx, serviceName, app.config.OTLPEndpoint)
	if err != nil {
		app.logger.Warn(ctx, "tracing disabled", "error", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			app.logger.Error(ctx, "tracing shutdown", "error", err)
		}
	}()

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close", "error", err)
	}
	app.logger.Info(ctx, "Stopped")
}
