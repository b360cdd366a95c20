// Package server wires configuration, storage, services and the HTTP and
// gRPC endpoints into a runnable application.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/hrscreen/internal/cryptox"
	"github.com/dmitrijs2005/hrscreen/internal/logging"
	"github.com/dmitrijs2005/hrscreen/internal/redisx"
	"github.com/dmitrijs2005/hrscreen/internal/server/auth"
	"github.com/dmitrijs2005/hrscreen/internal/server/config"
	"github.com/dmitrijs2005/hrscreen/internal/server/httpserver"
	"github.com/dmitrijs2005/hrscreen/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/hrscreen/internal/server/services"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/hrscreen/internal/server/grpc"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// openDB is a test seam for sql.Open.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	rdb       *redis.Client
	Auth      *services.AuthService
	Companies *services.CompanyService
}

// NewApp connects to PostgreSQL (and Redis when it is the token store),
// applies migrations and builds the services. Close releases the clients.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	if err := app.init(ctx); err != nil {
		return nil, errors.Join(err, app.Close())
	}

	return app, nil
}

func (app *App) init(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := app.db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("db ping error: %w", err)
	}

	var opts []repomanager.Option
	if app.config.TokenStore == config.TokenStoreRedis {
		rdb, err := redisx.NewClient(ctx, redisx.Options{
			Addr:     app.config.RedisAddr,
			Password: app.config.RedisPassword,
			DB:       app.config.RedisDB,
		})
		if err != nil {
			return err
		}
		app.rdb = rdb
		opts = append(opts, repomanager.WithRedisTokenStore(rdb))
	}

	rm := repomanager.NewPostgresRepositoryManager(opts...)
	if err := rm.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	codec := auth.NewTokenCodec(app.config.AccessSecret, app.config.RefreshSecret,
		app.config.AccessTokenValidity, app.config.RefreshTokenValidity)

	as, err := services.NewAuthService(app.db, rm, codec, cryptox.NewPasswordHasher(app.config.BcryptCost), app.logger)
	if err != nil {
		return fmt.Errorf("auth service init error: %w", err)
	}
	app.Auth = as
	app.Companies = services.NewCompanyService(app.db, rm, app.logger)

	app.logger.Info(ctx, "storage ready", "token_store", app.config.TokenStore)
	return nil
}

// Close releases the database and Redis clients.
func (app *App) Close() error {
	var errs []error
	if app.rdb != nil {
		errs = append(errs, app.rdb.Close())
	}
	if app.db != nil {
		errs = append(errs, app.db.Close())
	}
	return errors.Join(errs...)
}

// initSignalHandler cancels on SIGINT, SIGTERM or SIGQUIT. The watcher
// unregisters and exits when ctx ends; the returned channel closes then.
func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) <-chan struct{} {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		defer signal.Stop(sigs)
		select {
		case sig := <-sigs:
			app.logger.Info(ctx, "signal received", "signal", sig.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()

	return stopped
}

// Run serves HTTP and gRPC until ctx is cancelled, a termination signal
// arrives or either server fails. The first server error is returned.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	sigStopped := app.initSignalHandler(ctx, cancelFunc)

	servers := []interface {
		Run(ctx context.Context) error
	}{
		httpserver.NewHTTPServer(app.config.HTTPAddr, app.logger, app.Auth),
		gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.Auth),
	}

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)

	for _, s := range servers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Run(ctx); err != nil {
				app.logger.Error(ctx, "server error", "error", err)
				once.Do(func() { firstErr = err })
				cancelFunc()
			}
		}()
	}

	wg.Wait()
	cancelFunc()
	<-sigStopped

	app.logger.Info(context.Background(), "App stopped")
	return firstErr
}
