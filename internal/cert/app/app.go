package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cypheracademy/certvault/internal/cert/audit"
	"github.com/cypheracademy/certvault/internal/cert/cache"
	httpapi "github.com/cypheracademy/certvault/internal/cert/http"
	"github.com/cypheracademy/certvault/internal/cert/ledger"
	"github.com/cypheracademy/certvault/internal/cert/metrics"
	"github.com/cypheracademy/certvault/internal/cert/pinning"
	"github.com/cypheracademy/certvault/internal/cert/service"
	"github.com/cypheracademy/certvault/internal/cert/store"
	"github.com/cypheracademy/certvault/internal/cert/store/drivers/sqlite"
	"github.com/cypheracademy/certvault/pkg/httpx"
	"github.com/cypheracademy/certvault/pkg/jwtx"
	"github.com/cypheracademy/certvault/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application wires the certificate service together: SQLite store,
// Pinata pinning client, Ethereum ledger session, optional Redis, the
// business services, and the HTTP server.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db      store.Store
	ledger  *ledger.Session
	pinner  *pinning.Client
	cache   *cache.Client
	signer  *jwtx.EdDSASigner
	metrics *metrics.Metrics

	auditRecorder *audit.Recorder

	userService         *service.UserService
	tokenService        *service.TokenService
	issueService        *service.IssueService
	validationService   *service.ValidationService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "certvault",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initSigner(); err != nil {
		return nil, err
	}
	if err := app.initLedger(); err != nil {
		return nil, err
	}
	if err := app.initCache(); err != nil {
		return nil, err
	}

	app.pinner = pinning.NewClient(
		cfg.PinataAPIURL,
		cfg.PinataGatewayURL,
		cfg.PinataAPIKey,
		cfg.PinataSecretKey,
	)
	app.metrics = metrics.New()

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.auditRecorder.Start()
	app.housekeepingService.Start()

	app.logger.Info("certvault starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"signer_address", app.ledger.SignerAddress(),
		"contract", app.cfg.ContractAddress,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown stops the server and background workers, then closes the
// external connections.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down certvault...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	// Stop the recorder after everything that records, so in-flight
	// events still drain to the store.
	app.auditRecorder.Stop()

	app.ledger.Close()

	if app.cache != nil {
		if err := app.cache.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("certvault stopped")
	return nil
}

func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initSigner loads the token signing key, or generates an ephemeral
// one. Ephemeral keys invalidate all tokens on restart, which is fine
// for dev and wrong for prod.
func (app *Application) initSigner() error {
	if app.cfg.SigningKeyFile == "" {
		signer, err := jwtx.NewEphemeralSignerEdDSA()
		if err != nil {
			return fmt.Errorf("failed to generate signing key: %w", err)
		}
		app.signer = signer
		app.logger.Warn("using ephemeral signing key, tokens will not survive restarts")
		return nil
	}

	pemKey, err := os.ReadFile(app.cfg.SigningKeyFile)
	if err != nil {
		return fmt.Errorf("failed to read signing key: %w", err)
	}
	signer, err := jwtx.NewSignerEdDSA(pemKey)
	if err != nil {
		return fmt.Errorf("failed to parse signing key: %w", err)
	}
	app.signer = signer
	return nil
}

func (app *Application) initLedger() error {
	session, err := ledger.NewSession(ledger.Config{
		RPCURL:          app.cfg.EthRPCURL,
		ContractAddress: app.cfg.ContractAddress,
		PrivateKeyHex:   app.cfg.EthPrivateKey,
		MineTimeout:     app.cfg.MineTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize ledger session: %w", err)
	}
	app.ledger = session
	return nil
}

func (app *Application) initCache() error {
	client, err := cache.New(context.Background(), app.cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	app.cache = client

	if client == nil {
		app.logger.Info("redis not configured, logout and validation caching disabled")
	}
	return nil
}

func (app *Application) initServices() {
	app.auditRecorder = audit.NewRecorder(app.db.AuditEvents(), app.logger, 0)

	app.userService = &service.UserService{Store: app.db, Audit: app.auditRecorder}

	app.tokenService = &service.TokenService{
		Signer:    app.signer,
		Issuer:    app.cfg.Issuer,
		Audience:  app.cfg.Audience,
		AccessTTL: app.cfg.AccessTTL,
		Audit:     app.auditRecorder,
	}
	if app.cache != nil {
		app.tokenService.Denylist = cache.NewDenylist(app.cache)
	}

	app.issueService = &service.IssueService{
		Store:   app.db,
		Pinner:  app.pinner,
		Ledger:  app.ledger,
		Metrics: app.metrics,
		Audit:   app.auditRecorder,
	}

	app.validationService = &service.ValidationService{
		Store:   app.db,
		Ledger:  app.ledger,
		Metrics: app.metrics,
		Audit:   app.auditRecorder,
	}
	if app.cache != nil {
		app.validationService.Cache = cache.NewValidationCache(app.cache, app.cfg.ValidationCacheTTL)
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.auditRecorder,
		app.cfg.HousekeepingInterval,
		app.cfg.AuditRetention,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(slogx.HTTPMiddleware(app.logger))
	router.Users = app.userService
	router.Tokens = app.tokenService
	router.Issuance = app.issueService
	router.Validation = app.validationService
	router.Store = app.db
	router.Ledger = app.ledger
	router.Cache = app.cache
	router.Verifier = app.verifier()
	if app.cache != nil {
		router.Denylist = app.tokenService.Denylist
	}
	router.Version = BuildVersion
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

func (app *Application) verifier() jwtx.Verifier {
	return jwtx.NewVerifierEdDSA(app.signer.PublicKey(), app.cfg.Issuer, app.cfg.Audience)
}

var _ httpx.Denylist = (*cache.Denylist)(nil)
