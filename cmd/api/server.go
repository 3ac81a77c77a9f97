package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/georgemunganga/medibridge/internal/config"
	"github.com/georgemunganga/medibridge/internal/kvstore"
	"github.com/georgemunganga/medibridge/internal/logger"
	"github.com/georgemunganga/medibridge/internal/mailer"
	"github.com/georgemunganga/medibridge/internal/modules/auth"
	"github.com/georgemunganga/medibridge/internal/modules/cart"
	"github.com/georgemunganga/medibridge/internal/modules/catalog"
	"github.com/georgemunganga/medibridge/internal/modules/chat"
	"github.com/georgemunganga/medibridge/internal/modules/inventory"
	"github.com/georgemunganga/medibridge/internal/modules/user"
)

// backends are the storage and upstream collaborators of the router.
type backends struct {
	store     kvstore.Store
	users     user.Repository
	completer chat.Completer
	closers   []func() error
}

func (b *backends) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i]())
	}
	return errors.Join(errs...)
}

func openBackends(ctx context.Context, cfg config.Config, log *zap.Logger) (*backends, error) {
	b := &backends{}

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		if db, err = kvstore.OpenPostgres(ctx, cfg.DatabaseURL); err != nil {
			return nil, err
		}
		b.closers = append(b.closers, db.Close)
		if err := kvstore.Migrate(db); err != nil {
			b.Close()
			return nil, err
		}
		b.users = user.NewPostgresRepository(db)
	} else {
		log.Warn("DATABASE_URL not set, accounts are kept in memory")
		b.users = user.NewMemoryRepository()
	}

	switch cfg.StoreBackend {
	case config.BackendRedis:
		client, err := kvstore.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.store = kvstore.NewRedis(client, "medibridge:")
		b.closers = append(b.closers, b.store.Close)
	case config.BackendPostgres:
		b.store = kvstore.NewPostgres(db)
	default:
		b.store = kvstore.NewMemory()
	}
	log.Info("storage ready", zap.String("backend", cfg.StoreBackend))

	b.completer = chat.NewOpenAICompleter(chat.OpenAIConfig{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
		Timeout: cfg.ChatTimeout,
	}, log)
	if cfg.OpenAIAPIKey == "" {
		log.Warn("OPENAI_API_KEY not set, unmatched chat questions get the fallback apology")
	}
	return b, nil
}

// newRouter wires every module onto one chi router.
func newRouter(cfg config.Config, log *zap.Logger, b *backends, now func() time.Time) (http.Handler, inventory.Service, error) {
	knowledge, err := chat.DefaultKnowledge()
	if err != nil {
		return nil, nil, err
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logger.RequestLogger(log))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// ── Identity ────────────────────────────────────────────
	userService := user.NewService(b.users)
	user.NewHandler(userService).RegisterRoutes(router)

	authService := auth.NewService(b.users, cfg.JWTSecret, cfg.TokenDuration)
	auth.NewHandler(authService).RegisterRoutes(router)

	// ── Inventory & Catalog ─────────────────────────────────
	inventoryService := inventory.NewService(inventory.NewKVRepository(b.store), log,
		inventory.WithClock(now),
		inventory.WithExpiryWarning(cfg.ExpiryWarningDays))
	inventory.NewHandler(inventoryService, auth.Middleware(authService)).RegisterRoutes(router)

	catalog.NewHandler(catalog.NewService(inventoryService, now)).RegisterRoutes(router)

	// ── Cart ────────────────────────────────────────────────
	cartService := cart.NewService(cart.NewKVRepository(b.store), inventoryService, log, cart.WithClock(now))
	cart.NewHandler(cartService).RegisterRoutes(router)

	// ── Chat ────────────────────────────────────────────────
	relay := chat.NewRelay(knowledge, b.completer, log)
	chat.NewHandler(relay).RegisterRoutes(router)
	chat.NewSocketHandler(relay, log).RegisterRoutes(router)

	return otelhttp.NewHandler(router, "medibridge-api"), inventoryService, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.IsDevelopment())
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.Close()

	handler, inventoryService, err := newRouter(cfg, log, b, time.Now)
	if err != nil {
		return err
	}

	var notifier inventory.Notifier
	if cfg.SMTPHost != "" {
		smtpNotifier, err := mailer.NewSMTPNotifier(mailer.Config{
			Host:        cfg.SMTPHost,
			Port:        cfg.SMTPPort,
			Username:    cfg.SMTPUsername,
			Password:    cfg.SMTPPassword,
			SenderName:  cfg.SMTPSenderName,
			SenderEmail: cfg.SMTPSenderEmail,
		}, b.users)
		if err != nil {
			return err
		}
		notifier = smtpNotifier
	}
	go inventory.NewSweeper(inventoryService, notifier, log.Named("expiry"), cfg.ExpiryCheckPeriod).Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("MediBridge API server starting", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	db, err := kvstore.OpenPostgres(cmd.Context(), cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := kvstore.Migrate(db); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
	return nil
}
