package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront-service/internal/api"
	"github.com/fjod/go_cart/storefront-service/internal/checkout"
	"github.com/fjod/go_cart/storefront-service/internal/config"
	"github.com/fjod/go_cart/storefront-service/internal/events"
	h "github.com/fjod/go_cart/storefront-service/internal/http"
	"github.com/fjod/go_cart/storefront-service/internal/ledger"
	"github.com/fjod/go_cart/storefront-service/internal/logger"
	"github.com/fjod/go_cart/storefront-service/internal/payment"
	"github.com/fjod/go_cart/storefront-service/internal/session"
	"github.com/fjod/go_cart/storefront-service/internal/storefront"
	"github.com/fjod/go_cart/storefront-service/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger is not built yet
		panic(err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	tp, err := telemetry.Setup(context.Background(), cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal("failed to set up tracing", zap.Error(err))
	}

	client := api.NewClient(api.Options{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.RequestTimeout,
		Logger:  log.Named("api"),
	})

	// Sessions and the cart cache live in redis when it is configured
	var (
		store       checkout.Store
		memoryStore *session.MemoryStore
		cartCache   storefront.CartCache
		redisClient *redis.Client
	)
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.Fatal("failed to connect to redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		cancel()
		store = session.NewRedisStore(redisClient, cfg.SessionTTL)
		cartCache = storefront.NewRedisCache(redisClient)
		log.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		memoryStore = session.NewMemoryStore(cfg.SessionTTL)
		store = memoryStore
		log.Warn("REDIS_ADDR not set, sessions are kept in memory and the cart is not cached")
	}

	var repo ledger.Repository
	switch cfg.LedgerDriver {
	case config.LedgerPostgres:
		cred := &ledger.Credentials{
			Host:              cfg.Database.Host,
			Port:              cfg.Database.Port,
			User:              cfg.Database.User,
			Password:          cfg.Database.Password,
			DBName:            cfg.Database.Name,
			MigrationsDirPath: cfg.Database.MigrationsPath,
		}
		pg, err := ledger.NewPostgresRepository(cred, log.Named("ledger"))
		if err != nil {
			log.Fatal("failed to connect to ledger database", zap.Error(err))
		}
		if err := pg.RunMigrations(cred); err != nil {
			log.Fatal("failed to run ledger migrations", zap.Error(err))
		}
		repo = pg
	default:
		repo = ledger.NewMemoryRepository()
	}

	publisher := events.New(log.Named("events"), cfg.KafkaBrokers)

	catalog := storefront.NewCatalogService(client, log.Named("catalog"))
	cart := storefront.NewCartService(client, cartCache, log.Named("cart"))
	favorites := storefront.NewFavoritesService(client, log.Named("favorites"))
	orders := storefront.NewOrdersService(client)
	users := storefront.NewUserService(client)
	support := storefront.NewSupportService(client, log.Named("support"))

	submitter := checkout.NewSubmitter(checkout.SubmitterDeps{
		Orders:    client,
		Gateway:   payment.NewGateway(client, cfg.Currency, cfg.RequestTimeout),
		Profile:   client,
		Cart:      cart,
		Ledger:    repo,
		Publisher: publisher,
		Logger:    log.Named("submitter"),
	})
	reconciler := checkout.NewReconciler(catalog, cfg.HydrationRedirectDelay, log.Named("reconciler"))
	checkoutService := checkout.NewService(store, reconciler, submitter, client, log.Named("checkout"))

	router := h.NewRouter(h.Handlers{
		Checkout: h.NewCheckoutHandler(checkoutService, cart, cfg.RequestTimeout),
		Cart:     h.NewCartHandler(cart, favorites, cfg.RequestTimeout),
		Orders:   h.NewOrdersHandler(orders, cfg.RequestTimeout),
		Products: h.NewProductHandler(catalog, cfg.RequestTimeout),
		Auth:     h.NewAuthHandler(users, cfg.RequestTimeout),
		Support:  h.NewSupportHandler(support, cfg.RequestTimeout),
	}, log.Named("http"), cfg.RequestTimeout, cfg.JWTSecret)
	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET not set, shoppers are identified by token fingerprint")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("storefront service starting", zap.String("port", cfg.HTTPPort), zap.String("api", cfg.APIBaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	// address saves started by submissions outlive their requests
	submitter.Wait()

	if err := publisher.Close(); err != nil {
		log.Error("failed to close event publisher", zap.Error(err))
	}
	if err := repo.Close(); err != nil {
		log.Error("failed to close ledger", zap.Error(err))
	}
	if memoryStore != nil {
		memoryStore.Close()
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("failed to close redis client", zap.Error(err))
		}
	}
	if err := tp.Shutdown(ctx); err != nil {
		log.Error("failed to flush traces", zap.Error(err))
	}

	log.Info("server exited")
}
