package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/aaravmahajanofficial/storefront/docs"
	"github.com/aaravmahajanofficial/storefront/internal/api/handlers"
	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/health"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/aaravmahajanofficial/storefront/internal/telemetry"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// @title			Storefront API
// @version		1.0
// @description	Cart, coupon and catalog endpoints of the storefront.
// @BasePath		/api/v1
func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	// Tracing setup
	shutdownTracer, err := telemetry.InitTracer(context.Background(), cfg.Otel)
	if err != nil {
		slog.Error("❌ Error initializing tracing", "error", err.Error())
		os.Exit(1)
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := shutdownTracer(ctx); err != nil {
			slog.Error("⚠️ Error flushing traces", slog.String("error", err.Error()))
		}
	}()

	// Catalog setup
	var productRepo repository.ProductRepository

	switch cfg.Catalog.Backend {
	case config.BackendPostgres:
		repos, err := repository.New(cfg)
		if err != nil {
			slog.Error("❌ Error accessing the database", "error", err.Error())
			os.Exit(1)
		}

		defer func() {
			if err := repos.Close(); err != nil {
				slog.Error("⚠️ Error closing database connection", slog.String("error", err.Error()))
			} else {
				slog.Info("✅ Database connection closed")
			}
		}()

		productRepo = repos.Product
	default:
		productRepo = repository.NewMemoryProductRepo(repository.DefaultProducts(), cfg.Catalog.Latency)
	}

	// Cart storage setup
	var store repository.KVStore

	switch cfg.Storage.Backend {
	case config.BackendRedis:
		client, err := repository.NewRedisClient(cfg)
		if err != nil {
			slog.Error("❌ Error accessing the redis instance", "error", err.Error())
			os.Exit(1)
		}

		defer func() {
			if err := client.Close(); err != nil {
				slog.Error("⚠️ Error closing redis connection", slog.String("error", err.Error()))
			}
		}()

		store = repository.NewRedisKVStore(client, cfg.Storage.Timeout)
	default:
		store = repository.NewMemoryKVStore()
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStartup()

	couponService := service.NewCouponService(service.DefaultCoupons())
	cartService := service.NewCartService(startupCtx, couponService, store,
		service.WithLogger(logger.With(slog.String("component", "cart"))),
		service.WithStorageKeys(service.StorageKeys{Cart: cfg.Storage.CartKey, Coupon: cfg.Storage.CouponKey}),
	)
	checkoutService := service.NewCheckoutService(cartService, couponService)
	productService := service.NewProductService(productRepo)

	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(cartService, checkoutService, productService)

	healthHandler, err := health.NewHealthHandler(cfg)
	if err != nil {
		slog.Error("❌ Error creating the health handler", "error", err.Error())
		os.Exit(1)
	}

	slog.Info("storage initialized",
		slog.String("env", cfg.Env),
		slog.String("version", health.Version),
		slog.String("storage", cfg.Storage.Backend),
		slog.String("catalog", cfg.Catalog.Backend),
		slog.Int("restoredItems", cartService.ItemCount()),
	)

	// Setup router, metrics wrap each route so path values are available for labels
	routerMux := http.NewServeMux()
	route := func(pattern string, h http.HandlerFunc) {
		routerMux.Handle(pattern, otelhttp.WithRouteTag(pattern, metrics.Middleware(h)))
	}

	route("GET /api/v1/products", productHandler.ListProducts())
	route("GET /api/v1/products/{id}", productHandler.GetProduct())
	route("GET /api/v1/cart", cartHandler.GetCart())
	route("DELETE /api/v1/cart", cartHandler.ClearCart())
	route("POST /api/v1/cart/items", cartHandler.AddItem())
	route("PUT /api/v1/cart/items/{id}", cartHandler.UpdateQuantity())
	route("DELETE /api/v1/cart/items/{id}", cartHandler.RemoveItem())
	route("POST /api/v1/cart/coupon", cartHandler.ApplyCoupon())
	route("DELETE /api/v1/cart/coupon", cartHandler.RemoveCoupon())
	routerMux.Handle("GET /metrics", metrics.Handler())
	routerMux.Handle("GET /health", healthHandler.Handler())
	routerMux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// Middleware chaining
	var handler http.Handler = routerMux
	handler = middleware.Logging(handler)
	handler = otelhttp.NewHandler(handler, "storefront")

	// Setup http server
	server := http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {

		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("❌ Failed to start server", slog.Any("error", err.Error()))
		}
	}()

	<-done

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

}
