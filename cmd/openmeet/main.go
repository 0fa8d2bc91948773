package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/openmeet/openmeet/internal/calendar"
	"github.com/openmeet/openmeet/internal/handlers"
	"github.com/openmeet/openmeet/internal/outbox"
	"github.com/openmeet/openmeet/internal/storage"
	"github.com/openmeet/openmeet/libs/config"
	"github.com/openmeet/openmeet/libs/db"
	"github.com/openmeet/openmeet/libs/httpx"
	"github.com/openmeet/openmeet/libs/kafkax"
	otelx "github.com/openmeet/openmeet/libs/otel"
	"github.com/openmeet/openmeet/libs/runtime"

	"github.com/redis/go-redis/v9"
)

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func main() {
	service := config.String("SERVICE_NAME", "openmeet")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, logger, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	tokenSecret, err := config.RequiredString("TOKEN_SECRET")
	if err != nil {
		panic(err)
	}

	hosts := storage.NewHostRepository(pool)
	eventTypes := storage.NewEventTypeRepository(pool)
	bookings := storage.NewBookingRepository(pool)
	refreshTokens := storage.NewRefreshRepository(pool)
	outboxRepo := outbox.NewRepository(pool)

	brokers := config.String("KAFKA_BROKERS", "")
	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   brokers,
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	var busy calendar.BusyProvider = calendar.None{}
	googleClientID := config.String("GOOGLE_CLIENT_ID", "")
	if googleClientID != "" {
		busy = calendar.NewGoogle(calendar.GoogleConfig{
			ClientID:     googleClientID,
			ClientSecret: config.String("GOOGLE_CLIENT_SECRET", ""),
		}, hosts, logger)
	} else {
		logger.Warn("google calendar disabled (no client id configured)")
	}

	// Public booking endpoints share one rate-limit budget across
	// instances when Redis is configured.
	var limiter httpx.Limiter
	var redisClient *redis.Client
	if redisAddr := config.String("REDIS_ADDR", ""); redisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: redisAddr})
		limiter = httpx.NewRedisRateLimiter(redisClient, logger, service+":rl",
			int64(config.Int("RATE_LIMIT_PER_SECOND", 20)), time.Second)
		defer redisClient.Close()
	} else {
		limiter = httpx.NewRateLimiter(config.Int("RATE_LIMIT_PER_SECOND", 20), time.Second)
	}

	authHandler := handlers.NewAuthHandler(hosts, refreshTokens, logger, []byte(tokenSecret),
		config.Duration("ACCESS_TOKEN_TTL", 15*time.Minute),
		config.Duration("REFRESH_TOKEN_TTL", 7*24*time.Hour))
	meHandler := handlers.NewMeHandler(hosts, eventTypes, logger)
	publicHandler := handlers.NewPublicHandler(hosts, eventTypes, bookings, outboxRepo, busy, logger)
	hostBookings := handlers.NewHostBookingsHandler(hosts, bookings, outboxRepo, busy, logger)

	checks := []runtime.ReadyCheck{pool.ReadyCheck()}
	if redisClient != nil {
		client := redisClient
		checks = append(checks, runtime.ReadyCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return client.Ping(ctx).Err() },
		})
	}
	if brokers != "" {
		checks = append(checks, kafkax.ReadyCheck(brokers))
	}
	mux := runtime.NewBaseMux(checks...)

	requireHost := handlers.RequireHost([]byte(tokenSecret))
	rateLimited := httpx.WithRateLimit(limiter)

	mux.HandleFunc("POST /api/v1/auth/sessions", authHandler.Sessions)
	mux.HandleFunc("POST /api/v1/auth/refresh", authHandler.Refresh)
	mux.HandleFunc("POST /api/v1/auth/logout", authHandler.Logout)
	mux.Handle("/api/v1/me", requireHost(meHandler))
	mux.Handle("GET /api/v1/bookings", requireHost(http.HandlerFunc(hostBookings.List)))
	mux.Handle("POST /api/v1/bookings/cancel", requireHost(http.HandlerFunc(hostBookings.Cancel)))
	mux.Handle("GET /api/v1/hosts/{slug}", rateLimited(http.HandlerFunc(publicHandler.GetHost)))
	mux.Handle("GET /api/v1/hosts/{slug}/event-types/{eventType}/availability",
		rateLimited(http.HandlerFunc(publicHandler.Availability)))
	mux.Handle("POST /api/v1/hosts/{slug}/event-types/{eventType}/bookings",
		rateLimited(http.HandlerFunc(publicHandler.CreateBooking)))

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID(),
		httpx.WithAccessLog(logger),
		httpx.WithCORS(splitOrigins(config.String("CORS_ORIGINS", ""))),
		httpx.WithBodyLimit(1<<20),
		httpx.WithTimeout(config.Duration("REQUEST_TIMEOUT", 30*time.Second)),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, service)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
