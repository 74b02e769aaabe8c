package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/arkan-dev/backend-pos/internal/auth"
	"github.com/arkan-dev/backend-pos/internal/common"
	"github.com/arkan-dev/backend-pos/internal/config"
	"github.com/arkan-dev/backend-pos/internal/customer"
	"github.com/arkan-dev/backend-pos/internal/employee"
	"github.com/arkan-dev/backend-pos/internal/health"
	"github.com/arkan-dev/backend-pos/internal/inventory"
	"github.com/arkan-dev/backend-pos/internal/invoice"
	"github.com/arkan-dev/backend-pos/internal/obs"
	"github.com/arkan-dev/backend-pos/internal/order"
	"github.com/arkan-dev/backend-pos/internal/ratelimit"
	"github.com/arkan-dev/backend-pos/internal/referral"
	"github.com/arkan-dev/backend-pos/internal/shop"
	"github.com/arkan-dev/backend-pos/internal/tenant"
	"github.com/arkan-dev/backend-pos/internal/wholesale"
)

func main() {
	cfg := config.MustLoad()

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "pos")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", true)
	if tracingEnabled {
		sampling := envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0)
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "pos-api",
			Endpoint:      envOrDefault("OBS_OTLP_ENDPOINT", ""),
			Exporter:      envOrDefault("OBS_TRACING_EXPORTER", "otlp"),
			SamplingRatio: sampling,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	if err := runMigrations(cfg); err != nil {
		logger.Fatal().Err(err).Msg("run migrations")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "pos-api"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if metricsEnabled {
		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	redisConn, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis uri for task queue")
	}
	taskClient := asynq.NewClient(redisConn)
	defer func() {
		if err := taskClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close task client")
		}
	}()

	verifier := auth.Verifier{
		Secret:    []byte(cfg.JWTSecret),
		Issuer:    cfg.JWTIssuer,
		Audience:  cfg.JWTAudience,
		ClockSkew: cfg.TokenClockSkew,
	}
	authMiddleware := auth.Middleware{Verifier: verifier}

	shopSvc := shop.NewService(pool)
	shopHandler := &shop.Handler{Svc: shopSvc}
	resolver := tenant.NewResolver(cfg.ShopHeader, shopSvc)

	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}

	inventorySvc := &inventory.Service{
		Pool:             pool,
		Cache:            inventory.NewCache(redisClient, cfg.InventoryCacheTTL),
		DefaultThreshold: cfg.LowStockThreshold,
	}
	inventoryHandler := &inventory.Handler{Svc: inventorySvc}

	orderSvc := &order.Service{Pool: pool, Tasks: taskClient, Log: logger}
	orderHandler := &order.Handler{Svc: orderSvc}

	invoiceSvc := &invoice.Service{Pool: pool}
	invoiceHandler := &invoice.Handler{Svc: invoiceSvc, Checker: shopSvc}

	customerSvc := &customer.Service{Pool: pool, Tasks: taskClient, Log: logger}
	customerHandler := &customer.Handler{Svc: customerSvc}

	employeeSvc := &employee.Service{Pool: pool}
	employeeHandler := &employee.Handler{Svc: employeeSvc}

	referralSvc := &referral.Service{Pool: pool}
	referralHandler := &referral.Handler{Svc: referralSvc}

	wholesaleSvc := &wholesale.Service{Pool: pool, Redis: redisClient, TTL: cfg.WholesaleCacheTTL}
	wholesaleHandler := &wholesale.Handler{Svc: wholesaleSvc}

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse rate limit")
	}
	limiterStore, err := sredis.NewStoreWithOptions(redisClient, limiter.StoreOptions{Prefix: "ratelimit"})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise rate limit store")
	}
	rl := ratelimit.Handler{
		Limiter: limiter.New(limiterStore, rate),
		OnError: func(err error) {
			logger.Error().Err(err).Msg("rate limit store")
		},
	}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		buckets := obs.ParseBucketsCSV(envOrDefault("OBS_METRICS_BUCKETS_MS", ""))
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, buckets, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", cfg.ShopHeader},
		ExposedHeaders:   []string{"Link", "X-Total-Count", "X-Render-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(rl.Middleware)

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	healthHandler := health.Handler{
		Checker:      readinessChecker{db: pool, redis: redisClient},
		DBTimeout:    envDurationMillis("HEALTH_READY_DB_TIMEOUT_MS", 500),
		RedisTimeout: envDurationMillis("HEALTH_READY_REDIS_TIMEOUT_MS", 300),
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Get("/wholesale/products", wholesaleHandler.List)

		v.Group(func(authed chi.Router) {
			authed.Use(authMiddleware.RequireAuth)

			authed.Route("/shops", func(s chi.Router) {
				s.Post("/", shopHandler.Create)
				s.Get("/", shopHandler.List)
				s.Route("/{shopID}", func(child chi.Router) {
					child.Get("/", shopHandler.Get)
					child.Patch("/", shopHandler.Update)
					child.Post("/onboarding", shopHandler.Onboard)
				})
			})

			authed.Get("/invoice/retrieve/{shopID}/{transactionID}/", invoiceHandler.Retrieve)
			authed.Get("/invoice/print/{shopID}/{transactionID}/", invoiceHandler.Print)

			authed.Group(func(scoped chi.Router) {
				scoped.Use(resolver.RequireShop)

				scoped.With(idem.Middleware).Post("/order/create/", orderHandler.Create)
				scoped.Get("/orders", orderHandler.List)
				scoped.Get("/orders/{transactionID}", orderHandler.Get)

				scoped.Route("/products", func(p chi.Router) {
					p.Post("/", inventoryHandler.Create)
					p.Get("/", inventoryHandler.List)
					p.Get("/low-stock", inventoryHandler.LowStock)
					p.Route("/{productID}", func(child chi.Router) {
						child.Get("/", inventoryHandler.Get)
						child.Patch("/", inventoryHandler.Update)
						child.Delete("/", inventoryHandler.Delete)
					})
				})

				scoped.Route("/customers", func(c chi.Router) {
					c.Post("/", customerHandler.Create)
					c.Get("/", customerHandler.List)
					c.Route("/{phone}", func(child chi.Router) {
						child.Get("/", customerHandler.Get)
						child.Patch("/", customerHandler.Update)
						child.Get("/dues", customerHandler.Dues)
						child.Post("/dues/collect", customerHandler.Collect)
						child.Post("/dues/remind", customerHandler.Remind)
					})
				})

				scoped.Route("/employees", func(e chi.Router) {
					e.Post("/", employeeHandler.Create)
					e.Get("/", employeeHandler.List)
					e.Route("/{employeeID}", func(child chi.Router) {
						child.Get("/", employeeHandler.Get)
						child.Patch("/", employeeHandler.Update)
						child.Post("/check-in", employeeHandler.CheckIn)
						child.Post("/check-out", employeeHandler.CheckOut)
						child.Get("/attendance", employeeHandler.Attendance)
					})
				})

				scoped.Route("/referrals", func(ref chi.Router) {
					ref.Post("/", referralHandler.Create)
					ref.Get("/", referralHandler.List)
				})
			})
		})
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	logger.Info().Str("addr", srv.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
}

// runMigrations applies pending SQL migrations before the pool opens. The
// pgx5 migrate driver wants its own URL scheme.
func runMigrations(cfg *config.Config) error {
	dbURL := cfg.DatabaseURL
	if strings.HasPrefix(dbURL, "postgres://") {
		dbURL = "pgx5://" + strings.TrimPrefix(dbURL, "postgres://")
	}
	m, err := migrate.New("file://"+cfg.MigrationsPath, dbURL)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

type readinessChecker struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func (c readinessChecker) PingDB(ctx context.Context, timeout time.Duration) error {
	if c.db == nil {
		return errors.New("db not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.db.Ping(ctx)
}

func (c readinessChecker) PingRedis(ctx context.Context, timeout time.Duration) error {
	if c.redis == nil {
		return errors.New("redis not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.redis.Ping(ctx).Err()
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationMillis(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Millisecond
}
