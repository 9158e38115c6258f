package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis_rate/v10"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/sbilibin2017/gw-newsletter/internal/db"
	"github.com/sbilibin2017/gw-newsletter/internal/email"
	"github.com/sbilibin2017/gw-newsletter/internal/flash"
	"github.com/sbilibin2017/gw-newsletter/internal/handlers"
	"github.com/sbilibin2017/gw-newsletter/internal/jwt"
	"github.com/sbilibin2017/gw-newsletter/internal/logger"
	"github.com/sbilibin2017/gw-newsletter/internal/metrics"
	"github.com/sbilibin2017/gw-newsletter/internal/middlewares"
	"github.com/sbilibin2017/gw-newsletter/internal/password"
	"github.com/sbilibin2017/gw-newsletter/internal/repositories"
	"github.com/sbilibin2017/gw-newsletter/internal/services"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// appConfig holds everything read from the environment.
type appConfig struct {
	AppHost    string
	AppPort    string
	BaseURL    string
	LogLevel   string
	HMACSecret string

	PGHost         string
	PGPort         int
	PGUser         string
	PGPassword     string
	PGDB           string
	PGMaxOpenConns int
	PGMaxIdleConns int

	RedisHost         string
	RedisPort         int
	RedisDB           int
	RedisPassword     string
	RedisPoolSize     int
	RedisMinIdleConns int

	SessionTTL time.Duration
	JWTSecret  string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPTimeout  time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	Argon2Memory      uint32
	Argon2Iterations  uint32
	Argon2Parallelism uint8
	HashWorkers       int

	IdempotencyWaitTimeout time.Duration

	LoginRatePerMinute int
	LoginRateBurst     int

	AdminUsername string
	AdminPassword string
}

// @title gw-newsletter API
// @version 1.0.0
// @description Newsletter delivery service with idempotent publishing
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name session
func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Version: %s, Commit: %s, Build: %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns the
// application, database, Redis, SMTP, Kafka, hashing and session settings.
func parseConfig(path string) (cfg appConfig, err error) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}
	getInt := func(key, defaultValue string) int {
		if err != nil {
			return 0
		}
		var v int
		v, err = strconv.Atoi(getEnv(key, defaultValue))
		if err != nil {
			err = fmt.Errorf("%s: %w", key, err)
		}
		return v
	}

	// Application config
	cfg.AppHost = getEnv("APP_HOST", "localhost")
	cfg.AppPort = getEnv("APP_PORT", "8080")
	cfg.BaseURL = getEnv("APP_BASE_URL", "http://"+cfg.AppHost+":"+cfg.AppPort)
	cfg.LogLevel = getEnv("APP_LOG_LEVEL", "info")
	cfg.HMACSecret = getEnv("APP_HMAC_SECRET", "my_super_secret_hmac_key")

	// PostgreSQL config
	cfg.PGHost = getEnv("POSTGRES_HOST", "localhost")
	cfg.PGUser = getEnv("POSTGRES_USER", "user")
	cfg.PGPassword = getEnv("POSTGRES_PASSWORD", "password")
	cfg.PGDB = getEnv("POSTGRES_DB", "database")
	cfg.PGPort = getInt("POSTGRES_PORT", "5432")
	cfg.PGMaxOpenConns = getInt("POSTGRES_MAX_OPEN_CONNS", "16")
	cfg.PGMaxIdleConns = getInt("POSTGRES_MAX_IDLE_CONNS", "8")

	// Redis config
	cfg.RedisHost = getEnv("REDIS_HOST", "localhost")
	cfg.RedisPort = getInt("REDIS_PORT", "6379")
	cfg.RedisDB = getInt("REDIS_DB", "0")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.RedisPoolSize = getInt("REDIS_POOL_SIZE", "10")
	cfg.RedisMinIdleConns = getInt("REDIS_MIN_IDLE_CONNS", "2")

	// Session config
	cfg.SessionTTL = time.Duration(getInt("SESSION_TTL_SECOND", "3600")) * time.Second
	cfg.JWTSecret = getEnv("JWT_SECRET_KEY", "my_super_secret_key")

	// SMTP config
	cfg.SMTPHost = getEnv("SMTP_HOST", "localhost")
	cfg.SMTPPort = getInt("SMTP_PORT", "1025")
	cfg.SMTPUsername = getEnv("SMTP_USERNAME", "")
	cfg.SMTPPassword = getEnv("SMTP_PASSWORD", "")
	cfg.SMTPFrom = getEnv("SMTP_FROM", "newsletter@localhost")
	cfg.SMTPTimeout = time.Duration(getInt("SMTP_TIMEOUT_SECOND", "10")) * time.Second

	// Kafka config
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", "newsletter-issues")

	// Password hashing config
	defaults := password.DefaultParams()
	cfg.Argon2Memory = uint32(getInt("ARGON2_MEMORY_KIB", strconv.Itoa(int(defaults.Memory))))
	cfg.Argon2Iterations = uint32(getInt("ARGON2_ITERATIONS", strconv.Itoa(int(defaults.Iterations))))
	cfg.Argon2Parallelism = uint8(getInt("ARGON2_PARALLELISM", strconv.Itoa(int(defaults.Parallelism))))
	cfg.HashWorkers = getInt("HASH_WORKERS", "0")

	// Idempotency config
	cfg.IdempotencyWaitTimeout = time.Duration(getInt("IDEMPOTENCY_WAIT_TIMEOUT_SECOND", "10")) * time.Second

	// Login rate limit
	cfg.LoginRatePerMinute = getInt("LOGIN_RATE_PER_MINUTE", "10")
	cfg.LoginRateBurst = getInt("LOGIN_RATE_BURST", "5")

	// Bootstrap admin
	cfg.AdminUsername = getEnv("ADMIN_USERNAME", "")
	cfg.AdminPassword = getEnv("ADMIN_PASSWORD", "")

	return cfg, err
}

// postgresDSN builds the connection string for cfg.
func (cfg appConfig) postgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.PGUser, cfg.PGPassword, cfg.PGHost, cfg.PGPort, cfg.PGDB)
}

// hashParams returns the argon2id parameters for cfg.
func (cfg appConfig) hashParams() password.Params {
	p := password.DefaultParams()
	p.Memory = cfg.Argon2Memory
	p.Iterations = cfg.Argon2Iterations
	p.Parallelism = cfg.Argon2Parallelism
	return p
}

// appRoutes are the handlers and middlewares mounted by newRouter.
type appRoutes struct {
	health         http.HandlerFunc
	loginPage      http.HandlerFunc
	login          http.HandlerFunc
	logout         http.HandlerFunc
	dashboard      http.HandlerFunc
	changePassword http.HandlerFunc
	newsletterForm http.HandlerFunc
	publish        http.HandlerFunc
	subscribe      http.HandlerFunc
	confirm        http.HandlerFunc

	session    func(http.Handler) http.Handler
	tx         func(http.Handler) http.Handler
	loginLimit func(http.Handler) http.Handler

	swaggerURL string
}

// newRouter mounts the public, subscription and admin routes.
func newRouter(routes appRoutes) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.MetricsMiddleware)
	r.Use(middlewares.LoggingMiddleware(logger.Log))

	// Public routes
	r.Get("/health_check", routes.health)
	r.Get(handlers.LoginPath, routes.loginPage)
	r.With(routes.loginLimit).Post(handlers.LoginPath, routes.login)

	// Subscription routes run inside one transaction per request
	r.Group(func(r chi.Router) {
		r.Use(routes.tx)
		r.Post("/subscriptions", routes.subscribe)
		r.Get("/subscriptions/confirm", routes.confirm)
	})

	// Protected routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(routes.session)
		r.Get("/dashboard", routes.dashboard)
		r.Post("/password", routes.changePassword)
		r.Get("/newsletters", routes.newsletterForm)
		r.Post("/newsletters", routes.publish)
		r.Post("/logout", routes.logout)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(routes.swaggerURL)))

	return r
}

// seedAdmin creates the bootstrap admin account unless it already exists.
func seedAdmin(ctx context.Context,
	reader *repositories.UserReadRepository,
	writer *repositories.UserWriteRepository,
	hasher *password.Worker,
	username, pw string,
) error {
	if username == "" || pw == "" {
		return nil
	}

	existing, err := reader.GetCredentials(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hash, err := hasher.Hash(ctx, []byte(pw))
	if err != nil {
		return err
	}
	if err := writer.Save(ctx, uuid.New(), username, hash); err != nil {
		return err
	}

	logger.Log.Infow("admin user created", "username", username)
	return nil
}

// run initializes the logger, database, Redis, SMTP and Kafka clients and
// the HTTP server. It sets up routes, applies middleware, and handles
// graceful shutdown.
func run(ctx context.Context, cfg appConfig) error {
	// Initialize logger
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	log := logger.Log
	log.Infof("Logger initialized with level %s", cfg.LogLevel)

	// Connect to PostgreSQL and migrate the schema
	log.Infof("Connecting to PostgreSQL at %s:%d/%s", cfg.PGHost, cfg.PGPort, cfg.PGDB)
	conn, err := db.Connect(ctx, cfg.postgresDSN(), cfg.PGMaxOpenConns, cfg.PGMaxIdleConns)
	if err != nil {
		return fmt.Errorf("PostgreSQL connection error: %w", err)
	}
	defer conn.Close()

	if err := db.RunMigrations(conn, "up"); err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}
	metrics.StartDBStatsCollector(conn, 15*time.Second)

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     cfg.RedisPoolSize,
		MinIdleConns: cfg.RedisMinIdleConns,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis connection error: %w", err)
	}
	defer rdb.Close()

	// Kafka writer for issue events, optional
	var kafkaWriter services.KafkaWriter
	if len(cfg.KafkaBrokers) > 0 {
		w := &kafka.Writer{
			Addr:                   kafka.TCP(cfg.KafkaBrokers...),
			Topic:                  cfg.KafkaTopic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		}
		defer w.Close()
		kafkaWriter = w
		log.Infof("Publishing issue events to Kafka topic %s", cfg.KafkaTopic)
	}

	// Password hashing
	hasher, err := password.NewHasher(cfg.hashParams())
	if err != nil {
		return fmt.Errorf("invalid hash parameters: %w", err)
	}
	hashWorker := password.NewWorker(hasher, cfg.HashWorkers)

	// Initialize JWT service and flash signer
	jwt := jwt.New(cfg.JWTSecret, cfg.SessionTTL)
	signer := flash.NewSigner(cfg.HMACSecret)

	// Initialize repositories
	userReadRepo := repositories.NewUserReadRepository(conn)
	userWriteRepo := repositories.NewUserWriteRepository(conn)
	sessionRepo := repositories.NewSessionRepository(rdb, cfg.SessionTTL)
	idempotencyRepo := repositories.NewIdempotencyRepository(conn)
	subscriberWriteRepo := repositories.NewSubscriberWriteRepository(conn)
	subscriberReadRepo := repositories.NewSubscriberReadRepository(conn)
	issueRepo := repositories.NewNewsletterIssueRepository(conn)

	if err := seedAdmin(ctx, userReadRepo, userWriteRepo, hashWorker, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	// Initialize services
	mailer := email.NewSMTPClient(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom,
		email.WithTimeout(cfg.SMTPTimeout))
	sessionService := services.NewSessionService(sessionRepo, jwt)
	authService := services.NewAuthService(userReadRepo, userWriteRepo, hashWorker, sessionService)
	idempotencyService := services.NewIdempotencyService(conn, idempotencyRepo,
		services.WithWaitTimeout(cfg.IdempotencyWaitTimeout))
	newsletterService := services.NewNewsletterService(idempotencyService, subscriberReadRepo, issueRepo, mailer, kafkaWriter)
	subscriptionService := services.NewSubscriptionService(subscriberWriteRepo, subscriberReadRepo, mailer, cfg.BaseURL)

	// Setup router
	router := newRouter(appRoutes{
		health:         handlers.NewHealthCheckHandler(),
		loginPage:      handlers.NewLoginPageHandler(signer),
		login:          handlers.NewLoginHandler(authService, jwt, signer),
		logout:         handlers.NewLogoutHandler(jwt, sessionService, jwt),
		dashboard:      handlers.NewDashboardHandler(authService),
		changePassword: handlers.NewChangePasswordHandler(authService),
		newsletterForm: handlers.NewNewsletterFormHandler(),
		publish:        handlers.NewPublishNewsletterHandler(newsletterService),
		subscribe:      handlers.NewSubscribeHandler(subscriptionService),
		confirm:        handlers.NewConfirmSubscriptionHandler(subscriptionService),
		session:        middlewares.SessionMiddleware(jwt, sessionService),
		tx:             middlewares.TxMiddleware(conn),
		loginLimit: middlewares.RateLimitMiddleware(redis_rate.NewLimiter(rdb),
			middlewares.LoginRateLimit(cfg.LoginRatePerMinute, cfg.LoginRateBurst), "login"),
		swaggerURL: fmt.Sprintf("http://%s:%s/swagger/doc.json", cfg.AppHost, cfg.AppPort),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		log.Infof("HTTP server listening on %s:%s", cfg.AppHost, cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("HTTP server shutdown error", "error", err)
	}

	log.Info("HTTP server stopped gracefully")
	return nil
}
