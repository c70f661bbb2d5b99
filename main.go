package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stripe/stripe-go/v76"

	"rekindleAPI/handlers"
	"rekindleAPI/internal/scheduler"
	"rekindleAPI/middleware"
	"rekindleAPI/services"

	_ "net/http/pprof"
)

var (
	dbPool            *pgxpool.Pool
	catalogService    *services.CatalogService
	profileService    *services.ProfileService
	healthService     *services.HealthService
	badgeService      *services.BadgeService
	programService    *services.ProgramService
	provisionService  *services.ProvisionService
	assignmentService *services.AssignmentService
	notifyService     *services.NotifyService
	batchScheduler    *scheduler.Scheduler
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	if stripe.Key == "" {
		log.Println("STRIPE_SECRET_KEY not set, billing webhooks will fail")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to Postgres")

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	catalogService = services.NewCatalogService(dbPool)
	profileService = services.NewProfileService(dbPool)
	healthService = services.NewHealthService(dbPool)
	badgeService = services.NewBadgeService(dbPool)
	programService = services.NewProgramService(dbPool)
	provisionService = services.NewProvisionService(dbPool)
	notifyService = services.NewNotifyService()
	assignmentService = services.NewAssignmentService(dbPool, catalogService, profileService, healthService, badgeService, programService, rng)

	batchWorkers, _ := strconv.Atoi(os.Getenv("BATCH_WORKERS"))
	batchScheduler, err = scheduler.New(assignmentService, profileService, healthService, provisionService, notifyService, clockwork.NewRealClock(), scheduler.Config{
		Timezone: os.Getenv("BATCH_TIMEZONE"),
		Workers:  batchWorkers,
	})
	if err != nil {
		log.Fatal("Failed to create scheduler:", err)
	}

	middleware.InitPrometheus()
	services.InitMetrics()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	if err := batchScheduler.Start(); err != nil {
		log.Fatal("Failed to start scheduler:", err)
	}

	assignmentHandler := handlers.NewAssignmentHandler(assignmentService, profileService)
	healthScoreHandler := handlers.NewHealthScoreHandler(healthService)
	badgeHandler := handlers.NewBadgeHandler(badgeService)
	profileHandler := handlers.NewProfileHandler(profileService)
	programHandler := handlers.NewProgramHandler(programService, assignmentService)
	webhookHandler := handlers.NewWebhookHandler(provisionService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "rekindle-api"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()

	// -------------------------------------------------------------------------
	// PUBLIC ROUTES (SIGNATURE-VERIFIED WEBHOOKS)
	// -------------------------------------------------------------------------
	api.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")
	api.HandleFunc("/webhooks/stripe", webhookHandler.HandleStripeWebhook).Methods("POST")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/action/today", assignmentHandler.GetToday).Methods("GET")
	protected.HandleFunc("/action", assignmentHandler.GetByDate).Methods("GET")
	protected.HandleFunc("/action/complete", assignmentHandler.MarkCompleted).Methods("POST")
	protected.HandleFunc("/action/favorite", assignmentHandler.MarkFavorited).Methods("POST")
	protected.HandleFunc("/action/dnc", assignmentHandler.MarkDoNotComplete).Methods("POST")
	protected.HandleFunc("/action/hide", assignmentHandler.HideAction).Methods("POST")
	protected.HandleFunc("/action/hide", assignmentHandler.UnhideAction).Methods("DELETE")
	protected.HandleFunc("/action/calendar", assignmentHandler.GetCalendar).Methods("GET")

	protected.HandleFunc("/health-score", healthScoreHandler.GetScore).Methods("GET")

	protected.HandleFunc("/badges", badgeHandler.GetBadges).Methods("GET")

	protected.HandleFunc("/user", profileHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/profile/categories", profileHandler.GetCategoryProfile).Methods("GET")
	protected.HandleFunc("/preferences/boost", profileHandler.BoostCategory).Methods("POST")

	protected.HandleFunc("/programs", programHandler.ListPrograms).Methods("GET")
	protected.HandleFunc("/programs/enrollments", programHandler.GetEnrollments).Methods("GET")
	protected.HandleFunc("/programs/{programID}/enroll", programHandler.Enroll).Methods("POST")
	protected.HandleFunc("/programs/{programID}/complete-day", programHandler.CompleteDay).Methods("POST")

	// CORS configuration
	corsHandler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins([]string{"*"}),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorillaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorillaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := batchScheduler.Stop(); err != nil {
		log.Printf("Scheduler shutdown error: %v", err)
	}
	notifyService.Stop()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
