package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"filmsoc-backend/internal/auth"
	"filmsoc-backend/internal/cache"
	"filmsoc-backend/internal/config"
	"filmsoc-backend/internal/database"
	"filmsoc-backend/internal/db"
	"filmsoc-backend/internal/handlers"
	"filmsoc-backend/internal/health"
	h "filmsoc-backend/internal/http"
	"filmsoc-backend/internal/lifecycle"
	"filmsoc-backend/internal/middleware"
	"filmsoc-backend/internal/repositories"
	"filmsoc-backend/internal/services"
	"filmsoc-backend/internal/ws"
	"filmsoc-backend/migrations"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	// Connect to PostgreSQL
	pool := db.Connect(cfg)
	defer pool.Close()

	// Initialize Redis cache (optional - graceful fallback if unavailable)
	if err := cache.Init(cfg); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (listings will hit the database)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}

	// Run database migrations from the embedded filesystem
	log.Println("Running database migrations...")
	migrator := database.NewMigrator(pool, migrations.FS)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := migrator.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize health checker
	healthChecker := health.NewHealthChecker(pool)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg)

	// Initialize repositories
	memberRepo := repositories.NewMemberRepository(pool)
	equipmentRepo := repositories.NewEquipmentRepository(pool)
	logRepo := repositories.NewEquipmentLogRepository(pool)
	eventRepo := repositories.NewEventRepository(pool)
	participantRepo := repositories.NewEventParticipantRepository(pool)
	requestRepo := repositories.NewEquipmentRequestRepository(pool)

	// Initialize the lifecycle manager with its transactional store and
	// the websocket hub for live updates
	hub := ws.NewHub()
	go hub.Run()
	lifecycleStore := repositories.NewLifecycleStore(pool)
	lifecycleManager := lifecycle.NewManager(lifecycleStore, hub)

	// Initialize services
	memberService := services.NewMemberService(memberRepo, jwtManager)
	equipmentService := services.NewEquipmentService(equipmentRepo, requestRepo, logRepo)
	eventService := services.NewEventService(eventRepo, participantRepo)
	mediaService := services.NewMediaService(cfg, equipmentRepo)
	receiptService := services.NewReceiptService(logRepo, equipmentRepo, memberRepo)
	totpService := services.NewTOTPService(memberRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(memberService, totpService, jwtManager)
	memberHandler := handlers.NewMemberHandler(memberService)
	equipmentHandler := handlers.NewEquipmentHandler(equipmentService, mediaService, lifecycleManager)
	requestHandler := handlers.NewEquipmentRequestHandler(lifecycleManager, requestRepo)
	eventHandler := handlers.NewEventHandler(eventService)
	logHandler := handlers.NewLogHandler(logRepo, receiptService)
	totpHandler := handlers.NewTOTPHandler(totpService, memberService)
	pageHandler := handlers.NewPageHandler()
	healthHandler := handlers.NewHealthHandler(healthChecker)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, memberRepo)
	corsMiddleware := middleware.NewCORS(cfg)

	router := h.NewRouter(
		authHandler,
		memberHandler,
		equipmentHandler,
		requestHandler,
		eventHandler,
		logHandler,
		totpHandler,
		pageHandler,
		healthHandler,
		hub,
		authMiddleware,
	)

	// Wrap with panic recovery, request logging, and metrics middleware
	handler := middleware.PanicRecovery(
		middleware.RequestLogging(
			middleware.MetricsMiddleware(corsMiddleware(router))))

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
