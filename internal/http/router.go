package http

import (
	"net/http"

	"filmsoc-backend/internal/handlers"
	"filmsoc-backend/internal/middleware"
	"filmsoc-backend/internal/ws"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	memberHandler *handlers.MemberHandler,
	equipmentHandler *handlers.EquipmentHandler,
	requestHandler *handlers.EquipmentRequestHandler,
	eventHandler *handlers.EventHandler,
	logHandler *handlers.LogHandler,
	totpHandler *handlers.TOTPHandler,
	pageHandler *handlers.PageHandler,
	healthHandler *handlers.HealthHandler,
	hub *ws.Hub,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Public landing page: availability board for the notice screen
	r.HandleFunc("/", pageHandler.LandingPage).Methods("GET")

	// Public API routes - Authentication
	r.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/auth/2fa/verify", authHandler.Verify2FA).Methods("POST")

	// Public API routes - read-only views for the landing page
	r.HandleFunc("/api/public/equipment", equipmentHandler.ListEquipment).Methods("GET")
	r.HandleFunc("/api/public/events", eventHandler.ListEvents).Methods("GET")

	// WebSocket for live lifecycle updates
	r.HandleFunc("/ws", hub.HandleWebSocket)

	// Protected API routes - Members
	membersAPI := r.PathPrefix("/api/members").Subrouter()
	membersAPI.Use(authMiddleware.Authenticate)
	membersAPI.HandleFunc("", memberHandler.ListMembers).Methods("GET")
	membersAPI.HandleFunc("", authMiddleware.RequireAdmin(http.HandlerFunc(memberHandler.CreateMember)).ServeHTTP).Methods("POST")
	membersAPI.HandleFunc("/me", memberHandler.Me).Methods("GET")
	membersAPI.HandleFunc("/{id}", memberHandler.GetMember).Methods("GET")
	membersAPI.HandleFunc("/{id}", memberHandler.UpdateMember).Methods("PUT")
	membersAPI.HandleFunc("/{id}", authMiddleware.RequireAdmin(http.HandlerFunc(memberHandler.DeleteMember)).ServeHTTP).Methods("DELETE")
	membersAPI.HandleFunc("/{id}/admin", authMiddleware.RequireAdmin(http.HandlerFunc(memberHandler.SetAdmin)).ServeHTTP).Methods("PATCH")

	// Protected API routes - Equipment
	equipmentAPI := r.PathPrefix("/api/equipment").Subrouter()
	equipmentAPI.Use(authMiddleware.Authenticate)
	equipmentAPI.HandleFunc("", equipmentHandler.ListEquipment).Methods("GET")
	equipmentAPI.HandleFunc("", authMiddleware.RequireAdmin(http.HandlerFunc(equipmentHandler.CreateEquipment)).ServeHTTP).Methods("POST")
	equipmentAPI.HandleFunc("/{id}", equipmentHandler.GetEquipment).Methods("GET")
	equipmentAPI.HandleFunc("/{id}", authMiddleware.RequireAdmin(http.HandlerFunc(equipmentHandler.UpdateEquipment)).ServeHTTP).Methods("PUT")
	equipmentAPI.HandleFunc("/{id}", authMiddleware.RequireAdmin(http.HandlerFunc(equipmentHandler.DeleteEquipment)).ServeHTTP).Methods("DELETE")
	// Manual status changes go through the lifecycle manager which does
	// its own admin-or-owner check, so no RequireAdmin here
	equipmentAPI.HandleFunc("/{id}/status", equipmentHandler.SetStatus).Methods("PUT")
	equipmentAPI.HandleFunc("/{id}/image", authMiddleware.RequireAdmin(http.HandlerFunc(equipmentHandler.UploadImage)).ServeHTTP).Methods("POST")
	equipmentAPI.HandleFunc("/{id}/logs", logHandler.ListByEquipment).Methods("GET")

	// Protected API routes - Equipment Requests (checkout workflow)
	requestsAPI := r.PathPrefix("/api/requests").Subrouter()
	requestsAPI.Use(authMiddleware.Authenticate)
	requestsAPI.HandleFunc("", requestHandler.ListRequests).Methods("GET")
	requestsAPI.HandleFunc("", requestHandler.CreateRequest).Methods("POST")
	requestsAPI.HandleFunc("/{id}", requestHandler.GetRequest).Methods("GET")
	requestsAPI.HandleFunc("/{id}/approve", requestHandler.Approve).Methods("POST")
	requestsAPI.HandleFunc("/{id}/reject", requestHandler.Reject).Methods("POST")
	requestsAPI.HandleFunc("/{id}/received", requestHandler.MarkReceived).Methods("POST")
	requestsAPI.HandleFunc("/{id}/returned", requestHandler.MarkReturned).Methods("POST")

	// Protected API routes - Events
	eventsAPI := r.PathPrefix("/api/events").Subrouter()
	eventsAPI.Use(authMiddleware.Authenticate)
	eventsAPI.HandleFunc("", eventHandler.ListEvents).Methods("GET")
	eventsAPI.HandleFunc("", eventHandler.CreateEvent).Methods("POST")
	eventsAPI.HandleFunc("/pending", authMiddleware.RequireAdmin(http.HandlerFunc(eventHandler.ListPendingApproval)).ServeHTTP).Methods("GET")
	eventsAPI.HandleFunc("/{id}", eventHandler.GetEvent).Methods("GET")
	eventsAPI.HandleFunc("/{id}", eventHandler.UpdateEvent).Methods("PUT")
	eventsAPI.HandleFunc("/{id}", eventHandler.DeleteEvent).Methods("DELETE")
	eventsAPI.HandleFunc("/{id}/approve", authMiddleware.RequireAdmin(http.HandlerFunc(eventHandler.ApproveEvent)).ServeHTTP).Methods("POST")
	eventsAPI.HandleFunc("/{id}/join", eventHandler.Join).Methods("POST")
	eventsAPI.HandleFunc("/{id}/leave", eventHandler.Leave).Methods("POST")
	eventsAPI.HandleFunc("/{id}/participants", eventHandler.Participants).Methods("GET")

	// Protected API routes - Checkout logs
	logsAPI := r.PathPrefix("/api/logs").Subrouter()
	logsAPI.Use(authMiddleware.Authenticate)
	logsAPI.HandleFunc("/mine", logHandler.ListMine).Methods("GET")
	logsAPI.HandleFunc("/open", authMiddleware.RequireAdmin(http.HandlerFunc(logHandler.ListOpen)).ServeHTTP).Methods("GET")
	logsAPI.HandleFunc("/overdue", authMiddleware.RequireAdmin(http.HandlerFunc(logHandler.ListOverdue)).ServeHTTP).Methods("GET")
	logsAPI.HandleFunc("/{id}/receipt", logHandler.DownloadReceipt).Methods("GET")

	// Protected API routes - 2FA management
	totpAPI := r.PathPrefix("/api/2fa").Subrouter()
	totpAPI.Use(authMiddleware.Authenticate)
	totpAPI.HandleFunc("/status", totpHandler.Status).Methods("GET")
	totpAPI.HandleFunc("/setup", totpHandler.Setup).Methods("POST")
	totpAPI.HandleFunc("/enable", totpHandler.Enable).Methods("POST")
	totpAPI.HandleFunc("/disable", totpHandler.Disable).Methods("POST")

	// Health endpoints (no auth required - for probes)
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
