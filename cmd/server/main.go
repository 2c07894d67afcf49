package main

import (
	"database/sql"
	"log"
	"net/http"

	"smartparking/internal/api"
	"smartparking/internal/auth"
	"smartparking/internal/config"
	"smartparking/internal/pass"
	"smartparking/internal/qr"
	"smartparking/internal/registry"
	"smartparking/internal/repository"
	"smartparking/internal/service"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	var store repository.Store
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to open DB: %v", err)
		}
		if err := db.Ping(); err != nil {
			log.Fatalf("Failed to connect to DB: %v", err)
		}
		pg := repository.NewPostgresStore(db)
		if err := pg.EnsureSchema(); err != nil {
			log.Fatalf("Failed to prepare schema: %v", err)
		}
		store = pg
	} else {
		log.Println("DATABASE_URL not set, running with in-memory store")
		store = repository.NewMemoryStore()
	}

	limits := pass.Limits{MaxDailyWindow: cfg.MaxDailyWindow, MaxPassDays: cfg.MaxPassDays}
	reg := registry.DefaultLot()
	sender := service.NewSenderService()

	reservations := service.NewReservationService(reg, limits, cfg.MaxYearlyDays, store, sender)
	passes := service.NewPassService(limits, cfg.MaxYearlyDays, store)
	qrGen := qr.NewGenerator(cfg.MediaDir, cfg.PublicBaseURL)
	cancels := service.NewCancelService(reservations, passes, store, qrGen, cfg.ScanPollInterval, cfg.ScanConfirmWait)

	adminAuth := service.NewAdminAuthService(store, cfg.JWTSecret)
	service.SeedAdmin(adminAuth, store, cfg.AdminEmail, cfg.AdminPassword)

	userHandler := api.NewUserReservationHandler(reservations, cancels, passes)
	adminHandler := api.NewAdminHandler(reservations, store)
	adminAuthHandler := api.NewAdminAuthHandler(adminAuth)

	jobs := service.NewJobService(reservations, cancels, 10*cfg.ScanConfirmWait)
	c := cron.New()
	c.AddFunc("@every 1m", jobs.FinishEndedReservations)
	c.AddFunc("@every 5m", jobs.SweepPendingCancellations)
	c.Start()
	defer c.Stop()

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/spots", userHandler.ListSpots).Methods("GET")
	r.HandleFunc("/api/stats", userHandler.Stats).Methods("GET")
	r.HandleFunc("/api/reserve", userHandler.CreateReservation).Methods("POST")
	r.HandleFunc("/api/extend", userHandler.ExtendReservation).Methods("POST")
	r.HandleFunc("/api/cancel-reservation", userHandler.CancelReservation).Methods("POST")
	r.HandleFunc("/api/check-scan-status/{spot_id}", userHandler.CheckScanStatus).Methods("GET")
	r.HandleFunc("/api/mark-as-scanned/{spot_id}", userHandler.MarkAsScanned).Methods("GET", "POST")
	r.HandleFunc("/api/create-monthly-pass", userHandler.CreateMonthlyPass).Methods("POST")
	r.HandleFunc("/api/yearly-pass", userHandler.CreateYearlyPass).Methods("POST")

	// QR images
	r.PathPrefix("/media/").Handler(http.StripPrefix("/media/", http.FileServer(http.Dir(cfg.MediaDir))))

	// Admin endpoints (protected)
	r.HandleFunc("/admin/login", adminAuthHandler.Login).Methods("POST")
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware(cfg.JWTSecret))
	admin.HandleFunc("/reservations", adminHandler.ListReservations).Methods("GET")
	admin.HandleFunc("/reservations/{spot_id}", adminHandler.ForceRelease).Methods("DELETE")
	admin.HandleFunc("/spots/{spot_id}/lock", adminHandler.LockSpot).Methods("PUT")
	admin.HandleFunc("/spots/{spot_id}/unlock", adminHandler.UnlockSpot).Methods("PUT")
	admin.HandleFunc("/employees", adminHandler.CreateEmployee).Methods("POST")

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	log.Printf("Server running on port %s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handlers.LoggingHandler(log.Writer(), cors(r))))
}
