package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"emsspace/internal/domain/attendance"
	"emsspace/internal/domain/audit"
	"emsspace/internal/domain/auth"
	"emsspace/internal/domain/directory"
	"emsspace/internal/domain/invoice"
	"emsspace/internal/domain/leave"
	"emsspace/internal/domain/notifications"
	"emsspace/internal/domain/requisition"
	"emsspace/internal/events"
	"emsspace/internal/platform/config"
	"emsspace/internal/platform/db"
	"emsspace/internal/platform/metrics"
	"emsspace/internal/transport/http/api"
	attendancehandler "emsspace/internal/transport/http/handlers/attendance"
	audithandler "emsspace/internal/transport/http/handlers/audit"
	authhandler "emsspace/internal/transport/http/handlers/auth"
	directoryhandler "emsspace/internal/transport/http/handlers/directory"
	eventshandler "emsspace/internal/transport/http/handlers/events"
	invoiceshandler "emsspace/internal/transport/http/handlers/invoices"
	leavehandler "emsspace/internal/transport/http/handlers/leave"
	notificationshandler "emsspace/internal/transport/http/handlers/notifications"
	requisitionshandler "emsspace/internal/transport/http/handlers/requisitions"
	"emsspace/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Stream  *events.Broadcaster
	Metrics *metrics.Collector
}

// New assembles the full application against an already-connected pool.
func New(cfg config.Config, pool *pgxpool.Pool) *App {
	collector := metrics.New()
	stream := events.NewBroadcaster(cfg.EventBufferSize)

	authStore := auth.NewStore(pool)
	authService := auth.NewService(authStore)
	auditService := audit.New(pool)
	notifyService := notifications.New(notifications.NewStore(pool))
	directoryStore := directory.NewStore(pool)
	directoryService := directory.NewService(directoryStore)
	requisitionService := requisition.NewService(requisition.NewStore(pool), authStore, stream)
	leaveService := leave.NewService(leave.NewStore(pool), authStore, stream)
	attendanceService := attendance.NewService(attendance.NewStore(pool))
	invoiceService := invoice.NewService(invoice.NewStore(pool))

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.With(middleware.RequireRole(auth.RoleAdmin)).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authService, auditService, cfg.JWTSecret).RegisterRoutes(r)
		directoryhandler.NewHandler(directoryService, authService, auditService).RegisterRoutes(r)
		requisitionshandler.NewHandler(requisitionService, authService, notifyService, auditService).RegisterRoutes(r)
		leavehandler.NewHandler(leaveService, authService, notifyService, auditService).RegisterRoutes(r)
		attendancehandler.NewHandler(attendanceService, authService).RegisterRoutes(r)
		invoiceshandler.NewHandler(invoiceService, authService, auditService, directoryStore).RegisterRoutes(r)
		notificationshandler.NewHandler(notifyService).RegisterRoutes(r)
		audithandler.NewHandler(auditService).RegisterRoutes(r)
		eventshandler.NewHandler(stream, authService).RegisterRoutes(r)
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})

	return &App{
		Config:  cfg,
		DB:      pool,
		Router:  router,
		Stream:  stream,
		Metrics: collector,
	}
}

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	app := New(cfg, pool)

	log.Printf("EMS Space server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, r.URL.Path)
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}
