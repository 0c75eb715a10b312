package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/qrdine/api/internal/cache"
	"github.com/qrdine/api/internal/config"
	"github.com/qrdine/api/internal/database"
	"github.com/qrdine/api/internal/enum"
	"github.com/qrdine/api/internal/handler"
	mw "github.com/qrdine/api/internal/middleware"
	"github.com/qrdine/api/internal/service"
	"github.com/qrdine/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication, restaurant scoping, and role-based middleware
// as needed.
func New(cfg *config.Config, queries *database.Queries, pool service.DB, hub *ws.Hub, reports *cache.ReportCache) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/restaurants/{rid}/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	newOrderStore := func(db database.DBTX) service.OrderStore {
		return database.New(db)
	}
	lifecycle := service.NewLifecycleService(pool, newOrderStore, handler.NewBroadcaster(hub), reports)

	orderHandler := handler.NewOrderHandler(lifecycle, queries)
	kitchenHandler := handler.NewKitchenHandler(queries)
	billingHandler := handler.NewBillingHandler(queries, lifecycle)
	reportHandler := handler.NewReportHandler(queries, reports)
	menuHandler := handler.NewMenuHandler(queries)

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		r.Route("/restaurants/{rid}", func(r chi.Router) {
			r.Use(mw.RequireRestaurant)

			r.Route("/orders", orderHandler.RegisterRoutes)
			r.Route("/menu", menuHandler.RegisterRoutes)

			r.Get("/kitchen/queue", kitchenHandler.Queue)
			r.Route("/tables/{table}", func(r chi.Router) {
				r.Get("/classification", kitchenHandler.Classify)
				r.Get("/bill", billingHandler.Bill)
				r.Post("/settle", billingHandler.Settle)
			})

			// Dashboard analytics are management-only
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleOwner, enum.UserRoleManager))
				r.Get("/reports/dashboard", reportHandler.Dashboard)
			})
		})
	})

	return r
}
