package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/motorforge/workshop-backend/api/controllers"
	ordercontrollers "github.com/motorforge/workshop-backend/api/controllers/orders"
	"github.com/motorforge/workshop-backend/api/middleware"
	"github.com/motorforge/workshop-backend/internal/catalog"
	"github.com/motorforge/workshop-backend/internal/notifications"
	"github.com/motorforge/workshop-backend/internal/workorders"
	"github.com/motorforge/workshop-backend/pkg/config"
	"github.com/motorforge/workshop-backend/pkg/db"
	"github.com/motorforge/workshop-backend/pkg/featureflags"
	"github.com/motorforge/workshop-backend/pkg/logger"
	"github.com/motorforge/workshop-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	flags *featureflags.Flags,
	ordersSvc workorders.Service,
	ordersRepo workorders.Repository,
	catalogSvc catalog.Service,
	notificationsSvc notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.List(ordersSvc, logg))
			r.With(middleware.RequireStaff(logg)).Post("/", ordercontrollers.Create(ordersSvc, flags, logg))

			r.Route("/{orderId}", func(r chi.Router) {
				r.Get("/", ordercontrollers.Detail(ordersSvc, logg))
				r.Get("/history", ordercontrollers.History(ordersSvc, ordersRepo, logg))

				// Approval and cancel carry their own ownership checks; a
				// customer may act on their own order.
				r.Post("/approval", ordercontrollers.Approval(ordersSvc, logg))
				r.Post("/cancel", ordercontrollers.Cancel(ordersSvc, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireStaff(logg))
					r.Patch("/", ordercontrollers.UpdateDetails(ordersSvc, logg))
					r.Post("/budget", ordercontrollers.SubmitBudget(ordersSvc, logg))
					r.Post("/start-work", ordercontrollers.StartWork(ordersSvc, logg))
					r.Post("/work-completed", ordercontrollers.WorkCompleted(ordersSvc, logg))
					r.Post("/ready-for-delivery", ordercontrollers.ReadyForDelivery(ordersSvc, logg))
					r.Post("/deliver", ordercontrollers.Deliver(ordersSvc, logg))
					r.Post("/payment", ordercontrollers.Payment(ordersSvc, logg))
					r.Post("/hold", ordercontrollers.Hold(ordersSvc, logg))
					r.Post("/resume", ordercontrollers.Resume(ordersSvc, logg))
				})
			})
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/services", controllers.ListCatalogServices(catalogSvc, logg))
			r.Get("/categories", controllers.ListCategories(catalogSvc, logg))
			r.Get("/categories/{categoryId}", controllers.GetCategory(catalogSvc, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsSvc, logg))
			r.Get("/unread-count", controllers.UnreadNotificationCount(notificationsSvc, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsSvc, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsSvc, logg))
		})
	})

	return r
}
