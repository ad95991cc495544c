package handlers

import (
	"net/http"

	"remindly-backend/internal/metrics"
	"remindly-backend/internal/middleware"
	"remindly-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Services bundles everything the HTTP layer calls into
type Services struct {
	Users         *services.UserService
	Profiles      *services.ProfileService
	Images        *services.ImageService
	Reminders     *services.ReminderService
	Favourites    *services.FavouriteService
	Notifications *services.NotificationService
	Hub           *services.WSHub
	DB            Pinger
}

// RouterOptions configures the router's cross-cutting middleware
type RouterOptions struct {
	AllowedOrigins []string
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	AccessLog      bool
}

// NewRouter builds the chi router serving /api/v1
func NewRouter(svc Services, opts RouterOptions) http.Handler {
	userHandler := NewUserHandler(svc.Users)
	profileHandler := NewProfileHandler(svc.Profiles, svc.Images, svc.Hub)
	reminderHandler := NewReminderHandler(svc.Reminders, svc.Hub)
	favouriteHandler := NewFavouriteHandler(svc.Favourites, svc.Hub)
	notificationHandler := NewNotificationHandler(svc.Notifications)
	wsHandler := NewWebSocketHandler(svc.Hub, svc.Users, middleware.OriginAllowed(opts.AllowedOrigins))

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	if opts.AccessLog {
		r.Use(chiMiddleware.Logger)
	}
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(opts.AllowedOrigins))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}

	if opts.MetricsHandler != nil {
		r.Handle("/metrics", opts.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/webhooks/identity", userHandler.IdentityWebhook)
		if svc.DB != nil {
			r.Get("/healthz", NewHealthHandler(svc.DB).Health)
		}
		r.Get("/ws", wsHandler.HandleWebSocket)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(svc.Users))

			r.Get("/me", userHandler.GetMe)

			r.Post("/profiles", profileHandler.CreateProfile)
			r.Get("/profiles", profileHandler.ListProfiles)
			r.Get("/profiles/{profile_id}", profileHandler.GetProfile)
			r.Patch("/profiles/{profile_id}", profileHandler.UpdateProfile)
			r.Delete("/profiles/{profile_id}", profileHandler.DeleteProfile)
			r.Post("/profiles/{profile_id}/image", profileHandler.UploadImage)
			r.Delete("/profiles/{profile_id}/image", profileHandler.RemoveImage)
			r.Get("/profiles/{profile_id}/reminders", reminderHandler.ListProfileReminders)
			r.Get("/profiles/{profile_id}/favourites", favouriteHandler.ListProfileFavourites)

			r.Post("/reminders", reminderHandler.CreateReminder)
			r.Get("/reminders", reminderHandler.ListReminders)
			r.Get("/reminders/personal", reminderHandler.ListPersonalReminders)
			r.Get("/reminders/{reminder_id}", reminderHandler.GetReminder)
			r.Patch("/reminders/{reminder_id}", reminderHandler.UpdateReminder)
			r.Delete("/reminders/{reminder_id}", reminderHandler.DeleteReminder)

			r.Post("/favourites", favouriteHandler.CreateFavourite)
			r.Get("/favourites", favouriteHandler.ListFavourites)
			r.Get("/favourites/{favourite_id}", favouriteHandler.GetFavourite)
			r.Patch("/favourites/{favourite_id}", favouriteHandler.UpdateFavourite)
			r.Delete("/favourites/{favourite_id}", favouriteHandler.DeleteFavourite)

			r.Post("/notifications/email", notificationHandler.SendEmail)
			r.Post("/notifications/sms", notificationHandler.SendSMS)
		})
	})

	return r
}
