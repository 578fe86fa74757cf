package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/scout-hq/scout-system/handlers"
	"github.com/scout-hq/scout-system/middleware"
	"github.com/scout-hq/scout-system/models"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	groupHandler *handlers.GroupHandler,
	registrationHandler *handlers.RegistrationHandler,
	flowHandler *handlers.FlowHandler,
	submissionHandler *handlers.SubmissionHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)
	organizerOnly := middleware.RequireRole(models.RoleOrganizer, models.RoleAdmin)

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/groups", func(r chi.Router) {
		r.Use(authenticate)
		r.Post("/", groupHandler.Create)
		r.Get("/mine", groupHandler.ListMine)
		r.Get("/{groupID}", groupHandler.GetByID)
	})

	router.Route("/registrations", func(r chi.Router) {
		r.Get("/", registrationHandler.List)
		r.Get("/{registrationID}", registrationHandler.GetByID)
		r.Get("/{registrationID}/catalog", registrationHandler.GetCatalog)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{registrationID}/flow", flowHandler.Start)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(organizerOnly)
			r.Post("/", registrationHandler.Create)
			r.Patch("/{registrationID}/status", registrationHandler.UpdateStatus)
			r.Post("/{registrationID}/logo", registrationHandler.UploadLogo)
			r.Get("/{registrationID}/submissions", submissionHandler.ListByRegistration)
		})
	})

	router.Route("/flow", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/{sessionID}", flowHandler.Get)
		r.Post("/{sessionID}/steps/{stepIndex}", flowHandler.SaveStep)
		r.Post("/{sessionID}/back", flowHandler.Back)
		r.Post("/{sessionID}/submit", flowHandler.Submit)
		r.Delete("/{sessionID}", flowHandler.Abandon)
	})

	router.Route("/submissions", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/{submissionID}", submissionHandler.GetByID)
		r.Patch("/{submissionID}/approval", submissionHandler.UpdateApproval)
	})

	router.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/users/me/submissions", submissionHandler.ListMine)
		r.Get("/ws/registrations/{registrationID}", webSocketHandler.ServeRegistrationRoom)
	})
}
