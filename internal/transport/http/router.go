package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/recruit-notes/internal/application/activity"
	"github.com/recruit-notes/internal/application/auth"
	"github.com/recruit-notes/internal/application/candidate"
	"github.com/recruit-notes/internal/application/device"
	"github.com/recruit-notes/internal/application/mention"
	"github.com/recruit-notes/internal/application/note"
	"github.com/recruit-notes/internal/application/notification"
	"github.com/recruit-notes/internal/application/summary"
	"github.com/recruit-notes/internal/application/user"
	"github.com/recruit-notes/internal/config"
	"github.com/recruit-notes/internal/infrastructure/cache"
	"github.com/recruit-notes/internal/pkg/realtime"
	"github.com/recruit-notes/internal/transport/http/handler"
	appmiddleware "github.com/recruit-notes/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if deps.Cache == nil {
		deps.Cache = cache.Noop{}
	}
	if deps.Broker == nil {
		deps.Broker = realtime.NewHub()
	}

	// 5 requests/second, burst of 10, on the public credential endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	fanout := notification.NewFanout(notification.FanoutDeps{
		NotificationRepo: deps.NotificationRepo,
		UserRepo:         deps.UserRepo,
		Cache:            deps.Cache,
		Broker:           deps.Broker,
		Push:             deps.Push,
		Concurrency:      cfg.FanoutConcurrency,
	})

	candidateDeps := candidate.ServiceDeps{
		CandidateRepo: deps.CandidateRepo,
		Fanout:        fanout,
		Cache:         deps.Cache,
		Events:        deps.Events,
		Broker:        deps.Broker,
	}
	if deps.Resumes != nil {
		candidateDeps.Resumes = deps.Resumes
	}

	authSvc := auth.NewService(auth.ServiceDeps{UserRepo: deps.UserRepo, JWTProvider: deps.JWTProvider, Cache: deps.Cache})
	userSvc := user.NewService(deps.UserRepo)
	candidateSvc := candidate.NewService(candidateDeps)
	noteSvc := note.NewService(note.ServiceDeps{
		NoteRepo:   deps.NoteRepo,
		Candidates: candidateSvc,
		Resolver:   mention.NewResolver(deps.UserRepo),
		Fanout:     fanout,
		Cache:      deps.Cache,
		Broker:     deps.Broker,
		Events:     deps.Events,
	})
	notifSvc := notification.NewService(notification.ServiceDeps{
		NotificationRepo: deps.NotificationRepo,
		Cache:            deps.Cache,
		Broker:           deps.Broker,
		SnapshotTimeout:  cfg.SnapshotTimeout,
	})
	summarySvc := summary.NewService(summary.ServiceDeps{
		Candidates: candidateSvc,
		NoteRepo:   deps.NoteRepo,
		Generator:  deps.Generator,
	})
	deviceSvc := device.NewService(deps.DeviceRepo)
	activitySvc := activity.NewService(deps.Cache, deps.UserRepo)

	healthH := handler.NewHealthHandler(deps.Cache)
	authH := handler.NewAuthHandler(authSvc)
	userH := handler.NewUserHandler(userSvc)
	candidateH := handler.NewCandidateHandler(candidateSvc, summarySvc)
	messageH := handler.NewMessageHandler(noteSvc)
	notifH := handler.NewNotificationHandler(notifSvc)
	deviceH := handler.NewDeviceHandler(deviceSvc)
	activityH := handler.NewActivityHandler(activitySvc)
	streamH := handler.NewStreamHandler(handler.StreamDeps{
		Inbox:      notifSvc,
		Candidates: candidateSvc,
		Broker:     deps.Broker,
		Presence:   activitySvc,
		Heartbeat:  cfg.StreamHeartbeat,
	})

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/auth/signup", authH.SignUp)
		r.With(sensitiveRL.Limit).Post("/auth/signin", authH.SignIn)
		r.Get("/auth/verify", authH.Verify)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.JWTProvider))
			r.Use(appmiddleware.CurrentUser(authSvc))

			r.Get("/auth/profile", authH.Profile)
			r.Put("/auth/profile", authH.UpdateProfile)
			r.Post("/auth/signout", authH.SignOut)

			r.Get("/users", userH.List)

			r.Get("/candidates", candidateH.List)
			r.Post("/candidates", candidateH.Create)
			r.Get("/candidates/{id}", candidateH.Get)
			r.Put("/candidates/{id}", candidateH.Update)
			r.Delete("/candidates/{id}", candidateH.Delete)
			r.Post("/candidates/{id}/resume", candidateH.UploadResume)
			r.Get("/candidates/{id}/resume", candidateH.ResumeURL)
			r.Get("/candidates/{id}/summary", candidateH.Summary)
			r.Get("/candidates/{id}/follow-up-questions", candidateH.FollowUpQuestions)
			r.Get("/candidates/{id}/notes/stream", streamH.CandidateNotes)

			r.Get("/messages", messageH.List)
			r.Post("/messages", messageH.Create)

			r.Get("/notifications", notifH.List)
			r.Patch("/notifications", notifH.MarkAll)
			r.Get("/notifications/unread-count", notifH.UnreadCount)
			r.Get("/notifications/stream", streamH.Notifications)
			r.Get("/notifications/{id}", notifH.Get)
			r.Patch("/notifications/{id}", notifH.Mark)

			r.Get("/devices", deviceH.List)
			r.Put("/devices", deviceH.Register)

			r.Get("/activity", activityH.Recent)
			r.Get("/presence", activityH.Presence)
		})
	})

	return r
}
