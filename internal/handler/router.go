package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sehatlink/sehat/internal"
	"github.com/sehatlink/sehat/internal/chat"
	"github.com/sehatlink/sehat/internal/config"
	"github.com/sehatlink/sehat/internal/database"
	"github.com/sehatlink/sehat/internal/feed"
	"github.com/sehatlink/sehat/internal/ratelimiter"
	"github.com/sehatlink/sehat/internal/reminder"
	"github.com/sehatlink/sehat/internal/sms"
)

// NewRouter wires every HTTP route. feedSvc may be nil when no LLM key is
// configured; the feed routes then answer 503.
func NewRouter(db *database.Queries, hub *chat.Hub, feedSvc *feed.Service,
	reminderSvc *reminder.Service, sender sms.Sender, jwtCfg config.JWTConfig) http.Handler {

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	authLimiter := ratelimiter.NewIPRateLimiter(10, time.Minute, ratelimiter.CleanupOpts{
		TTL:      10 * time.Minute,
		Interval: time.Minute,
	})

	r.Route("/account", func(account chi.Router) {
		account.Use(authLimiter.Middleware)
		account.Post("/signup", Signup(db, jwtCfg))
		account.Post("/login", Login(db, jwtCfg))
		account.Post("/otp/send", SendOTP(db, sender))
		account.Post("/otp/verify", VerifyOTP(db, jwtCfg))
		account.Post("/logout", Logout(db))
	})

	r.Group(func(protected chi.Router) {
		protected.Use(func(next http.Handler) http.Handler {
			return internal.Middleware(next, db, jwtCfg)
		})
		protected.Get("/profile", GetProfile(db))
		protected.Put("/profile", UpsertProfile(db))
		protected.Post("/vitals", CreateVitals(db))
		protected.Get("/vitals", ListVitals(db))
		protected.Post("/appointments", BookAppointment(db))
		protected.Get("/appointments", ListAppointments(db))
		protected.Get("/feed", ListFeed(db))
		protected.Get("/messages/{roomID}", ListMessages(db))
	})

	// The socket carries no auth token and the room endpoints are open,
	// mirroring the original boundary. Known limitation, not fixed here.
	r.Get("/chat/room/{patientID}", ResolveRoom(db))
	r.Get("/ws/{roomID}", ServeWs(hub))

	if feedSvc != nil {
		r.Post("/feed/generate/{userID}/{lang}", GenerateFeed(feedSvc))
		r.Post("/feed/refresh_all", RefreshAllFeeds(feedSvc))
	} else {
		unavailable := func(w http.ResponseWriter, r *http.Request) {
			respondError(w, http.StatusServiceUnavailable, "Feed generation is not configured.")
		}
		r.Post("/feed/generate/{userID}/{lang}", unavailable)
		r.Post("/feed/refresh_all", unavailable)
	}

	r.Get("/reminders/vitals", SendVitalsReminders(reminderSvc))
	r.Get("/reminders/appointments", SendAppointmentReminders(reminderSvc))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})

	return r
}
