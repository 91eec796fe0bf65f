package api

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
)

// NewRouter constructs the router with all API endpoints registered.
func NewRouter(accountsSvc AccountsService, wagerSvc WagerService) http.Handler {
	h := NewHandler(accountsSvc, wagerSvc)
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(requestLogger())

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/signup", h.SignupHandler)
		r.Post("/verify", h.VerifyHandler)
		r.Post("/signin", h.SigninHandler)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)

			r.Get("/credits", h.CreditsHandler)
			r.Post("/play", h.PlayHandler)
		})
	})

	return r
}

func requestLogger() func(http.Handler) http.Handler {
	return httplog.RequestLogger(
		slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{})),
		&httplog.Options{
			Level:  slog.LevelInfo,
			Schema: httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
			// Request bodies carry passwords and codes; never log them.
			LogRequestBody:  func(*http.Request) bool { return false },
			LogResponseBody: func(*http.Request) bool { return false },
		},
	)
}
