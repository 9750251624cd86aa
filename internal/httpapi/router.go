// Package httpapi exposes the voice journal over a JSON HTTP API.
package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/raphaelgruber/voicejournal/internal/app"
)

// requestTimeout bounds a request, long enough for a recording to be
// transcribed and enriched.
const requestTimeout = 3 * time.Minute

// Handlers serves the API from an assembled application.
type Handlers struct {
	app *app.App
}

// NewRouter builds the HTTP handler. A nil auth trusts the configured user
// id header.
func NewRouter(a *app.App, auth AuthPort) http.Handler {
	if auth == nil {
		auth = HeaderAuth{Header: a.Config.AuthHeader}
	}
	h := &Handlers{app: a}

	r := chi.NewRouter()
	r.Use(chimw.RealIP, chimw.RequestID, chimw.Recoverer, accessLog)
	if len(a.Config.CORSOrigins) > 0 {
		r.Use(cors(a.Config.CORSOrigins, a.Config.AuthHeader))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	if a.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(requestTimeout), requireUser(auth))

		r.Post("/uploads", h.upload)
		r.Post("/recordings", h.createRecording)

		r.Route("/notes", func(r chi.Router) {
			r.Get("/", h.listNotes)
			r.Get("/{id}", h.getNote)
			r.Patch("/{id}", h.updateNote)
			r.Delete("/{id}", h.deleteNote)
		})

		r.Route("/generate", func(r chi.Router) {
			r.Post("/title", h.generateTitle)
			r.Post("/overview", h.generateOverview)
			r.Post("/insight", h.extractInsight)
			r.Post("/location", h.extractLocation)
		})

		r.Get("/insights/themes", h.analyzeThemes)

		r.Post("/chat", h.ask)
		r.Get("/chat", h.chatHistory)
		r.Delete("/chat", h.clearChat)

		r.Get("/stats", h.stats)
	})

	return r
}
