package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/numan-developer-2/Customer-Support-Agent/internal/handler/chat"
	"github.com/numan-developer-2/Customer-Support-Agent/internal/handler/speech"
	middlewarePkg "github.com/numan-developer-2/Customer-Support-Agent/internal/middleware"
	"github.com/numan-developer-2/Customer-Support-Agent/internal/service/devassistant"
	"github.com/numan-developer-2/Customer-Support-Agent/pkg/utils"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// NewRouter wires HTTP routes to the stand-in assistant.
func NewRouter(svc *devassistant.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatHandler := chat.New(svc)
	speechHandler := speech.New(svc)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{
			"message": "Customer Support Agent API (development)",
			"version": Version,
		})
	})

	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)
		speechHandler.RegisterRoutes(api)

		api.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			status := svc.Health()
			code := http.StatusOK
			if status.Status != "healthy" {
				code = http.StatusInternalServerError
			}
			utils.RespondJSON(w, code, status)
		})
	})

	return r
}
