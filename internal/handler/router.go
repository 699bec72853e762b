package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/zhouzirui/idol-oracle/backend/internal/handler/chat"
	"github.com/zhouzirui/idol-oracle/backend/internal/handler/divination"
	"github.com/zhouzirui/idol-oracle/backend/internal/handler/persona"
	"github.com/zhouzirui/idol-oracle/backend/internal/handler/session"
	"github.com/zhouzirui/idol-oracle/backend/internal/handler/stream"
	"github.com/zhouzirui/idol-oracle/backend/internal/handler/ws"
	middlewarePkg "github.com/zhouzirui/idol-oracle/backend/internal/middleware"
	personaModel "github.com/zhouzirui/idol-oracle/backend/internal/model/persona"
	"github.com/zhouzirui/idol-oracle/backend/internal/service/conversation"
	"github.com/zhouzirui/idol-oracle/backend/pkg/utils"
)

// NewRouter wires HTTP routes to the conversation engine.
func NewRouter(engine *conversation.Engine, idols personaModel.Store, allowedOrigins []string, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(allowedOrigins))

	store := engine.Store()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"sessions": store.Len(),
		})
	})

	r.Route("/api", func(api chi.Router) {
		session.New(store).RegisterRoutes(api)
		chat.New(engine, logger).RegisterRoutes(api)
		divination.New(store, engine.Diviner(), logger).RegisterRoutes(api)
		persona.New(idols).RegisterRoutes(api)
		stream.New(engine, logger).RegisterRoutes(api)
		ws.New(engine, allowedOrigins, logger).RegisterRoutes(api)
	})

	return r
}
