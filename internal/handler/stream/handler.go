package stream

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zhouzirui/idol-oracle/backend/internal/handler/apierr"
	"github.com/zhouzirui/idol-oracle/backend/internal/service/conversation"
	"github.com/zhouzirui/idol-oracle/backend/pkg/utils"
)

// Handler delivers one conversation turn as a Server-Sent Events stream.
type Handler struct {
	engine *conversation.Engine
	logger *zap.Logger
}

// New creates a new stream handler
func New(engine *conversation.Engine, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{engine: engine, logger: logger.Named("stream")}
}

// StreamResponse represents a streaming response chunk
type StreamResponse struct {
	SessionID       string `json:"sessionId,omitempty"`
	Content         string `json:"content,omitempty"`
	Translation     string `json:"translation,omitempty"`
	Stage           string `json:"stage,omitempty"`
	TransitionStep  string `json:"transitionStep,omitempty"`
	VirtualReminder string `json:"virtualReminder,omitempty"`
	Finished        bool   `json:"finished,omitempty"`
	Error           string `json:"error,omitempty"`
}

// RegisterRoutes mounts the stream endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream/{sessionID}", h.handleStream)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	userMessage := r.URL.Query().Get("message")
	if userMessage == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// Reject unknown sessions before switching to event-stream.
	if _, err := h.engine.Store().Get(r.Context(), sessionID); err != nil {
		status, msg := apierr.Status(err)
		utils.RespondError(w, status, msg)
		return
	}

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)
	utils.SendSSEEvent(w, flusher, "start", StreamResponse{SessionID: sessionID})

	reply, err := h.engine.Handle(r.Context(), sessionID, userMessage)
	if err != nil {
		_, msg := apierr.Status(err)
		h.logger.Warn("stream turn failed", zap.String("session", sessionID), zap.Error(err))
		utils.SendSSEEvent(w, flusher, "error", StreamResponse{SessionID: sessionID, Error: msg})
		return
	}

	utils.SendSSEEvent(w, flusher, "message", StreamResponse{
		SessionID:       reply.SessionID,
		Content:         reply.Text,
		Translation:     reply.Translation,
		VirtualReminder: reply.VirtualReminder,
	})
	utils.SendSSEEvent(w, flusher, "stage", StreamResponse{
		SessionID:      reply.SessionID,
		Stage:          string(reply.Stage),
		TransitionStep: string(reply.TransitionStep),
	})
	utils.SendSSEEvent(w, flusher, "end", StreamResponse{SessionID: reply.SessionID, Finished: true})
}
