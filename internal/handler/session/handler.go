package session

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/idol-oracle/backend/internal/handler/apierr"
	sessionService "github.com/zhouzirui/idol-oracle/backend/internal/service/session"
	"github.com/zhouzirui/idol-oracle/backend/pkg/utils"
)

// Handler 会话管理的HTTP处理器
type Handler struct {
	store *sessionService.Store
}

// New 创建会话处理器
func New(store *sessionService.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册会话相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.handleCreate)
	r.Get("/sessions/{sessionID}", h.handleGet)
	r.Delete("/sessions/{sessionID}", h.handleDelete)
}

// handleCreate 创建会话；已存在的 sessionId 直接返回原会话
func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"sessionId"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, created, err := h.store.Create(r.Context(), payload.SessionID)
	if err != nil {
		status, msg := apierr.Status(err)
		utils.RespondError(w, status, msg)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	utils.RespondJSON(w, status, sess)
}

// handleGet 返回会话快照
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		status, msg := apierr.Status(err)
		utils.RespondError(w, status, msg)
		return
	}
	utils.RespondJSON(w, http.StatusOK, sess)
}

// handleDelete 删除会话
func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		status, msg := apierr.Status(err)
		utils.RespondError(w, status, msg)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
