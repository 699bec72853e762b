package chat

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zhouzirui/idol-oracle/backend/internal/handler/apierr"
	"github.com/zhouzirui/idol-oracle/backend/internal/service/conversation"
	"github.com/zhouzirui/idol-oracle/backend/pkg/utils"
)

// Handler 对话入口的HTTP处理器
type Handler struct {
	engine *conversation.Engine
	logger *zap.Logger
}

// New 创建聊天处理器
func New(engine *conversation.Engine, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{engine: engine, logger: logger.Named("chat")}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/chat/{sessionID}/messages", h.handleMessages)
}

// handleChat 处理一条用户消息；未携带 sessionId 时新建会话
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"sessionId"`
		Message   string `json:"message"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := payload.SessionID
	if sessionID == "" {
		sess, _, err := h.engine.Store().Create(r.Context(), "")
		if err != nil {
			status, msg := apierr.Status(err)
			utils.RespondError(w, status, msg)
			return
		}
		sessionID = sess.ID
	}

	reply, err := h.engine.Handle(r.Context(), sessionID, payload.Message)
	if err != nil {
		status, msg := apierr.Status(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("handle chat", zap.String("session", sessionID), zap.Error(err))
		}
		utils.RespondError(w, status, msg)
		return
	}

	utils.RespondJSON(w, http.StatusOK, reply)
}

// handleMessages 分页返回会话消息
func (h *Handler) handleMessages(w http.ResponseWriter, r *http.Request) {
	offset, limit := utils.Pagination(r, 20)
	messages, err := h.engine.Store().Messages(r.Context(), chi.URLParam(r, "sessionID"), offset, limit)
	if err != nil {
		status, msg := apierr.Status(err)
		utils.RespondError(w, status, msg)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"messages": messages,
		"offset":   offset,
		"limit":    limit,
	})
}
