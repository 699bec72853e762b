package divination

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zhouzirui/idol-oracle/backend/internal/handler/apierr"
	"github.com/zhouzirui/idol-oracle/backend/internal/model/conversation"
	divinationService "github.com/zhouzirui/idol-oracle/backend/internal/service/divination"
	"github.com/zhouzirui/idol-oracle/backend/internal/service/session"
	"github.com/zhouzirui/idol-oracle/backend/pkg/utils"
)

// Handler 占卜信息的HTTP处理器
type Handler struct {
	store   *session.Store
	diviner *divinationService.Service
	logger  *zap.Logger
}

// New 创建占卜处理器
func New(store *session.Store, diviner *divinationService.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, diviner: diviner, logger: logger.Named("divination")}
}

// RegisterRoutes 注册占卜相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/divination/types", h.handleTypes)
	r.Post("/divination/{sessionID}", h.handleDivine)
	r.Get("/divination/{sessionID}/history", h.handleHistory)
}

func (h *Handler) handleTypes(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, divinationService.Types())
}

type divineRequest struct {
	Type     string `json:"type"`
	Question string `json:"question"`
}

// handleDivine 按指定类型直接占卜，结果与对话消息一并写入会话
func (h *Handler) handleDivine(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	sess, err := h.store.Get(r.Context(), sessionID)
	if err != nil {
		status, msg := apierr.Status(err)
		utils.RespondError(w, status, msg)
		return
	}

	var payload divineRequest
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	question := strings.TrimSpace(payload.Question)
	if question == "" {
		utils.RespondError(w, http.StatusBadRequest, "question is required")
		return
	}
	kind, ok := divinationService.ParseType(payload.Type)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, fmt.Sprintf("invalid divination type %q", payload.Type))
		return
	}
	if sess.Stage == conversation.StageIdolChat {
		status, msg := apierr.Status(fmt.Errorf("%w: divination in %s", conversation.ErrIllegalTransition, sess.Stage))
		utils.RespondError(w, status, msg)
		return
	}

	// 与 Engine.Handle 一致：请求一旦开始就执行到底
	ctx := context.WithoutCancel(r.Context())
	outcome, err := h.diviner.Divine(ctx, kind, question)
	if err != nil {
		h.logger.Warn("divination failed", zap.String("session", sessionID), zap.Error(err))
		status, msg := apierr.Status(err)
		utils.RespondError(w, status, msg)
		return
	}

	record, err := h.store.AppendDivination(ctx, sessionID, string(outcome.Kind), question, outcome.Text)
	if err != nil {
		status, msg := apierr.Status(err)
		if !errors.Is(err, conversation.ErrIllegalTransition) {
			h.logger.Error("record divination", zap.String("session", sessionID), zap.Error(err))
		}
		utils.RespondError(w, status, msg)
		return
	}
	if _, err := h.store.AppendMessage(ctx, sessionID, conversation.RoleUser, question); err != nil {
		h.logger.Error("append user message", zap.String("session", sessionID), zap.Error(err))
	}
	if _, err := h.store.AppendMessage(ctx, sessionID, conversation.RoleAssistant, outcome.Text); err != nil {
		h.logger.Error("append assistant message", zap.String("session", sessionID), zap.Error(err))
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"sessionId":      sessionID,
		"divination":     record,
		"reply":          outcome.Text,
		"method":         outcome.Method,
		"stage":          conversation.StageTransition,
		"transitionStep": conversation.StepAskMore,
	})
}

// handleHistory 分页返回会话的占卜记录
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	offset, limit := utils.Pagination(r, 10)
	history, err := h.store.Divinations(r.Context(), chi.URLParam(r, "sessionID"), offset, limit)
	if err != nil {
		status, msg := apierr.Status(err)
		utils.RespondError(w, status, msg)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"divinations": history,
		"offset":      offset,
		"limit":       limit,
	})
}
