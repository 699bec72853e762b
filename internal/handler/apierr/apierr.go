// Package apierr maps service errors onto HTTP statuses.
package apierr

import (
	"errors"
	"net/http"

	conversationModel "github.com/zhouzirui/idol-oracle/backend/internal/model/conversation"
	"github.com/zhouzirui/idol-oracle/backend/internal/service/conversation"
	"github.com/zhouzirui/idol-oracle/backend/internal/service/llm"
	"github.com/zhouzirui/idol-oracle/backend/internal/service/session"
)

// Status returns the HTTP status and client message for err.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound, session.ErrSessionNotFound.Error()
	case errors.Is(err, session.ErrInvalidSessionID):
		return http.StatusBadRequest, session.ErrInvalidSessionID.Error()
	case errors.Is(err, conversation.ErrEmptyMessage):
		return http.StatusBadRequest, conversation.ErrEmptyMessage.Error()
	case errors.Is(err, conversationModel.ErrIllegalTransition):
		return http.StatusConflict, "operation not allowed in the current stage"
	case errors.Is(err, llm.ErrUpstream):
		return http.StatusBadGateway, "upstream model unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
