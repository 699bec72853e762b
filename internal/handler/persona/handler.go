package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/idol-oracle/backend/internal/model/persona"
	"github.com/zhouzirui/idol-oracle/backend/pkg/utils"
)

// Handler 静态偶像目录的HTTP处理器，仅供展示，不参与人设合成
type Handler struct {
	idols persona.Store
}

// New 创建偶像目录处理器
func New(idols persona.Store) *Handler {
	return &Handler{idols: idols}
}

// RegisterRoutes 注册偶像目录相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/idols", h.handleList)
	r.Get("/idols/{idolID}", h.handleGet)
}

func (h *Handler) handleList(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.idols.List())
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	idol, ok := h.idols.Find(chi.URLParam(r, "idolID"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "idol not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, idol)
}
