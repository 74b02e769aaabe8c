package wholesale

import (
	"net/http"
	"strconv"

	"github.com/arkan-dev/backend-pos/internal/common"
)

// Handler exposes the read-only wholesale catalog.
type Handler struct {
	Svc *Service
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := common.ParsePagination(r, 50)
	products, total, err := h.Svc.List(r.Context(), r.URL.Query().Get("category"), page, perPage)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	common.JSON(w, http.StatusOK, map[string]any{
		"data": products,
		"pagination": common.Pagination{
			Page:       page,
			PerPage:    perPage,
			TotalItems: total,
		},
	})
}
