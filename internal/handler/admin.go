package handler

import (
	"net/http"

	"github.com/tanvir/cardforge/internal/auth"
	"github.com/tanvir/cardforge/internal/service"
)

// AdminHandler serves the admin-only stats endpoint. The admin check lives
// in the service so it cannot be bypassed by a misrouted request.
type AdminHandler struct {
	svc *service.AdminService
}

func NewAdminHandler(svc *service.AdminService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// HandleStats returns platform-wide aggregates.
//
// HTTP: GET /api/admin/stats
func (h *AdminHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	stats, err := h.svc.Stats(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, stats, "")
}
