package handler

import (
	"net/http"

	"github.com/tanvir/cardforge/internal/auth"
	"github.com/tanvir/cardforge/internal/model"
	"github.com/tanvir/cardforge/internal/service"
)

// PreferenceHandler owns the locked/ignored API preference endpoints.
type PreferenceHandler struct {
	svc *service.PreferenceService
}

func NewPreferenceHandler(svc *service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{svc: svc}
}

// HandleList returns all of the caller's preferences.
//
// HTTP: GET /api/preferences
func (h *PreferenceHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	prefs, err := h.svc.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if prefs == nil {
		prefs = []model.Preference{}
	}
	writeSuccess(w, http.StatusOK, prefs, "")
}

type setPreferenceRequest struct {
	Kind model.PreferenceKind `json:"kind"`
}

// HandleSet creates or replaces the preference for one API. PUT because
// it's a full replacement of the (user, api) preference.
//
// HTTP: PUT /api/preferences/{api}  body: {"kind":"locked"|"ignored"}
func (h *PreferenceHandler) HandleSet(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req setPreferenceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.svc.Set(r.Context(), userID, r.PathValue("api"), req.Kind); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, nil, "preference set")
}

// HandleClear removes the preference for one API. Clearing an API with no
// preference succeeds — the desired end state already holds.
//
// HTTP: DELETE /api/preferences/{api}
func (h *PreferenceHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.svc.Clear(r.Context(), userID, r.PathValue("api")); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, nil, "preference cleared")
}

// HandleReset removes all of the caller's preferences.
//
// HTTP: DELETE /api/preferences
func (h *PreferenceHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.svc.Reset(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, nil, "preferences reset")
}
