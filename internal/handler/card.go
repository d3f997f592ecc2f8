package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tanvir/cardforge/internal/auth"
	"github.com/tanvir/cardforge/internal/model"
	"github.com/tanvir/cardforge/internal/repository"
	"github.com/tanvir/cardforge/internal/service"
)

// CardHandler owns the card endpoints: generation and collection
// management.
type CardHandler struct {
	generation *service.GenerationService
	cards      *service.CardService
	logger     *slog.Logger
}

func NewCardHandler(generation *service.GenerationService, cards *service.CardService, logger *slog.Logger) *CardHandler {
	return &CardHandler{generation: generation, cards: cards, logger: logger}
}

type generateRequest struct {
	// APIs optionally names an exact pair to generate. Empty means random
	// selection honoring the user's preferences.
	APIs []string `json:"apis,omitempty"`
}

// HandleGenerate spends coins to create one card.
//
// HTTP: POST /api/cards/generate
func (h *CardHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req generateRequest
	// An empty body is a plain random generation.
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}

	card, err := h.generation.Generate(r.Context(), userID, req.APIs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, card, "card generated")
}

// HandleList returns the caller's collection.
//
// HTTP: GET /api/cards?rarity=Rare&pinned=true&limit=20&offset=0
func (h *CardHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	q := r.URL.Query()
	filter := repository.CardFilter{
		Rarity:    q.Get("rarity"),
		Pinned:    q.Get("pinned") == "true",
		Saved:     q.Get("saved") == "true",
		Favorited: q.Get("favorited") == "true",
	}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))

	cards, err := h.cards.List(r.Context(), userID, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if cards == nil {
		cards = []model.Card{} // serialize as [], not null
	}
	writeSuccess(w, http.StatusOK, cards, "")
}

// HandleGet returns one card.
//
// HTTP: GET /api/cards/{id}
func (h *CardHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	card, err := h.cards.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, card, "")
}

// HandleUpdateFlags partially updates a card's pinned/saved/favorited
// flags. Absent fields stay unchanged.
//
// HTTP: PATCH /api/cards/{id}/flags
func (h *CardHandler) HandleUpdateFlags(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var flags model.CardFlags
	if err := decodeJSON(r, &flags); err != nil {
		writeError(w, err)
		return
	}

	card, err := h.cards.UpdateFlags(r.Context(), userID, r.PathValue("id"), flags)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, card, "card updated")
}

// HandleDelete removes a card. Pinned cards are refused with 403.
//
// HTTP: DELETE /api/cards/{id}
func (h *CardHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.cards.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, nil, "card deleted")
}
