package handler

import (
	"net/http"
	"strconv"

	"github.com/tanvir/cardforge/internal/auth"
	"github.com/tanvir/cardforge/internal/model"
	"github.com/tanvir/cardforge/internal/repository"
	"github.com/tanvir/cardforge/internal/service"
)

// WalletHandler owns balance, ledger, daily reward, and shop endpoints.
type WalletHandler struct {
	svc *service.WalletService
}

func NewWalletHandler(svc *service.WalletService) *WalletHandler {
	return &WalletHandler{svc: svc}
}

// HandleBalance returns the caller's profile with the current balance.
//
// HTTP: GET /api/wallet
func (h *WalletHandler) HandleBalance(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	user, err := h.svc.Balance(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, user, "")
}

// HandleLedger returns the caller's coin history, newest first.
//
// HTTP: GET /api/wallet/ledger?limit=20&offset=0
func (h *WalletHandler) HandleLedger(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var opts repository.ListOptions
	opts.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	opts.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))

	entries, err := h.svc.Ledger(r.Context(), userID, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []model.CoinLedgerEntry{}
	}
	writeSuccess(w, http.StatusOK, entries, "")
}

// HandleClaimDaily credits the daily reward, once per UTC day.
//
// HTTP: POST /api/wallet/daily
func (h *WalletHandler) HandleClaimDaily(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	user, err := h.svc.ClaimDaily(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, user, "daily reward claimed")
}

// HandlePacks returns the shop inventory. Public prices, no auth needed,
// but the route sits behind RequireAuth anyway — the shop is part of the
// logged-in app.
//
// HTTP: GET /api/shop/packs
func (h *WalletHandler) HandlePacks(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, h.svc.Packs(), "")
}

type checkoutRequest struct {
	PackID string `json:"packId"`
}

// HandleCheckout purchases a coin pack.
//
// HTTP: POST /api/shop/checkout  body: {"packId":"chest"}
func (h *WalletHandler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.svc.Purchase(r.Context(), userID, req.PackID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, user, "purchase complete")
}
