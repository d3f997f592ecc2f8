package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tanvir/cardforge/internal/model"
	"github.com/tanvir/cardforge/internal/service"
)

func TestHandleGenerate(t *testing.T) {
	t.Run("success debits and returns the card", func(t *testing.T) {
		f := newFixture(t)
		user := f.createUser(t, "gen@test.com", 100)

		req := authedRequest(http.MethodPost, "/api/cards/generate", "", user.ID)
		rr := httptest.NewRecorder()
		f.cards.HandleGenerate(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		env := decodeEnvelope(t, rr)
		assert.True(t, env.Success)

		var card model.Card
		assert.NoError(t, json.Unmarshal(env.Data, &card))
		assert.NotEmpty(t, card.ID)
		assert.NotEmpty(t, card.CombinationKey)
		assert.Len(t, card.APIs, 2)
		assert.NotEmpty(t, card.Rarity)

		// Balance dropped by exactly the generation cost.
		fresh, err := f.db.GetUserByID(req.Context(), user.ID)
		assert.NoError(t, err)
		assert.Equal(t, int64(100-service.GenerationCost), fresh.CoinBalance)
	})

	t.Run("requested pair", func(t *testing.T) {
		f := newFixture(t)
		user := f.createUser(t, "pair@test.com", 100)

		req := authedRequest(http.MethodPost, "/api/cards/generate",
			`{"apis":["Slack","GitHub"]}`, user.ID)
		rr := httptest.NewRecorder()
		f.cards.HandleGenerate(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		env := decodeEnvelope(t, rr)
		var card model.Card
		assert.NoError(t, json.Unmarshal(env.Data, &card))
		assert.Equal(t, "GitHub-Slack", card.CombinationKey)
	})

	t.Run("insufficient funds", func(t *testing.T) {
		f := newFixture(t)
		user := f.createUser(t, "broke@test.com", service.GenerationCost-1)

		req := authedRequest(http.MethodPost, "/api/cards/generate", "", user.ID)
		rr := httptest.NewRecorder()
		f.cards.HandleGenerate(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		env := decodeEnvelope(t, rr)
		assert.False(t, env.Success)
		assert.Equal(t, "insufficient_funds", env.Error.Code)
		assert.EqualValues(t, service.GenerationCost, env.Error.Details["required"])
		assert.EqualValues(t, service.GenerationCost-1, env.Error.Details["current"])

		// Nothing was written.
		fresh, err := f.db.GetUserByID(req.Context(), user.ID)
		assert.NoError(t, err)
		assert.Equal(t, int64(service.GenerationCost-1), fresh.CoinBalance)
	})

	t.Run("ignored API in requested pair", func(t *testing.T) {
		f := newFixture(t)
		user := f.createUser(t, "ign@test.com", 100)

		put := authedRequest(http.MethodPut, "/api/preferences/Slack",
			`{"kind":"ignored"}`, user.ID)
		put.SetPathValue("api", "Slack")
		rr := httptest.NewRecorder()
		f.prefs.HandleSet(rr, put)
		assert.Equal(t, http.StatusOK, rr.Code)

		req := authedRequest(http.MethodPost, "/api/cards/generate",
			`{"apis":["Slack","GitHub"]}`, user.ID)
		rr = httptest.NewRecorder()
		f.cards.HandleGenerate(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "validation_error", decodeEnvelope(t, rr).Error.Code)
	})

	t.Run("bad request body", func(t *testing.T) {
		f := newFixture(t)
		user := f.createUser(t, "bad@test.com", 100)

		req := authedRequest(http.MethodPost, "/api/cards/generate", `{"apis":`, user.ID)
		rr := httptest.NewRecorder()
		f.cards.HandleGenerate(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestCardCollection(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "collect@test.com", 100)

	// Generate one card to work with.
	req := authedRequest(http.MethodPost, "/api/cards/generate", "", user.ID)
	rr := httptest.NewRecorder()
	f.cards.HandleGenerate(rr, req)
	assert.Equal(t, http.StatusCreated, rr.Code)
	var card model.Card
	assert.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Data, &card))

	t.Run("list", func(t *testing.T) {
		req := authedRequest(http.MethodGet, "/api/cards", "", user.ID)
		rr := httptest.NewRecorder()
		f.cards.HandleList(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var cards []model.Card
		assert.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Data, &cards))
		assert.Len(t, cards, 1)
		assert.Equal(t, card.ID, cards[0].ID)
	})

	t.Run("get by id", func(t *testing.T) {
		req := authedRequest(http.MethodGet, "/api/cards/"+card.ID, "", user.ID)
		req.SetPathValue("id", card.ID)
		rr := httptest.NewRecorder()
		f.cards.HandleGet(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("stranger gets 403", func(t *testing.T) {
		other := f.createUser(t, "other@test.com", 0)
		req := authedRequest(http.MethodGet, "/api/cards/"+card.ID, "", other.ID)
		req.SetPathValue("id", card.ID)
		rr := httptest.NewRecorder()
		f.cards.HandleGet(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("pin then delete refused", func(t *testing.T) {
		req := authedRequest(http.MethodPatch, "/api/cards/"+card.ID+"/flags",
			`{"pinned":true}`, user.ID)
		req.SetPathValue("id", card.ID)
		rr := httptest.NewRecorder()
		f.cards.HandleUpdateFlags(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)

		del := authedRequest(http.MethodDelete, "/api/cards/"+card.ID, "", user.ID)
		del.SetPathValue("id", card.ID)
		rr = httptest.NewRecorder()
		f.cards.HandleDelete(rr, del)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("unpin then delete", func(t *testing.T) {
		req := authedRequest(http.MethodPatch, "/api/cards/"+card.ID+"/flags",
			`{"pinned":false}`, user.ID)
		req.SetPathValue("id", card.ID)
		rr := httptest.NewRecorder()
		f.cards.HandleUpdateFlags(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)

		del := authedRequest(http.MethodDelete, "/api/cards/"+card.ID, "", user.ID)
		del.SetPathValue("id", card.ID)
		rr = httptest.NewRecorder()
		f.cards.HandleDelete(rr, del)
		assert.Equal(t, http.StatusOK, rr.Code)

		get := authedRequest(http.MethodGet, "/api/cards/"+card.ID, "", user.ID)
		get.SetPathValue("id", card.ID)
		rr = httptest.NewRecorder()
		f.cards.HandleGet(rr, get)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
