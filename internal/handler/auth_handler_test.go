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

func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == "token" {
			return c
		}
	}
	return nil
}

func TestHandleRegister(t *testing.T) {
	t.Run("creates account and sets session", func(t *testing.T) {
		f := newFixture(t)

		req := httptest.NewRequest(http.MethodPost, "/auth/register",
			jsonBody(`{"email":"new@test.com","password":"longenough","displayName":"New"}`))
		rr := httptest.NewRecorder()
		f.auth.HandleRegister(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		env := decodeEnvelope(t, rr)
		assert.True(t, env.Success)

		var user model.User
		assert.NoError(t, json.Unmarshal(env.Data, &user))
		assert.Equal(t, "new@test.com", user.Email)
		assert.EqualValues(t, service.SignupCredit, user.CoinBalance)

		cookie := sessionCookie(rr)
		if assert.NotNil(t, cookie, "session cookie missing") {
			assert.True(t, cookie.HttpOnly)
			assert.NotEmpty(t, cookie.Value)
		}
	})

	t.Run("rejects short password", func(t *testing.T) {
		f := newFixture(t)

		req := httptest.NewRequest(http.MethodPost, "/auth/register",
			jsonBody(`{"email":"new@test.com","password":"short"}`))
		rr := httptest.NewRecorder()
		f.auth.HandleRegister(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "validation_error", decodeEnvelope(t, rr).Error.Code)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		f := newFixture(t)
		body := `{"email":"dup@test.com","password":"longenough"}`

		rr := httptest.NewRecorder()
		f.auth.HandleRegister(rr, httptest.NewRequest(http.MethodPost, "/auth/register", jsonBody(body)))
		assert.Equal(t, http.StatusCreated, rr.Code)

		rr = httptest.NewRecorder()
		f.auth.HandleRegister(rr, httptest.NewRequest(http.MethodPost, "/auth/register", jsonBody(body)))
		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestHandleLogin(t *testing.T) {
	f := newFixture(t)

	rr := httptest.NewRecorder()
	f.auth.HandleRegister(rr, httptest.NewRequest(http.MethodPost, "/auth/register",
		jsonBody(`{"email":"login@test.com","password":"correct-password"}`)))
	assert.Equal(t, http.StatusCreated, rr.Code)

	t.Run("valid credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			jsonBody(`{"email":"login@test.com","password":"correct-password"}`))
		rr := httptest.NewRecorder()
		f.auth.HandleLogin(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.NotNil(t, sessionCookie(rr))
	})

	t.Run("wrong password is 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			jsonBody(`{"email":"login@test.com","password":"wrong"}`))
		rr := httptest.NewRecorder()
		f.auth.HandleLogin(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Nil(t, sessionCookie(rr))
	})

	t.Run("unknown email is also 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			jsonBody(`{"email":"ghost@test.com","password":"correct-password"}`))
		rr := httptest.NewRecorder()
		f.auth.HandleLogin(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestHandleLogout(t *testing.T) {
	f := newFixture(t)

	rr := httptest.NewRecorder()
	f.auth.HandleLogout(rr, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	cookie := sessionCookie(rr)
	if assert.NotNil(t, cookie) {
		assert.Empty(t, cookie.Value)
		assert.Negative(t, cookie.MaxAge)
	}
}

func TestHandleMe(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "me@test.com", 50)

	req := authedRequest(http.MethodGet, "/api/me", "", user.ID)
	rr := httptest.NewRecorder()
	f.auth.HandleMe(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var got model.User
	assert.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Data, &got))
	assert.Equal(t, user.ID, got.ID)
	assert.EqualValues(t, 50, got.CoinBalance)
}
