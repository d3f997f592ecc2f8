package handler_test

// Handler tests run against the real service layer and an in-memory
// SQLite database — the HTTP layer is thin, so testing it against mocks
// of mocks would prove little.

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/tanvir/cardforge/internal/auth"
	"github.com/tanvir/cardforge/internal/catalog"
	"github.com/tanvir/cardforge/internal/handler"
	"github.com/tanvir/cardforge/internal/model"
	"github.com/tanvir/cardforge/internal/payment"
	sqliteRepo "github.com/tanvir/cardforge/internal/repository/sqlite"
	"github.com/tanvir/cardforge/internal/service"
)

type fixture struct {
	db     *sqliteRepo.DB
	cat    *catalog.Catalog
	auth   *handler.AuthHandler
	cards  *handler.CardHandler
	prefs  *handler.PreferenceHandler
	wallet *handler.WalletHandler
	admin  *handler.AdminHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := sqliteRepo.New(":memory:")
	if err != nil {
		t.Fatalf("opening in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("loading catalog: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars")
	if err != nil {
		t.Fatal(err)
	}
	passwords := auth.NewPasswordServiceForTest(bcrypt.MinCost)

	authSvc := service.NewAuthService(db, passwords, logger)
	generationSvc := service.NewGenerationService(cat, db, db, db, db, logger)
	cardSvc := service.NewCardService(db, logger)
	prefSvc := service.NewPreferenceService(cat, db, logger)
	walletSvc := service.NewWalletService(db, db, db, payment.DevProvider{}, logger)
	adminSvc := service.NewAdminService(db, db)

	return &fixture{
		db:     db,
		cat:    cat,
		auth:   handler.NewAuthHandler(authSvc, tokens, nil, logger),
		cards:  handler.NewCardHandler(generationSvc, cardSvc, logger),
		prefs:  handler.NewPreferenceHandler(prefSvc),
		wallet: handler.NewWalletHandler(walletSvc),
		admin:  handler.NewAdminHandler(adminSvc),
	}
}

// createUser inserts a user directly, bypassing registration, with the
// given starting balance.
func (f *fixture) createUser(t *testing.T, email string, balance int64) *model.User {
	t.Helper()
	user := &model.User{Email: email, DisplayName: "test user"}
	if err := f.db.CreateUser(context.Background(), user, balance); err != nil {
		t.Fatalf("creating user: %v", err)
	}
	return user
}

func (f *fixture) createAdmin(t *testing.T, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, IsAdmin: true}
	if err := f.db.CreateUser(context.Background(), user, 0); err != nil {
		t.Fatalf("creating admin: %v", err)
	}
	return user
}

// authedRequest builds a request carrying userID the way RequireAuth
// would have set it.
func authedRequest(method, target, body, userID string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(auth.WithUserID(req.Context(), userID))
}

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}

type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("decoding envelope: %v (body %q)", err, rr.Body.String())
	}
	return env
}
