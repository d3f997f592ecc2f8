package service

// In-memory repository mocks for service tests. They implement just enough
// behavior for the business rules under test; transactional semantics are
// covered by the sqlite package's own tests.

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/rs/xid"
	"github.com/tanvir/cardforge/internal/apperror"
	"github.com/tanvir/cardforge/internal/catalog"
	"github.com/tanvir/cardforge/internal/model"
	"github.com/tanvir/cardforge/internal/payment"
	"github.com/tanvir/cardforge/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testCatalog builds a small fixture catalog: every pair of A, B, C, D,
// plus a single pair containing E. (B, E) is therefore a valid pair of
// known APIs that is NOT in the catalog — the requested-pair fallthrough
// case.
func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	data := []byte(`[
		{"apis":["A","B"],"title":"AB","rating":0.99},
		{"apis":["A","C"],"title":"AC","rating":0.80},
		{"apis":["A","D"],"title":"AD","rating":0.60},
		{"apis":["B","C"],"title":"BC","rating":0.95},
		{"apis":["B","D"],"title":"BD","rating":0.50},
		{"apis":["C","D"],"title":"CD","rating":0.90},
		{"apis":["A","E"],"title":"AE","rating":0.75}
	]`)
	cat, err := catalog.Parse(data)
	if err != nil {
		t.Fatalf("Parse fixture catalog: %v", err)
	}
	return cat
}

type mockUserRepo struct {
	users      map[string]*model.User
	getByIDErr error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) add(user *model.User) *model.User {
	if user.ID == "" {
		user.ID = xid.New().String()
	}
	m.users[user.ID] = user
	return user
}

func (m *mockUserRepo) CreateUser(_ context.Context, user *model.User, signupCredit int64) error {
	for _, u := range m.users {
		if u.Email != "" && u.Email == user.Email {
			return apperror.Conflict("an account with this email already exists")
		}
	}
	user.CoinBalance = signupCredit
	m.add(user)
	return nil
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	if m.getByIDErr != nil {
		return nil, m.getByIDErr
	}
	user, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *user
	return &copied, nil
}

func (m *mockUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (m *mockUserRepo) UpsertGitHub(_ context.Context, user *model.User, signupCredit int64) error {
	for _, u := range m.users {
		if u.GitHubID != 0 && u.GitHubID == user.GitHubID {
			u.DisplayName = user.DisplayName
			u.AvatarURL = user.AvatarURL
			*user = *u
			return nil
		}
	}
	user.CoinBalance = signupCredit
	m.add(user)
	return nil
}

type mockCardRepo struct {
	cards map[string]*model.Card
}

func newMockCardRepo() *mockCardRepo {
	return &mockCardRepo{cards: make(map[string]*model.Card)}
}

func (m *mockCardRepo) add(card *model.Card) *model.Card {
	if card.ID == "" {
		card.ID = xid.New().String()
	}
	m.cards[card.ID] = card
	return card
}

func (m *mockCardRepo) GetCardByID(_ context.Context, id string) (*model.Card, error) {
	card, ok := m.cards[id]
	if !ok {
		return nil, apperror.NotFound("card", id)
	}
	copied := *card
	return &copied, nil
}

func (m *mockCardRepo) ListCardsByUser(_ context.Context, userID string, _ repository.CardFilter) ([]model.Card, error) {
	var out []model.Card
	for _, c := range m.cards {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockCardRepo) KeysByUser(_ context.Context, userID string) (map[string]bool, error) {
	keys := make(map[string]bool)
	for _, c := range m.cards {
		if c.UserID == userID {
			keys[c.CombinationKey] = true
		}
	}
	return keys, nil
}

func (m *mockCardRepo) UpdateCardFlags(_ context.Context, card *model.Card) error {
	stored, ok := m.cards[card.ID]
	if !ok {
		return apperror.NotFound("card", card.ID)
	}
	stored.Pinned = card.Pinned
	stored.Saved = card.Saved
	stored.Favorited = card.Favorited
	return nil
}

func (m *mockCardRepo) DeleteCard(_ context.Context, id string) error {
	if _, ok := m.cards[id]; !ok {
		return apperror.NotFound("card", id)
	}
	delete(m.cards, id)
	return nil
}

// mockGenerationStore mimics the atomic write against the mock user and
// card repos: debit then insert, rejecting duplicates per user.
type mockGenerationStore struct {
	users     *mockUserRepo
	cards     *mockCardRepo
	createErr error // forced error, when set
	calls     int
}

func (m *mockGenerationStore) CreateCard(_ context.Context, card *model.Card, cost int64) error {
	m.calls++
	if m.createErr != nil {
		return m.createErr
	}
	user, ok := m.users.users[card.UserID]
	if !ok {
		return apperror.NotFound("user", card.UserID)
	}
	if user.CoinBalance < cost {
		return apperror.InsufficientFunds(cost, user.CoinBalance)
	}
	for _, c := range m.cards.cards {
		if c.UserID == card.UserID && c.CombinationKey == card.CombinationKey {
			return apperror.DuplicateCombination(card.CombinationKey)
		}
	}
	user.CoinBalance -= cost
	m.cards.add(card)
	return nil
}

type mockPrefRepo struct {
	prefs map[string]*model.Preference // keyed by userID+"|"+apiName
}

func newMockPrefRepo() *mockPrefRepo {
	return &mockPrefRepo{prefs: make(map[string]*model.Preference)}
}

func prefKey(userID, apiName string) string { return userID + "|" + apiName }

func (m *mockPrefRepo) ListPreferences(_ context.Context, userID string) ([]model.Preference, error) {
	var out []model.Preference
	for _, p := range m.prefs {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].APIName < out[j].APIName })
	return out, nil
}

// add seeds a preference directly, bypassing the ceiling.
func (m *mockPrefRepo) add(pref *model.Preference) {
	copied := *pref
	m.prefs[prefKey(pref.UserID, pref.APIName)] = &copied
}

func (m *mockPrefRepo) SetPreference(_ context.Context, pref *model.Preference, maxOfKind int) error {
	var count int
	for _, p := range m.prefs {
		if p.UserID == pref.UserID && p.Kind == pref.Kind && p.APIName != pref.APIName {
			count++
		}
	}
	if count+1 > maxOfKind {
		return fmt.Errorf("%d %s preferences already set: %w", count, pref.Kind, apperror.ErrLimitExceeded)
	}
	m.add(pref)
	return nil
}

func (m *mockPrefRepo) ClearPreference(_ context.Context, userID, apiName string) error {
	delete(m.prefs, prefKey(userID, apiName))
	return nil
}

func (m *mockPrefRepo) ResetPreferences(_ context.Context, userID string) error {
	for k, p := range m.prefs {
		if p.UserID == userID {
			delete(m.prefs, k)
		}
	}
	return nil
}

type mockWalletStore struct {
	users        *mockUserRepo
	creditErr    error
	lastClaimed  map[string]time.Time
	claimedToday func(last, now time.Time) bool
}

func newMockWalletStore(users *mockUserRepo) *mockWalletStore {
	return &mockWalletStore{
		users:       users,
		lastClaimed: make(map[string]time.Time),
		claimedToday: func(last, now time.Time) bool {
			ly, lm, ld := last.UTC().Date()
			ny, nm, nd := now.UTC().Date()
			return ly == ny && lm == nm && ld == nd
		},
	}
}

func (m *mockWalletStore) Credit(_ context.Context, userID string, amount int64, _ model.LedgerKind, _ string) (*model.User, error) {
	if m.creditErr != nil {
		return nil, m.creditErr
	}
	user, ok := m.users.users[userID]
	if !ok {
		return nil, apperror.NotFound("user", userID)
	}
	user.CoinBalance += amount
	copied := *user
	return &copied, nil
}

func (m *mockWalletStore) ClaimDaily(_ context.Context, userID string, amount int64, now time.Time) (*model.User, error) {
	user, ok := m.users.users[userID]
	if !ok {
		return nil, apperror.NotFound("user", userID)
	}
	if last, ok := m.lastClaimed[userID]; ok && m.claimedToday(last, now) {
		return nil, apperror.Conflict("daily reward already claimed today")
	}
	m.lastClaimed[userID] = now
	user.CoinBalance += amount
	user.LastDailyClaim = now
	copied := *user
	return &copied, nil
}

type mockLedgerRepo struct {
	entries []model.CoinLedgerEntry
}

func (m *mockLedgerRepo) ListLedgerEntries(_ context.Context, userID string, _ repository.ListOptions) ([]model.CoinLedgerEntry, error) {
	var out []model.CoinLedgerEntry
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockLedgerRepo) SumByUser(_ context.Context, userID string) (int64, error) {
	var sum int64
	for _, e := range m.entries {
		if e.UserID == userID {
			sum += e.Amount
		}
	}
	return sum, nil
}

type mockStatsRepo struct {
	stats *repository.Stats
}

func (m *mockStatsRepo) Stats(_ context.Context) (*repository.Stats, error) {
	if m.stats == nil {
		return nil, fmt.Errorf("no stats configured")
	}
	return m.stats, nil
}

// mockProvider is a payment provider with a scripted outcome.
type mockProvider struct {
	receipt   string
	chargeErr error
	charges   []payment.Pack
}

func (m *mockProvider) Charge(_ context.Context, _ string, pack payment.Pack) (string, error) {
	if m.chargeErr != nil {
		return "", m.chargeErr
	}
	m.charges = append(m.charges, pack)
	if m.receipt == "" {
		return "receipt-1", nil
	}
	return m.receipt, nil
}

// Compile-time interface checks for the mocks.
var (
	_ repository.UserRepository       = (*mockUserRepo)(nil)
	_ repository.CardRepository       = (*mockCardRepo)(nil)
	_ repository.GenerationStore      = (*mockGenerationStore)(nil)
	_ repository.PreferenceRepository = (*mockPrefRepo)(nil)
	_ repository.WalletStore          = (*mockWalletStore)(nil)
	_ repository.LedgerRepository     = (*mockLedgerRepo)(nil)
	_ repository.StatsRepository      = (*mockStatsRepo)(nil)
	_ payment.Provider                = (*mockProvider)(nil)
)
