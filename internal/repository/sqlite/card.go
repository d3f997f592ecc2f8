package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tanvir/cardforge/internal/apperror"
	"github.com/tanvir/cardforge/internal/model"
	"github.com/tanvir/cardforge/internal/repository"
)

// compile-time check that *DB implements repository.CardRepository
var _ repository.CardRepository = (*DB)(nil)

const cardColumns = `id, user_id, combination_key, title, subtitle, industry,
	problem, solution, implementation, market_opportunity, summary,
	rating, feasibility, complexity, rarity, pinned, saved, favorited, created_at`

func scanCard(row interface{ Scan(...any) error }) (*model.Card, error) {
	var c model.Card
	err := row.Scan(
		&c.ID, &c.UserID, &c.CombinationKey, &c.Title, &c.Subtitle, &c.Industry,
		&c.Problem, &c.Solution, &c.Implementation, &c.MarketOpp, &c.Summary,
		&c.Rating, &c.Feasibility, &c.Complexity, &c.Rarity,
		&c.Pinned, &c.Saved, &c.Favorited, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	// APIs is derived, not stored: the key is the sorted pair joined by "-",
	// and API names never contain the separator.
	c.APIs = strings.SplitN(c.CombinationKey, "-", 2)
	return &c, nil
}

// GetCardByID retrieves a single card.
func (db *DB) GetCardByID(ctx context.Context, id string) (*model.Card, error) {
	card, err := scanCard(db.conn.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("card", id)
		}
		return nil, fmt.Errorf("sqlite: getting card %s: %w", id, err)
	}
	return card, nil
}

// ListCardsByUser returns a user's cards, newest first, honoring the filter.
//
// The WHERE clause is assembled from fixed fragments — user input only ever
// lands in the parameter list, never in the SQL text.
func (db *DB) ListCardsByUser(ctx context.Context, userID string, filter repository.CardFilter) ([]model.Card, error) {
	where := []string{"user_id = ?"}
	args := []any{userID}

	if filter.Rarity != "" {
		where = append(where, "rarity = ?")
		args = append(args, filter.Rarity)
	}
	if filter.Pinned {
		where = append(where, "pinned = 1")
	}
	if filter.Saved {
		where = append(where, "saved = 1")
	}
	if filter.Favorited {
		where = append(where, "favorited = 1")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM cards
		 WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing cards: %w", err)
	}
	defer rows.Close()

	cards := make([]model.Card, 0, limit)
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning card row: %w", err)
		}
		cards = append(cards, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating cards: %w", err)
	}

	return cards, nil
}

// KeysByUser returns the set of combination keys the user already owns.
// This is the selector's "existingKeys" input.
func (db *DB) KeysByUser(ctx context.Context, userID string) (map[string]bool, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT combination_key FROM cards WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing combination keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]bool)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("sqlite: scanning combination key: %w", err)
		}
		keys[key] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating combination keys: %w", err)
	}

	return keys, nil
}

// UpdateCardFlags persists the card's pinned/saved/favorited flags.
func (db *DB) UpdateCardFlags(ctx context.Context, card *model.Card) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE cards SET pinned = ?, saved = ?, favorited = ? WHERE id = ?`,
		card.Pinned, card.Saved, card.Favorited, card.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating card flags %s: %w", card.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("card", card.ID)
	}
	return nil
}

// DeleteCard removes a card. The pinned-cards-cannot-be-deleted rule lives
// in the service layer; here a delete is just a delete.
func (db *DB) DeleteCard(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting card %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("card", id)
	}
	return nil
}
