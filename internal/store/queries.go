// Copyright (c) 2025-2026 Fortunada Cultura
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/fortunadacultura/lingua-nova/internal/model"
)

// Queries wraps a database handle with the typed query methods used by the
// rest of the application.
type Queries struct {
	db *sql.DB
}

// New creates a Queries instance bound to the given database.
func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

const deckColumns = `id, uuid, owner_id, name, source_language, kind, dialogue_key, scope, created_at, updated_at`

func scanDeck(row interface{ Scan(...any) error }) (model.Deck, error) {
	var d model.Deck
	err := row.Scan(&d.ID, &d.UUID, &d.OwnerID, &d.Name, &d.SourceLanguage,
		&d.Kind, &d.DialogueKey, &d.Scope, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

// CreateDeckParams holds the fields for creating a deck.
type CreateDeckParams struct {
	UUID           string
	OwnerID        sql.NullInt64
	Name           string
	SourceLanguage string
	Kind           string
	DialogueKey    string
	Scope          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CreateDeck inserts a deck and returns the stored row.
func (q *Queries) CreateDeck(ctx context.Context, p CreateDeckParams) (model.Deck, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO decks (uuid, owner_id, name, source_language, kind, dialogue_key, scope, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+deckColumns,
		p.UUID, p.OwnerID, p.Name, p.SourceLanguage, p.Kind, p.DialogueKey, p.Scope, p.CreatedAt, p.UpdatedAt)
	return scanDeck(row)
}

// GetDeckByID fetches one deck by primary key.
func (q *Queries) GetDeckByID(ctx context.Context, id int64) (model.Deck, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+deckColumns+` FROM decks WHERE id = ?`, id)
	return scanDeck(row)
}

// ListGlobalDialogueDecks returns the global dialogue decks for a source
// language, oldest first so deduplication keeps the original deck.
func (q *Queries) ListGlobalDialogueDecks(ctx context.Context, sourceLanguage string) ([]model.Deck, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+deckColumns+` FROM decks
		WHERE scope = ? AND kind = ? AND source_language = ? AND owner_id IS NULL
		ORDER BY id ASC`,
		model.DeckScopeGlobal, model.DeckKindDialogue, sourceLanguage)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return collectDecks(rows)
}

// ListDecksVisibleTo returns global decks plus, when ownerID is valid, the
// owner's private decks.
func (q *Queries) ListDecksVisibleTo(ctx context.Context, ownerID sql.NullInt64) ([]model.Deck, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+deckColumns+` FROM decks
		WHERE owner_id IS NULL OR (? AND owner_id = ?)
		ORDER BY id ASC`,
		ownerID.Valid, ownerID.Int64)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return collectDecks(rows)
}

func collectDecks(rows *sql.Rows) ([]model.Deck, error) {
	var decks []model.Deck
	for rows.Next() {
		d, err := scanDeck(rows)
		if err != nil {
			return nil, err
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}

// UpdateDeckName renames a deck.
func (q *Queries) UpdateDeckName(ctx context.Context, id int64, name string, updatedAt time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE decks SET name = ?, updated_at = ? WHERE id = ?`, name, updatedAt, id)
	return err
}

// TouchDeck bumps a deck's modification timestamp.
func (q *Queries) TouchDeck(ctx context.Context, id int64, updatedAt time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE decks SET updated_at = ? WHERE id = ?`, updatedAt, id)
	return err
}

// DeleteDeck removes a deck. Cards are removed via ON DELETE CASCADE, but
// callers delete them explicitly first to keep the order of destructive
// operations visible in the audit log.
func (q *Queries) DeleteDeck(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id)
	return err
}

const cardColumns = `id, deck_id, front_text, back_text, front_audio_url, front_video_url,
	back_audio_url, back_video_url, hint, notes, ease_factor, interval, repetitions,
	due_date, last_reviewed, video_order_key, created_at, updated_at`

func scanCard(row interface{ Scan(...any) error }) (model.Card, error) {
	var c model.Card
	err := row.Scan(&c.ID, &c.DeckID, &c.FrontText, &c.BackText, &c.FrontAudioURL,
		&c.FrontVideoURL, &c.BackAudioURL, &c.BackVideoURL, &c.Hint, &c.Notes,
		&c.EaseFactor, &c.Interval, &c.Repetitions, &c.DueDate, &c.LastReviewed,
		&c.VideoOrderKey, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// ListCardsByDeck returns a deck's cards ordered by the explicit video order
// key (nulls last) and then insertion order.
func (q *Queries) ListCardsByDeck(ctx context.Context, deckID int64) ([]model.Card, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+cardColumns+` FROM cards
		WHERE deck_id = ?
		ORDER BY video_order_key IS NULL, video_order_key ASC, id ASC`, deckID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var cards []model.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// CountCardsByDeck returns the number of cards in a deck.
func (q *Queries) CountCardsByDeck(ctx context.Context, deckID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cards WHERE deck_id = ?`, deckID).Scan(&n)
	return n, err
}

// InsertCardParams holds the fields for inserting a card.
type InsertCardParams struct {
	DeckID        int64
	FrontText     string
	BackText      string
	FrontAudioURL string
	FrontVideoURL string
	BackAudioURL  string
	BackVideoURL  string
	Hint          string
	Notes         string
	EaseFactor    float64
	Interval      int64
	Repetitions   int64
	DueDate       time.Time
	LastReviewed  sql.NullTime
	VideoOrderKey sql.NullInt64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// InsertCard inserts a card and returns the stored row.
func (q *Queries) InsertCard(ctx context.Context, p InsertCardParams) (model.Card, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO cards (deck_id, front_text, back_text, front_audio_url, front_video_url,
			back_audio_url, back_video_url, hint, notes, ease_factor, interval, repetitions,
			due_date, last_reviewed, video_order_key, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+cardColumns,
		p.DeckID, p.FrontText, p.BackText, p.FrontAudioURL, p.FrontVideoURL,
		p.BackAudioURL, p.BackVideoURL, p.Hint, p.Notes, p.EaseFactor, p.Interval,
		p.Repetitions, p.DueDate, p.LastReviewed, p.VideoOrderKey, p.CreatedAt, p.UpdatedAt)
	return scanCard(row)
}

// DeleteCardsByDeck removes every card of a deck, returning the count removed.
func (q *Queries) DeleteCardsByDeck(ctx context.Context, deckID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM cards WHERE deck_id = ?`, deckID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CreateEventParams holds the fields for creating an audit event.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	Metadata  string
	CreatedAt time.Time
}

// CreateEvent inserts an audit log row.
func (q *Queries) CreateEvent(ctx context.Context, p CreateEventParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO events (level, category, message, metadata, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		p.Level, p.Category, p.Message, p.Metadata, p.CreatedAt)
	return err
}

// ListRecentEvents returns the newest audit events, newest first.
func (q *Queries) ListRecentEvents(ctx context.Context, limit int64) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, level, category, message, metadata, created_at
		FROM events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
