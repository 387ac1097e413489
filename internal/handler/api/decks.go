// Copyright (c) 2025-2026 Fortunada Cultura
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/fortunadacultura/lingua-nova/internal/compositor"
	"github.com/fortunadacultura/lingua-nova/internal/middleware"
	"github.com/fortunadacultura/lingua-nova/internal/model"
	"github.com/fortunadacultura/lingua-nova/internal/syncer"
	"github.com/fortunadacultura/lingua-nova/internal/util"
)

// DeckView is one deck as served by the list endpoint.
type DeckView struct {
	ID             int64     `json:"id"`
	UUID           string    `json:"uuid"`
	Name           string    `json:"name"`
	DisplayTitle   string    `json:"display_title"`
	SourceLanguage string    `json:"source_language"`
	TargetSpec     string    `json:"target_spec,omitempty"`
	Kind           string    `json:"kind,omitempty"`
	DialogueKey    string    `json:"dialogue_key,omitempty"`
	Scope          string    `json:"scope,omitempty"`
	CardCount      int64     `json:"card_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ListDecks returns every deck visible to the caller. With no
// authenticated owner that means the global catalog.
func (h *Handler) ListDecks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ownerID := util.ParseNullInt64(r.URL.Query().Get("owner_id"))
	decks, err := h.queries.ListDecksVisibleTo(ctx, ownerID)
	if err != nil {
		h.logger.Error("listing decks failed", "error", err)
		WriteInternalError(w, "Failed to list decks")
		return
	}

	views := make([]DeckView, 0, len(decks))
	for _, deck := range decks {
		count, err := h.queries.CountCardsByDeck(ctx, deck.ID)
		if err != nil {
			h.logger.Error("counting deck cards failed", "deck_id", deck.ID, "error", err)
			WriteInternalError(w, "Failed to list decks")
			return
		}
		views = append(views, DeckView{
			ID:             deck.ID,
			UUID:           deck.UUID,
			Name:           deck.Name,
			DisplayTitle:   deck.DisplayTitle(),
			SourceLanguage: deck.SourceLanguage,
			TargetSpec:     deck.TargetSpec(),
			Kind:           deck.Kind,
			DialogueKey:    deck.DialogueKey,
			Scope:          deck.Scope,
			CardCount:      count,
			CreatedAt:      deck.CreatedAt,
			UpdatedAt:      deck.UpdatedAt,
		})
	}
	WriteSuccess(w, views, &Meta{Total: int64(len(views))})
}

// GetDeckCards returns the ordered card views of one deck. Dialogue decks
// are synthesized on the fly for the requested target language.
func (h *Handler) GetDeckCards(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid deck ID")
		return
	}

	deck, err := h.queries.GetDeckByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		WriteNotFound(w, "Deck not found")
		return
	}
	if err != nil {
		h.logger.Error("loading deck failed", "deck_id", id, "error", err)
		WriteInternalError(w, "Failed to load deck")
		return
	}

	views, err := h.comp.GetCards(ctx, deck, middleware.GetTargetLanguage(r), middleware.GetBaseURL(r))
	if errors.Is(err, compositor.ErrKeyUnresolved) {
		WriteNotFound(w, "Dialogue source not found for deck")
		return
	}
	if err != nil {
		h.logger.Error("composing deck cards failed", "category", model.EventCategoryDialogue,
			"deck_id", id, "error", err)
		WriteInternalError(w, "Failed to load cards")
		return
	}
	WriteSuccess(w, views, &Meta{Total: int64(len(views))})
}

// NormalizeResponse reports a materialization run.
type NormalizeResponse struct {
	DeckID int64 `json:"deck_id"`
	Cards  int   `json:"cards"`
}

// NormalizeDeck rewrites a dialogue deck's stored cards from its script.
func (h *Handler) NormalizeDeck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid deck ID")
		return
	}

	n, err := h.sync.Normalize(ctx, id, middleware.GetTargetLanguage(r))
	switch {
	case err == nil:
		WriteSuccess(w, NormalizeResponse{DeckID: id, Cards: n}, nil)
	case errors.Is(err, sql.ErrNoRows):
		WriteNotFound(w, "Deck not found")
	case errors.Is(err, compositor.ErrKeyUnresolved):
		WriteNotFound(w, "Dialogue source not found for deck")
	case errors.Is(err, syncer.ErrNotDialogueDeck):
		WriteBadRequest(w, "Deck is not a dialogue deck")
	case errors.Is(err, syncer.ErrSourceNotFound):
		WriteUnprocessable(w, "Dialogue source is missing or empty")
	default:
		h.logger.Error("normalize failed", "category", model.EventCategorySync,
			"deck_id", id, "error", err)
		WriteInternalError(w, "Failed to normalize deck")
	}
}
