// Copyright (c) 2025-2026 Fortunada Cultura
// SPDX-License-Identifier: GPL-3.0-or-later

// Package syncer reconciles the global deck catalog against the dialogue
// script library and materializes dialogue decks into stored cards. All
// bulk operations are idempotent and degrade per-key: one bad dialogue
// never aborts the run.
package syncer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fortunadacultura/lingua-nova/internal/compositor"
	"github.com/fortunadacultura/lingua-nova/internal/dialogue"
	"github.com/fortunadacultura/lingua-nova/internal/model"
	"github.com/fortunadacultura/lingua-nova/internal/store"
	"github.com/fortunadacultura/lingua-nova/internal/util"
)

var (
	// ErrSourceNotFound means a dialogue deck's source script is missing
	// or empty, so there is nothing to materialize.
	ErrSourceNotFound = errors.New("dialogue source not found")

	// ErrNotDialogueDeck means a materialization was requested for a deck
	// that is not derived from a dialogue script.
	ErrNotDialogueDeck = errors.New("not a dialogue deck")
)

// Sync result statuses.
const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
	StatusError   = "error"
)

// Syncer drives catalog reconciliation and card materialization.
type Syncer struct {
	queries        *store.Queries
	repo           *dialogue.Repository
	comp           *compositor.Compositor
	logger         *slog.Logger
	sourceLanguage string
	defaultTarget  string
}

// New creates a syncer. sourceLanguage is the library's script language;
// defaultTarget is the translation preferred when naming new decks.
func New(queries *store.Queries, repo *dialogue.Repository, comp *compositor.Compositor,
	logger *slog.Logger, sourceLanguage, defaultTarget string) *Syncer {
	return &Syncer{
		queries:        queries,
		repo:           repo,
		comp:           comp,
		logger:         logger,
		sourceLanguage: sourceLanguage,
		defaultTarget:  defaultTarget,
	}
}

// ReconcileSummary counts the catalog mutations of one reconcile run.
type ReconcileSummary struct {
	Created int `json:"created"`
	Renamed int `json:"renamed"`
	Deleted int `json:"deleted"`
	Kept    int `json:"kept"`
}

// ReconcileGlobalDecks brings the global dialogue deck catalog in line
// with the script library: duplicate decks per key are collapsed onto the
// oldest, decks whose script vanished are deleted, surviving decks are
// renamed to the canonical name, and missing decks are created. A second
// run over an unchanged library is a no-op.
func (s *Syncer) ReconcileGlobalDecks(ctx context.Context) (ReconcileSummary, error) {
	var summary ReconcileSummary

	keys, err := s.repo.Keys(ctx, s.sourceLanguage)
	if err != nil {
		return summary, fmt.Errorf("listing dialogue keys: %w", err)
	}
	keySet := make(map[string]bool, len(keys))
	for _, k := range keys {
		keySet[k] = true
	}

	decks, err := s.queries.ListGlobalDialogueDecks(ctx, s.sourceLanguage)
	if err != nil {
		return summary, fmt.Errorf("listing global decks: %w", err)
	}

	// Oldest deck per key survives; later duplicates go.
	byKey := make(map[string]model.Deck, len(decks))
	for _, deck := range decks {
		key := deck.DialogueKey
		if key == "" {
			key, err = s.comp.ResolveDialogueKey(ctx, deck)
			if err != nil {
				s.logger.Warn("deck has no resolvable dialogue key, deleting",
					"category", model.EventCategorySync, "deck_id", deck.ID, "deck", deck.Name)
				if s.deleteDeck(ctx, deck) {
					summary.Deleted++
				}
				continue
			}
		}

		if _, dup := byKey[key]; dup {
			s.logger.Info("removing duplicate global deck",
				"category", model.EventCategorySync, "deck_id", deck.ID, "dialogue_key", key)
			if s.deleteDeck(ctx, deck) {
				summary.Deleted++
			}
			continue
		}

		if !keySet[key] {
			s.logger.Info("removing deck for vanished dialogue",
				"category", model.EventCategorySync, "deck_id", deck.ID, "dialogue_key", key)
			if s.deleteDeck(ctx, deck) {
				summary.Deleted++
			}
			continue
		}

		byKey[key] = deck
	}

	now := time.Now()
	for key, deck := range byKey {
		want := model.GlobalDeckName(key, s.desiredTarget(ctx, key))
		if deck.Name == want {
			summary.Kept++
			continue
		}
		if err := s.queries.UpdateDeckName(ctx, deck.ID, want, now); err != nil {
			s.logger.Error("renaming deck failed", "category", model.EventCategorySync,
				"deck_id", deck.ID, "error", err)
			continue
		}
		summary.Renamed++
	}

	for _, key := range keys {
		if _, exists := byKey[key]; exists {
			continue
		}
		name := model.GlobalDeckName(key, s.desiredTarget(ctx, key))
		_, err := s.queries.CreateDeck(ctx, store.CreateDeckParams{
			UUID:           uuid.NewString(),
			Name:           name,
			SourceLanguage: s.sourceLanguage,
			Kind:           model.DeckKindDialogue,
			DialogueKey:    key,
			Scope:          model.DeckScopeGlobal,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		if err != nil {
			s.logger.Error("creating deck failed", "category", model.EventCategorySync,
				"dialogue_key", key, "error", err)
			continue
		}
		summary.Created++
	}

	s.logger.Info("reconcile finished", "category", model.EventCategorySync,
		"created", summary.Created, "renamed", summary.Renamed,
		"deleted", summary.Deleted, "kept", summary.Kept)
	return summary, nil
}

// desiredTarget picks the target annotation for a key: the default target
// when its translation exists, ALL when any other translation exists, and
// the default target as a last resort.
func (s *Syncer) desiredTarget(ctx context.Context, key string) string {
	if s.repo.HasLines(ctx, s.defaultTarget, key) {
		return s.defaultTarget
	}
	available, err := s.repo.AvailableTranslations(ctx, s.sourceLanguage, key)
	if err == nil && len(available) > 0 {
		return model.TargetAll
	}
	return s.defaultTarget
}

// deleteDeck removes a deck and its cards, logging failures. Cards go
// first so the audit trail shows the destructive order.
func (s *Syncer) deleteDeck(ctx context.Context, deck model.Deck) bool {
	if _, err := s.queries.DeleteCardsByDeck(ctx, deck.ID); err != nil {
		s.logger.Error("deleting deck cards failed", "category", model.EventCategorySync,
			"deck_id", deck.ID, "error", err)
		return false
	}
	if err := s.queries.DeleteDeck(ctx, deck.ID); err != nil {
		s.logger.Error("deleting deck failed", "category", model.EventCategorySync,
			"deck_id", deck.ID, "error", err)
		return false
	}
	return true
}

// Normalize replaces a dialogue deck's stored cards with a fresh
// materialization of its script, returning the number of cards written.
// Scheduling state is reset to defaults; running it twice in a row yields
// an identical card set.
func (s *Syncer) Normalize(ctx context.Context, deckID int64, targetSpec string) (int, error) {
	deck, err := s.queries.GetDeckByID(ctx, deckID)
	if err != nil {
		return 0, fmt.Errorf("loading deck %d: %w", deckID, err)
	}
	if !deck.IsDialogue() {
		return 0, fmt.Errorf("%w: deck %d", ErrNotDialogueDeck, deckID)
	}

	views, err := s.comp.Synthesize(ctx, deck, targetSpec)
	if err != nil {
		return 0, err
	}
	if len(views) == 0 {
		return 0, fmt.Errorf("%w: deck %d", ErrSourceNotFound, deckID)
	}

	if _, err := s.queries.DeleteCardsByDeck(ctx, deck.ID); err != nil {
		return 0, fmt.Errorf("clearing deck %d: %w", deck.ID, err)
	}

	now := time.Now()
	due := now.Truncate(24 * time.Hour)
	for _, v := range views {
		_, err := s.queries.InsertCard(ctx, store.InsertCardParams{
			DeckID:        deck.ID,
			FrontText:     v.FrontText,
			BackText:      v.BackText,
			FrontAudioURL: v.FrontAudioURL,
			BackAudioURL:  v.BackAudioURL,
			EaseFactor:    model.DefaultEaseFactor,
			Interval:      model.DefaultInterval,
			Repetitions:   model.DefaultRepetitions,
			DueDate:       due,
			VideoOrderKey: util.NullInt64FromValue(int64(v.LineIndex)),
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err != nil {
			return 0, fmt.Errorf("inserting card for deck %d: %w", deck.ID, err)
		}
	}

	if err := s.queries.TouchDeck(ctx, deck.ID, now); err != nil {
		return 0, fmt.Errorf("touching deck %d: %w", deck.ID, err)
	}

	s.logger.Info("deck normalized", "category", model.EventCategorySync,
		"deck_id", deck.ID, "cards", len(views))
	return len(views), nil
}

// SyncResult reports the outcome of one deck during a full sync.
type SyncResult struct {
	DeckID int64  `json:"deck_id"`
	Deck   string `json:"deck"`
	Status string `json:"status"`
	Cards  int    `json:"cards,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// SyncAll reconciles the catalog and then normalizes every dialogue deck
// visible to ownerID: the global decks plus, when ownerID is valid, the
// owner's private ones. targetSpec, when non-empty, overrides each deck's
// own annotation. Individual failures are reported, never fatal.
func (s *Syncer) SyncAll(ctx context.Context, ownerID sql.NullInt64, targetSpec string) (ReconcileSummary, []SyncResult, error) {
	summary, err := s.ReconcileGlobalDecks(ctx)
	if err != nil {
		return summary, nil, err
	}

	decks, err := s.queries.ListDecksVisibleTo(ctx, ownerID)
	if err != nil {
		return summary, nil, fmt.Errorf("listing decks: %w", err)
	}

	results := make([]SyncResult, 0, len(decks))
	for _, deck := range decks {
		if !deck.IsDialogue() {
			continue
		}
		result := SyncResult{DeckID: deck.ID, Deck: deck.Name}

		n, err := s.Normalize(ctx, deck.ID, targetSpec)
		switch {
		case err == nil:
			result.Status = StatusOK
			result.Cards = n
		case errors.Is(err, ErrSourceNotFound) || errors.Is(err, compositor.ErrKeyUnresolved):
			result.Status = StatusSkipped
			result.Detail = err.Error()
		default:
			s.logger.Error("deck sync failed", "category", model.EventCategorySync,
				"deck_id", deck.ID, "error", err)
			result.Status = StatusError
			result.Detail = err.Error()
		}
		results = append(results, result)
	}
	return summary, results, nil
}
