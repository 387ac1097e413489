// Copyright (c) 2025-2026 Fortunada Cultura
// SPDX-License-Identifier: GPL-3.0-or-later

// Package compositor builds the card views served to clients. Dialogue
// decks are synthesized on the fly from the script library; stored decks
// are loaded, sanitized and rewritten. Both paths end in the same
// ordering and display renumbering.
package compositor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/fortunadacultura/lingua-nova/internal/dialogue"
	"github.com/fortunadacultura/lingua-nova/internal/media"
	"github.com/fortunadacultura/lingua-nova/internal/model"
	"github.com/fortunadacultura/lingua-nova/internal/ordering"
	"github.com/fortunadacultura/lingua-nova/internal/store"
	"github.com/fortunadacultura/lingua-nova/internal/util"
)

// ErrKeyUnresolved means a dialogue deck could not be tied back to any
// script in the library.
var ErrKeyUnresolved = errors.New("dialogue key unresolved")

// CardView is one card as served to clients. Virtual cards carry a
// synthetic v_<deck>_<line> id and are never persisted by the read path.
type CardView struct {
	ID            string  `json:"id"`
	DeckID        int64   `json:"deck_id"`
	FrontText     string  `json:"front_text"`
	BackText      string  `json:"back_text"`
	FrontAudioURL string  `json:"front_audio_url,omitempty"`
	FrontVideoURL string  `json:"front_video_url,omitempty"`
	BackAudioURL  string  `json:"back_audio_url,omitempty"`
	BackVideoURL  string  `json:"back_video_url,omitempty"`
	Hint          string  `json:"hint,omitempty"`
	Notes         string  `json:"notes,omitempty"`
	EaseFactor    float64 `json:"ease_factor"`
	Interval      int64   `json:"interval"`
	Repetitions   int64   `json:"repetitions"`
	DisplayIndex  int     `json:"display_index"`
	Virtual       bool    `json:"virtual"`

	// LineIndex is the source script line a virtual card was built from.
	// Meaningless (-1) for stored cards.
	LineIndex int `json:"-"`
}

// Compositor assembles deck card views.
type Compositor struct {
	queries  *store.Queries
	repo     *dialogue.Repository
	resolver *media.Resolver
	logger   *slog.Logger
}

// New creates a compositor.
func New(queries *store.Queries, repo *dialogue.Repository, resolver *media.Resolver, logger *slog.Logger) *Compositor {
	return &Compositor{queries: queries, repo: repo, resolver: resolver, logger: logger}
}

// ResolveDialogueKey finds the script key behind a dialogue deck: the
// stored key when present, otherwise a title-case match of the deck's
// display title against the library keys.
func (c *Compositor) ResolveDialogueKey(ctx context.Context, deck model.Deck) (string, error) {
	if deck.DialogueKey != "" {
		return deck.DialogueKey, nil
	}

	title := deck.DisplayTitle()
	keys, err := c.repo.Keys(ctx, deck.SourceLanguage)
	if err != nil {
		return "", fmt.Errorf("listing dialogue keys: %w", err)
	}
	for _, key := range keys {
		if strings.EqualFold(util.TitleCaseKey(key), title) {
			return key, nil
		}
	}
	return "", fmt.Errorf("%w: deck %q", ErrKeyUnresolved, deck.Name)
}

// Synthesize builds the virtual cards of a dialogue deck in source line
// order. targetSpec overrides the deck's own annotation when non-empty;
// when neither names a target, backs repeat the source line. An empty or
// missing source script yields an empty slice and no error.
func (c *Compositor) Synthesize(ctx context.Context, deck model.Deck, targetSpec string) ([]CardView, error) {
	key, err := c.ResolveDialogueKey(ctx, deck)
	if err != nil {
		return nil, err
	}

	sourceLines, err := c.repo.Lines(ctx, deck.SourceLanguage, key)
	if err != nil {
		return nil, err
	}
	if len(sourceLines) == 0 {
		return nil, nil
	}

	target := model.NormalizeTargetSpec(targetSpec)
	if target == "" {
		target = deck.TargetSpec()
	}

	var translations map[string][]string
	switch target {
	case model.TargetAll:
		translations, err = c.loadTranslations(ctx, deck.SourceLanguage, key)
	case "":
		// No target anywhere: backs fall back to the source line.
	default:
		translations = map[string][]string{}
		translations[target], err = c.repo.Lines(ctx, target, key)
	}
	if err != nil {
		return nil, err
	}

	views := make([]CardView, 0, len(sourceLines))
	for i, line := range sourceLines {
		// Blank lines produce no card; their index survives in the
		// virtual id so translation files stay line-aligned. A script
		// with interior blanks therefore yields fewer cards than lines.
		if strings.TrimSpace(line) == "" {
			continue
		}
		view := CardView{
			ID:            model.VirtualCardID(deck.ID, i),
			DeckID:        deck.ID,
			FrontText:     line,
			BackText:      backText(line, i, target, translations),
			FrontAudioURL: c.repo.AudioURL(deck.SourceLanguage, key, i),
			EaseFactor:    model.DefaultEaseFactor,
			Interval:      model.DefaultInterval,
			Repetitions:   model.DefaultRepetitions,
			Virtual:       true,
			LineIndex:     i,
		}
		if target != model.TargetAll && target != "" {
			view.BackAudioURL = c.repo.AudioURL(target, key, i)
		}
		views = append(views, view)
	}
	return views, nil
}

// loadTranslations reads every available translation of a key, keyed by
// language, in the repository's configured language order.
func (c *Compositor) loadTranslations(ctx context.Context, sourceLanguage, key string) (map[string][]string, error) {
	available, err := c.repo.AvailableTranslations(ctx, sourceLanguage, key)
	if err != nil {
		return nil, err
	}
	translations := make(map[string][]string, len(available))
	for _, lang := range available {
		lines, err := c.repo.Lines(ctx, lang, key)
		if err != nil {
			return nil, err
		}
		translations[lang] = lines
	}
	return translations, nil
}

// backText composes the back of a card. In ALL mode every translation
// contributes a "LANG: line" segment; a line with no translation anywhere
// falls back to the source line. In single-target mode the back is the
// target line, or the source line when the target has no line there.
func backText(sourceLine string, lineIndex int, target string, translations map[string][]string) string {
	if target == model.TargetAll {
		var segments []string
		for _, lang := range sortedLanguages(translations) {
			if t := translationLine(translations[lang], lineIndex); t != "" {
				segments = append(segments, strings.ToUpper(lang)+": "+t)
			}
		}
		if len(segments) == 0 {
			return sourceLine
		}
		return strings.Join(segments, "\n")
	}

	if t := translationLine(translations[target], lineIndex); t != "" {
		return t
	}
	return sourceLine
}

func translationLine(lines []string, i int) string {
	if i >= len(lines) {
		return ""
	}
	return strings.TrimSpace(lines[i])
}

func sortedLanguages(translations map[string][]string) []string {
	langs := make([]string, 0, len(translations))
	for lang := range translations {
		langs = append(langs, lang)
	}
	// Deterministic segment order regardless of map iteration.
	sort.Strings(langs)
	return langs
}

// GetCards returns the ordered, display-numbered card views of a deck.
// Dialogue decks are synthesized; stored decks are sanitized and have
// their media references rewritten against the resolved media base.
func (c *Compositor) GetCards(ctx context.Context, deck model.Deck, targetSpec, requestHost string) ([]CardView, error) {
	if deck.IsDialogue() {
		views, err := c.Synthesize(ctx, deck, targetSpec)
		if err != nil {
			return nil, err
		}
		for i := range views {
			views[i].FrontAudioURL = media.RewriteURL(views[i].FrontAudioURL, "", requestHost)
			views[i].BackAudioURL = media.RewriteURL(views[i].BackAudioURL, "", requestHost)
		}
		return finalize(views, ""), nil
	}

	cards, err := c.queries.ListCardsByDeck(ctx, deck.ID)
	if err != nil {
		return nil, err
	}

	mediaBase := c.resolver.ResolveMediaBase(deck.OwnerID.Int64, deck, cards)
	if mediaBase == "" && len(cards) > 0 {
		c.logger.Debug("no media base for deck", "deck_id", deck.ID)
	}
	views := make([]CardView, 0, len(cards))
	for _, card := range cards {
		front := media.SanitizeCaption(card.FrontText)
		back := media.SanitizeCaption(card.BackText)
		views = append(views, CardView{
			ID:            strconv.FormatInt(card.ID, 10),
			DeckID:        card.DeckID,
			FrontText:     media.RewriteMediaReferences(front, mediaBase, requestHost),
			BackText:      media.RewriteMediaReferences(back, mediaBase, requestHost),
			FrontAudioURL: media.RewriteURL(card.FrontAudioURL, mediaBase, requestHost),
			FrontVideoURL: media.RewriteURL(card.FrontVideoURL, mediaBase, requestHost),
			BackAudioURL:  media.RewriteURL(card.BackAudioURL, mediaBase, requestHost),
			BackVideoURL:  media.RewriteURL(card.BackVideoURL, mediaBase, requestHost),
			Hint:          card.Hint,
			Notes:         card.Notes,
			EaseFactor:    card.EaseFactor,
			Interval:      card.Interval,
			Repetitions:   card.Repetitions,
			LineIndex:     -1,
		})
	}
	return finalize(views, mediaBase), nil
}

// finalize sorts views by their ordering keys and assigns display indexes.
func finalize(views []CardView, mediaBase string) []CardView {
	if len(views) == 0 {
		return []CardView{}
	}

	keys := make(map[string]ordering.Key, len(views))
	for i, v := range views {
		keys[v.ID] = ordering.Extract(ordering.CardFields{
			ID:            v.ID,
			Hint:          v.Hint,
			Notes:         v.Notes,
			FrontText:     v.FrontText,
			BackText:      v.BackText,
			FrontAudioURL: v.FrontAudioURL,
			FrontVideoURL: v.FrontVideoURL,
			BackAudioURL:  v.BackAudioURL,
			BackVideoURL:  v.BackVideoURL,
			Arrival:       i,
		}, mediaBase)
	}

	ordering.SortByKey(views, func(v CardView) ordering.Key { return keys[v.ID] })

	sorted := make([]ordering.Key, len(views))
	for i, v := range views {
		sorted[i] = keys[v.ID]
	}
	for i, idx := range ordering.AssignDisplayIndexes(sorted) {
		views[i].DisplayIndex = idx
	}
	return views
}
