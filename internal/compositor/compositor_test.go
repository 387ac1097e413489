// Copyright (c) 2025-2026 Fortunada Cultura
// SPDX-License-Identifier: GPL-3.0-or-later

package compositor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/uuid"

	"github.com/fortunadacultura/lingua-nova/internal/cache"
	"github.com/fortunadacultura/lingua-nova/internal/dialogue"
	"github.com/fortunadacultura/lingua-nova/internal/media"
	"github.com/fortunadacultura/lingua-nova/internal/model"
	"github.com/fortunadacultura/lingua-nova/internal/store"
	"github.com/fortunadacultura/lingua-nova/internal/testutil"
)

func testCompositor(t *testing.T) (*Compositor, string) {
	t.Helper()

	dataDir := t.TempDir()
	c := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = c.Close() })

	repo := dialogue.NewRepository(dataDir, []string{"en", "pt", "es"}, c, time.Minute)
	resolver := media.NewResolver(t.TempDir(), testutil.NewLogger())
	return New(testutil.NewDB(t), repo, resolver, testutil.NewLogger()), dataDir
}

func dialogueDeck(id int64, name, key string) model.Deck {
	return model.Deck{
		ID:             id,
		Name:           name,
		SourceLanguage: "en",
		Kind:           model.DeckKindDialogue,
		DialogueKey:    key,
		Scope:          model.DeckScopeGlobal,
	}
}

func TestSynthesizeSingleTarget(t *testing.T) {
	comp, dataDir := testCompositor(t)
	ctx := context.Background()

	testutil.WriteDialogue(t, dataDir, "en", "greetings", "Hello", "How are you?")
	testutil.WriteDialogue(t, dataDir, "pt", "greetings", "Olá", "Como vai?")
	testutil.WriteAudio(t, dataDir, "en", "greetings", 0, "mp3")

	views, err := comp.Synthesize(ctx, dialogueDeck(1, "Greetings (PT)", "greetings"), "")
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, "v_1_0", views[0].ID)
	assert.Equal(t, "Hello", views[0].FrontText)
	assert.Equal(t, "Olá", views[0].BackText)
	assert.Equal(t, "/media/audio/en/greetings/greetings_0.mp3", views[0].FrontAudioURL)
	assert.True(t, views[0].Virtual)
	assert.Equal(t, model.DefaultEaseFactor, views[0].EaseFactor)

	assert.Equal(t, "v_1_1", views[1].ID)
	assert.Equal(t, "Como vai?", views[1].BackText)
	assert.Empty(t, views[1].BackAudioURL, "no recording for the target language")
}

func TestSynthesizeAllTargets(t *testing.T) {
	comp, dataDir := testCompositor(t)
	ctx := context.Background()

	testutil.WriteDialogue(t, dataDir, "en", "greetings", "Hello")
	testutil.WriteDialogue(t, dataDir, "pt", "greetings", "Olá")
	testutil.WriteDialogue(t, dataDir, "es", "greetings", "Hola")

	views, err := comp.Synthesize(ctx, dialogueDeck(1, "Greetings (ALL)", "greetings"), "")
	require.NoError(t, err)
	require.Len(t, views, 1)

	assert.Equal(t, "ES: Hola\nPT: Olá", views[0].BackText)
	assert.Empty(t, views[0].BackAudioURL, "no single target, no back audio")
}

func TestSynthesizeNoTargetRepeatsSource(t *testing.T) {
	comp, dataDir := testCompositor(t)
	ctx := context.Background()

	testutil.WriteDialogue(t, dataDir, "en", "greetings", "Hello")
	testutil.WriteDialogue(t, dataDir, "pt", "greetings", "Olá")
	testutil.WriteAudio(t, dataDir, "en", "greetings", 0, "mp3")

	// Neither the request nor the deck name carries a target annotation.
	views, err := comp.Synthesize(ctx, dialogueDeck(1, "Greetings", "greetings"), "")
	require.NoError(t, err)
	require.Len(t, views, 1)

	assert.Equal(t, "Hello", views[0].BackText, "translations are not consulted without a target")
	assert.Empty(t, views[0].BackAudioURL)
	assert.Equal(t, "/media/audio/en/greetings/greetings_0.mp3", views[0].FrontAudioURL)
}

func TestSynthesizeTargetOverride(t *testing.T) {
	comp, dataDir := testCompositor(t)
	ctx := context.Background()

	testutil.WriteDialogue(t, dataDir, "en", "greetings", "Hello")
	testutil.WriteDialogue(t, dataDir, "pt", "greetings", "Olá")
	testutil.WriteDialogue(t, dataDir, "es", "greetings", "Hola")

	views, err := comp.Synthesize(ctx, dialogueDeck(1, "Greetings (PT)", "greetings"), "es")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Hola", views[0].BackText)
}

func TestSynthesizeMissingTranslationFallsBackToSource(t *testing.T) {
	comp, dataDir := testCompositor(t)
	ctx := context.Background()

	testutil.WriteDialogue(t, dataDir, "en", "greetings", "Hello", "Goodbye")
	testutil.WriteDialogue(t, dataDir, "pt", "greetings", "Olá")

	views, err := comp.Synthesize(ctx, dialogueDeck(1, "Greetings (PT)", "greetings"), "")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "Olá", views[0].BackText)
	assert.Equal(t, "Goodbye", views[1].BackText, "untranslated line shows the source")
}

func TestSynthesizeSkipsBlankLinesKeepingIndexes(t *testing.T) {
	comp, dataDir := testCompositor(t)
	ctx := context.Background()

	testutil.WriteDialogue(t, dataDir, "en", "greetings", "Hello", "", "Goodbye")

	views, err := comp.Synthesize(ctx, dialogueDeck(1, "Greetings (ALL)", "greetings"), "")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "v_1_0", views[0].ID)
	assert.Equal(t, "v_1_2", views[1].ID, "line index survives the skipped blank")
}

func TestSynthesizeNoTranslationsAnywhere(t *testing.T) {
	comp, dataDir := testCompositor(t)
	ctx := context.Background()

	testutil.WriteDialogue(t, dataDir, "en", "greetings", "Hello")

	views, err := comp.Synthesize(ctx, dialogueDeck(1, "Greetings (ALL)", "greetings"), "")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Hello", views[0].BackText)
}

func TestSynthesizeMissingSource(t *testing.T) {
	comp, _ := testCompositor(t)

	views, err := comp.Synthesize(context.Background(), dialogueDeck(1, "Greetings (PT)", "greetings"), "")
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestResolveDialogueKeyByTitle(t *testing.T) {
	comp, dataDir := testCompositor(t)
	ctx := context.Background()

	testutil.WriteDialogue(t, dataDir, "en", "coffee_shop", "One espresso, please.")

	deck := dialogueDeck(1, "Coffee Shop (PT)", "")
	key, err := comp.ResolveDialogueKey(ctx, deck)
	require.NoError(t, err)
	assert.Equal(t, "coffee_shop", key)
}

func TestResolveDialogueKeyUnresolved(t *testing.T) {
	comp, _ := testCompositor(t)

	_, err := comp.ResolveDialogueKey(context.Background(), dialogueDeck(1, "Nowhere (PT)", ""))
	assert.ErrorIs(t, err, ErrKeyUnresolved)
}

func TestGetCardsDialogueDeck(t *testing.T) {
	comp, dataDir := testCompositor(t)
	ctx := context.Background()

	testutil.WriteDialogue(t, dataDir, "en", "greetings", "Hello", "Goodbye")
	testutil.WriteAudio(t, dataDir, "en", "greetings", 0, "mp3")

	views, err := comp.GetCards(ctx, dialogueDeck(1, "Greetings (ALL)", "greetings"), "", "https://app.example.com")
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, []int{0, 1}, []int{views[0].DisplayIndex, views[1].DisplayIndex})
	assert.Equal(t, "https://app.example.com/media/audio/en/greetings/greetings_0.mp3",
		views[0].FrontAudioURL)
}

func TestGetCardsDialogueDeckEmptySource(t *testing.T) {
	comp, _ := testCompositor(t)

	views, err := comp.GetCards(context.Background(), dialogueDeck(1, "Greetings (ALL)", "greetings"), "", "")
	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func TestGetCardsStoredDeck(t *testing.T) {
	comp, _ := testCompositor(t)
	ctx := context.Background()

	deck, err := comp.queries.CreateDeck(ctx, storeDeckParams("Friends"))
	require.NoError(t, err)

	insertCard(t, comp, deck.ID, "S01E02 scene 1", "Hola - Hello")
	insertCard(t, comp, deck.ID, "S01E01 scene 1", "plain back")

	views, err := comp.GetCards(ctx, deck, "", "")
	require.NoError(t, err)
	require.Len(t, views, 2)

	// Episode one sorts first even though it was inserted second.
	assert.Equal(t, "S01E01 scene 1", views[0].FrontText)
	assert.Equal(t, 0, views[0].DisplayIndex)
	assert.Equal(t, 0, views[1].DisplayIndex, "display index resets per episode group")

	// Captions pass through sanitization: bilingual delimiter split.
	assert.Equal(t, "Hola\nHello", views[1].BackText)
}

func storeDeckParams(name string) store.CreateDeckParams {
	now := time.Now()
	return store.CreateDeckParams{
		UUID:           uuid.NewString(),
		Name:           name,
		SourceLanguage: "en",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func insertCard(t *testing.T, comp *Compositor, deckID int64, front, back string) {
	t.Helper()

	now := time.Now()
	_, err := comp.queries.InsertCard(context.Background(), store.InsertCardParams{
		DeckID:     deckID,
		FrontText:  front,
		BackText:   back,
		EaseFactor: model.DefaultEaseFactor,
		DueDate:    now,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	require.NoError(t, err)
}
