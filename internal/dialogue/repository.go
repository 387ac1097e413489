// Copyright (c) 2025-2026 Fortunada Cultura
// SPDX-License-Identifier: GPL-3.0-or-later

// Package dialogue reads the per-language dialogue script library: line
// files under dialogues/<lang>/<key>.txt and recordings under
// audio/<lang>/<key>/. A missing file is an empty script, never an error.
package dialogue

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fortunadacultura/lingua-nova/internal/cache"
	"github.com/fortunadacultura/lingua-nova/internal/util"
)

// FallbackLanguage is the last-resort language for audio lookups.
const FallbackLanguage = "en"

// Audio extensions tried per language, in order.
var audioExtensions = []string{"mp3", "wav"}

// Repository provides access to the filesystem-backed dialogue library.
type Repository struct {
	dataDir   string
	languages []string
	lines     *cache.TypedCache[[]string]
	avail     *cache.TypedCache[[]string]
}

// NewRepository creates a repository rooted at dataDir. The languages list
// bounds translation-availability scans; c may be shared with other
// components.
func NewRepository(dataDir string, languages []string, c cache.Cacher, ttl time.Duration) *Repository {
	return &Repository{
		dataDir:   dataDir,
		languages: languages,
		lines:     cache.NewTypedCache[[]string](c, ttl),
		avail:     cache.NewTypedCache[[]string](c, ttl),
	}
}

// Languages returns the configured language list.
func (r *Repository) Languages() []string {
	return r.languages
}

// Lines returns the ordered script lines for (language, key). Absence of
// the file yields an empty slice and a nil error; the line index is the
// alignment key across languages.
func (r *Repository) Lines(ctx context.Context, language, key string) ([]string, error) {
	cacheKey := "lines:" + language + ":" + key
	if cached, ok := r.lines.Get(ctx, cacheKey); ok {
		return *cached, nil
	}

	path, err := util.SafeJoinPath(r.dataDir, "dialogues", language, key+".txt")
	if err != nil {
		return nil, fmt.Errorf("resolving script path for %s/%s: %w", language, key, err)
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading script %s/%s: %w", language, key, err)
	}

	lines := splitLines(string(data))
	_ = r.lines.Set(ctx, cacheKey, &lines)
	return lines, nil
}

// HasLines reports whether (language, key) has a non-empty script.
func (r *Repository) HasLines(ctx context.Context, language, key string) bool {
	lines, err := r.Lines(ctx, language, key)
	return err == nil && len(lines) > 0
}

// Keys lists the dialogue keys available for a language, sorted. A missing
// language directory yields an empty list.
func (r *Repository) Keys(_ context.Context, language string) ([]string, error) {
	dir := filepath.Join(r.dataDir, "dialogues", language)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing dialogue keys for %s: %w", language, err)
	}

	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".txt") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".txt"))
	}
	sort.Strings(keys)
	return keys, nil
}

// AvailableTranslations returns the languages other than sourceLanguage
// that have a non-empty script for key.
func (r *Repository) AvailableTranslations(ctx context.Context, sourceLanguage, key string) ([]string, error) {
	cacheKey := "avail:" + sourceLanguage + ":" + key
	if cached, ok := r.avail.Get(ctx, cacheKey); ok {
		return *cached, nil
	}

	available := []string{}
	for _, lang := range r.languages {
		if lang == sourceLanguage {
			continue
		}
		if r.HasLines(ctx, lang, key) {
			available = append(available, lang)
		}
	}

	_ = r.avail.Set(ctx, cacheKey, &available)
	return available, nil
}

// audioCandidate is one step of the audio fallback chain.
type audioCandidate struct {
	language string
	ext      string
}

// audioCandidates builds the ordered fallback chain for a language:
// (lang, mp3), (lang, wav), (en, mp3), (en, wav).
func audioCandidates(language string) []audioCandidate {
	var chain []audioCandidate
	for _, ext := range audioExtensions {
		chain = append(chain, audioCandidate{language: language, ext: ext})
	}
	if language != FallbackLanguage {
		for _, ext := range audioExtensions {
			chain = append(chain, audioCandidate{language: FallbackLanguage, ext: ext})
		}
	}
	return chain
}

// AudioURL resolves the recording for (language, key, lineIndex) through
// the fallback chain, returning a servable /media/ URL for the first
// candidate that exists on disk, or "" when none do.
func (r *Repository) AudioURL(language, key string, lineIndex int) string {
	for _, c := range audioCandidates(language) {
		filename := fmt.Sprintf("%s_%d.%s", key, lineIndex, c.ext)
		path := filepath.Join(r.dataDir, "audio", c.language, key, filename)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return "/media/audio/" + c.language + "/" + key + "/" + filename
		}
	}
	return ""
}

// splitLines splits a script file into lines, trimming line-level trailing
// whitespace and dropping trailing blank lines. Interior blank lines are
// kept so line indexes stay aligned across languages.
func splitLines(s string) []string {
	raw := strings.Split(s, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		lines = append(lines, strings.TrimRight(l, " \t\r"))
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
