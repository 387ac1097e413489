// Copyright (c) 2025-2026 Fortunada Cultura
// SPDX-License-Identifier: GPL-3.0-or-later

// Package ordering derives a stable cross-episode sort key for cards from
// their text fields and media filenames. Extraction is pure: no I/O, no
// store access.
package ordering

import (
	"net/url"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/fortunadacultura/lingua-nova/internal/model"
)

// compositeScale folds season and episode into one sortable value.
const compositeScale = 1000

// CardFields is the card material the extractor reads. Media URLs may be
// empty; Arrival is the position of the card in its source list and serves
// as the stable fallback.
type CardFields struct {
	ID            string
	Hint          string
	Notes         string
	FrontText     string
	BackText      string
	FrontAudioURL string
	FrontVideoURL string
	BackAudioURL  string
	BackVideoURL  string
	Arrival       int
}

// Key is the computed ordering key. Each criterion carries a presence flag;
// absent criteria sort after present ones at their tier.
type Key struct {
	Season           int
	Episode          int
	Composite        int64
	HasSeasonEpisode bool

	VideoTimestamp    int64
	HasVideoTimestamp bool

	SceneOrder    int64
	HasSceneOrder bool

	LocalIndex    int64
	HasLocalIndex bool

	Arrival int
}

// Extract computes the ordering key for one card. mediaBase, when known,
// contributes season/episode hints from its path segments.
func Extract(c CardFields, mediaBase string) Key {
	key := Key{Arrival: c.Arrival}

	filenames := mediaFilenames(c)
	fragments := make([]string, 0, 4+len(filenames))
	fragments = append(fragments, c.Hint, c.Notes, c.FrontText, c.BackText)
	fragments = append(fragments, filenames...)

	key.Season, key.Episode, key.HasSeasonEpisode = extractSeasonEpisode(fragments, mediaBase)
	if key.HasSeasonEpisode {
		key.Composite = int64(key.Season)*compositeScale + int64(key.Episode)
	}

	key.VideoTimestamp, key.HasVideoTimestamp = extractVideoTimestamp(c)
	key.LocalIndex, key.HasLocalIndex = extractLocalIndex(c, filenames)
	key.SceneOrder, key.HasSceneOrder = extractSceneOrder(c, filenames)

	// Scene order falls back to the dialogue-local index when no scene
	// marker exists anywhere on the card.
	if !key.HasSceneOrder && key.HasLocalIndex {
		key.SceneOrder = key.LocalIndex
		key.HasSceneOrder = true
	}

	return key
}

// extractSeasonEpisode tries the full pattern list over every fragment
// and media base segment, then pairs a season found in the media base
// path with an episode found on the card.
func extractSeasonEpisode(fragments []string, mediaBase string) (season, episode int, ok bool) {
	segments := baseSegments(mediaBase)

	texts := make([]string, 0, len(fragments)+len(segments))
	texts = append(texts, fragments...)
	texts = append(texts, segments...)
	if m, matched := matchSeasonEpisode(texts...); matched {
		return m.Season, m.Episode, true
	}

	// Partial inference: season from the media base, episode from the card.
	var haveSeason bool
	for _, seg := range segments {
		if m := seasonOnlyPattern.FindStringSubmatch(seg); m != nil {
			if v, ok := atoiMatch(m[1]); ok {
				season = v
				haveSeason = true
				break
			}
		}
	}
	if !haveSeason {
		return 0, 0, false
	}
	for _, frag := range fragments {
		if frag == "" {
			continue
		}
		if m := episodeOnlyPattern.FindStringSubmatch(frag); m != nil {
			if v, ok := atoiMatch(m[1]); ok {
				return season, v, true
			}
		}
	}
	return 0, 0, false
}

// extractVideoTimestamp reads the front (or, failing that, back) video
// filename minus extension.
func extractVideoTimestamp(c CardFields) (int64, bool) {
	videoURL := c.FrontVideoURL
	if videoURL == "" {
		videoURL = c.BackVideoURL
	}
	if videoURL == "" {
		return 0, false
	}
	name := urlFilename(videoURL)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return videoTimestampKey(name)
}

// extractSceneOrder looks for explicit scene/cena/sc/clip markers across
// the media filenames plus hint/notes, falling back to the minimum last
// digit run of the filenames.
func extractSceneOrder(c CardFields, filenames []string) (int64, bool) {
	texts := append([]string{c.Hint, c.Notes}, filenames...)
	if m, ok := matchScene(texts...); ok {
		return m.Scene, true
	}

	var best int64
	var found bool
	for _, name := range filenames {
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		if v, ok := lastDigitRun(stem); ok && (!found || v < best) {
			best = v
			found = true
		}
	}
	return best, found
}

// extractLocalIndex resolves the dialogue-local index from the synthetic
// card id, a line_<n>/dialogue_<n> token in a media URL, or the last digit
// run of a media filename.
func extractLocalIndex(c CardFields, filenames []string) (int64, bool) {
	if n, ok := model.ParseVirtualCardID(c.ID); ok {
		return int64(n), true
	}

	for _, u := range []string{c.FrontAudioURL, c.FrontVideoURL, c.BackAudioURL, c.BackVideoURL} {
		if m := lineTokenPattern.FindStringSubmatch(u); m != nil {
			if v, ok := atoi64Match(m[1]); ok {
				return v, true
			}
		}
	}

	for _, name := range filenames {
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		if v, ok := lastDigitRun(stem); ok {
			return v, true
		}
	}
	return 0, false
}

// Compare orders two keys. Negative means a sorts before b. At every tier
// a present criterion sorts before an absent one.
func Compare(a, b Key) int {
	if c := compareTier(a.HasSeasonEpisode, b.HasSeasonEpisode, a.Composite, b.Composite); c != 0 {
		return c
	}
	if c := compareTier(a.HasVideoTimestamp, b.HasVideoTimestamp, a.VideoTimestamp, b.VideoTimestamp); c != 0 {
		return c
	}
	if c := compareTier(a.HasSceneOrder, b.HasSceneOrder, a.SceneOrder, b.SceneOrder); c != 0 {
		return c
	}
	if c := compareTier(a.HasLocalIndex, b.HasLocalIndex, a.LocalIndex, b.LocalIndex); c != 0 {
		return c
	}
	// Stable fallback: original arrival order.
	switch {
	case a.Arrival < b.Arrival:
		return -1
	case a.Arrival > b.Arrival:
		return 1
	default:
		return 0
	}
}

func compareTier(aHas, bHas bool, aVal, bVal int64) int {
	switch {
	case aHas && !bHas:
		return -1
	case !aHas && bHas:
		return 1
	case !aHas && !bHas:
		return 0
	case aVal < bVal:
		return -1
	case aVal > bVal:
		return 1
	default:
		return 0
	}
}

// SortByKey stably sorts items by their precomputed ordering keys.
func SortByKey[T any](items []T, keyOf func(T) Key) {
	sort.SliceStable(items, func(i, j int) bool {
		return Compare(keyOf(items[i]), keyOf(items[j])) < 0
	})
}

// AssignDisplayIndexes walks sorted keys and assigns a zero-based display
// index that resets whenever the grouping key changes from the previous
// item. Cards without a season-episode composite share one trailing group.
func AssignDisplayIndexes(keys []Key) []int {
	indexes := make([]int, len(keys))
	prevGroup := ""
	counter := 0
	for i, k := range keys {
		group := groupLabel(k)
		if i == 0 || group != prevGroup {
			counter = 0
		}
		indexes[i] = counter
		counter++
		prevGroup = group
	}
	return indexes
}

func groupLabel(k Key) string {
	if k.HasSeasonEpisode {
		return "se:" + strconv.FormatInt(k.Composite, 10)
	}
	return ""
}

func mediaFilenames(c CardFields) []string {
	var names []string
	for _, u := range []string{c.FrontAudioURL, c.FrontVideoURL, c.BackAudioURL, c.BackVideoURL} {
		if u == "" {
			continue
		}
		if name := urlFilename(u); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// urlFilename returns the final path component of a URL or path, without
// query parameters.
func urlFilename(raw string) string {
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return path.Base(raw)
}

// baseSegments splits a media base path into its directory names.
func baseSegments(mediaBase string) []string {
	if mediaBase == "" {
		return nil
	}
	return strings.FieldsFunc(mediaBase, func(r rune) bool {
		return r == '/' || r == '\\'
	})
}

func atoiMatch(s string) (int, bool) {
	v, err := strconv.Atoi(s)
	return v, err == nil
}

func atoi64Match(s string) (int64, bool) {
	v, err := strconv.ParseInt(s, 10, 64)
	return v, err == nil
}
