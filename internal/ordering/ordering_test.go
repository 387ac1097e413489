// Copyright (c) 2025-2026 Fortunada Cultura
// SPDX-License-Identifier: GPL-3.0-or-later

package ordering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchSeasonEpisodePatterns(t *testing.T) {
	tests := []struct {
		text    string
		season  int
		episode int
		ok      bool
	}{
		{"Friends S01E02 clip", 1, 2, true},
		{"friends s10e23", 10, 23, true},
		{"show 3x07 part", 3, 7, true},
		{"serie T2E5", 2, 5, true},
		{"Temporada 1 Episódio 4", 1, 4, true},
		{"Season 2 Episode 11", 2, 11, true},
		{"Season 2, Ep 11", 2, 11, true},
		{"no markers here", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			m, ok := matchSeasonEpisode(tt.text)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.season, m.Season)
				assert.Equal(t, tt.episode, m.Episode)
				assert.Equal(t, MatchSeasonEpisode, m.Kind)
			}
		})
	}
}

func TestMatchSeasonEpisodePatternPriority(t *testing.T) {
	// An earlier pattern matching a later fragment beats a later pattern
	// matching an earlier one.
	m, ok := matchSeasonEpisode("show 3x07", "Friends S01E02")
	require.True(t, ok)
	assert.Equal(t, 1, m.Season)
	assert.Equal(t, 2, m.Episode)
}

func TestMatchScene(t *testing.T) {
	m, ok := matchScene("scene 8", "", "clip 5")
	require.True(t, ok)
	assert.Equal(t, MatchSceneOnly, m.Kind)
	assert.EqualValues(t, 5, m.Scene, "minimum candidate wins")

	m, ok = matchScene("no markers", "take99")
	require.False(t, ok)
	assert.Equal(t, MatchUnordered, m.Kind)
}

func TestVideoTimestampKey(t *testing.T) {
	tests := []struct {
		name string
		want int64
		ok   bool
	}{
		// Dotted range: start timestamp wins.
		{"0.01.23.450-0.01.25.900_clip", 1*60000 + 23*1000 + 450, true},
		// Single dotted timestamp.
		{"1.02.03.004", 1*3600000 + 2*60000 + 3*1000 + 4, true},
		// Underscore form without millis.
		{"00_01_30", 90 * 1000, true},
		// Underscore form with millis.
		{"00_01_30_500", 90*1000 + 500, true},
		// Raw digit-run fallback: last run of 3+ digits.
		{"lesson_part_00123", 123, true},
		{"no digits", 0, false},
		{"ab12", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := videoTimestampKey(tt.name)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestExtractSeasonEpisodeFromMediaBase(t *testing.T) {
	key := Extract(CardFields{Hint: "Episode 7"}, "/uploads/packages/3/friends/Season 2/media")
	require.True(t, key.HasSeasonEpisode)
	assert.Equal(t, 2, key.Season)
	assert.Equal(t, 7, key.Episode)
	assert.EqualValues(t, 2007, key.Composite)
}

func TestExtractVirtualCardLocalIndex(t *testing.T) {
	key := Extract(CardFields{ID: "v_42_7"}, "")
	require.True(t, key.HasLocalIndex)
	assert.EqualValues(t, 7, key.LocalIndex)
}

func TestExtractLineTokenFromMediaURL(t *testing.T) {
	key := Extract(CardFields{
		ID:            "19",
		FrontAudioURL: "/media/audio/en/greetings/line_4.mp3",
	}, "")
	require.True(t, key.HasLocalIndex)
	assert.EqualValues(t, 4, key.LocalIndex)
}

func TestExtractSceneOrder(t *testing.T) {
	// Explicit scene token wins over digit runs.
	key := Extract(CardFields{
		ID:            "9",
		FrontVideoURL: "/clips/cena 3 take99.mp4",
	}, "")
	require.True(t, key.HasSceneOrder)
	assert.EqualValues(t, 3, key.SceneOrder)

	// Minimum explicit candidate across fields.
	key = Extract(CardFields{
		ID:    "9",
		Hint:  "scene 8",
		Notes: "clip 5",
	}, "")
	require.True(t, key.HasSceneOrder)
	assert.EqualValues(t, 5, key.SceneOrder)
}

func TestCompareMissingSortsAfter(t *testing.T) {
	withComposite := Key{HasSeasonEpisode: true, Composite: 1002}
	without := Key{Arrival: 0}

	assert.Negative(t, Compare(withComposite, without))
	assert.Positive(t, Compare(without, withComposite))
}

func TestCompareTiers(t *testing.T) {
	a := Key{HasSeasonEpisode: true, Composite: 1001, HasVideoTimestamp: true, VideoTimestamp: 100}
	b := Key{HasSeasonEpisode: true, Composite: 1001, HasVideoTimestamp: true, VideoTimestamp: 200}
	assert.Negative(t, Compare(a, b), "equal composite falls through to video timestamp")

	c := Key{HasSeasonEpisode: true, Composite: 1001, HasSceneOrder: true, SceneOrder: 1}
	d := Key{HasSeasonEpisode: true, Composite: 1001, HasSceneOrder: true, SceneOrder: 2}
	assert.Negative(t, Compare(c, d))

	e := Key{Arrival: 1}
	f := Key{Arrival: 2}
	assert.Negative(t, Compare(e, f), "arrival order is the stable fallback")
}

func TestSortEpisodeGroups(t *testing.T) {
	// S1E2 cards inserted before S1E1 cards must still sort after them.
	type item struct {
		label string
		key   Key
	}
	items := []item{
		{"s1e2-a", Key{HasSeasonEpisode: true, Composite: 1002, HasSceneOrder: true, SceneOrder: 1, Arrival: 0}},
		{"s1e2-b", Key{HasSeasonEpisode: true, Composite: 1002, HasSceneOrder: true, SceneOrder: 2, Arrival: 1}},
		{"s1e1-a", Key{HasSeasonEpisode: true, Composite: 1001, HasSceneOrder: true, SceneOrder: 5, Arrival: 2}},
		{"s1e1-b", Key{HasSeasonEpisode: true, Composite: 1001, HasSceneOrder: true, SceneOrder: 9, Arrival: 3}},
	}

	SortByKey(items, func(it item) Key { return it.key })

	require.Equal(t, []string{"s1e1-a", "s1e1-b", "s1e2-a", "s1e2-b"},
		[]string{items[0].label, items[1].label, items[2].label, items[3].label})

	keys := make([]Key, len(items))
	for i, it := range items {
		keys[i] = it.key
	}
	indexes := AssignDisplayIndexes(keys)
	assert.Equal(t, []int{0, 1, 0, 1}, indexes, "display index resets per episode group")
}

func TestAssignDisplayIndexesUngrouped(t *testing.T) {
	keys := []Key{{Arrival: 0}, {Arrival: 1}, {Arrival: 2}}
	assert.Equal(t, []int{0, 1, 2}, AssignDisplayIndexes(keys))
}

func TestExtractTimestampPrefersFrontVideo(t *testing.T) {
	key := Extract(CardFields{
		ID:            "v_1_0",
		FrontVideoURL: "/clips/0.00.10.000.mp4",
		BackVideoURL:  "/clips/0.00.20.000.mp4",
	}, "")
	require.True(t, key.HasVideoTimestamp)
	assert.EqualValues(t, 10000, key.VideoTimestamp)
}
