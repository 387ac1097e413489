// Copyright (c) 2025-2026 Fortunada Cultura
// SPDX-License-Identifier: GPL-3.0-or-later

package ordering

import (
	"regexp"
	"strconv"
)

// Match is the tagged result of running the episode patterns over a text
// fragment.
type Match struct {
	Kind    MatchKind
	Season  int
	Episode int
	Scene   int64
}

// MatchKind discriminates pattern results.
type MatchKind int

// Pattern result kinds
const (
	MatchUnordered MatchKind = iota
	MatchSeasonEpisode
	MatchSceneOnly
)

// seasonEpisodePattern pairs a compiled pattern with its extractor so each
// entry can be evaluated (and tested) in isolation, top-down.
type seasonEpisodePattern struct {
	name    string
	re      *regexp.Regexp
	extract func(m []string) (season, episode int, ok bool)
}

func twoGroupExtract(m []string) (int, int, bool) {
	season, err1 := strconv.Atoi(m[1])
	episode, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return season, episode, true
}

// seasonEpisodePatterns is evaluated in order; the first match wins.
var seasonEpisodePatterns = []seasonEpisodePattern{
	{
		name:    "SxxEyy",
		re:      regexp.MustCompile(`(?i)S(\d{1,3})E(\d{1,3})`),
		extract: twoGroupExtract,
	},
	{
		name:    "NxM",
		re:      regexp.MustCompile(`(?i)\b(\d{1,3})x(\d{1,3})\b`),
		extract: twoGroupExtract,
	},
	{
		name:    "TxxEyy",
		re:      regexp.MustCompile(`(?i)T(\d{1,3})E(\d{1,3})`),
		extract: twoGroupExtract,
	},
	{
		name: "worded",
		re: regexp.MustCompile(
			`(?i)(?:Season|Temporada)[\s._-]*(\d{1,3}).*?(?:Ep|Epis[oó]dio|Episode)[\s._-]*(\d{1,3})`),
		extract: twoGroupExtract,
	},
}

// Partial worded patterns used when no full pattern matches; a season found
// in the media base path can pair with an episode found on the card.
var (
	seasonOnlyPattern  = regexp.MustCompile(`(?i)(?:Season|Temporada)[\s._-]*(\d{1,3})`)
	episodeOnlyPattern = regexp.MustCompile(`(?i)(?:Ep|Epis[oó]dio|Episode)[\s._-]*(\d{1,3})`)
)

// matchSeasonEpisode runs the full pattern list over the text fragments.
// Pattern priority beats fragment order: an earlier pattern matching any
// fragment wins over a later pattern matching an earlier one.
func matchSeasonEpisode(texts ...string) (Match, bool) {
	for _, p := range seasonEpisodePatterns {
		for _, text := range texts {
			if text == "" {
				continue
			}
			m := p.re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			if season, episode, ok := p.extract(m); ok {
				return Match{Kind: MatchSeasonEpisode, Season: season, Episode: episode}, true
			}
		}
	}
	return Match{Kind: MatchUnordered}, false
}

// Scene tokens: explicit markers beat bare digit runs.
var sceneTokenPattern = regexp.MustCompile(`(?i)\b(?:scene|cena|sc|clip)[\s._-]*(\d+)`)

// matchScene collects every explicit scene marker across the texts and
// keeps the minimum candidate.
func matchScene(texts ...string) (Match, bool) {
	var best int64
	var found bool
	for _, t := range texts {
		if t == "" {
			continue
		}
		for _, m := range sceneTokenPattern.FindAllStringSubmatch(t, -1) {
			if v, err := strconv.ParseInt(m[1], 10, 64); err == nil && (!found || v < best) {
				best = v
				found = true
			}
		}
	}
	if !found {
		return Match{Kind: MatchUnordered}, false
	}
	return Match{Kind: MatchSceneOnly, Scene: best}, true
}

// Dialogue-local tokens embedded in media URLs.
var lineTokenPattern = regexp.MustCompile(`(?i)(?:line|dialogue)_(\d+)`)

// Timestamp patterns for video filenames, tried in order.
var (
	// H.MM.SS.mmm-H.MM.SS.mmm range; the start timestamp is used.
	dottedRangePattern = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\.(\d{1,2})\.(\d{1,3})\s*-\s*\d{1,2}\.\d{1,2}\.\d{1,2}\.\d{1,3}`)
	// Single H.MM.SS.mmm timestamp.
	dottedSinglePattern = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\.(\d{1,2})\.(\d{1,3})`)
	// HH_MM_SS or HH-MM-SS with optional _mmm.
	underscorePattern = regexp.MustCompile(`(\d{1,2})[_-](\d{2})[_-](\d{2})(?:[_-](\d{1,3}))?`)
)

// digitRunPattern finds runs of digits; the timestamp fallback uses runs of
// three or more.
var (
	digitRunPattern     = regexp.MustCompile(`\d+`)
	longDigitRunPattern = regexp.MustCompile(`\d{3,}`)
)

// timestampMillis converts matched H/M/S/ms groups to total milliseconds.
func timestampMillis(h, m, s, ms string) (int64, bool) {
	hours, err1 := strconv.ParseInt(h, 10, 64)
	minutes, err2 := strconv.ParseInt(m, 10, 64)
	seconds, err3 := strconv.ParseInt(s, 10, 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}
	var millis int64
	if ms != "" {
		v, err := strconv.ParseInt(ms, 10, 64)
		if err != nil {
			return 0, false
		}
		millis = v
	}
	if minutes > 59 || seconds > 59 {
		return 0, false
	}
	return ((hours*60+minutes)*60+seconds)*1000 + millis, true
}

// videoTimestampKey extracts a sortable millisecond key from a video
// filename with its extension already removed.
func videoTimestampKey(name string) (int64, bool) {
	if m := dottedRangePattern.FindStringSubmatch(name); m != nil {
		if v, ok := timestampMillis(m[1], m[2], m[3], m[4]); ok {
			return v, true
		}
	}
	if m := dottedSinglePattern.FindStringSubmatch(name); m != nil {
		if v, ok := timestampMillis(m[1], m[2], m[3], m[4]); ok {
			return v, true
		}
	}
	if m := underscorePattern.FindStringSubmatch(name); m != nil {
		if v, ok := timestampMillis(m[1], m[2], m[3], m[4]); ok {
			return v, true
		}
	}
	// Last long digit run as a raw key.
	if runs := longDigitRunPattern.FindAllString(name, -1); len(runs) > 0 {
		if v, err := strconv.ParseInt(runs[len(runs)-1], 10, 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

// lastDigitRun returns the final run of digits in s.
func lastDigitRun(s string) (int64, bool) {
	runs := digitRunPattern.FindAllString(s, -1)
	if len(runs) == 0 {
		return 0, false
	}
	v, err := strconv.ParseInt(runs[len(runs)-1], 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
