// Copyright (c) 2025-2026 Fortunada Cultura
// SPDX-License-Identifier: GPL-3.0-or-later

package media

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"
	"github.com/microcosm-cc/bluemonday"
)

// sentenceArtifactPattern matches the "sentence:<digits> sentence" noise
// token left behind by the subtitle exporter.
var sentenceArtifactPattern = regexp.MustCompile(`(?i)sentence:\d+\s*sentence`)

// Malformed img syntax produced by pasted editor HTML.
var (
	// src attribute missing its '=': <img src"file.png">
	imgSrcMissingEqPattern = regexp.MustCompile(`(?i)(<img[^>]*\bsrc)(["'])`)
	// src value split from its attribute by a line break
	imgSrcLineBreakPattern = regexp.MustCompile(`(?i)(<img[^>]*\bsrc\s*=\s*)[\r\n]+\s*`)
)

// htmlTagPattern splits caption text into tag and non-tag runs so language
// delimiters inside tags are never touched.
var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// bilingualDelimiterPattern matches the explicit separators that split the
// two language segments of a caption line.
var bilingualDelimiterPattern = regexp.MustCompile(`\s*(?:→|=| - )\s*`)

// excessBlankLinesPattern collapses runs of three or more blank lines.
var excessBlankLinesPattern = regexp.MustCompile(`\n{3,}`)

// captionPolicy keeps user-generated markup plus inline media elements.
var captionPolicy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("img", "audio", "video")
	p.AllowAttrs("src", "alt").OnElements("img")
	p.AllowAttrs("src", "controls").OnElements("audio", "video")
	return p
}()

// SanitizeCaption cleans one caption: exporter noise tokens are removed,
// malformed img syntax is repaired, the markup is run through the caption
// policy, bilingual lines are split onto separate lines, and excess blank
// lines are collapsed.
func SanitizeCaption(text string) string {
	if text == "" {
		return text
	}

	text = sentenceArtifactPattern.ReplaceAllString(text, "")
	text = imgSrcLineBreakPattern.ReplaceAllString(text, "$1")
	text = imgSrcMissingEqPattern.ReplaceAllString(text, "$1=$2")

	text = captionPolicy.Sanitize(text)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = splitBilingualLine(line)
	}
	text = strings.Join(lines, "\n")

	text = excessBlankLinesPattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// splitBilingualLine inserts a line break between the two language
// segments of a line: at an explicit delimiter outside HTML tags, or at
// the transition point when a logographic script and Latin letters share
// the line.
func splitBilingualLine(line string) string {
	if strings.TrimSpace(line) == "" {
		return line
	}

	if replaced, ok := splitAtDelimiter(line); ok {
		return replaced
	}

	if isLogographicScript(whatlanggo.DetectScript(line)) && hasLatinRun(line) {
		return splitAtScriptBoundary(line)
	}
	return line
}

// splitAtDelimiter replaces the first bilingual delimiter outside HTML
// tags with a line break.
func splitAtDelimiter(line string) (string, bool) {
	var sb strings.Builder
	done := false
	last := 0
	for _, loc := range htmlTagPattern.FindAllStringIndex(line, -1) {
		chunk := line[last:loc[0]]
		if !done {
			if replaced, ok := replaceFirstDelimiter(chunk); ok {
				chunk = replaced
				done = true
			}
		}
		sb.WriteString(chunk)
		sb.WriteString(line[loc[0]:loc[1]])
		last = loc[1]
	}
	chunk := line[last:]
	if !done {
		if replaced, ok := replaceFirstDelimiter(chunk); ok {
			chunk = replaced
			done = true
		}
	}
	sb.WriteString(chunk)
	return sb.String(), done
}

func replaceFirstDelimiter(chunk string) (string, bool) {
	loc := bilingualDelimiterPattern.FindStringIndex(chunk)
	if loc == nil {
		return chunk, false
	}
	// Both halves must carry content; a trailing delimiter is not a split.
	left := strings.TrimSpace(chunk[:loc[0]])
	right := strings.TrimSpace(chunk[loc[1]:])
	if left == "" || right == "" {
		return chunk, false
	}
	return left + "\n" + right, true
}

// isLogographicScript reports whether the detected script is one where a
// Latin run on the same line indicates a second language segment.
func isLogographicScript(rt *unicode.RangeTable) bool {
	switch rt {
	case unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul:
		return true
	default:
		return false
	}
}

func hasLatinRun(line string) bool {
	run := 0
	for _, r := range line {
		if unicode.Is(unicode.Latin, r) {
			run++
			if run >= 2 {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}

// splitAtScriptBoundary inserts a line break at the first transition
// between the logographic segment and the Latin segment.
func splitAtScriptBoundary(line string) string {
	runes := []rune(line)
	firstLatin := -1
	firstLogo := -1
	for i, r := range runes {
		if firstLatin < 0 && unicode.Is(unicode.Latin, r) {
			firstLatin = i
		}
		if firstLogo < 0 && (unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) ||
			unicode.Is(unicode.Katakana, r) || unicode.Is(unicode.Hangul, r)) {
			firstLogo = i
		}
	}
	if firstLatin < 0 || firstLogo < 0 {
		return line
	}

	// Break in front of whichever segment comes second.
	cut := firstLatin
	if firstLogo > firstLatin {
		cut = firstLogo
	}
	left := strings.TrimSpace(string(runes[:cut]))
	right := strings.TrimSpace(string(runes[cut:]))
	if left == "" || right == "" {
		return line
	}
	return left + "\n" + right
}
