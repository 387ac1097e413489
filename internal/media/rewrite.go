// Copyright (c) 2025-2026 Fortunada Cultura
// SPDX-License-Identifier: GPL-3.0-or-later

package media

import (
	"regexp"
	"strings"
)

// imgSrcPattern captures the src value of an img tag, quoted or bare.
var imgSrcPattern = regexp.MustCompile(`(?i)(<img[^>]*\bsrc\s*=\s*)(["']?)([^"'\s>]+)(["']?)`)

// relativePrefixPattern strips leading ./ and ../ segments off a relative
// media reference before it is anchored to the media base.
var relativePrefixPattern = regexp.MustCompile(`^(\.{1,2}/)+`)

// isUntouchableURL reports whether a reference must never be rewritten.
func isUntouchableURL(u string) bool {
	return strings.HasPrefix(u, "http://") ||
		strings.HasPrefix(u, "https://") ||
		strings.HasPrefix(u, "data:")
}

// RewriteMediaReferences rewrites every img src in text: absolute and
// data: URLs are left alone, root-relative paths are prefixed with the
// request host, and bare filenames are resolved against the media base.
func RewriteMediaReferences(text, mediaBase, requestHost string) string {
	if text == "" {
		return text
	}
	return imgSrcPattern.ReplaceAllStringFunc(text, func(tag string) string {
		m := imgSrcPattern.FindStringSubmatch(tag)
		if m == nil {
			return tag
		}
		rewritten := RewriteURL(m[3], mediaBase, requestHost)
		return m[1] + m[2] + rewritten + m[4]
	})
}

// RewriteURL applies the same rules to one standalone audio/video URL
// field. Empty input stays empty.
func RewriteURL(u, mediaBase, requestHost string) string {
	if u == "" || isUntouchableURL(u) {
		return u
	}

	if strings.HasPrefix(u, "/") {
		return requestHost + u
	}

	name := relativePrefixPattern.ReplaceAllString(u, "")
	if mediaBase == "" {
		return requestHost + "/" + name
	}
	return requestHost + mediaBase + "/" + name
}
