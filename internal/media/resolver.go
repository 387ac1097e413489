// Copyright (c) 2025-2026 Fortunada Cultura
// SPDX-License-Identifier: GPL-3.0-or-later

// Package media resolves the base directory of a deck's imported package
// media and rewrites embedded references into servable URLs. Discovery is
// read-only and best-effort: filesystem errors degrade to an empty base,
// never to a failed request.
package media

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/fortunadacultura/lingua-nova/internal/model"
	"github.com/fortunadacultura/lingua-nova/internal/util"
)

// packagePathPattern recognizes a stored package-media path and captures
// the owner id and package directory name.
var packagePathPattern = regexp.MustCompile(`/uploads/packages/(\d+)/([^/"'\s>]+)/media`)

// Resolver locates package media directories under the uploads root.
type Resolver struct {
	uploadsDir string
	logger     *slog.Logger
}

// NewResolver creates a resolver rooted at uploadsDir.
func NewResolver(uploadsDir string, logger *slog.Logger) *Resolver {
	return &Resolver{uploadsDir: uploadsDir, logger: logger}
}

// ResolveMediaBase infers the media base URL path for a deck. The chain:
// a package path already stored on one of the cards, then a candidate
// derived from the owner and deck name, then the owner's most recently
// modified package directory containing a media folder. Returns "" when
// nothing matches.
func (r *Resolver) ResolveMediaBase(ownerID int64, deck model.Deck, cards []model.Card) string {
	if base := scanStoredURLs(ownerID, cards); base != "" {
		return base
	}

	slug := util.Slugify(deck.DisplayTitle())
	if slug != "" {
		candidate := filepath.Join(r.uploadsDir, "packages", fmt.Sprint(ownerID), slug, "media")
		if dirExists(candidate) {
			return packageBasePath(ownerID, slug)
		}
	}

	return r.newestPackageBase(ownerID)
}

// scanStoredURLs looks for a recognizable package path tied to ownerID in
// the cards' stored URLs and text.
func scanStoredURLs(ownerID int64, cards []model.Card) string {
	owner := fmt.Sprint(ownerID)
	for _, c := range cards {
		fields := []string{
			c.FrontAudioURL, c.FrontVideoURL, c.BackAudioURL, c.BackVideoURL,
			c.FrontText, c.BackText, c.Notes,
		}
		for _, f := range fields {
			m := packagePathPattern.FindStringSubmatch(f)
			if m != nil && m[1] == owner {
				return packageBasePath(ownerID, m[2])
			}
		}
	}
	return ""
}

// newestPackageBase scans the owner's package directories and picks the
// most recently modified one that has a media folder.
func (r *Resolver) newestPackageBase(ownerID int64) string {
	root := filepath.Join(r.uploadsDir, "packages", fmt.Sprint(ownerID))
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return ""
	}
	if err != nil {
		r.logger.Warn("media base scan failed", "category", model.EventCategoryMedia,
			"owner_id", ownerID, "error", err)
		return ""
	}

	var bestName string
	var bestMod time.Time
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if !dirExists(filepath.Join(root, e.Name(), "media")) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if bestName == "" || info.ModTime().After(bestMod) {
			bestName = e.Name()
			bestMod = info.ModTime()
		}
	}
	if bestName == "" {
		return ""
	}
	return packageBasePath(ownerID, bestName)
}

func packageBasePath(ownerID int64, dir string) string {
	return fmt.Sprintf("/uploads/packages/%d/%s/media", ownerID, dir)
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
