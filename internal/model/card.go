// Copyright (c) 2025-2026 Fortunada Cultura
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Default scheduling fields for a freshly materialized card.
const (
	DefaultEaseFactor  = 2.5
	DefaultInterval    = 0
	DefaultRepetitions = 0
)

// Card represents a persisted flashcard. Scheduling fields are opaque to
// the dialogue core; they are set to defaults on materialization and
// otherwise left to the review surface.
type Card struct {
	ID            int64         `json:"id"`
	DeckID        int64         `json:"deck_id"`
	FrontText     string        `json:"front_text"`
	BackText      string        `json:"back_text"`
	FrontAudioURL string        `json:"front_audio_url,omitempty"`
	FrontVideoURL string        `json:"front_video_url,omitempty"`
	BackAudioURL  string        `json:"back_audio_url,omitempty"`
	BackVideoURL  string        `json:"back_video_url,omitempty"`
	Hint          string        `json:"hint,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	EaseFactor    float64       `json:"ease_factor"`
	Interval      int64         `json:"interval"`
	Repetitions   int64         `json:"repetitions"`
	DueDate       time.Time     `json:"due_date"`
	LastReviewed  sql.NullTime  `json:"last_reviewed,omitempty"`
	VideoOrderKey sql.NullInt64 `json:"video_order_key,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// VirtualCardID builds the deterministic id of a synthesized card:
// v_<deckID>_<lineIndex>.
func VirtualCardID(deckID int64, lineIndex int) string {
	return fmt.Sprintf("v_%d_%d", deckID, lineIndex)
}

// ParseVirtualCardID extracts the line index from a virtual card id.
// Returns -1 and false when the id is not in virtual form.
func ParseVirtualCardID(id string) (int, bool) {
	if !strings.HasPrefix(id, "v_") {
		return -1, false
	}
	parts := strings.Split(id, "_")
	if len(parts) != 3 {
		return -1, false
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 0 {
		return -1, false
	}
	return n, true
}
