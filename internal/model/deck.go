// Copyright (c) 2025-2026 Fortunada Cultura
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/fortunadacultura/lingua-nova/internal/util"
)

// Deck kinds and scopes
const (
	DeckKindDialogue = "dialogue"
	DeckScopeGlobal  = "global"
)

// TargetAll is the sentinel target spec meaning "every available translation".
const TargetAll = "ALL"

// parentheticalSuffix matches a trailing "(XX)" target annotation in a deck name.
var parentheticalSuffix = regexp.MustCompile(`\s*\(([^)]*)\)\s*$`)

// Deck represents a flashcard deck. Dialogue decks are derived from the
// dialogue source library; a NULL owner with global scope means the deck is
// shared across all users.
type Deck struct {
	ID             int64         `json:"id"`
	UUID           string        `json:"uuid"`
	OwnerID        sql.NullInt64 `json:"owner_id,omitempty"`
	Name           string        `json:"name"`
	SourceLanguage string        `json:"source_language"`
	Kind           string        `json:"kind,omitempty"`
	DialogueKey    string        `json:"dialogue_key,omitempty"`
	Scope          string        `json:"scope,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// IsDialogue returns true if the deck is derived from a dialogue script.
func (d *Deck) IsDialogue() bool {
	return d.Kind == DeckKindDialogue
}

// IsGlobal returns true if the deck is shared across all users.
func (d *Deck) IsGlobal() bool {
	return d.Scope == DeckScopeGlobal && !d.OwnerID.Valid
}

// DisplayTitle returns the deck name with any trailing parenthetical
// target annotation stripped.
func (d *Deck) DisplayTitle() string {
	return strings.TrimSpace(parentheticalSuffix.ReplaceAllString(d.Name, ""))
}

// TargetSpec returns the target spec encoded in the deck name: a lowercase
// language code, TargetAll, or "" when the name carries no annotation.
func (d *Deck) TargetSpec() string {
	m := parentheticalSuffix.FindStringSubmatch(d.Name)
	if m == nil {
		return ""
	}
	return NormalizeTargetSpec(m[1])
}

// GlobalDeckName builds the canonical name of a global dialogue deck:
// the title-cased dialogue key followed by the target spec annotation.
func GlobalDeckName(dialogueKey, targetSpec string) string {
	target := strings.ToUpper(targetSpec)
	if target == "" {
		target = TargetAll
	}
	return fmt.Sprintf("%s (%s)", util.TitleCaseKey(dialogueKey), target)
}

// NormalizeTargetSpec canonicalizes a requested target spec: "all" in any
// case becomes TargetAll, language tags are reduced to their lowercase
// primary subtag ("pt-BR" -> "pt"). Unparseable values fall back to a
// best-effort manual split so a bare "pt_br" still resolves.
func NormalizeTargetSpec(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.EqualFold(s, TargetAll) {
		return TargetAll
	}
	if tag, err := language.Parse(s); err == nil {
		if base, conf := tag.Base(); conf > language.No {
			return base.String()
		}
	}
	s = strings.ToLower(s)
	if i := strings.IndexAny(s, "-_"); i > 0 {
		s = s[:i]
	}
	return s
}
