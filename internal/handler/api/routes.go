// Copyright (c) 2025-2026 Fortunada Cultura
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/fortunadacultura/lingua-nova/internal/middleware"
)

// Routes builds the API router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.TargetLanguage)
	r.Use(middleware.BaseURL)

	r.Get("/healthz", h.Health)
	r.Get("/decks", h.ListDecks)
	r.Get("/decks/{id}/cards", h.GetDeckCards)
	r.Post("/decks/{id}/normalize", h.NormalizeDeck)
	r.Post("/sync", h.Sync)

	return r
}
