// Copyright (c) 2025-2026 Fortunada Cultura
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/fortunadacultura/lingua-nova/internal/middleware"
	"github.com/fortunadacultura/lingua-nova/internal/model"
	"github.com/fortunadacultura/lingua-nova/internal/syncer"
	"github.com/fortunadacultura/lingua-nova/internal/util"
)

// SyncResponse reports a full catalog sync.
type SyncResponse struct {
	Summary syncer.ReconcileSummary `json:"summary"`
	Decks   []syncer.SyncResult     `json:"decks"`
}

// Sync reconciles the global deck catalog against the dialogue library
// and re-materializes every dialogue deck visible to the caller: global
// decks plus, when owner_id is given, the owner's own.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	ownerID := util.ParseNullInt64(r.URL.Query().Get("owner_id"))
	summary, results, err := h.sync.SyncAll(r.Context(), ownerID, middleware.GetTargetLanguage(r))
	if err != nil {
		h.logger.Error("sync failed", "category", model.EventCategorySync, "error", err)
		WriteInternalError(w, "Sync failed")
		return
	}
	WriteSuccess(w, SyncResponse{Summary: summary, Decks: results}, nil)
}
