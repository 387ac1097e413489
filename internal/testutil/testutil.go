// Copyright (c) 2025-2026 Fortunada Cultura
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test fixtures: a migrated throwaway
// database and a dialogue library builder on a temp directory.
package testutil

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fortunadacultura/lingua-nova/internal/store"
)

// NewDB opens a migrated SQLite database on a temp file, closed on cleanup.
func NewDB(t *testing.T) *store.Queries {
	t.Helper()

	_, queries := NewSQLDB(t)
	return queries
}

// NewSQLDB is NewDB exposing the raw handle as well.
func NewSQLDB(t *testing.T) (*sql.DB, *store.Queries) {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, store.Migrate(db))
	return db, store.New(db)
}

// NewLogger returns a logger that swallows everything.
func NewLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// WriteDialogue writes a script file dialogues/<lang>/<key>.txt under
// dataDir, one line per element.
func WriteDialogue(t *testing.T, dataDir, lang, key string, lines ...string) {
	t.Helper()

	dir := filepath.Join(dataDir, "dialogues", lang)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := strings.Join(lines, "\n") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, key+".txt"), []byte(content), 0o644))
}

// WriteAudio drops a recording stub audio/<lang>/<key>/<key>_<index>.<ext>
// under dataDir.
func WriteAudio(t *testing.T, dataDir, lang, key string, index int, ext string) {
	t.Helper()

	dir := filepath.Join(dataDir, "audio", lang, key)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	name := fmt.Sprintf("%s_%d.%s", key, index, ext)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
}
