// Copyright (c) 2025-2026 Fortunada Cultura
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortunadacultura/lingua-nova/internal/cache"
	"github.com/fortunadacultura/lingua-nova/internal/compositor"
	"github.com/fortunadacultura/lingua-nova/internal/dialogue"
	"github.com/fortunadacultura/lingua-nova/internal/media"
	"github.com/fortunadacultura/lingua-nova/internal/syncer"
	"github.com/fortunadacultura/lingua-nova/internal/testutil"
)

func testSync(t *testing.T) *syncer.Syncer {
	t.Helper()

	c := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = c.Close() })

	queries := testutil.NewDB(t)
	logger := testutil.NewLogger()
	repo := dialogue.NewRepository(t.TempDir(), []string{"en", "pt"}, c, time.Minute)
	comp := compositor.New(queries, repo, media.NewResolver(t.TempDir(), logger), logger)
	return syncer.New(queries, repo, comp, logger, "en", "pt")
}

func TestStartStop(t *testing.T) {
	s := New(testSync(t), "0 3 * * *", testutil.NewLogger())
	require.NoError(t, s.Start())
	s.Stop()
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := New(testSync(t), "not a cron spec", testutil.NewLogger())
	assert.Error(t, s.Start())
}
