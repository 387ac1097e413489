// Copyright (c) 2025-2026 Fortunada Cultura
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic catalog sync.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/fortunadacultura/lingua-nova/internal/model"
	"github.com/fortunadacultura/lingua-nova/internal/syncer"
)

// syncTimeout bounds one scheduled sync run.
const syncTimeout = 10 * time.Minute

// Scheduler triggers full deck syncs on a cron schedule.
type Scheduler struct {
	sync     *syncer.Syncer
	cron     *cron.Cron
	schedule string
	logger   *slog.Logger
}

// New creates a scheduler. schedule is a standard five-field cron spec.
func New(sync *syncer.Syncer, schedule string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		sync:     sync,
		cron:     cron.New(),
		schedule: schedule,
		logger:   logger,
	}
}

// Start registers the sync job and begins the cron loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.runSync)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "schedule", s.schedule)
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runSync() {
	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	summary, results, err := s.sync.SyncAll(ctx, sql.NullInt64{}, "")
	if err != nil {
		s.logger.Error("scheduled sync failed", "category", model.EventCategorySync, "error", err)
		return
	}

	failed := 0
	for _, r := range results {
		if r.Status == syncer.StatusError {
			failed++
		}
	}
	s.logger.Info("scheduled sync finished", "category", model.EventCategorySync,
		"created", summary.Created, "renamed", summary.Renamed,
		"deleted", summary.Deleted, "kept", summary.Kept,
		"decks", len(results), "failed", failed)
}
