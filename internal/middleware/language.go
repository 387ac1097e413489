// Copyright (c) 2025-2026 Fortunada Cultura
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for request context
// handling: target language detection and request base URL capture.
package middleware

import (
	"context"
	"net/http"

	"github.com/fortunadacultura/lingua-nova/internal/model"
)

// ContextKey is the type for context keys set by this package.
type ContextKey string

// Context keys for request-scoped data.
const (
	ContextKeyTargetLanguage ContextKey = "target_language"
	ContextKeyBaseURL        ContextKey = "base_url"
)

// TargetLanguageHeader carries an explicit target language on API requests.
const TargetLanguageHeader = "X-Target-Language"

// TargetLanguage detects the requested target language and stores its
// normalized form in the context. Priority order:
// 1. Query parameter ?lang=XX (explicit switch)
// 2. X-Target-Language header
// An absent or unparseable value leaves the context empty and lets the
// deck's own annotation decide.
func TargetLanguage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("lang")
		if raw == "" {
			raw = r.Header.Get(TargetLanguageHeader)
		}

		if spec := model.NormalizeTargetSpec(raw); spec != "" {
			ctx := context.WithValue(r.Context(), ContextKeyTargetLanguage, spec)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// GetTargetLanguage returns the normalized target language of the request,
// or "" when none was supplied.
func GetTargetLanguage(r *http.Request) string {
	spec, _ := r.Context().Value(ContextKeyTargetLanguage).(string)
	return spec
}
