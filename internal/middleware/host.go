// Copyright (c) 2025-2026 Fortunada Cultura
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
)

// BaseURL stores the request's externally visible base URL (scheme and
// host) in the context so media rewriting can emit absolute references.
// A reverse proxy is honored through X-Forwarded-Proto.
func BaseURL(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyBaseURL, requestBaseURL(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetBaseURL returns the base URL captured for the request, or "" when
// the middleware did not run.
func GetBaseURL(r *http.Request) string {
	base, _ := r.Context().Value(ContextKeyBaseURL).(string)
	return base
}

func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	if r.Host == "" {
		return ""
	}
	return scheme + "://" + r.Host
}
