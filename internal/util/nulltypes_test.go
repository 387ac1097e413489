// Copyright (c) 2025-2026 Fortunada Cultura
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import "testing"

func TestNullInt64FromPtr(t *testing.T) {
	v := int64(42)
	got := NullInt64FromPtr(&v)
	if !got.Valid || got.Int64 != 42 {
		t.Errorf("NullInt64FromPtr(&42) = %+v, want valid 42", got)
	}

	got = NullInt64FromPtr(nil)
	if got.Valid {
		t.Errorf("NullInt64FromPtr(nil) = %+v, want invalid", got)
	}
}

func TestParseNullInt64(t *testing.T) {
	tests := []struct {
		input     string
		wantValid bool
		wantVal   int64
	}{
		{"", false, 0},
		{"abc", false, 0},
		{"7", true, 7},
		{"-3", true, -3},
	}

	for _, tt := range tests {
		got := ParseNullInt64(tt.input)
		if got.Valid != tt.wantValid || (got.Valid && got.Int64 != tt.wantVal) {
			t.Errorf("ParseNullInt64(%q) = %+v, want valid=%v val=%d", tt.input, got, tt.wantValid, tt.wantVal)
		}
	}
}

func TestNullStringFromValue(t *testing.T) {
	if got := NullStringFromValue(""); got.Valid {
		t.Errorf("NullStringFromValue(\"\") should be invalid")
	}
	if got := NullStringFromValue("x"); !got.Valid || got.String != "x" {
		t.Errorf("NullStringFromValue(\"x\") = %+v", got)
	}
}
