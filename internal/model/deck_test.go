// Copyright (c) 2025-2026 Fortunada Cultura
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"testing"
)

func TestDeckTargetSpec(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Meeting The Family (PT)", "pt"},
		{"Meeting The Family (ALL)", "ALL"},
		{"Meeting The Family (all)", "ALL"},
		{"Meeting The Family", ""},
		{"Numbers (1-10) (EN)", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Deck{Name: tt.name}
			if got := d.TargetSpec(); got != tt.want {
				t.Errorf("TargetSpec() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeckDisplayTitle(t *testing.T) {
	d := Deck{Name: "Meeting The Family (ALL)"}
	if got := d.DisplayTitle(); got != "Meeting The Family" {
		t.Errorf("DisplayTitle() = %q", got)
	}

	d = Deck{Name: "Plain Deck"}
	if got := d.DisplayTitle(); got != "Plain Deck" {
		t.Errorf("DisplayTitle() = %q", got)
	}
}

func TestGlobalDeckName(t *testing.T) {
	if got := GlobalDeckName("meeting_the_family", "pt"); got != "Meeting The Family (PT)" {
		t.Errorf("GlobalDeckName() = %q", got)
	}
	if got := GlobalDeckName("at_the_airport", TargetAll); got != "At The Airport (ALL)" {
		t.Errorf("GlobalDeckName() = %q", got)
	}
	if got := GlobalDeckName("at_the_airport", ""); got != "At The Airport (ALL)" {
		t.Errorf("GlobalDeckName() = %q", got)
	}
}

func TestNormalizeTargetSpec(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"pt-BR", "pt"},
		{"PT", "pt"},
		{"all", "ALL"},
		{"ALL", "ALL"},
		{"en_US", "en"},
		{"", ""},
		{"  fr  ", "fr"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeTargetSpec(tt.input); got != tt.want {
				t.Errorf("NormalizeTargetSpec(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDeckIsGlobal(t *testing.T) {
	d := Deck{Scope: DeckScopeGlobal}
	if !d.IsGlobal() {
		t.Error("ownerless global-scope deck should be global")
	}

	d.OwnerID = sql.NullInt64{Int64: 1, Valid: true}
	if d.IsGlobal() {
		t.Error("owned deck should not be global")
	}
}

func TestVirtualCardID(t *testing.T) {
	id := VirtualCardID(12, 3)
	if id != "v_12_3" {
		t.Errorf("VirtualCardID(12, 3) = %q", id)
	}

	n, ok := ParseVirtualCardID(id)
	if !ok || n != 3 {
		t.Errorf("ParseVirtualCardID(%q) = %d, %v", id, n, ok)
	}

	for _, bad := range []string{"", "42", "v_12", "v_12_x", "v_12_-1"} {
		if _, ok := ParseVirtualCardID(bad); ok {
			t.Errorf("ParseVirtualCardID(%q) should fail", bad)
		}
	}
}
