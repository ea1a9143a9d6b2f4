package models

import (
	"testing"
)

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		in      string
		want    Platform
		wantErr bool
	}{
		{"facebook", PlatformFacebook, false},
		{"Instagram", PlatformInstagram, false},
		{"  WORDPRESS  ", PlatformWordPress, false},
		{"marketplace", PlatformMarketplace, false},
		{"tiktok", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParsePlatform(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParsePlatform(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePlatform(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePlatform(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestRequiresGeneration(t *testing.T) {
	for _, p := range GeneratedPlatforms {
		if !p.RequiresGeneration() {
			t.Errorf("%s should require generation", p)
		}
	}
	if PlatformMarketplace.RequiresGeneration() {
		t.Error("marketplace must never require generation")
	}
}

func TestPlatformListRoundTrip(t *testing.T) {
	list := PlatformList{PlatformFacebook, PlatformMarketplace}

	value, err := list.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}

	var scanned PlatformList
	if err := scanned.Scan(value); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(scanned) != 2 || scanned[0] != PlatformFacebook || scanned[1] != PlatformMarketplace {
		t.Fatalf("round trip mismatch: %v", scanned)
	}
}

func TestPlatformListScanVariants(t *testing.T) {
	var empty PlatformList
	if err := empty.Scan("{}"); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty list, got %v", empty)
	}

	var unquoted PlatformList
	if err := unquoted.Scan([]byte("{facebook,instagram}")); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(unquoted) != 2 {
		t.Fatalf("expected 2 entries, got %v", unquoted)
	}

	var bad PlatformList
	if err := bad.Scan("{myspace}"); err == nil {
		t.Fatal("unknown platform tag must fail to scan")
	}
}

func TestPlatformListContains(t *testing.T) {
	list := PlatformList{PlatformFacebook, PlatformWordPress}
	if !list.Contains(PlatformWordPress) {
		t.Error("expected wordpress to be present")
	}
	if list.Contains(PlatformInstagram) {
		t.Error("instagram should not be present")
	}
}

func TestParseDraftStatus(t *testing.T) {
	for _, s := range []DraftStatus{
		StatusDraft, StatusScheduled, StatusSentToMake,
		StatusProcessing, StatusPublished, StatusError,
	} {
		got, err := ParseDraftStatus(string(s))
		if err != nil {
			t.Errorf("ParseDraftStatus(%q) failed: %v", s, err)
		}
		if got != s {
			t.Errorf("ParseDraftStatus(%q) = %s", s, got)
		}
	}
	if _, err := ParseDraftStatus("archived"); err == nil {
		t.Error("unknown status must be rejected")
	}
}
