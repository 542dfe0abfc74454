// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package i18n

import "testing"

func TestNew(t *testing.T) {
	t.Run("new i18n provider with empty locale string succeeds", func(t *testing.T) {
		provider, err := New("")
		if err != nil {
			t.Fatalf("failed to create i18n provider: %s", err)
		}
		if provider == nil {
			t.Fatal("expected i18n provider to be non-nil")
		}
	})
	t.Run("english localizer returns source strings", func(t *testing.T) {
		provider, err := New("en")
		if err != nil {
			t.Fatalf("failed to create i18n provider: %s", err)
		}
		if got := provider.Get("Lat:"); got != "Lat:" {
			t.Errorf("expected source string, got %q", got)
		}
	})
	t.Run("german localizer translates coordinate labels", func(t *testing.T) {
		provider, err := New("de")
		if err != nil {
			t.Fatalf("failed to create i18n provider: %s", err)
		}
		if got := provider.Get("Height:"); got != "Höhe:" {
			t.Errorf("expected translated label %q, got %q", "Höhe:", got)
		}
	})
}

func TestTag(t *testing.T) {
	t.Run("explicit locale is used as is", func(t *testing.T) {
		if got := Tag("de-DE").String(); got != "de-DE" {
			t.Errorf("expected tag to be de-DE, got %s", got)
		}
	})
	t.Run("empty locale is detected", func(t *testing.T) {
		t.Setenv("LANGUAGE", "")
		t.Setenv("LC_ALL", "fr_FR.UTF-8")
		if got := Tag(""); got.String() == "und" {
			t.Errorf("expected detected tag, got %s", got)
		}
	})
}
