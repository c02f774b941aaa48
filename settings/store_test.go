package settings_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JustinDev-afk/languagebridge/settings"
)

func tempStorePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "settings.yml")
}

func TestOpenMissingFile(t *testing.T) {
	s, err := settings.Open(tempStorePath(t))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close() //nolint:errcheck

	if got := s.GetString(settings.KeySourceLang, "en"); got != "en" {
		t.Errorf("GetString on empty store = %q, want fallback", got)
	}
	if len(s.All()) != 0 {
		t.Errorf("All() = %v, want empty", s.All())
	}
}

func TestSetPersistsAcrossOpens(t *testing.T) {
	path := tempStorePath(t)

	s, err := settings.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.Set(settings.KeyTargetLang, "ps"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set(settings.KeyRate, 1.5); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set(settings.KeyToolbarEnabled, true); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	_ = s.Close()

	reopened, err := settings.Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close() //nolint:errcheck

	if got := reopened.GetString(settings.KeyTargetLang, ""); got != "ps" {
		t.Errorf("target_lang = %q, want ps", got)
	}
	if got := reopened.GetFloat(settings.KeyRate, 0); got != 1.5 {
		t.Errorf("rate = %v, want 1.5", got)
	}
	if !reopened.GetBool(settings.KeyToolbarEnabled, false) {
		t.Error("toolbar_enabled should persist as true")
	}
}

func TestGettersFallBackOnWrongType(t *testing.T) {
	s, err := settings.Open(tempStorePath(t))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close() //nolint:errcheck

	if err := s.Set(settings.KeyRate, "fast"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := s.GetFloat(settings.KeyRate, 1.0); got != 1.0 {
		t.Errorf("GetFloat of string value = %v, want fallback", got)
	}
	if got := s.GetBool(settings.KeyRate, false); got {
		t.Error("GetBool of string value should fall back")
	}
}

func TestGetFloatAcceptsInt(t *testing.T) {
	path := tempStorePath(t)
	if err := os.WriteFile(path, []byte("rate: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := settings.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close() //nolint:errcheck

	if got := s.GetFloat(settings.KeyRate, 0); got != 2 {
		t.Errorf("GetFloat(int yaml) = %v, want 2", got)
	}
}

func TestUnknownKeysRoundTrip(t *testing.T) {
	path := tempStorePath(t)
	if err := os.WriteFile(path, []byte("custom_key: custom value\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := settings.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.Set(settings.KeySourceLang, "ar"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	_ = s.Close()

	reopened, err := settings.Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close() //nolint:errcheck
	if got := reopened.GetString("custom_key", ""); got != "custom value" {
		t.Errorf("custom_key = %q, unknown keys must survive a write", got)
	}
}

func TestOpenRejectsMalformedFile(t *testing.T) {
	path := tempStorePath(t)
	if err := os.WriteFile(path, []byte("{not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := settings.Open(path); err == nil {
		t.Error("Open() on malformed yaml should fail")
	}
}

func TestWatchReloadsOnExternalEdit(t *testing.T) {
	path := tempStorePath(t)
	s, err := settings.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close() //nolint:errcheck

	changed := make(chan struct{}, 1)
	s.OnChange(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err := s.Watch(); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	// Simulate an external editor replacing the file.
	if err := os.WriteFile(path, []byte("source_lang: uk\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never reported the external edit")
	}
	if got := s.GetString(settings.KeySourceLang, ""); got != "uk" {
		t.Errorf("source_lang after reload = %q, want uk", got)
	}
}
