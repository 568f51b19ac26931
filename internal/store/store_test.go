package store

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/roach88/transition/internal/model"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "test.db")

	s, err := Open(path, testSeed())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	// Verify file was created
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_SeedsOnce(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(path, testSeed())
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	if _, err := s1.AddHostApp(ctx, "outlook"); err != nil {
		t.Fatalf("AddHostApp() failed: %v", err)
	}
	s1.Close()

	// Reopen with a different seed: existing rows win, nothing is re-seeded.
	s2, err := Open(path, Seed{Hosts: []string{"access"}})
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer s2.Close()

	hosts, err := s2.HostApps(ctx)
	if err != nil {
		t.Fatalf("HostApps() failed: %v", err)
	}
	want := []string{"excel", "outlook", "powerpoint", "word"}
	if len(hosts) != len(want) {
		t.Fatalf("HostApps() = %v, want %v", hosts, want)
	}
	for i := range want {
		if hosts[i] != want[i] {
			t.Errorf("HostApps()[%d] = %q, want %q", i, hosts[i], want[i])
		}
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name     string
		expected string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"},
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
		{"user_version", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.verifyPragma(tt.name, tt.expected); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestOpen_UnwritableDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Open(filepath.Join(blocker, "test.db"), testSeed())
	if err == nil {
		t.Fatal("Open() under a regular file should fail")
	}
	var re *model.ResourceError
	if !errorsAs(err, &re) {
		t.Errorf("Open() error = %T, want *model.ResourceError", err)
	}
}

func TestClose_Idempotent(t *testing.T) {
	s := createTestStore(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() failed: %v", err)
	}
}

func TestReset_RecreatesSeededStore(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	mustInsert(t, s, createTestApp("addin", "dummy", 'a'), "excel")

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset() failed: %v", err)
	}

	apps, err := s.Apps(ctx, "")
	if err != nil {
		t.Fatalf("Apps() failed: %v", err)
	}
	if len(apps) != 0 {
		t.Errorf("Apps() after reset = %d rows, want 0", len(apps))
	}

	types, err := s.AppTypes(ctx)
	if err != nil {
		t.Fatalf("AppTypes() failed: %v", err)
	}
	if len(types) != 2 {
		t.Errorf("AppTypes() after reset = %v, want seeded types", types)
	}

	// Still usable.
	mustInsert(t, s, createTestApp("addin", "dummy", 'a'), "excel")
}

func TestClosedStore_ReturnsResourceError(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	_, err := s.AppTypes(ctx)
	var re *model.ResourceError
	if !errorsAs(err, &re) {
		t.Fatalf("AppTypes() on closed store error = %v, want *model.ResourceError", err)
	}
	if !errors.Is(err, ErrClosed) {
		t.Errorf("AppTypes() on closed store error = %v, want ErrClosed", err)
	}

	if _, err := s.InsertApp(ctx, createTestApp("addin", "dummy", 'a'), nil); !errors.Is(err, ErrClosed) {
		t.Errorf("InsertApp() on closed store error = %v, want ErrClosed", err)
	}
	if _, err := s.SetEnabled(ctx, "addin", "dummy", []string{"excel"}, true); !errors.Is(err, ErrClosed) {
		t.Errorf("SetEnabled() on closed store error = %v, want ErrClosed", err)
	}
}

func TestReset_FailureLeavesStoreClosed(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "sub")
	s, err := Open(filepath.Join(dir, "test.db"), testSeed())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	// Replace the store directory with a regular file so nothing can be
	// removed or recreated there.
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dir, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := s.Reset(ctx); err == nil {
		t.Fatal("Reset() should fail when the store directory is gone")
	}

	// No panic on a nil handle: every call reports the closed store.
	if _, err := s.HostApps(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("HostApps() after failed reset error = %v, want ErrClosed", err)
	}
	if _, _, err := s.App(ctx, "addin", "dummy"); !errors.Is(err, ErrClosed) {
		t.Errorf("App() after failed reset error = %v, want ErrClosed", err)
	}
}

func TestOpen_WarnsOnSeedDrift(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(path, testSeed())
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	s1.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	drifted := testSeed()
	drifted.AppTypes[1].Path = "/elsewhere/docapp"
	drifted.AppTypes = append(drifted.AppTypes, model.AppType{Name: "macro", Path: "/apps/macro"})
	drifted.Hosts = append(drifted.Hosts, "Outlook")

	s2, err := Open(path, drifted, WithLogger(logger))
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer s2.Close()

	out := buf.String()
	for _, want := range []string{
		"app_type=macro",
		"app_type=docapp configured=/elsewhere/docapp stored=/apps/docapp",
		"host=outlook",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "app_type=addin") {
		t.Errorf("unchanged app type logged as drift:\n%s", out)
	}
}

func TestOpen_NoDriftNoWarning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(path, testSeed())
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	s1.Close()

	var buf bytes.Buffer
	s2, err := Open(path, testSeed(), WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer s2.Close()

	if strings.Contains(buf.String(), "level=WARN") {
		t.Errorf("unexpected warning:\n%s", buf.String())
	}
}
