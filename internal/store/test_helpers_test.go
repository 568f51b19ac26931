package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/roach88/transition/internal/model"
)

func testSeed() Seed {
	return Seed{
		AppTypes: []model.AppType{
			{Name: "addin", Path: "/apps/addin"},
			{Name: "docapp", Path: "/apps/docapp"},
		},
		Hosts: []string{"Excel", "word", "powerpoint"},
	}
}

// createTestStore creates a new seeded store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, testSeed())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestApp creates an app with a valid digest triple derived from fill.
func createTestApp(appType, name string, fill byte) model.App {
	return model.App{
		Type:        appType,
		Name:        name,
		Author:      "Jane Doe",
		Version:     "1.0",
		Description: "Purpose: test\nAuthor: Jane Doe\nVersion: 1.0",
		Path:        "/apps/" + appType + "/" + name,
		Digests: model.Digests{
			SHA256: strings.Repeat(string(fill), model.LenSHA256),
			SHA512: strings.Repeat(string(fill), model.LenSHA512),
			BLAKE3: strings.Repeat(string(fill), model.LenBLAKE3),
		},
	}
}

// mustInsert inserts app and fails the test unless it was created.
func mustInsert(t *testing.T, s *Store, app model.App, hosts ...string) {
	t.Helper()
	out, err := s.InsertApp(context.Background(), app, hosts)
	if err != nil {
		t.Fatalf("InsertApp() failed: %v", err)
	}
	if out != model.OutcomeCreated {
		t.Fatalf("InsertApp() = %v, want created", out)
	}
}
