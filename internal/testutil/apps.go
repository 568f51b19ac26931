package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteApp creates an importable app directory root/name declaring hosts.
// Returns the app directory.
func WriteApp(t testing.TB, root, name string, hosts ...string) string {
	t.Helper()
	quoted := make([]string, len(hosts))
	for i, h := range hosts {
		quoted[i] = fmt.Sprintf("%q", h)
	}
	descriptor := fmt.Sprintf(`// Purpose: %s test app
// Author: Test Author
// Version: 1.0

entry:   "App"
com_app: [%s]
`, name, strings.Join(quoted, ", "))

	dir := filepath.Join(root, name)
	WriteFile(t, dir, "app.cue", descriptor)
	WriteFile(t, dir, "main.py", "def run():\n    pass\n")
	return dir
}

// WriteBrokenApp creates a directory whose descriptor does not load.
func WriteBrokenApp(t testing.TB, root, name string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	WriteFile(t, dir, "app.cue", "entry: \"App\"\n")
	return dir
}

// EditApp changes the content of an app so its digests change.
func EditApp(t testing.TB, dir string) {
	t.Helper()
	f, err := os.OpenFile(filepath.Join(dir, "main.py"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("edit app: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString("# edited\n"); err != nil {
		t.Fatalf("edit app: %v", err)
	}
}

// WriteFile writes content to dir/name, creating dir.
func WriteFile(t testing.TB, dir, name, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}
