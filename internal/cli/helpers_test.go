package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/transition/internal/testutil"
)

// cliEnv is an isolated configuration with two app type roots and a
// registry database under one temp directory.
type cliEnv struct {
	dir        string
	configPath string
	addinRoot  string
	docRoot    string
	dbPath     string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	e := &cliEnv{
		dir:        dir,
		configPath: filepath.Join(dir, "config.yaml"),
		addinRoot:  filepath.Join(dir, "addin"),
		docRoot:    filepath.Join(dir, "docapp"),
		dbPath:     filepath.Join(dir, "transition.db"),
	}
	require.NoError(t, os.MkdirAll(e.addinRoot, 0o755))
	require.NoError(t, os.MkdirAll(e.docRoot, 0o755))

	cfg := fmt.Sprintf(`database: %s
log_level: error
app_types:
  - name: addin
    path: %s
  - name: docapp
    path: %s
hosts: [excel, word, powerpoint]
watch:
  debounce: 50ms
`, e.dbPath, e.addinRoot, e.docRoot)
	require.NoError(t, os.WriteFile(e.configPath, []byte(cfg), 0o600))
	return e
}

// run executes the root command with the env's config and returns stdout,
// stderr and the error.
func (e *cliEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	err := e.runWith(context.Background(), out, errOut, args...)
	return out.String(), errOut.String(), err
}

func (e *cliEnv) runWith(ctx context.Context, out, errOut io.Writer, args ...string) error {
	opts := &RootOptions{IDs: testutil.NewFixedIDGenerator("evt")}
	cmd := newRootCommand(opts)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	return cmd.ExecuteContext(ctx)
}

// mustRun runs a command that is expected to succeed.
func (e *cliEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, err := e.run(t, args...)
	require.NoError(t, err, "stdout: %s\nstderr: %s", out, errOut)
	return out
}

// syncBuffer is a bytes.Buffer safe to read while a command writes to it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
