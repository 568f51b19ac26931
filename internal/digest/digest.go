package digest

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/zeebo/blake3"

	"github.com/roach88/transition/internal/model"
)

// ManifestName is the file name of the side-car inside an app directory.
const ManifestName = "Manifest"

// DefaultExcludedDirs are directory names skipped at any depth.
var DefaultExcludedDirs = []string{"__pycache__", ".cache"}

// Engine computes digests and manages manifests.
// The zero value is not usable; construct with New.
type Engine struct {
	excluded map[string]bool
	tempDir  string
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithExcludedDirs replaces the default excluded directory names.
func WithExcludedDirs(names ...string) Option {
	return func(e *Engine) {
		e.excluded = make(map[string]bool, len(names))
		for _, n := range names {
			e.excluded[n] = true
		}
	}
}

// WithTempDir sets where temporary archives are written. Empty means os.TempDir.
func WithTempDir(dir string) Option {
	return func(e *Engine) { e.tempDir = dir }
}

// WithLogger sets the logger. Nil discards.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger: slog.New(slog.DiscardHandler),
	}
	WithExcludedDirs(DefaultExcludedDirs...)(e)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Generate computes the digest triple of dir.
//
// Returns ok=false (and no error) when dir does not exist or holds no
// eligible file. Any other filesystem failure is returned as an error.
func (e *Engine) Generate(dir string) (model.Digests, bool, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return model.Digests{}, false, nil
	}
	if err != nil {
		return model.Digests{}, false, fmt.Errorf("generate digests: %w", err)
	}
	if !info.IsDir() {
		return model.Digests{}, false, nil
	}

	files, err := e.eligibleFiles(dir)
	if err != nil {
		return model.Digests{}, false, fmt.Errorf("generate digests: %w", err)
	}
	if len(files) == 0 {
		e.logger.Debug("no eligible files", "dir", dir)
		return model.Digests{}, false, nil
	}

	d, err := e.digestArchive(dir, files)
	if err != nil {
		return model.Digests{}, false, fmt.Errorf("generate digests: %w", err)
	}
	return d, true, nil
}

// digestArchive builds the archive in a temp file and hashes its bytes.
func (e *Engine) digestArchive(dir string, files []string) (model.Digests, error) {
	tmp, err := os.CreateTemp(e.tempDir, "transition-digest-*.zip")
	if err != nil {
		return model.Digests{}, &model.ResourceError{Op: "create archive", Path: e.tempDir, Err: err}
	}
	defer func() {
		tmp.Close()
		if rmErr := os.Remove(tmp.Name()); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			e.logger.Warn("failed to remove temp archive", "path", tmp.Name(), "error", rmErr)
		}
	}()

	if err := writeArchive(tmp, dir, files); err != nil {
		return model.Digests{}, err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return model.Digests{}, fmt.Errorf("rewind archive: %w", err)
	}
	return hashReader(tmp)
}

// hashReader feeds r once through all three hashers.
func hashReader(r io.Reader) (model.Digests, error) {
	h256 := sha256.New()
	h512 := sha512.New()
	hb3 := blake3.New()

	if _, err := io.Copy(io.MultiWriter(h256, h512, hb3), r); err != nil {
		return model.Digests{}, fmt.Errorf("hash archive: %w", err)
	}

	// 64-byte extended output to match the 512-bit width of SHA-512.
	var b3 [model.LenBLAKE3 / 2]byte
	if _, err := hb3.Digest().Read(b3[:]); err != nil {
		return model.Digests{}, fmt.Errorf("blake3 output: %w", err)
	}

	return model.Digests{
		SHA256: hex.EncodeToString(h256.Sum(nil)),
		SHA512: hex.EncodeToString(h512.Sum(nil)),
		BLAKE3: hex.EncodeToString(b3[:]),
	}, nil
}
