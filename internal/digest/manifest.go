package digest

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/transition/internal/model"
)

// ManifestPath returns the manifest location for an app directory.
func ManifestPath(dir string) string {
	return filepath.Join(dir, ManifestName)
}

// HasManifest reports whether dir carries a manifest file.
func HasManifest(dir string) bool {
	info, err := os.Stat(ManifestPath(dir))
	return err == nil && info.Mode().IsRegular()
}

// WriteManifest computes the digests of dir and records them in its manifest.
//
// Returns ok=false (and no error) when dir yields no digests; nothing is
// written in that case. A file that cannot be created is a *model.ResourceError.
func (e *Engine) WriteManifest(dir string) (model.Digests, bool, error) {
	d, ok, err := e.Generate(dir)
	if err != nil || !ok {
		return model.Digests{}, ok, err
	}

	data, err := yaml.Marshal(d)
	if err != nil {
		return model.Digests{}, false, fmt.Errorf("marshal manifest: %w", err)
	}

	path := ManifestPath(dir)
	if err := writeFileAtomic(path, data); err != nil {
		return model.Digests{}, false, &model.ResourceError{Op: "write manifest", Path: path, Err: err}
	}
	e.logger.Debug("manifest written", "path", path)
	return d, true, nil
}

// ReadManifest loads and validates the manifest of dir.
//
// Every failure is a *model.IntegrityError: absent file, empty or unparsable
// content, a missing key, or a digest of the wrong length.
func ReadManifest(dir string) (model.Digests, error) {
	path := ManifestPath(dir)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.Digests{}, &model.IntegrityError{Code: model.ErrCodeManifestMissing, Path: path, Err: err}
	}
	if err != nil {
		return model.Digests{}, &model.IntegrityError{Code: model.ErrCodeManifestUnreadable, Path: path, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return model.Digests{}, &model.IntegrityError{Code: model.ErrCodeManifestEmpty, Path: path}
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return model.Digests{}, &model.IntegrityError{Code: model.ErrCodeManifestUnreadable, Path: path, Err: err}
	}
	if len(raw) == 0 {
		return model.Digests{}, &model.IntegrityError{Code: model.ErrCodeManifestEmpty, Path: path}
	}

	var d model.Digests
	fields := []struct {
		key  string
		size int
		dst  *string
	}{
		{model.KeySHA256, model.LenSHA256, &d.SHA256},
		{model.KeySHA512, model.LenSHA512, &d.SHA512},
		{model.KeyBLAKE3, model.LenBLAKE3, &d.BLAKE3},
	}

	for _, f := range fields {
		v, ok := raw[f.key]
		if !ok {
			return model.Digests{}, &model.IntegrityError{Code: model.ErrCodeManifestMissingKey, Path: path, Key: f.key}
		}
		if len(v) != f.size {
			return model.Digests{}, &model.IntegrityError{
				Code: model.ErrCodeManifestBadLength,
				Path: path,
				Key:  f.key,
				Err:  fmt.Errorf("expected %d hex chars, got %d", f.size, len(v)),
			}
		}
		*f.dst = v
	}
	if err := d.Validate(); err != nil {
		return model.Digests{}, &model.IntegrityError{Code: model.ErrCodeManifestBadLength, Path: path, Err: err}
	}
	return d, nil
}

// VerifyManifest compares the freshly generated digests of dir with its
// manifest. ok is true only when both exist and all three digests match.
// An invalid manifest is returned as its *model.IntegrityError.
func (e *Engine) VerifyManifest(dir string) (bool, model.Digests, error) {
	signed, err := ReadManifest(dir)
	if err != nil {
		return false, model.Digests{}, err
	}
	generated, ok, err := e.Generate(dir)
	if err != nil {
		return false, model.Digests{}, err
	}
	if !ok {
		return false, model.Digests{}, nil
	}
	return generated.Equal(signed), generated, nil
}

// writeFileAtomic writes data next to path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
