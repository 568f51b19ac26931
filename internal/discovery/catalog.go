package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/roach88/transition/internal/model"
)

// Entry is one app directory found under an app type root.
//
// Name is the NFC form of the directory name and keys the app in the
// store. Path keeps the name exactly as it is on disk.
type Entry struct {
	AppType    string
	Name       string
	Path       string
	Descriptor Descriptor

	// Err is set when the directory could not be loaded.
	Err *model.ImportError
}

// Available reports whether the app loaded successfully.
func (e Entry) Available() bool {
	return e.Err == nil
}

// Catalog resolves app directories through a Loader.
type Catalog struct {
	loader   Loader
	excluded map[string]bool
	logger   *slog.Logger
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithExcludedDirs sets directory names that are never apps.
func WithExcludedDirs(names ...string) CatalogOption {
	return func(c *Catalog) {
		for _, n := range names {
			c.excluded[n] = true
		}
	}
}

// WithLogger sets the logger. Nil discards.
func WithLogger(l *slog.Logger) CatalogOption {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCatalog creates a Catalog. A nil loader means CUELoader.
func NewCatalog(loader Loader, opts ...CatalogOption) *Catalog {
	if loader == nil {
		loader = CUELoader{}
	}
	c := &Catalog{
		loader:   loader,
		excluded: map[string]bool{},
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Scan lists the app directories under at.Path, sorted by name, and loads
// each one. A missing root yields no entries. Hidden and excluded
// directories are skipped.
func (c *Catalog) Scan(at model.AppType) ([]Entry, error) {
	dirents, err := os.ReadDir(at.Path)
	if errors.Is(err, fs.ErrNotExist) {
		c.logger.Debug("app type root missing", "app_type", at.Name, "path", at.Path)
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", at.Name, err)
	}

	entries := []Entry{}
	for _, d := range dirents {
		if !d.IsDir() || !c.isCandidate(d.Name()) {
			continue
		}
		entries = append(entries, c.load(at, d.Name()))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Resolve loads a single app by name. Names are compared in NFC, so a
// directory written in decomposed form is found by its composed name and
// the other way round. ok is false when no such directory exists under
// the root.
func (c *Catalog) Resolve(at model.AppType, name string) (Entry, bool) {
	if !c.isCandidate(name) || strings.ContainsAny(name, `/\`) {
		return Entry{}, false
	}
	dirents, err := os.ReadDir(at.Path)
	if err != nil {
		return Entry{}, false
	}
	want := model.AppName(name)
	for _, d := range dirents {
		if d.IsDir() && c.isCandidate(d.Name()) && model.AppName(d.Name()) == want {
			return c.load(at, d.Name()), true
		}
	}
	return Entry{}, false
}

func (c *Catalog) isCandidate(name string) bool {
	return name != "" && !strings.HasPrefix(name, ".") && !c.excluded[name]
}

// load reads the app in directory dirName, which is used verbatim.
func (c *Catalog) load(at model.AppType, dirName string) Entry {
	name := model.AppName(dirName)
	e := Entry{
		AppType: at.Name,
		Name:    name,
		Path:    filepath.Join(at.Path, dirName),
	}

	desc, err := c.loader.Load(e.Path)
	if err != nil {
		var ie *model.ImportError
		if !errors.As(err, &ie) {
			ie = &model.ImportError{Code: model.ErrCodeDescriptorInvalid, Path: e.Path, Err: err}
		}
		ie.AppType, ie.AppName = at.Name, name
		e.Err = ie
		c.logger.Warn("app failed to load", "app_type", at.Name, "app_name", name, "error", ie)
		return e
	}

	e.Descriptor = desc
	return e
}
