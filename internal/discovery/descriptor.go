package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/parser"

	"github.com/roach88/transition/internal/model"
)

// DescriptorName is the descriptor file inside an app directory.
const DescriptorName = "app.cue"

// descriptorSchema constrains the fields every descriptor must carry.
const descriptorSchema = `
entry:   string & =~"^[A-Za-z_][A-Za-z0-9_.]*$"
com_app: [...string]
`

// Descriptor is what an app declares about itself.
type Descriptor struct {
	// Entry names the app's entry point.
	Entry string `json:"entry"`

	// Hosts are the declared host short names, canonical and de-duplicated.
	Hosts []string `json:"com_app"`

	// Description is the leading comment block, without comment markers.
	Description string `json:"description"`
}

// Loader loads the descriptor of one app directory.
type Loader interface {
	Load(dir string) (Descriptor, error)
}

// CUELoader reads app.cue descriptors.
type CUELoader struct{}

var _ Loader = CUELoader{}

// Load parses and validates dir/app.cue.
// Every failure is a *model.ImportError.
func (CUELoader) Load(dir string) (Descriptor, error) {
	path := filepath.Join(dir, DescriptorName)

	src, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, &model.ImportError{Code: model.ErrCodeDescriptorMissing, Path: dir, Err: err}
	}

	f, err := parser.ParseFile(path, src, parser.ParseComments)
	if err != nil {
		return Descriptor{}, &model.ImportError{Code: model.ErrCodeDescriptorSyntax, Path: dir, Err: err}
	}

	ctx := cuecontext.New()
	v := ctx.BuildFile(f)
	if err := v.Err(); err != nil {
		return Descriptor{}, &model.ImportError{Code: model.ErrCodeDescriptorInvalid, Path: dir, Err: err}
	}

	for _, field := range []string{"entry", "com_app"} {
		if !v.LookupPath(cue.ParsePath(field)).Exists() {
			return Descriptor{}, &model.ImportError{
				Code: model.ErrCodeDescriptorInvalid,
				Path: dir,
				Err:  fmt.Errorf("missing field %q", field),
			}
		}
	}

	v = v.Unify(ctx.CompileString(descriptorSchema))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Descriptor{}, &model.ImportError{Code: model.ErrCodeDescriptorInvalid, Path: dir, Err: err}
	}

	entry, err := v.LookupPath(cue.ParsePath("entry")).String()
	if err != nil {
		return Descriptor{}, &model.ImportError{Code: model.ErrCodeDescriptorInvalid, Path: dir, Err: err}
	}

	hosts, err := stringList(v.LookupPath(cue.ParsePath("com_app")))
	if err != nil {
		return Descriptor{}, &model.ImportError{Code: model.ErrCodeDescriptorInvalid, Path: dir, Err: err}
	}

	return Descriptor{
		Entry:       entry,
		Hosts:       model.HostNames(hosts),
		Description: leadingComment(f),
	}, nil
}

func stringList(v cue.Value) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, fmt.Errorf("com_app: %w", err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, fmt.Errorf("com_app: %w", err)
		}
		out = append(out, s)
	}
	return out, nil
}

// leadingComment returns the comment groups that precede the first
// declaration of f, joined.
func leadingComment(f *ast.File) string {
	first := -1
	for _, d := range f.Decls {
		if _, ok := d.(*ast.CommentGroup); ok {
			continue
		}
		first = d.Pos().Offset()
		break
	}

	var groups []*ast.CommentGroup
	seen := map[*ast.CommentGroup]bool{}
	ast.Walk(f, func(n ast.Node) bool {
		cg, ok := n.(*ast.CommentGroup)
		if !ok {
			return true
		}
		if !seen[cg] && (first < 0 || cg.Pos().Offset() < first) {
			seen[cg] = true
			groups = append(groups, cg)
		}
		return false
	}, nil)

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Pos().Offset() < groups[j].Pos().Offset()
	})

	var b strings.Builder
	for _, g := range groups {
		b.WriteString(g.Text())
	}
	return strings.TrimRight(b.String(), "\n")
}

// ParseInfo extracts author and version from a description.
//
// Every "Author:" line contributes, joined by newlines. The first
// "Version:" line wins. Comment markers (# or //) are tolerated.
func ParseInfo(description string) (author, version string) {
	var authors []string
	for _, line := range strings.Split(description, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "#/")
		line = strings.TrimSpace(line)

		if rest, ok := strings.CutPrefix(line, "Author:"); ok {
			authors = append(authors, strings.TrimSpace(rest))
			continue
		}
		if rest, ok := strings.CutPrefix(line, "Version:"); ok && version == "" {
			version = strings.TrimSpace(rest)
		}
	}
	return strings.Join(authors, "\n"), version
}
