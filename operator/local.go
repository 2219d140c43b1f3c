package operator

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/xitongsys/parquet-go-source/local"
	pqsource "github.com/xitongsys/parquet-go/source"
)

// Local opens files on the local filesystem, anchored at a root directory.
// Production use roots it at "/", tests root it at a temp dir.
type Local struct {
	root string
}

func NewLocal(root string) (*Local, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("error in filepath.Abs for root %q: %w", root, err)
	}
	return &Local{root: abs}, nil
}

func (l *Local) Name() string {
	return "local"
}

func (l *Local) Open(_ context.Context, location string) (pqsource.ParquetFile, error) {
	p, err := l.resolve(location)
	if err != nil {
		return nil, err
	}
	f, err := local.NewLocalFileReader(p)
	if err != nil {
		return nil, fmt.Errorf("error in NewLocalFileReader: %w", err)
	}
	return f, nil
}

func (l *Local) Glob(_ context.Context, pattern string) ([]string, error) {
	if !filepath.IsAbs(pattern) {
		pattern = filepath.Join(l.root, pattern)
	}
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("error in FilepathGlob for %q: %w", pattern, err)
	}
	for _, m := range matches {
		if _, err := l.resolve(m); err != nil {
			return nil, err
		}
	}
	sort.Strings(matches)
	return matches, nil
}

func (l *Local) resolve(location string) (string, error) {
	p := location
	if !filepath.IsAbs(p) {
		p = filepath.Join(l.root, p)
	}
	p = filepath.Clean(p)
	rel, err := filepath.Rel(l.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("location %q with root %q: %w", location, l.root, ErrOutsideRoot)
	}
	return p, nil
}
