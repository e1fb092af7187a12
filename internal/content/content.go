// Package content discovers panel bundles on disk and formats the URL each
// panel's renderer navigates to.
package content

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"webvideo/internal/common/fsutil"
	"webvideo/pkg/types"
)

// IndexFile is the entry page of a panel bundle.
const IndexFile = "index.html"

// LoadDir scans dir for <name>/index.html bundles, sorted by name.
func LoadDir(dir string) ([]types.Content, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var out []types.Content
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		p := filepath.Join(abs, e.Name(), IndexFile)
		if !fsutil.IsFile(p) {
			continue
		}
		out = append(out, types.Content{Name: e.Name(), Path: p, URL: fsutil.FileURL(p)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Resolver formats panel index URLs. Template, when set, wins and may use
// the {name} placeholder (path-escaped). Otherwise the bundle under Dir is
// used, and about:blank when there is neither.
type Resolver struct {
	Dir      string
	Template string
}

// FormatIndexURL returns the URL panel name should load.
func (r Resolver) FormatIndexURL(name string) string {
	if r.Template != "" {
		return strings.ReplaceAll(r.Template, "{name}", url.PathEscape(name))
	}
	if r.Dir == "" {
		return "about:blank"
	}
	base, err := fsutil.ExpandHome(r.Dir)
	if err != nil {
		return "about:blank"
	}
	abs, err := filepath.Abs(filepath.Join(base, name, IndexFile))
	if err != nil {
		return "about:blank"
	}
	return fsutil.FileURL(abs)
}
