package splitter

import (
	"fmt"
	"path/filepath"
	"strings"

	"doc-splitter/internal/handler"
)

// OutputFilename maps a source file and 1-based chunk number to a flat
// output name: the file's parent directories relative to root joined with
// "-", then the stem, the chunk number and the original extension.
// A path outside root is used as given.
//
//	root/a/b/c.md, 2  ->  a-b-c-2.md
//	root/notes.md, 1  ->  notes-1.md
func OutputFilename(root, path string, n int) string {
	rel := path
	if r, err := filepath.Rel(root, path); err == nil && !escapesRoot(r) {
		rel = r
	}

	var parents []string
	if dir := filepath.Dir(rel); dir != "." {
		for _, seg := range strings.Split(filepath.ToSlash(dir), "/") {
			if seg != "" && seg != "." {
				parents = append(parents, seg)
			}
		}
	}

	base := filepath.Base(path)
	ext := handler.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	if len(parents) > 0 {
		return fmt.Sprintf("%s-%s-%d%s", strings.Join(parents, "-"), stem, n, ext)
	}
	return fmt.Sprintf("%s-%d%s", stem, n, ext)
}

func escapesRoot(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
