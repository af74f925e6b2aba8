package autodoc

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/src-d/enry/v2"
)

const (
	pythonLanguage = "Python"
	sniffSize      = 512
)

// DiscoverOptions controls which files a directory walk yields.
type DiscoverOptions struct {
	// Extensions are matched case-insensitively, dot included.
	Extensions []string
	SkipHidden bool
	SkipVendor bool
	// DetectByContent also yields extensionless files that look like Python
	// (for example, scripts with a python shebang).
	DetectByContent bool
}

// DefaultDiscoverOptions matches every .py file under the root, hidden and
// vendored directories included.
func DefaultDiscoverOptions() DiscoverOptions {
	return DiscoverOptions{Extensions: []string{".py"}}
}

// Discover lists the source files under root in lexical walk order.
func Discover(root string, opts DiscoverOptions) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return fmt.Errorf("relative path of %s: %w", path, relErr)
		}

		if d.IsDir() {
			if rel != "." && opts.skipDir(d.Name(), filepath.ToSlash(rel)) {
				return filepath.SkipDir
			}

			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		if opts.SkipHidden && strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		if opts.matches(path) {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", root, err)
	}

	return files, nil
}

func (o DiscoverOptions) skipDir(name, rel string) bool {
	if o.SkipHidden && strings.HasPrefix(name, ".") {
		return true
	}

	return o.SkipVendor && enry.IsVendor(rel+"/")
}

func (o DiscoverOptions) matches(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != "" {
		return slices.ContainsFunc(o.Extensions, func(want string) bool {
			return strings.EqualFold(want, ext)
		})
	}

	return o.DetectByContent && looksLikePython(path)
}

// looksLikePython sniffs the head of an extensionless file.
func looksLikePython(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, sniffSize)

	n, err := io.ReadFull(f, head)
	if err != nil && n == 0 {
		return false
	}

	head = head[:n]
	if !bytes.HasPrefix(head, []byte("#!")) || enry.IsBinary(head) {
		return false
	}

	return enry.GetLanguage(filepath.Base(path), head) == pythonLanguage
}
