package docgen

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Drift states.
const (
	DriftMissing = "missing"
	DriftStale   = "stale"
	DriftExtra   = "extra"
)

// Drift describes one page that differs between a freshly generated site
// and the committed one. Line counts are set for stale pages only.
type Drift struct {
	Page    string
	State   string
	Added   int
	Removed int
	Changed int
}

func (d Drift) String() string {
	if d.State != DriftStale {
		return d.Page + ": " + d.State
	}

	return fmt.Sprintf("%s: %s (+%d -%d ~%d lines)", d.Page, d.State, d.Added, d.Removed, d.Changed)
}

// CompareSites reports pages that differ between the fresh site and the
// existing one. The index page is ignored since it embeds a timestamp.
func CompareSites(fresh, existing string) ([]Drift, error) {
	freshPages, err := listPages(fresh)
	if err != nil {
		return nil, err
	}

	existingPages, err := listPages(existing)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	var drifts []Drift

	for _, page := range freshPages {
		want, readErr := os.ReadFile(filepath.Join(fresh, page))
		if readErr != nil {
			return nil, fmt.Errorf("read %s: %w", page, readErr)
		}

		got, readErr := os.ReadFile(filepath.Join(existing, page))
		if errors.Is(readErr, fs.ErrNotExist) {
			drifts = append(drifts, Drift{Page: page, State: DriftMissing})

			continue
		}

		if readErr != nil {
			return nil, fmt.Errorf("read %s: %w", page, readErr)
		}

		if string(want) == string(got) {
			continue
		}

		added, removed, changed := lineDelta(string(got), string(want))
		drifts = append(drifts, Drift{Page: page, State: DriftStale, Added: added, Removed: removed, Changed: changed})
	}

	for _, page := range existingPages {
		if !slices.Contains(freshPages, page) {
			drifts = append(drifts, Drift{Page: page, State: DriftExtra})
		}
	}

	return drifts, nil
}

func listPages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var pages []string

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == IndexPage || !strings.HasSuffix(name, pageExt) {
			continue
		}

		pages = append(pages, name)
	}

	return pages, nil
}

// lineDelta diffs two texts line by line. Each diff character stands for a
// whole line after DiffLinesToChars.
func lineDelta(before, after string) (added, removed, changed int) {
	dmp := diffmatchpatch.New()
	a, b, _ := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(a, b, false)

	var removedPending int

	for _, edit := range diffs {
		switch edit.Type {
		case diffmatchpatch.DiffEqual:
			removed += removedPending
			removedPending = 0
		case diffmatchpatch.DiffInsert:
			delta := utf8.RuneCountInString(edit.Text)
			if removedPending > delta {
				changed += delta
				removed += removedPending - delta
			} else {
				changed += removedPending
				added += delta - removedPending
			}

			removedPending = 0
		case diffmatchpatch.DiffDelete:
			removedPending = utf8.RuneCountInString(edit.Text)
		}
	}

	return added, removed + removedPending, changed
}
