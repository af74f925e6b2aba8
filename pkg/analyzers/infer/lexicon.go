package infer

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"sync"
)

//go:embed data/lexicon.tsv
var builtinLexicon string

var (
	builtinOnce sync.Once
	builtinDict MapDictionary
)

// Builtin returns the embedded lexicon of common programming vocabulary.
// The returned dictionary is shared and must not be modified.
func Builtin() MapDictionary {
	builtinOnce.Do(func() {
		dict, err := ReadLexicon(strings.NewReader(builtinLexicon))
		if err != nil {
			panic(fmt.Sprintf("infer: embedded lexicon: %v", err))
		}

		builtinDict = dict
	})

	return builtinDict
}

// ReadLexicon parses a tab-separated lexicon. Each line is either
// "word<TAB>definition" or "word<TAB>sense<TAB>definition"; for words with
// several senses the lowest sense number wins. Blank lines and lines
// starting with '#' are ignored.
func ReadLexicon(r io.Reader) (MapDictionary, error) {
	entries, err := readEntries(r)
	if err != nil {
		return nil, err
	}

	dict := make(MapDictionary, len(entries))
	best := make(map[string]int, len(entries))

	for _, e := range entries {
		if rank, seen := best[e.Word]; seen && rank <= e.Sense {
			continue
		}

		best[e.Word] = e.Sense
		dict[e.Word] = e.Definition
	}

	return dict, nil
}

// Entry is one sense of a lexicon word.
type Entry struct {
	Word       string
	Definition string
	Sense      int
}

func readEntries(r io.Reader) ([]Entry, error) {
	var entries []Entry

	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry, err := parseEntry(line)
		if err != nil {
			return nil, fmt.Errorf("lexicon line %d: %w", lineNo, err)
		}

		entries = append(entries, entry)
	}

	err := scanner.Err()
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}

	return entries, nil
}

func parseEntry(line string) (Entry, error) {
	fields := strings.Split(line, "\t")

	switch len(fields) {
	case 2:
		return Entry{Word: strings.ToLower(fields[0]), Definition: fields[1], Sense: 1}, nil
	case 3:
		var sense int

		_, err := fmt.Sscanf(fields[1], "%d", &sense)
		if err != nil {
			return Entry{}, fmt.Errorf("%w: bad sense %q", ErrMalformedLexicon, fields[1])
		}

		return Entry{Word: strings.ToLower(fields[0]), Definition: fields[2], Sense: sense}, nil
	default:
		return Entry{}, fmt.Errorf("%w: expected 2 or 3 tab-separated fields, got %d", ErrMalformedLexicon, len(fields))
	}
}
