package infer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver
)

// Sentinel errors for lexicon sources.
var (
	// ErrLexiconUnavailable reports a configured lexicon that cannot be used.
	// Callers fall back to raw name tokens.
	ErrLexiconUnavailable = errors.New("lexicon unavailable")
	ErrMalformedLexicon   = errors.New("malformed lexicon")
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS senses (
	lemma TEXT NOT NULL,
	sense INTEGER NOT NULL,
	definition TEXT NOT NULL,
	PRIMARY KEY (lemma, sense)
);
`

const lookupQuery = `SELECT definition FROM senses WHERE lemma = ? ORDER BY sense LIMIT 1`

// SQLiteDictionary serves first-sense definitions from a SQLite database
// holding a WordNet-style senses table.
type SQLiteDictionary struct {
	db       *sql.DB
	lookup   *sql.Stmt
	logger   *slog.Logger
	warnOnce sync.Once
}

// OpenSQLite opens an existing lexicon database. A missing file yields
// ErrLexiconUnavailable.
func OpenSQLite(path string, logger *slog.Logger) (*SQLiteDictionary, error) {
	_, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLexiconUnavailable, err)
	}

	return openSQLite(path, logger)
}

// CreateSQLite opens the lexicon database at path, creating the file and
// schema when needed.
func CreateSQLite(path string, logger *slog.Logger) (*SQLiteDictionary, error) {
	return openSQLite(path, logger)
}

func openSQLite(path string, logger *slog.Logger) (*SQLiteDictionary, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open lexicon %s: %w", path, err)
	}

	_, err = db.Exec(sqliteSchema)
	if err != nil {
		db.Close()

		return nil, fmt.Errorf("%w: init schema: %w", ErrLexiconUnavailable, err)
	}

	stmt, err := db.Prepare(lookupQuery)
	if err != nil {
		db.Close()

		return nil, fmt.Errorf("prepare lexicon lookup: %w", err)
	}

	return &SQLiteDictionary{db: db, lookup: stmt, logger: logger}, nil
}

// Lookup implements Dictionary. Query failures are logged once and treated
// as unknown words.
func (d *SQLiteDictionary) Lookup(word string) (string, bool) {
	var definition string

	err := d.lookup.QueryRow(strings.ToLower(word)).Scan(&definition)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}

	if err != nil {
		d.warnOnce.Do(func() {
			d.logger.Warn("lexicon lookup failed, using raw name tokens", "error", err)
		})

		return "", false
	}

	return definition, true
}

// Import loads a tab-separated lexicon (see ReadLexicon) into the database
// in one transaction and returns the number of senses written.
func (d *SQLiteDictionary) Import(ctx context.Context, r io.Reader) (int, error) {
	entries, err := readEntries(r)
	if err != nil {
		return 0, err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO senses (lemma, sense, definition) VALUES (?, ?, ?)
	ON CONFLICT(lemma, sense) DO UPDATE SET definition=excluded.definition`)
	if err != nil {
		return 0, errors.Join(fmt.Errorf("prepare import: %w", err), tx.Rollback())
	}
	defer stmt.Close()

	for _, e := range entries {
		_, err = stmt.ExecContext(ctx, e.Word, e.Sense, e.Definition)
		if err != nil {
			return 0, errors.Join(fmt.Errorf("import %q: %w", e.Word, err), tx.Rollback())
		}
	}

	err = tx.Commit()
	if err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}

	return len(entries), nil
}

// Count returns the number of stored senses.
func (d *SQLiteDictionary) Count(ctx context.Context) (int, error) {
	var n int

	err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM senses`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count senses: %w", err)
	}

	return n, nil
}

// Ping checks that the database is still reachable.
func (d *SQLiteDictionary) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return fmt.Errorf("lexicon database: %w", err)
	}

	return nil
}

// Close releases the database handle.
func (d *SQLiteDictionary) Close() error {
	if d == nil || d.db == nil {
		return nil
	}

	return errors.Join(d.lookup.Close(), d.db.Close())
}
