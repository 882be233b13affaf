package output

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jalad-shrimali/cml-linker/cellcom"
	"github.com/jalad-shrimali/cml-linker/crossref"
	"github.com/jalad-shrimali/cml-linker/rawdata"
)

// SQLiteSink stores each run table as a table of one SQLite database.
type SQLiteSink struct {
	Path string
	db   *sql.DB
}

func NewSQLiteSink(dir string) (*SQLiteSink, error) {
	path := filepath.Join(dir, DatabaseFile)
	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &SQLiteSink{Path: path, db: db}, nil
}

func (s *SQLiteSink) WriteMetadata(recs []cellcom.Record) error {
	return s.store(metadataSheet(recs))
}

func (s *SQLiteSink) WriteTelemetry(p rawdata.Paired) error {
	if err := s.store(telemetrySheet("rd_rx", rawdata.Sink, p.Rx)); err != nil {
		return err
	}
	return s.store(telemetrySheet("rd_tx", rawdata.Source, p.Tx))
}

func (s *SQLiteSink) WriteMatches(ms []crossref.Match) error {
	return s.store(matchesSheet(ms))
}

func (s *SQLiteSink) WriteRelevant(links []crossref.Link) error {
	return s.store(relevantSheet(links))
}

func (s *SQLiteSink) Close() error { return s.db.Close() }

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// store replaces table sh.name with the sheet contents in one transaction.
func (s *SQLiteSink) store(sh sheet) (err error) {
	cols := make([]string, len(sh.header))
	marks := make([]string, len(sh.header))
	for i, h := range sh.header {
		cols[i] = quote(h)
		marks[i] = "?"
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	name := quote(sh.name)
	if _, err = tx.Exec("DROP TABLE IF EXISTS " + name); err != nil {
		return err
	}
	if _, err = tx.Exec(fmt.Sprintf("CREATE TABLE %s (%s)", name, strings.Join(cols, ", "))); err != nil {
		return err
	}
	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s VALUES (%s)", name, strings.Join(marks, ", ")))
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, row := range sh.rows {
		if _, err = stmt.Exec(row...); err != nil {
			return fmt.Errorf("%s row %d: %w", sh.name, i, err)
		}
	}
	return tx.Commit()
}
