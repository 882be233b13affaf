// Package output persists the pipeline tables: the numbered run directory,
// the CSV files downstream tools read, and optional workbook and SQLite
// exports of the same tables.
package output

import (
	"errors"

	"github.com/jalad-shrimali/cml-linker/cellcom"
	"github.com/jalad-shrimali/cml-linker/crossref"
	"github.com/jalad-shrimali/cml-linker/numeric"
	"github.com/jalad-shrimali/cml-linker/rawdata"
)

// file names inside a run directory
const (
	MetadataFile = "metadata.csv"
	RxFile       = "rd_rx.csv"
	TxFile       = "rd_tx.csv"
	MatchesFile  = "metadata_rawdata_matching_links.txt"
	RelevantFile = "metadata_relevant.csv"
	WorkbookFile = "links.xlsx"
	DatabaseFile = "links.db"
)

// Sink receives the tables of one run.
type Sink interface {
	WriteMetadata(recs []cellcom.Record) error
	WriteTelemetry(p rawdata.Paired) error
	WriteMatches(ms []crossref.Match) error
	WriteRelevant(links []crossref.Link) error
	Close() error
}

// Multi fans every table out to several sinks.
type Multi []Sink

func (m Multi) WriteMetadata(recs []cellcom.Record) error {
	return m.each(func(s Sink) error { return s.WriteMetadata(recs) })
}

func (m Multi) WriteTelemetry(p rawdata.Paired) error {
	return m.each(func(s Sink) error { return s.WriteTelemetry(p) })
}

func (m Multi) WriteMatches(ms []crossref.Match) error {
	return m.each(func(s Sink) error { return s.WriteMatches(ms) })
}

func (m Multi) WriteRelevant(links []crossref.Link) error {
	return m.each(func(s Sink) error { return s.WriteRelevant(links) })
}

// Close closes every sink, even after a failure.
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

func (m Multi) each(fn func(Sink) error) error {
	for _, s := range m {
		if err := fn(s); err != nil {
			return err
		}
	}
	return nil
}

/* ──────────── typed rows for workbook / database sinks ──────────── */

// sheet is a named table whose cells are string, int, float64 or nil.
type sheet struct {
	name   string
	header []string
	rows   [][]any
}

func num(f numeric.Float) any {
	if !f.Valid {
		return nil
	}
	return f.V
}

func text(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func metadataSheet(recs []cellcom.Record) sheet {
	header := append([]string{"index"}, cellcom.OutputColumns...)
	header = append(header, cellcom.LinkIDColumn)
	rows := make([][]any, len(recs))
	for i, r := range recs {
		rows[i] = []any{
			r.Index, r.Provider, text(r.Status), num(r.Frequency1), num(r.Frequency2),
			text(r.Polarization), num(r.LengthKM),
			text(r.Site1Name), text(r.Site1ID.String()), num(r.Lon1), num(r.Lat1), num(r.Height1),
			text(r.Site2Name), text(r.Site2ID.String()), num(r.Lon2), num(r.Lat2), num(r.Height2),
			text(r.Slots), text(r.LinkID.String()),
		}
	}
	return sheet{name: "metadata", header: header, rows: rows}
}

func telemetryHeader(kind rawdata.Kind) []string {
	lo, hi := kind.PowerColumns()
	return []string{"Time", "Interval", "Measuring_site", "Hop_number", lo, hi, "link_id"}
}

func telemetrySheet(name string, kind rawdata.Kind, samples []rawdata.Sample) sheet {
	rows := make([][]any, len(samples))
	for i, s := range samples {
		rows[i] = []any{
			s.Row, s.Time, num(numeric.Lenient(s.Interval)), s.Site, s.Hop,
			num(numeric.Lenient(s.PowerMin)), num(numeric.Lenient(s.PowerMax)), s.LinkID,
		}
	}
	return sheet{name: name, header: append([]string{"index"}, telemetryHeader(kind)...), rows: rows}
}

func matchesSheet(ms []crossref.Match) sheet {
	rows := make([][]any, len(ms))
	for i, m := range ms {
		rows[i] = []any{m.LinkID, m.MetadataIndex, m.MetadataFile}
	}
	return sheet{name: "matching_links", header: crossref.MatchesHeader, rows: rows}
}

func relevantSheet(links []crossref.Link) sheet {
	rows := make([][]any, len(links))
	for i, l := range links {
		rows[i] = []any{
			l.Carrier, l.LinkID, num(l.Frequency1), num(l.Frequency2), num(l.LengthKM),
			num(l.TxLon), num(l.TxLat), num(l.RxLon), num(l.RxLat),
		}
	}
	return sheet{name: "metadata_relevant", header: crossref.RelevantColumns, rows: rows}
}
