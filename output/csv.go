package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"

	"github.com/jalad-shrimali/cml-linker/cellcom"
	"github.com/jalad-shrimali/cml-linker/crossref"
	"github.com/jalad-shrimali/cml-linker/rawdata"
)

// CSVSink writes the run tables as CSV files into Dir.
type CSVSink struct {
	Dir string
}

func NewCSVSink(dir string) *CSVSink { return &CSVSink{Dir: dir} }

// indexed prefixes a row with its index column, written under an empty
// header name.
type indexed[T any] struct {
	Index int `csv:"index"`
	Row   T   `csv:",inline"`
}

func (s *CSVSink) WriteMetadata(recs []cellcom.Record) error {
	header := append([]string{""}, cellcom.OutputColumns...)
	header = append(header, cellcom.LinkIDColumn)

	rows := make([]indexed[cellcom.Record], len(recs))
	for i, r := range recs {
		rows[i] = indexed[cellcom.Record]{Index: r.Index, Row: r}
	}
	return writeCSV(s.path(MetadataFile), header, rows, false)
}

func (s *CSVSink) WriteTelemetry(p rawdata.Paired) error {
	if err := writeTelemetry(s.path(RxFile), rawdata.Sink, p.Rx); err != nil {
		return err
	}
	return writeTelemetry(s.path(TxFile), rawdata.Source, p.Tx)
}

func writeTelemetry(path string, kind rawdata.Kind, samples []rawdata.Sample) error {
	rows := make([]indexed[rawdata.Sample], len(samples))
	for i, sm := range samples {
		rows[i] = indexed[rawdata.Sample]{Index: sm.Row, Row: sm}
	}
	return writeCSV(path, append([]string{""}, telemetryHeader(kind)...), rows, false)
}

// WriteMatches writes the audit log; lines end in CRLF.
func (s *CSVSink) WriteMatches(ms []crossref.Match) error {
	return writeCSV(s.path(MatchesFile), crossref.MatchesHeader, ms, true)
}

func (s *CSVSink) WriteRelevant(links []crossref.Link) error {
	return writeCSV(s.path(RelevantFile), crossref.RelevantColumns, links, false)
}

func (s *CSVSink) Close() error { return nil }

func (s *CSVSink) path(name string) string { return filepath.Join(s.Dir, name) }

// writeCSV writes header followed by one record per row. The header is
// given explicitly since the index column has no name.
func writeCSV[T any](path string, header []string, rows []T, crlf bool) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := csv.NewWriter(f)
	w.UseCRLF = crlf
	if err := w.Write(header); err != nil {
		return err
	}
	enc := csvutil.NewEncoder(w)
	enc.AutoHeader = false
	for i := range rows {
		if err := enc.Encode(rows[i]); err != nil {
			return fmt.Errorf("%s row %d: %w", filepath.Base(path), i, err)
		}
	}
	w.Flush()
	return w.Error()
}
