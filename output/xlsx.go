package output

import (
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/jalad-shrimali/cml-linker/cellcom"
	"github.com/jalad-shrimali/cml-linker/crossref"
	"github.com/jalad-shrimali/cml-linker/rawdata"
)

// XLSXSink collects the run tables and saves them as sheets of one
// workbook on Close.
type XLSXSink struct {
	Path   string
	sheets []sheet
}

func NewXLSXSink(dir string) *XLSXSink {
	return &XLSXSink{Path: filepath.Join(dir, WorkbookFile)}
}

func (s *XLSXSink) WriteMetadata(recs []cellcom.Record) error {
	s.sheets = append(s.sheets, metadataSheet(recs))
	return nil
}

func (s *XLSXSink) WriteTelemetry(p rawdata.Paired) error {
	s.sheets = append(s.sheets,
		telemetrySheet("rd_rx", rawdata.Sink, p.Rx),
		telemetrySheet("rd_tx", rawdata.Source, p.Tx))
	return nil
}

func (s *XLSXSink) WriteMatches(ms []crossref.Match) error {
	s.sheets = append(s.sheets, matchesSheet(ms))
	return nil
}

func (s *XLSXSink) WriteRelevant(links []crossref.Link) error {
	s.sheets = append(s.sheets, relevantSheet(links))
	return nil
}

// Close writes the workbook. Nothing is written when no table was received.
func (s *XLSXSink) Close() error {
	if len(s.sheets) == 0 {
		return nil
	}
	x := excelize.NewFile()
	defer x.Close()

	add := func(sh sheet) error {
		if _, err := x.NewSheet(sh.name); err != nil {
			return err
		}
		if err := x.SetSheetRow(sh.name, "A1", &sh.header); err != nil {
			return err
		}
		for r, row := range sh.rows {
			cell, _ := excelize.CoordinatesToCellName(1, r+2)
			if err := x.SetSheetRow(sh.name, cell, &row); err != nil {
				return err
			}
		}
		return nil
	}
	for _, sh := range s.sheets {
		if err := add(sh); err != nil {
			return err
		}
	}
	if err := x.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	x.SetActiveSheet(0)
	return x.SaveAs(s.Path)
}
