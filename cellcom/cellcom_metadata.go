// Package cellcom normalizes Cellcom microwave link tables: it selects the
// known columns, cleans the site identifiers, derives the link id and
// reprojects both endpoints to WGS84.
package cellcom

import (
	"errors"
	"io"
	"log/slog"

	"github.com/jalad-shrimali/cml-linker/geo"
	"github.com/jalad-shrimali/cml-linker/numeric"
	"github.com/jalad-shrimali/cml-linker/siteid"
	"github.com/jalad-shrimali/cml-linker/table"
)

/* ──────────── source columns (keep order) ──────────── */

var InputColumns = []string{
	"STATUS", "TX_FREQ_HIGH_MHZ", "TX_FREQ_LOW_MHZ", "POL",
	"LENGTH_KM", "SITE1_NAME", "ID_SITE1", "EAST1", "NORTH1",
	"HEIGHT_ABOVE_SEA1_M", "SITE2_NAME", "ID_SITE2", "EAST2",
	"NORTH2", "HEIGHT_ABOVE_SEA2_M",
}

/* ──────────── canonical 17-column layout, plus link_id ──────────── */

var OutputColumns = []string{
	"SP", "Status", "Frequency1", "Frequency2", "Polarization", "Length_KM",
	"SITE1_Name", "SITE1_ID", "LON1", "LAT1", "Height_above_sea1",
	"SITE2_Name", "SITE2_ID", "LON2", "LAT2", "Height_above_sea2", "SLOTS",
}

const LinkIDColumn = "link_id"

// positions inside InputColumns
const (
	cStatus = iota
	cFreqHigh
	cFreqLow
	cPol
	cLength
	cSite1Name
	cSite1ID
	cEast1
	cNorth1
	cHeight1
	cSite2Name
	cSite2ID
	cEast2
	cNorth2
	cHeight2
)

// MHz as delivered, scaled the way downstream tools expect.
const frequencyScale = 1e9 / 1000

const DefaultProvider = "cellcom"

// Record is one physical link of the metadata table. Field order is the
// output column order.
type Record struct {
	Index        int           `csv:"-"`
	Provider     string        `csv:"SP"`
	Status       string        `csv:"Status"`
	Frequency1   numeric.Float `csv:"Frequency1"`
	Frequency2   numeric.Float `csv:"Frequency2"`
	Polarization string        `csv:"Polarization"`
	LengthKM     numeric.Float `csv:"Length_KM"`
	Site1Name    string        `csv:"SITE1_Name"`
	Site1ID      siteid.Code   `csv:"SITE1_ID"`
	Lon1         numeric.Float `csv:"LON1"`
	Lat1         numeric.Float `csv:"LAT1"`
	Height1      numeric.Float `csv:"Height_above_sea1"`
	Site2Name    string        `csv:"SITE2_Name"`
	Site2ID      siteid.Code   `csv:"SITE2_ID"`
	Lon2         numeric.Float `csv:"LON2"`
	Lat2         numeric.Float `csv:"LAT2"`
	Height2      numeric.Float `csv:"Height_above_sea2"`
	Slots        string        `csv:"SLOTS"`
	LinkID       siteid.Code   `csv:"link_id"`
}

type Options struct {
	// Provider is written into the SP column; DefaultProvider when empty.
	Provider string
	// Projection of the EAST/NORTH columns. Required.
	Projection *geo.Projection
	Logger     *slog.Logger
}

func (o *Options) defaults() error {
	if o.Provider == "" {
		o.Provider = DefaultProvider
	}
	if o.Projection == nil {
		return errors.New("cellcom: projection is required")
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return nil
}

// Process reads and normalizes one metadata file.
func Process(path string, opts Options) ([]Record, error) {
	t, err := table.Read(path)
	if err != nil {
		return nil, err
	}
	return Normalize(t, opts)
}

// Normalize turns a metadata table into records, one per input row. A
// missing expected column aborts with a *table.SchemaError; bad cell values
// only become missing fields.
func Normalize(t *table.Table, opts Options) ([]Record, error) {
	if err := opts.defaults(); err != nil {
		return nil, err
	}
	log := opts.Logger.With("file", t.Name, "projection", opts.Projection.Code())

	idx, err := t.Select(InputColumns)
	if err != nil {
		return nil, err
	}
	col := func(c int) []string { return t.Column(idx[c]) }

	freq1 := numeric.Column(col(cFreqHigh), numeric.Scaled(frequencyScale))
	freq2 := numeric.Column(col(cFreqLow), numeric.Scaled(frequencyScale))
	length := numeric.Column(col(cLength), numeric.Lenient)
	height1 := numeric.Column(col(cHeight1), numeric.Lenient)
	height2 := numeric.Column(col(cHeight2), numeric.Lenient)

	lon1, lat1 := reproject(opts.Projection, log,
		numeric.Column(col(cEast1), numeric.Lenient), numeric.Column(col(cNorth1), numeric.Lenient))
	lon2, lat2 := reproject(opts.Projection, log,
		numeric.Column(col(cEast2), numeric.Lenient), numeric.Column(col(cNorth2), numeric.Lenient))

	recs := make([]Record, len(t.Rows))
	withLink := 0
	for i, row := range t.Rows {
		cell := func(c int) string { return table.Pick(row, idx[c]) }

		s1 := siteid.Normalize(cell(cSite1ID)).Lower()
		s2 := siteid.Normalize(cell(cSite2ID)).Lower()
		link := siteid.LinkID(s1, s2)
		if link.Valid {
			withLink++
		}

		recs[i] = Record{
			Index:        i,
			Provider:     opts.Provider,
			Status:       cell(cStatus),
			Frequency1:   freq1[i],
			Frequency2:   freq2[i],
			Polarization: cell(cPol),
			LengthKM:     length[i],
			Site1Name:    cell(cSite1Name),
			Site1ID:      s1,
			Lon1:         lon1[i],
			Lat1:         lat1[i],
			Height1:      height1[i],
			Site2Name:    cell(cSite2Name),
			Site2ID:      s2,
			Lon2:         lon2[i],
			Lat2:         lat2[i],
			Height2:      height2[i],
			LinkID:       link,
		}
	}

	log.Info("normalized metadata", "rows", len(recs), "with_link_id", withLink)
	return recs, nil
}

// reproject converts an endpoint column pair. Rows whose coordinates are
// missing or cannot be transformed keep missing lon/lat; the rest are
// converted in one vectorized call.
func reproject(p *geo.Projection, log *slog.Logger, east, north []numeric.Float) (lon, lat []numeric.Float) {
	lon = make([]numeric.Float, len(east))
	lat = make([]numeric.Float, len(east))

	var rows []int
	var xs, ys []float64
	for i := range east {
		if !east[i].Valid || !north[i].Valid {
			log.Debug("missing endpoint coordinates", "row", i)
			continue
		}
		rows = append(rows, i)
		xs = append(xs, east[i].V)
		ys = append(ys, north[i].V)
	}

	lons, lats, err := p.ToGeographic(xs, ys)
	if err == nil {
		for k, i := range rows {
			lon[i], lat[i] = numeric.Of(lons[k]), numeric.Of(lats[k])
		}
		return lon, lat
	}

	// isolate the offending records
	for k, i := range rows {
		lo, la, err := p.Point(xs[k], ys[k])
		if err != nil {
			log.Warn("coordinate transform failed", "row", i, "error", err)
			continue
		}
		lon[i], lat[i] = numeric.Of(lo), numeric.Of(la)
	}
	return lon, lat
}
