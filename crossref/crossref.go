// Package crossref joins the link ids resolved from telemetry with the link
// ids derived from carrier metadata.
package crossref

import (
	"io"
	"log/slog"

	"github.com/jalad-shrimali/cml-linker/cellcom"
	"github.com/jalad-shrimali/cml-linker/numeric"
)

// MatchesHeader is the header line of the audit log.
var MatchesHeader = []string{"link_id_rawdata", "metadata_index", "metadata_file_name"}

// Match records where a telemetry link was found in the metadata.
type Match struct {
	LinkID        string `csv:"link_id_rawdata"`
	MetadataIndex int    `csv:"metadata_index"`
	MetadataFile  string `csv:"metadata_file_name"`
}

// RelevantColumns is the public schema of matched links, the layout map
// drawing tools consume.
var RelevantColumns = []string{
	"carrier", "link_id", "frequency_1", "frequency_2", "length_mk",
	"tx_site_longitude", "tx_site_latitude", "rx_site_longitude", "rx_site_latitude",
}

// Link is one metadata link that has telemetry.
type Link struct {
	Carrier    string        `csv:"carrier"`
	LinkID     string        `csv:"link_id"`
	Frequency1 numeric.Float `csv:"frequency_1"`
	Frequency2 numeric.Float `csv:"frequency_2"`
	LengthKM   numeric.Float `csv:"length_mk"`
	TxLon      numeric.Float `csv:"tx_site_longitude"`
	TxLat      numeric.Float `csv:"tx_site_latitude"`
	RxLon      numeric.Float `csv:"rx_site_longitude"`
	RxLat      numeric.Float `csv:"rx_site_latitude"`
}

type Input struct {
	// LinkIDs are the distinct telemetry link ids, in report order.
	LinkIDs []string
	// Metadata is the full normalized metadata table.
	Metadata []cellcom.Record
	// MetadataFile names the metadata source in the audit log.
	MetadataFile string
}

type Report struct {
	Matches  []Match
	Relevant []Link
}

// Check looks every telemetry link id up in the metadata. A hit yields one
// audit entry pointing at the first metadata row carrying the id and one
// relevant link built from that row. Ids without metadata are left out.
func Check(log *slog.Logger, in Input) Report {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	first := make(map[string]int, len(in.Metadata))
	for i, r := range in.Metadata {
		if !r.LinkID.Valid {
			continue
		}
		if _, ok := first[r.LinkID.Value]; !ok {
			first[r.LinkID.Value] = i
		}
	}

	var rep Report
	seen := map[string]bool{}
	for _, id := range in.LinkIDs {
		i, ok := first[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		r := in.Metadata[i]
		log.Info("link found in metadata", "link", id, "line", r.Index, "file", in.MetadataFile)

		rep.Matches = append(rep.Matches, Match{LinkID: id, MetadataIndex: r.Index, MetadataFile: in.MetadataFile})
		rep.Relevant = append(rep.Relevant, Link{
			Carrier:    r.Provider,
			LinkID:     r.LinkID.Value,
			Frequency1: r.Frequency1,
			Frequency2: r.Frequency2,
			LengthKM:   r.LengthKM,
			TxLon:      r.Lon1,
			TxLat:      r.Lat1,
			RxLon:      r.Lon2,
			RxLat:      r.Lat2,
		})
	}
	log.Info("cross-referenced links", "telemetry_links", len(in.LinkIDs), "matched", len(rep.Matches))
	return rep
}
