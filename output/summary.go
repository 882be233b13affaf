package output

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/jalad-shrimali/cml-linker/crossref"
)

// PrintSummary renders the matched links as a table.
func PrintSummary(w io.Writer, links []crossref.Link) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Carrier", "Link", "Freq 1", "Freq 2", "Length km", "Tx lon/lat", "Rx lon/lat"})
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	for _, l := range links {
		table.Append([]string{
			l.Carrier, l.LinkID, l.Frequency1.String(), l.Frequency2.String(), l.LengthKM.String(),
			lonLat(l.TxLon.String(), l.TxLat.String()), lonLat(l.RxLon.String(), l.RxLat.String()),
		})
	}
	table.Render()
}

func lonLat(lon, lat string) string {
	if lon == "" || lat == "" {
		return "-"
	}
	return lon + ", " + lat
}
