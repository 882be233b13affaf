package crossref

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jalad-shrimali/cml-linker/cellcom"
	"github.com/jalad-shrimali/cml-linker/numeric"
	"github.com/jalad-shrimali/cml-linker/siteid"
)

func rec(i int, link siteid.Code) cellcom.Record {
	return cellcom.Record{
		Index:      i,
		Provider:   "cellcom",
		Frequency1: numeric.Of(18e9),
		Frequency2: numeric.Of(17e9),
		LengthKM:   numeric.Of(float64(i) + 0.5),
		Lon1:       numeric.Of(35), Lat1: numeric.Of(32),
		Lon2: numeric.Of(35.1), Lat2: numeric.Of(32.1),
		LinkID: link,
	}
}

func TestCheck(t *testing.T) {
	t.Parallel()

	md := []cellcom.Record{
		rec(0, siteid.Missing),
		rec(1, siteid.Of("abcd-efgh")),
		rec(2, siteid.Of("ijkl-mnop")),
		rec(3, siteid.Of("abcd-efgh")), // duplicate physical link, first wins
	}
	in := Input{
		LinkIDs:      []string{"efgh-abcd", "ijkl-mnop", "abcd-efgh", "zzzz-yyyy", "ijkl-mnop"},
		Metadata:     md,
		MetadataFile: "cells.xlsx",
	}

	rep := Check(nil, in)
	require.Equal(t, []Match{
		{LinkID: "ijkl-mnop", MetadataIndex: 2, MetadataFile: "cells.xlsx"},
		{LinkID: "abcd-efgh", MetadataIndex: 1, MetadataFile: "cells.xlsx"},
	}, rep.Matches)

	require.Len(t, rep.Relevant, 2)
	require.Equal(t, "cellcom", rep.Relevant[0].Carrier)
	require.Equal(t, "ijkl-mnop", rep.Relevant[0].LinkID)
	require.InDelta(t, 2.5, rep.Relevant[0].LengthKM.V, 1e-12)
	require.InDelta(t, 35.1, rep.Relevant[1].RxLon.V, 1e-12)

	// no orphans, no duplicates
	set := map[string]bool{}
	for _, id := range in.LinkIDs {
		set[id] = true
	}
	dup := map[string]bool{}
	for _, l := range rep.Relevant {
		require.True(t, set[l.LinkID])
		require.False(t, dup[l.LinkID])
		dup[l.LinkID] = true
	}
}

func TestCheck_NoTelemetry(t *testing.T) {
	t.Parallel()

	rep := Check(nil, Input{Metadata: []cellcom.Record{rec(0, siteid.Of("a-b"))}})
	require.Empty(t, rep.Matches)
	require.Empty(t, rep.Relevant)
}

func TestColumns(t *testing.T) {
	t.Parallel()
	require.Len(t, RelevantColumns, 9)
	require.Len(t, MatchesHeader, 3)
}
