package cellcom

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jalad-shrimali/cml-linker/geo"
	"github.com/jalad-shrimali/cml-linker/siteid"
	"github.com/jalad-shrimali/cml-linker/table"
)

const header = "STATUS,TX_FREQ_HIGH_MHZ,TX_FREQ_LOW_MHZ,POL,LENGTH_KM,SITE1_NAME,ID_SITE1,EAST1,NORTH1," +
	"HEIGHT_ABOVE_SEA1_M,SITE2_NAME,ID_SITE2,EAST2,NORTH2,HEIGHT_ABOVE_SEA2_M,EXTRA\n"

func itm(t *testing.T) *geo.Projection {
	t.Helper()
	p, err := geo.Lookup("EPSG:2039")
	require.NoError(t, err)
	return p
}

func parse(t *testing.T, body string) *table.Table {
	t.Helper()
	tbl, err := table.Parse(strings.NewReader(header + body))
	require.NoError(t, err)
	tbl.Name = "cells.csv"
	return tbl
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tbl := parse(t, ""+
		"ACTIVE,18000,17000,V,4.2,Haifa North,ABCD1234,200000,740000,120,Haifa South,EFGH5678,201000,735000,80,x\n"+
		"ACTIVE,bad,23000,H,n/a,Site A,10.0.0.1;,178000,665000,,Site B,IJ12; 10.1.1.1,179000,664000,12.5,y\n")

	recs, err := Normalize(tbl, Options{Projection: itm(t)})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	r := recs[0]
	require.Equal(t, 0, r.Index)
	require.Equal(t, "cellcom", r.Provider)
	require.Equal(t, "ACTIVE", r.Status)
	require.InDelta(t, 18000e6, r.Frequency1.V, 1e-3)
	require.InDelta(t, 17000e6, r.Frequency2.V, 1e-3)
	require.Equal(t, "V", r.Polarization)
	require.InDelta(t, 4.2, r.LengthKM.V, 1e-12)
	require.Equal(t, siteid.Of("abcd"), r.Site1ID)
	require.Equal(t, siteid.Of("efgh"), r.Site2ID)
	require.Equal(t, siteid.Of("abcd-efgh"), r.LinkID)
	require.True(t, r.Lon1.Valid)
	require.InDelta(t, 35.0, r.Lon1.V, 0.5)
	require.InDelta(t, 32.8, r.Lat1.V, 0.5)
	require.InDelta(t, 120, r.Height1.V, 1e-12)
	require.Empty(t, r.Slots)

	r = recs[1]
	require.Equal(t, 1, r.Index)
	require.False(t, r.Frequency1.Valid)
	require.False(t, r.LengthKM.Valid)
	require.False(t, r.Height1.Valid)
	require.False(t, r.Site1ID.Valid)
	require.Equal(t, siteid.Of("ij12"), r.Site2ID)
	require.False(t, r.LinkID.Valid)
}

func TestNormalize_MissingCoordinatesStayMissing(t *testing.T) {
	t.Parallel()

	tbl := parse(t, "ACTIVE,18000,17000,V,4.2,A,ABCD,,740000,1,B,EFGH,201000,735000,2,\n")
	recs, err := Normalize(tbl, Options{Projection: itm(t), Provider: "partner"})
	require.NoError(t, err)
	require.Equal(t, "partner", recs[0].Provider)
	require.False(t, recs[0].Lon1.Valid)
	require.False(t, recs[0].Lat1.Valid)
	require.True(t, recs[0].Lon2.Valid)
}

func TestNormalize_SchemaMismatch(t *testing.T) {
	t.Parallel()

	tbl, err := table.Parse(strings.NewReader("STATUS,POL\nACTIVE,V\n"))
	require.NoError(t, err)
	_, err = Normalize(tbl, Options{Projection: itm(t)})
	require.ErrorIs(t, err, table.ErrSchemaMismatch)

	var se *table.SchemaError
	require.True(t, errors.As(err, &se))
	require.Contains(t, se.Missing, "ID_SITE1")
	require.Len(t, se.Missing, len(InputColumns)-2)
}

func TestNormalize_RequiresProjection(t *testing.T) {
	t.Parallel()
	_, err := Normalize(parse(t, ""), Options{})
	require.Error(t, err)
}

func TestProcess_Spreadsheet(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "New_Celltable.xlsx")
	x := excelize.NewFile()
	sheet := x.GetSheetName(0)
	hdr := make([]any, len(InputColumns))
	for i, c := range InputColumns {
		hdr[i] = c
	}
	require.NoError(t, x.SetSheetRow(sheet, "A1", &hdr))
	require.NoError(t, x.SetSheetRow(sheet, "A2", &[]any{
		"ACTIVE", 18000, 17000, "V", 4.2, "A", "ABCD1234", 200000, 740000, 10, "B", 12345, 201000, 735000, 20,
	}))
	require.NoError(t, x.SaveAs(path))
	require.NoError(t, x.Close())

	recs, err := Process(path, Options{Projection: itm(t)})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, siteid.Of("abcd"), recs[0].Site1ID)
	// numeric site ids carry no site code
	require.False(t, recs[0].Site2ID.Valid)
	require.InDelta(t, 18000e6, recs[0].Frequency1.V, 1e-3)
}

func TestProcess_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := Process(filepath.Join(t.TempDir(), "nope.csv"), Options{Projection: itm(t)})
	require.ErrorIs(t, err, os.ErrNotExist)
}
