package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jalad-shrimali/cml-linker/output"
	"github.com/jalad-shrimali/cml-linker/pipeline"
)

func write(t *testing.T, path, body string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// workspace lays out raw/, cells.csv and an empty out/ under a temp dir.
func workspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	write(t, filepath.Join(root, "raw", "d_RADIO_SINK.txt"),
		"Time,Interval,NeAlias,PowerRLTMmin,PowerRLTMmax\n"+
			"2020-01-01 00:00,15,ABCD_MW_5.1,-45,-44\n"+
			"2020-01-01 00:00,15,EFGH_MW_5.1,-50,-49\n")
	write(t, filepath.Join(root, "raw", "d_RADIO_SOURCE.txt"),
		"Time,Interval,NeAlias,PowerTLTMmin,PowerTLTMmax\n"+
			"2020-01-01 00:00,15,ABCD_MW_5.1,10,11\n"+
			"2020-01-01 00:00,15,EFGH_MW_5.1,12,13\n")
	write(t, filepath.Join(root, "cells.csv"),
		"STATUS,TX_FREQ_HIGH_MHZ,TX_FREQ_LOW_MHZ,POL,LENGTH_KM,SITE1_NAME,ID_SITE1,EAST1,NORTH1,"+
			"HEIGHT_ABOVE_SEA1_M,SITE2_NAME,ID_SITE2,EAST2,NORTH2,HEIGHT_ABOVE_SEA2_M\n"+
			"ACTIVE,18000,17000,V,4.2,Alpha,ABCD,178000,665000,10,Beta,EFGH,179000,666000,20\n")
	return root
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunCmd(t *testing.T) {
	t.Parallel()

	ws := workspace(t)
	out, err := execute(t, "run",
		"--rawdata", filepath.Join(ws, "raw"),
		"--metadata", filepath.Join(ws, "cells.csv"),
		"--output", filepath.Join(ws, "out"),
		"--sqlite")
	require.NoError(t, err)
	require.Contains(t, out, "abcd-efgh")

	dir := filepath.Join(ws, "out", "output_0")
	for _, name := range []string{
		output.MetadataFile, output.RxFile, output.TxFile,
		output.MatchesFile, output.RelevantFile, output.DatabaseFile,
	} {
		require.FileExists(t, filepath.Join(dir, name))
	}
	require.NoFileExists(t, filepath.Join(dir, output.WorkbookFile))

	// a second run never reuses a directory
	_, err = execute(t, "run",
		"--rawdata", filepath.Join(ws, "raw"),
		"--metadata", filepath.Join(ws, "cells.csv"),
		"--output", filepath.Join(ws, "out"),
		"--skip-availability")
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(ws, "out", "output_1", output.RxFile))
	require.NoFileExists(t, filepath.Join(ws, "out", "output_1", output.MatchesFile))
}

func TestRunCmd_MissingStage(t *testing.T) {
	t.Parallel()

	ws := workspace(t)
	_, err := execute(t, "run",
		"--rawdata", filepath.Join(ws, "raw"),
		"--output", filepath.Join(ws, "out"),
		"--skip-metadata")
	require.ErrorIs(t, err, pipeline.ErrMissingStage)
	require.NoDirExists(t, filepath.Join(ws, "out", "output_0"))
}

func TestRunCmd_Config(t *testing.T) {
	t.Parallel()

	ws := workspace(t)
	cfg := write(t, filepath.Join(ws, "cml.toml"), `
[input]
rawdata_dir = "`+filepath.ToSlash(filepath.Join(ws, "raw"))+`"
metadata = "`+filepath.ToSlash(filepath.Join(ws, "cells.csv"))+`"

[output]
root = "`+filepath.ToSlash(filepath.Join(ws, "runs"))+`"
prefix = "run_"
xlsx = true

[stages]
availability = false
`)
	_, err := execute(t, "--config", cfg, "run", "-v")
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(ws, "runs", "run_0", output.WorkbookFile))
	require.NoFileExists(t, filepath.Join(ws, "runs", "run_0", output.RelevantFile))

	_, err = execute(t, "--config", filepath.Join(ws, "missing.toml"), "run")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestBatchCmd(t *testing.T) {
	t.Parallel()

	ws := workspace(t)
	mdDir := filepath.Join(ws, "metadata")
	require.NoError(t, os.Mkdir(mdDir, 0o755))

	out, err := execute(t, "batch",
		"--rawdata", filepath.Join(ws, "raw"),
		"--metadata-dir", mdDir,
		"--output", filepath.Join(ws, "out"))
	require.NoError(t, err)
	require.Empty(t, out)
	require.NoDirExists(t, filepath.Join(ws, "out", "output_0"))
}
