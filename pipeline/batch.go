package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/jalad-shrimali/cml-linker/output"
	"github.com/jalad-shrimali/cml-linker/rawdata"
	"github.com/jalad-shrimali/cml-linker/table"
)

// OpenFunc returns a fresh output directory for one run.
type OpenFunc func() (*output.Dir, error)

// BatchResult is one metadata file of a batch.
type BatchResult struct {
	Result
	Dir string
}

// ListMetadata returns the sorted spreadsheet names in dir.
func ListMetadata(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && table.IsSpreadsheet(e.Name()) {
			out = append(out, e.Name())
		}
	}
	slices.Sort(out)
	return out, nil
}

// RunBatch runs every metadata file of metadataDir against one telemetry
// load, each into its own output directory. A failing file is logged and
// skipped; the failures are returned joined after the last file.
func RunBatch(opts Options, metadataDir string, open OpenFunc) ([]BatchResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if !opts.Stages.Metadata {
		return nil, fmt.Errorf("%w: batch runs need the metadata stage", ErrMissingStage)
	}
	log := opts.Logger

	files, err := ListMetadata(metadataDir)
	if err != nil {
		return nil, err
	}
	log.Info("batch metadata files", "dir", metadataDir, "files", len(files))

	var tel *rawdata.Paired
	if opts.Stages.Rawdata {
		p, err := LoadTelemetry(opts)
		if err != nil {
			return nil, err
		}
		tel = &p
	}

	var (
		results []BatchResult
		errs    []error
	)
	for _, name := range files {
		o := opts
		o.MetadataPath = filepath.Join(metadataDir, name)
		o.Logger = log.With("metadata", name)

		res, err := runOne(o, tel, open)
		if err != nil {
			o.Logger.Error("metadata file failed", "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

func runOne(opts Options, tel *rawdata.Paired, open OpenFunc) (br BatchResult, err error) {
	d, err := open()
	if err != nil {
		return br, err
	}
	defer func() {
		if cerr := d.Close(); err == nil {
			err = cerr
		}
	}()

	res, err := run(opts, tel, d)
	if err != nil {
		return br, err
	}
	opts.Logger.Info("all outputs were generated", "dir", d.Path)
	return BatchResult{Result: res, Dir: d.Path}, nil
}
