// Package pipeline runs the linker stages in order: metadata
// normalization, telemetry loading and pairing, and the availability
// cross-reference. Every stage hands its table to an output.Sink.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/jalad-shrimali/cml-linker/cellcom"
	"github.com/jalad-shrimali/cml-linker/crossref"
	"github.com/jalad-shrimali/cml-linker/geo"
	"github.com/jalad-shrimali/cml-linker/output"
	"github.com/jalad-shrimali/cml-linker/rawdata"
)

// ErrMissingStage means a requested stage depends on one that is disabled.
var ErrMissingStage = errors.New("missing pipeline stage")

type Stages struct {
	Metadata     bool
	Rawdata      bool
	Availability bool
}

// AllStages enables every stage.
func AllStages() Stages { return Stages{Metadata: true, Rawdata: true, Availability: true} }

type Options struct {
	Stages Stages

	MetadataPath string
	Provider     string
	Projection   *geo.Projection

	RawdataDir    string
	Extensions    []string
	Interval      float64
	SelectedLinks string

	Logger *slog.Logger
}

// Validate fills defaults and checks that the enabled stages can run.
func (o *Options) Validate() error {
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.Stages.Availability && !(o.Stages.Metadata && o.Stages.Rawdata) {
		return fmt.Errorf("%w: availability needs both metadata and rawdata", ErrMissingStage)
	}
	if o.Stages.Metadata && o.Projection == nil {
		return errors.New("projection is required")
	}
	return nil
}

// Result holds the tables produced by a run; fields of disabled stages
// stay empty.
type Result struct {
	MetadataFile string
	Metadata     []cellcom.Record
	Telemetry    rawdata.Paired
	Report       crossref.Report
}

// Run executes the enabled stages and writes their tables to sink. The
// sink is not closed.
func Run(opts Options, sink output.Sink) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	return run(opts, nil, sink)
}

// LoadTelemetry reads and pairs the telemetry directory, honouring the
// selected-links file when one is set.
func LoadTelemetry(opts Options) (rawdata.Paired, error) {
	ro := rawdata.Options{
		Extensions: opts.Extensions,
		Interval:   opts.Interval,
		Logger:     opts.Logger,
	}
	if opts.SelectedLinks != "" {
		sites, err := rawdata.LoadSelectedLinks(opts.SelectedLinks)
		if err != nil {
			return rawdata.Paired{}, fmt.Errorf("selected links: %w", err)
		}
		ro.Sites = sites
	}
	p, err := rawdata.Process(opts.RawdataDir, ro)
	if err != nil {
		return rawdata.Paired{}, fmt.Errorf("rawdata %s: %w", opts.RawdataDir, err)
	}
	return p, nil
}

// run is Run with an optional telemetry table loaded beforehand.
func run(opts Options, tel *rawdata.Paired, sink output.Sink) (Result, error) {
	log := opts.Logger
	res := Result{MetadataFile: filepath.Base(opts.MetadataPath)}

	if opts.Stages.Metadata {
		recs, err := cellcom.Process(opts.MetadataPath, cellcom.Options{
			Provider:   opts.Provider,
			Projection: opts.Projection,
			Logger:     log,
		})
		if err != nil {
			return res, fmt.Errorf("metadata %s: %w", opts.MetadataPath, err)
		}
		res.Metadata = recs
		if err := sink.WriteMetadata(recs); err != nil {
			return res, fmt.Errorf("writing metadata: %w", err)
		}
	}

	if opts.Stages.Rawdata {
		if tel == nil {
			p, err := LoadTelemetry(opts)
			if err != nil {
				return res, err
			}
			tel = &p
		}
		res.Telemetry = *tel
		if err := sink.WriteTelemetry(*tel); err != nil {
			return res, fmt.Errorf("writing telemetry: %w", err)
		}
	}

	if opts.Stages.Availability {
		res.Report = crossref.Check(log, crossref.Input{
			LinkIDs:      rawdata.LinkIDs(res.Telemetry.Rx),
			Metadata:     res.Metadata,
			MetadataFile: res.MetadataFile,
		})
		if err := sink.WriteMatches(res.Report.Matches); err != nil {
			return res, fmt.Errorf("writing matches: %w", err)
		}
		if err := sink.WriteRelevant(res.Report.Relevant); err != nil {
			return res, fmt.Errorf("writing relevant links: %w", err)
		}
	}
	return res, nil
}
