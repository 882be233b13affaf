// Package rawdata loads per-channel radio telemetry exports (RADIO_SINK
// receive levels, RADIO_SOURCE transmit levels), derives the measuring site
// and hop of every row and pairs hops into directional links.
package rawdata

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jszwec/csvutil"

	"github.com/jalad-shrimali/cml-linker/numeric"
	"github.com/jalad-shrimali/cml-linker/siteid"
	"github.com/jalad-shrimali/cml-linker/table"
)

// ErrUnrecognizedFileKind marks a file that is neither a sink nor a source
// export. Load skips such files.
var ErrUnrecognizedFileKind = errors.New("unrecognized telemetry file kind")

// Kind tells receive-level files from transmit-level files.
type Kind int

const (
	Sink   Kind = iota // RSL, received power
	Source             // TSL, transmitted power
)

func (k Kind) String() string {
	switch k {
	case Sink:
		return "RADIO_SINK"
	case Source:
		return "RADIO_SOURCE"
	}
	return "unknown"
}

// PowerColumns returns the min/max power column names of the kind.
func (k Kind) PowerColumns() (string, string) {
	if k == Source {
		return "PowerTLTMmin", "PowerTLTMmax"
	}
	return "PowerRLTMmin", "PowerRLTMmax"
}

// Classify derives the kind from a file name.
func Classify(name string) (Kind, error) {
	switch {
	case strings.Contains(name, Sink.String()):
		return Sink, nil
	case strings.Contains(name, Source.String()):
		return Source, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnrecognizedFileKind, name)
}

// Sample is one channel-interval row. Row is its index within the source
// file; LinkID is empty until pairing.
type Sample struct {
	Row      int    `csv:"-"`
	Time     string `csv:"Time"`
	Interval string `csv:"Interval"`
	Site     string `csv:"Measuring_site"`
	Hop      string `csv:"Hop_number"`
	PowerMin string `csv:"power_min"`
	PowerMax string `csv:"power_max"`
	LinkID   string `csv:"link_id"`
}

/* ──────────── wire rows (decoded by header name) ──────────── */

type sinkRow struct {
	Time     string `csv:"Time"`
	Interval string `csv:"Interval"`
	NeAlias  string `csv:"NeAlias"`
	Min      string `csv:"PowerRLTMmin"`
	Max      string `csv:"PowerRLTMmax"`
}

type sourceRow struct {
	Time     string `csv:"Time"`
	Interval string `csv:"Interval"`
	NeAlias  string `csv:"NeAlias"`
	Min      string `csv:"PowerTLTMmin"`
	Max      string `csv:"PowerTLTMmax"`
}

type wire struct{ time, interval, alias, min, max string }

func (r sinkRow) wire() wire   { return wire{r.Time, r.Interval, r.NeAlias, r.Min, r.Max} }
func (r sourceRow) wire() wire { return wire{r.Time, r.Interval, r.NeAlias, r.Min, r.Max} }

type wireRow interface {
	sinkRow | sourceRow
	wire() wire
}

// ParseAlias splits a composite alias such as "HAIF_MW_12.1" into the
// lowercase measuring site (before the first '_') and the hop number (after
// the last '_', up to its last '.'; empty when there is no '.').
func ParseAlias(alias string) (site, hop string) {
	site, _, _ = strings.Cut(alias, "_")
	tail := alias
	if i := strings.LastIndex(alias, "_"); i >= 0 {
		tail = alias[i+1:]
	}
	if i := strings.LastIndex(tail, "."); i >= 0 {
		hop = tail[:i]
	}
	return strings.ToLower(site), hop
}

// ReadFile decodes one telemetry file of the given kind. Columns are
// matched by name; extra columns are ignored, missing ones are a
// *table.SchemaError. A leading byte order mark is stripped and rows whose
// field count differs from the header are skipped with a warning.
func ReadFile(path string, kind Kind, log *slog.Logger) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	name := filepath.Base(path)
	if kind == Source {
		return decode[sourceRow](f, name, log)
	}
	return decode[sinkRow](f, name, log)
}

func decode[T wireRow](r io.Reader, name string, log *slog.Logger) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", name, err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	dec, err := csvutil.NewDecoder(cr, header...)
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", name, err)
	}

	want, err := csvutil.Header(*new(T), "csv")
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, c := range want {
		if !slices.Contains(dec.Header(), c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &table.SchemaError{File: name, Missing: missing}
	}

	var out []Sample
	for i := 0; ; i++ {
		var v T
		err := dec.Decode(&v)
		if err == io.EOF {
			break
		}
		if errors.Is(err, csvutil.ErrFieldCount) {
			log.Warn("skipping ragged row", "file", name, "row", i,
				"fields", len(dec.Record()), "want", len(header))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("decoding %s row %d: %w", name, i, err)
		}
		w := v.wire()
		site, hop := ParseAlias(w.alias)
		out = append(out, Sample{
			Row:      i,
			Time:     w.time,
			Interval: w.interval,
			Site:     site,
			Hop:      hop,
			PowerMin: w.min,
			PowerMax: w.max,
		})
	}
	return out, nil
}

// ListFiles returns the sorted names of regular files in dir whose name
// contains one of exts.
func ListFiles(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		for _, ext := range exts {
			if strings.Contains(e.Name(), ext) {
				out = append(out, e.Name())
				break
			}
		}
	}
	slices.Sort(out)
	return out, nil
}

// LoadSelectedLinks reads a whitespace separated list of "site1-site2"
// tokens and returns the set of sites they name. '#' starts a comment.
func LoadSelectedLinks(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sites := map[string]struct{}{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line, _, _ := strings.Cut(sc.Text(), "#")
		for _, tok := range strings.Fields(line) {
			a, b := siteid.SplitLink(tok)
			sites[a] = struct{}{}
			sites[b] = struct{}{}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return sites, nil
}

/* ──────────── directory load ──────────── */

const (
	DefaultInterval  = 15
	DefaultExtension = ".txt"
)

type Options struct {
	// Extensions a file name must contain to be read; [".txt"] when empty.
	Extensions []string
	// Interval keeps only rows sampled at this many minutes; 15 when zero.
	Interval float64
	// Sites restricts rows to these measuring sites when non-nil.
	Sites  map[string]struct{}
	Logger *slog.Logger
}

func (o *Options) defaults() {
	if len(o.Extensions) == 0 {
		o.Extensions = []string{DefaultExtension}
	}
	if o.Interval == 0 {
		o.Interval = DefaultInterval
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
}

// Tables holds the receive and transmit working tables.
type Tables struct {
	Rx []Sample
	Tx []Sample
}

// Load reads every telemetry file of dir into the two working tables,
// keeping only rows at the configured interval and, when set, on the
// selected sites. Files of unknown kind are skipped.
func Load(dir string, opts Options) (Tables, error) {
	opts.defaults()
	log := opts.Logger

	files, err := ListFiles(dir, opts.Extensions)
	if err != nil {
		return Tables{}, err
	}
	if opts.Sites != nil {
		log.Info("filtering selected links", "sites", len(opts.Sites))
	}

	var t Tables
	for _, name := range files {
		kind, err := Classify(name)
		if err != nil {
			log.Warn("skipping file", "file", name, "error", err)
			continue
		}
		samples, err := ReadFile(filepath.Join(dir, name), kind, log)
		if err != nil {
			return Tables{}, err
		}

		kept := 0
		for _, s := range samples {
			if !keep(s, opts) {
				continue
			}
			kept++
			if kind == Sink {
				t.Rx = append(t.Rx, s)
			} else {
				t.Tx = append(t.Tx, s)
			}
		}
		log.Debug("read telemetry file", "file", name, "kind", kind, "rows", len(samples), "kept", kept)
	}
	log.Info("loaded telemetry", "files", len(files), "rx_rows", len(t.Rx), "tx_rows", len(t.Tx))
	return t, nil
}

func keep(s Sample, opts Options) bool {
	if opts.Sites != nil {
		if _, ok := opts.Sites[s.Site]; !ok {
			return false
		}
	}
	iv := numeric.Lenient(s.Interval)
	return iv.Valid && iv.V == opts.Interval
}

// Process loads a telemetry directory and pairs its hops.
func Process(dir string, opts Options) (Paired, error) {
	t, err := Load(dir, opts)
	if err != nil {
		return Paired{}, err
	}
	p := Pair(t.Rx, t.Tx)
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if len(p.Dropped) > 0 {
		log.Info("dropped unpairable hops", "count", len(p.Dropped), "hops", p.Dropped)
	}
	log.Info("paired hops", "hops", len(p.Hops), "rx_rows", len(p.Rx), "tx_rows", len(p.Tx))
	return p, nil
}
