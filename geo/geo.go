// Package geo reprojects planar grid coordinates of link endpoints into
// WGS84 longitude/latitude.
//
// Only the projected systems carriers actually deliver are registered.
package geo

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/wroge/wgs84"
)

// ErrCoordinateTransform is returned (wrapped) for any reprojection failure.
var ErrCoordinateTransform = errors.New("coordinate transform failed")

// TransformError reports the first input pair that could not be transformed.
// Index is -1 when the failure is not tied to one element.
type TransformError struct {
	Code   string
	Index  int
	X, Y   float64
	Reason string
}

func (e *TransformError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s: %s", ErrCoordinateTransform, e.Code, e.Reason)
	}
	return fmt.Sprintf("%s: %s: element %d (%v, %v): %s", ErrCoordinateTransform, e.Code, e.Index, e.X, e.Y, e.Reason)
}

func (e *TransformError) Unwrap() error { return ErrCoordinateTransform }

type definition struct {
	name string // EPSG name, for reference
	crs  wgs84.CoordinateReferenceSystem
}

var registry = map[string]definition{
	// GRS80 with the position-vector shift to WGS84 (m, arc-seconds, ppm)
	"EPSG:2039": {
		name: "Israel 1993 / Israeli TM Grid",
		crs: wgs84.Helmert(6378137, 298.257222101,
			-24.0024, -17.1032, -17.8444, -0.33077, -1.85269, 1.66969, 5.4248,
		).TransverseMercator(35.2045169444444, 31.7343936111111, 1.0000067, 219529.584, 626907.39),
	},
	"EPSG:32636": {
		name: "WGS 84 / UTM zone 36N",
		crs:  wgs84.UTM(36, true),
	},
}

// Codes lists the registered CRS codes.
func Codes() []string {
	out := make([]string, 0, len(registry))
	for c := range registry {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Projection converts between one grid and WGS84 geographic coordinates.
type Projection struct {
	code   string
	toGeo  wgs84.Func
	toGrid wgs84.Func
}

// Lookup resolves a CRS code such as "EPSG:2039" (case-insensitive).
func Lookup(code string) (*Projection, error) {
	key := strings.ToUpper(strings.TrimSpace(code))
	def, ok := registry[key]
	if !ok {
		return nil, &TransformError{Code: code, Index: -1,
			Reason: "unknown reference system, expected one of " + strings.Join(Codes(), ", ")}
	}
	return &Projection{
		code:   key,
		toGeo:  wgs84.From(def.crs),
		toGrid: wgs84.To(def.crs),
	}, nil
}

func (p *Projection) Code() string { return p.code }

// ToGeographic converts easting/northing columns into longitude/latitude.
// Any non-finite input fails the whole call; no partial result is returned.
func (p *Projection) ToGeographic(easting, northing []float64) (lon, lat []float64, err error) {
	if len(easting) != len(northing) {
		return nil, nil, &TransformError{Code: p.code, Index: -1,
			Reason: fmt.Sprintf("column length mismatch %d != %d", len(easting), len(northing))}
	}
	lon = make([]float64, len(easting))
	lat = make([]float64, len(easting))
	for i := range easting {
		x, y := easting[i], northing[i]
		if !finite(x) || !finite(y) {
			return nil, nil, &TransformError{Code: p.code, Index: i, X: x, Y: y, Reason: "non-finite input"}
		}
		lo, la, _ := p.toGeo(x, y, 0)
		if !finite(lo) || !finite(la) || math.Abs(la) > 90 {
			return nil, nil, &TransformError{Code: p.code, Index: i, X: x, Y: y, Reason: "result out of domain"}
		}
		lon[i], lat[i] = lo, la
	}
	return lon, lat, nil
}

// ToProjected is the inverse of ToGeographic.
func (p *Projection) ToProjected(lon, lat []float64) (easting, northing []float64, err error) {
	if len(lon) != len(lat) {
		return nil, nil, &TransformError{Code: p.code, Index: -1,
			Reason: fmt.Sprintf("column length mismatch %d != %d", len(lon), len(lat))}
	}
	easting = make([]float64, len(lon))
	northing = make([]float64, len(lon))
	for i := range lon {
		lo, la := lon[i], lat[i]
		if !finite(lo) || !finite(la) || math.Abs(la) > 90 {
			return nil, nil, &TransformError{Code: p.code, Index: i, X: lo, Y: la, Reason: "invalid geographic input"}
		}
		x, y, _ := p.toGrid(lo, la, 0)
		if !finite(x) || !finite(y) {
			return nil, nil, &TransformError{Code: p.code, Index: i, X: lo, Y: la, Reason: "result out of domain"}
		}
		easting[i], northing[i] = x, y
	}
	return easting, northing, nil
}

// Point transforms a single easting/northing pair.
func (p *Projection) Point(easting, northing float64) (lon, lat float64, err error) {
	lons, lats, err := p.ToGeographic([]float64{easting}, []float64{northing})
	if err != nil {
		return 0, 0, err
	}
	return lons[0], lats[0], nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
