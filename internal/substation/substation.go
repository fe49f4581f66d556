// Package substation loads the substation directory: descriptive metadata for
// every substation keyed by its identifier.
package substation

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/sells-group/postcode-lookup/internal/blob"
)

// Record is one substation as published in the directory document.
type Record struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	DNO           string          `json:"dno"`
	LicenseArea   string          `json:"license_area"`
	PostcodeCount int             `json:"postcode_count"`
	Postcodes     []string        `json:"postcodes,omitempty"`
	Boundary      json.RawMessage `json:"boundary,omitempty"`
}

// HasBoundary reports whether the record carries a boundary geometry.
func (r Record) HasBoundary() bool {
	return len(r.Boundary) > 0 && string(r.Boundary) != "null"
}

// Geometry decodes the GeoJSON boundary. A record without a boundary returns
// nil, nil.
func (r Record) Geometry() (geom.T, error) {
	if !r.HasBoundary() {
		return nil, nil
	}
	var g geom.T
	if err := geojson.Unmarshal(r.Boundary, &g); err != nil {
		return nil, eris.Wrapf(err, "substation: decode boundary for %s", r.ID)
	}
	switch g.(type) {
	case *geom.Polygon, *geom.MultiPolygon:
	default:
		return nil, eris.Errorf("substation: boundary for %s is %T, want polygon", r.ID, g)
	}
	return g, nil
}

// Bounds returns the boundary's bounding box as [minLng, minLat, maxLng, maxLat].
// ok is false when the record has no boundary.
func (r Record) Bounds() (box [4]float64, ok bool, err error) {
	g, err := r.Geometry()
	if err != nil || g == nil {
		return box, false, err
	}
	b := g.Bounds()
	if b.IsEmpty() {
		return box, false, nil
	}
	return [4]float64{b.Min(0), b.Min(1), b.Max(0), b.Max(1)}, true, nil
}

// Directory is the read-only substation directory.
type Directory struct {
	records map[string]Record
}

// Load fetches and decodes the directory document. Any failure is fatal to
// the caller's session.
func Load(ctx context.Context, src blob.Source) (*Directory, error) {
	data, err := src.Fetch(ctx, blob.SubstationsName)
	if err != nil {
		return nil, eris.Wrap(err, "substation: fetch directory")
	}
	dir, err := Parse(data)
	if err != nil {
		return nil, err
	}
	zap.L().Info("substation directory loaded", zap.Int("substations", dir.Len()))
	return dir, nil
}

// Parse decodes a directory document.
func Parse(data []byte) (*Directory, error) {
	var raw map[string]Record
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrap(err, "substation: decode directory")
	}
	if raw == nil {
		return nil, eris.New("substation: directory document is empty")
	}
	for id, rec := range raw {
		rec.ID = id
		raw[id] = rec
	}
	return &Directory{records: raw}, nil
}

// Get returns the record for id.
func (d *Directory) Get(id string) (Record, bool) {
	rec, ok := d.records[id]
	return rec, ok
}

// Len returns the number of substations.
func (d *Directory) Len() int {
	return len(d.records)
}
