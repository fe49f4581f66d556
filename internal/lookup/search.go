package lookup

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/postcode-lookup/internal/postcode"
	"github.com/sells-group/postcode-lookup/internal/substation"
)

// SubstationSummary is the directory metadata returned with a search.
type SubstationSummary struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	DNO           string      `json:"dno"`
	LicenseArea   string      `json:"license_area"`
	PostcodeCount int         `json:"postcode_count"`
	Bounds        *[4]float64 `json:"bounds,omitempty"`
}

// SearchResult is the outcome of a full postcode search.
type SearchResult struct {
	Postcode   string            `json:"postcode"`
	Lat        float64           `json:"lat"`
	Lng        float64           `json:"lng"`
	Substation SubstationSummary `json:"substation"`
	Area       Page              `json:"area"`
	Report     *AreaReport       `json:"-"`
}

// Search normalizes raw, resolves it, looks up its substation and returns one
// page of the substation's reconstructed area.
func (s *Service) Search(ctx context.Context, raw string, page int) (*SearchResult, error) {
	canonical := postcode.Normalize(raw)
	if canonical == "" {
		return nil, eris.Wrap(ErrInvalidInput, "lookup: empty postcode")
	}

	entry, err := s.Resolve(ctx, canonical)
	if err != nil {
		return nil, err
	}

	rec, ok := s.dir.Get(entry.SubstationID)
	if !ok {
		return nil, eris.Wrapf(ErrSubstationMissing, "lookup: %s maps to unknown substation %s",
			canonical, entry.SubstationID)
	}

	report, err := s.ReconstructAreaReport(ctx, canonical, entry.SubstationID)
	if err != nil {
		return nil, err
	}

	return &SearchResult{
		Postcode:   canonical,
		Lat:        entry.Lat,
		Lng:        entry.Lng,
		Substation: s.summary(rec),
		Area:       Paginate(report.Postcodes, page, s.opts.PageSize),
		Report:     report,
	}, nil
}

func (s *Service) summary(rec substation.Record) SubstationSummary {
	sum := SubstationSummary{
		ID:            rec.ID,
		Name:          rec.Name,
		DNO:           rec.DNO,
		LicenseArea:   rec.LicenseArea,
		PostcodeCount: rec.PostcodeCount,
	}
	box, ok, err := rec.Bounds()
	if err != nil {
		s.log.Warn("substation boundary unreadable", zap.String("substation_id", rec.ID), zap.Error(err))
	}
	if ok {
		sum.Bounds = &box
	}
	return sum
}
