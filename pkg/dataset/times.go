// Package dataset assembles the temporal PubMed dataset: it attaches
// features, labels, and time steps to the citation graph, partitions edges
// into sequential time windows, and serializes the result.
package dataset

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/graphsets/pubmed-temporal/pkg/types"
	"github.com/graphsets/pubmed-temporal/pkg/utils"
)

// TimesFile is the cached per-PMID year map under <root>/input/.
const TimesFile = "pubmed-times.json.gz"

// TimesPath returns the location of the cached year map.
func TimesPath(root string) string {
	return filepath.Join(root, "input", TimesFile)
}

// ExtractYears derives the publication year per PMID from fetched metadata.
// IDs without metadata map to nil. The year is the leading token of the date
// field, stripped of any range suffix ("2009 May 15" and "2009:2010" both
// yield "2009").
func ExtractYears(ids []string, metadata map[string]*types.Metadata) map[string]*string {
	years := make(map[string]*string, len(ids))
	for _, id := range ids {
		md := metadata[id]
		if md == nil || md.Date == "" {
			years[id] = nil
			continue
		}
		year := md.Date
		if fields := strings.Fields(year); len(fields) > 0 {
			year = fields[0]
		}
		year, _, _ = strings.Cut(year, ":")
		y := year
		years[id] = &y
	}
	return years
}

// Factorize maps years to sequential integer time steps in sorted year
// order. Entries with a nil year map to types.TimeUnknown. The returned
// steps slice translates a time step back to its year.
func Factorize(years map[string]*string) (map[string]int, []string) {
	unique := make(map[string]struct{})
	for _, y := range years {
		if y != nil {
			unique[*y] = struct{}{}
		}
	}

	steps := make([]string, 0, len(unique))
	for y := range unique {
		steps = append(steps, y)
	}
	sort.Strings(steps)

	codes := make(map[string]int, len(steps))
	for i, y := range steps {
		codes[y] = i
	}

	times := make(map[string]int, len(years))
	for id, y := range years {
		if y == nil {
			times[id] = types.TimeUnknown
			continue
		}
		times[id] = codes[*y]
	}
	return times, steps
}

// SaveYears caches the year map to <root>/input/pubmed-times.json.gz.
func SaveYears(root string, years map[string]*string) error {
	return utils.WriteJSONGz(TimesPath(root), years)
}

// LoadYears reads a previously cached year map.
func LoadYears(root string) (map[string]*string, error) {
	out := make(map[string]*string)
	if err := utils.ReadJSONGz(TimesPath(root), &out); err != nil {
		return nil, err
	}
	return out, nil
}
