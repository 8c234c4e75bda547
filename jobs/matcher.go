// Package jobs matches job postings against a location search. Matching is
// a pure computation over an in-memory posting slice; loading postings is
// the caller's concern.
package jobs

import (
	"sort"

	"github.com/k-j-hyun/HRMS-jjpartners/geo"
	"github.com/k-j-hyun/HRMS-jjpartners/model"
)

// Match pairs a posting with its great-circle distance from the search
// center.
type Match struct {
	Posting   model.JobPosting
	DistanceM float64
}

// Search returns the postings within radiusM meters of center, closest
// first. Ties break on posting ID so the ordering is stable across calls. A
// non-positive radius matches nothing.
func Search(center model.Coordinate, radiusM float64, postings []model.JobPosting) []Match {
	if radiusM <= 0 {
		return nil
	}

	var matches []Match
	for _, p := range postings {
		d := geo.DistanceMeters(center, p.Location)
		if d <= radiusM {
			matches = append(matches, Match{Posting: p, DistanceM: d})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].DistanceM != matches[j].DistanceM {
			return matches[i].DistanceM < matches[j].DistanceM
		}
		return matches[i].Posting.ID < matches[j].Posting.ID
	})
	return matches
}
