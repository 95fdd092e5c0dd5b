package pipeline

import (
	"strings"

	"elexmd/internal"
)

type dedupKey struct {
	ElectionID string
	Slug       string
}

// contestKey derives the contest dedup key for a raw row. A handful
// of presidential rows carry a district and a contest slug with the
// district appended; for non-district offices the trailing district
// segment is stripped so those rows collapse into one contest.
func contestKey(rr internal.RawResult) dedupKey {
	slug := rr.ContestSlug
	if !isDistrictOffice(CleanOffice(rr.Office)) && rr.District != "" {
		suffix := "-" + strings.ToLower(rr.District)
		if strings.HasSuffix(strings.ToLower(slug), suffix) {
			slug = slug[:len(slug)-len(suffix)]
		}
	}
	return dedupKey{ElectionID: rr.ElectionID, Slug: slug}
}

// candidateKey derives the candidate dedup key for a raw row.
func candidateKey(rr internal.RawResult) dedupKey {
	return dedupKey{ElectionID: rr.ElectionID, Slug: rr.CandidateSlug}
}
