package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"elexmd/internal"
	"elexmd/internal/util"
)

// The two source eras. 2002 files carry pre-split name parts and
// numeric flag encodings; 2003 onward carry a single display name.
const (
	legacyEraYear  = 2002
	modernEraStart = 2003
)

// Legacy-era sentinels.
const (
	writeInSentinel = "zz998"
	nullNameMarker  = `\N`
	aggregateLabel  = "Other Write-Ins"
)

func electionYear(rr internal.RawResult) (int, error) {
	if len(rr.EndDate) < 4 {
		return 0, fmt.Errorf("raw result %d: malformed end date %q", rr.ID, rr.EndDate)
	}
	year, err := strconv.Atoi(rr.EndDate[:4])
	if err != nil {
		return 0, fmt.Errorf("raw result %d: malformed end date %q", rr.ID, rr.EndDate)
	}
	return year, nil
}

// ContestFields builds the canonical contest attributes for a raw
// row, with office and primary party resolved to reference rows.
func ContestFields(rr internal.RawResult, resolver *Resolver) (internal.Contest, error) {
	contest := internal.Contest{
		Source:       rr.Source,
		ElectionID:   rr.ElectionID,
		State:        rr.State,
		StartDate:    rr.StartDate,
		EndDate:      rr.EndDate,
		ElectionType: rr.ElectionType,
		ResultType:   rr.ResultType,
		Special:      rr.Special,
	}
	if rr.PrimaryType != "" {
		contest.PrimaryType = util.StringPtr(rr.PrimaryType)
	}

	office, err := resolver.Office(rr)
	if err != nil {
		return internal.Contest{}, err
	}
	contest.OfficeID = office.ID

	party, err := resolver.Party(rr.PrimaryParty)
	if err != nil {
		return internal.Contest{}, err
	}
	if party != nil {
		contest.PrimaryPartyID = util.Int64Ptr(party.ID)
	}

	return contest, nil
}

// CandidateFields builds the canonical candidate attributes for a raw
// row, dispatching on the source era. Years outside both eras are an
// error and abort the run.
func CandidateFields(rr internal.RawResult) (internal.Candidate, error) {
	year, err := electionYear(rr)
	if err != nil {
		return internal.Candidate{}, err
	}
	switch {
	case year == legacyEraYear:
		return legacyCandidateFields(rr), nil
	case year >= modernEraStart:
		return modernCandidateFields(rr), nil
	default:
		return internal.Candidate{}, fmt.Errorf("unsupported election year %d for candidate %q", year, rr.CandidateSlug)
	}
}

// legacyCandidateFields handles 2002 rows, which carry pre-split name
// parts. The write-in sentinel collapses to the aggregate candidate;
// otherwise the display name is assembled from the parts.
func legacyCandidateFields(rr internal.RawResult) internal.Candidate {
	candidate := baseCandidate(rr)

	if rr.FamilyName == writeInSentinel {
		candidate.FullName = aggregateLabel
		return candidate
	}

	candidate.GivenName = util.StringPtr(rr.GivenName)
	candidate.FamilyName = util.StringPtr(rr.FamilyName)

	bits := []string{rr.GivenName}
	if rr.AdditionalName != nullNameMarker {
		candidate.AdditionalName = util.StringPtr(rr.AdditionalName)
		bits = append(bits, rr.AdditionalName)
	}
	bits = append(bits, rr.FamilyName)
	candidate.FullName = strings.Join(bits, " ")
	return candidate
}

// modernCandidateFields handles 2003-onward rows, which carry only a
// display name. The aggregate label passes through unsplit; anything
// else is decomposed into name parts.
func modernCandidateFields(rr internal.RawResult) internal.Candidate {
	candidate := baseCandidate(rr)
	candidate.FullName = rr.FullName

	if rr.FullName == aggregateLabel {
		return candidate
	}

	name := util.ParseName(rr.FullName)
	candidate.GivenName = util.StringPtr(name.Given)
	candidate.FamilyName = util.StringPtr(name.Family)
	candidate.AdditionalName = util.StringPtr(name.Middle)
	candidate.Suffix = util.StringPtr(name.Suffix)
	return candidate
}

func baseCandidate(rr internal.RawResult) internal.Candidate {
	return internal.Candidate{
		Source:     rr.Source,
		ElectionID: rr.ElectionID,
		State:      rr.State,
	}
}

// parseWinner converts the raw winner marker into a boolean. Modern
// rows mark winners with "Y", 2002 rows with a numeric 1.
func parseWinner(rr internal.RawResult) bool {
	return rr.Winner == "Y" || rr.Winner == "1"
}

// parseWriteIn converts the raw write-in marker into a boolean. 2002
// rows have no marker; their write-ins carry the family-name
// sentinel instead.
func parseWriteIn(rr internal.RawResult) bool {
	return rr.WriteIn == "Y" || rr.FamilyName == writeInSentinel
}
