package pipeline

import (
	"fmt"
	"strings"

	"elexmd/internal"
	"elexmd/internal/util"
)

// partyAbbrevs maps party values as they appear on raw results to
// canonical abbreviations. The 2002 files carry full party names;
// later files carry abbreviations that mostly already match the
// canonical ones and pass through untouched.
var partyAbbrevs = map[string]string{
	"BOT":          "UNF",
	"Democratic":   "DEM",
	"Republican":   "REP",
	"Libertarian":  "LIB",
	"Green":        "GRN",
	"Unaffiliated": "UNF",
}

// districtOffices are the offices whose identity includes a district.
var districtOffices = []string{
	"U.S. House of Representatives",
	"State Senate",
	"House of Delegates",
}

func isDistrictOffice(name string) bool {
	for _, o := range districtOffices {
		if o == name {
			return true
		}
	}
	return false
}

// CleanOffice maps the free-text office value to a canonical office
// name. First match wins; unknown values pass through unchanged.
func CleanOffice(office string) string {
	lc := strings.ToLower(office)
	switch {
	case strings.Contains(lc, "president"):
		return "President"
	case strings.Contains(lc, "u.s. senat"):
		return "U.S. Senate"
	case strings.Contains(lc, "congress"):
		return "U.S. House of Representatives"
	case strings.Contains(lc, "state senat"):
		// Matches both "State Senate" and "State Senator".
		return "State Senate"
	case strings.Contains(lc, "governor"):
		return "Governor"
	}
	return office
}

// CleanParty maps a raw party value to its canonical abbreviation.
// "Both Parties" (a 2002 write-in artifact) cleans to the empty
// string, meaning no resolvable party. Unmapped values pass through.
func CleanParty(party string) string {
	if party == "Both Parties" {
		return ""
	}
	if abbrev, ok := partyAbbrevs[party]; ok {
		return abbrev
	}
	return party
}

// StripLeadingZeros removes leading zero characters. "000" becomes "".
func StripLeadingZeros(val string) string {
	return strings.TrimLeft(val, "0")
}

// OCDID derives the hierarchical locality identifier for a raw row
// from its reporting level and jurisdiction. Levels without a mapping
// yield nil.
func OCDID(rr internal.RawResult) *string {
	clean := StripLeadingZeros(rr.Jurisdiction)
	state := strings.ToLower(rr.State)
	switch rr.ReportingLevel {
	case internal.LevelCounty:
		return util.StringPtr(fmt.Sprintf("ocd-division/country:us/state:%s/county:%s", state, clean))
	case internal.LevelStateLegislative:
		return util.StringPtr(fmt.Sprintf("ocd-division/country:us/state:%s/sldl:%s", state, clean))
	case internal.LevelPrecinct:
		return util.StringPtr(fmt.Sprintf("%s/precinct:%s", rr.CountyOCDID, clean))
	}
	return nil
}
