package internal

// Reporting levels as they appear on raw results.
const (
	LevelCounty           = "county"
	LevelStateLegislative = "state_legislative"
	LevelPrecinct         = "precinct"
)

// RawResult is one row as loaded from a source results file. The
// transform never mutates raw rows; it only reads them.
type RawResult struct {
	ID             int64
	State          string
	ElectionID     string
	Source         string
	StartDate      string
	EndDate        string
	ElectionType   string
	PrimaryType    string
	ResultType     string
	Special        bool
	Office         string
	District       string
	FullName       string
	GivenName      string
	FamilyName     string
	AdditionalName string
	CandidateSlug  string
	ContestSlug    string
	Party          string
	PrimaryParty   string
	ReportingLevel string
	Jurisdiction   string
	CountyOCDID    string
	Votes          int
	TotalVotes     int
	VoteBreakdowns map[string]int
	Winner         string
	WriteIn        string
}

// Office is pre-seeded reference data. District is empty for
// statewide and national offices.
type Office struct {
	ID       int64
	State    string
	Name     string
	District string
}

// Key is the identity string the resolver caches offices under.
func (o Office) Key() string {
	return OfficeKey(o.State, o.Name, o.District)
}

func OfficeKey(state, name, district string) string {
	key := state + ":" + name
	if district != "" {
		key += ":" + district
	}
	return key
}

// Party is pre-seeded reference data, identified by its canonical
// abbreviation.
type Party struct {
	ID     int64
	Abbrev string
	Name   string
}

// Contest holds one canonical race. Created once per dedup key, never
// mutated or deleted by the transform.
type Contest struct {
	ID             int64
	Source         string
	ElectionID     string
	State          string
	StartDate      string
	EndDate        string
	ElectionType   string
	PrimaryType    *string
	ResultType     string
	Special        bool
	OfficeID       int64
	PrimaryPartyID *int64
	Created        string
	Updated        string
}

// FlagAggregate marks the synthetic "Other Write-Ins" candidate.
const FlagAggregate = "aggregate"

// Candidate holds one canonical contestant, owned by exactly one
// contest. Name part pointers are nil where the source era leaves
// them unset.
type Candidate struct {
	ID             int64
	Source         string
	ElectionID     string
	State          string
	FullName       string
	GivenName      *string
	FamilyName     *string
	AdditionalName *string
	Suffix         *string
	ContestID      int64
	Flags          []string
}

// Result is one canonical vote record. Exactly one per raw row; the
// full set for the transform scope is replaced on every run.
type Result struct {
	ID             int64
	Source         string
	ElectionID     string
	State          string
	ReportingLevel string
	Jurisdiction   string
	Votes          int
	TotalVotes     int
	VoteBreakdowns map[string]int
	CandidateID    int64
	ContestID      int64
	RawResultID    int64
	Party          *string
	Winner         bool
	WriteIn        bool
	OCDID          *string
}

// ResultExportRow is one flattened row for the XLSX export: results
// joined with their candidate, contest and office.
type ResultExportRow struct {
	ElectionID     string
	OfficeName     string
	OfficeDistrict string
	CandidateName  string
	Party          *string
	ReportingLevel string
	Jurisdiction   string
	OCDID          *string
	Votes          int
	TotalVotes     int
	Winner         bool
	WriteIn        bool
}
