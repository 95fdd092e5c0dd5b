package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"elexmd/internal"
	"elexmd/internal/storage"
	"elexmd/internal/util"
)

// Loader reads header-mapped raw result CSV files into the raw_results
// table. Column names follow the raw record field names; unknown
// columns are ignored and missing optional columns stay empty.
type Loader struct {
	db *storage.DB
}

func NewLoader(db *storage.DB) *Loader {
	return &Loader{db: db}
}

func (l *Loader) LoadFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	rows, err := l.parse(f, filepath.Base(path))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return l.db.InsertRawResults(rows)
}

func (l *Loader) parse(r io.Reader, source string) ([]internal.RawResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"state", "election_id", "end_date", "reporting_level"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	var out []internal.RawResult
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		rr := internal.RawResult{
			State:          field("state"),
			ElectionID:     field("election_id"),
			Source:         source,
			StartDate:      field("start_date"),
			EndDate:        field("end_date"),
			ElectionType:   field("election_type"),
			PrimaryType:    field("primary_type"),
			ResultType:     field("result_type"),
			Special:        parseBool(field("special")),
			Office:         field("office"),
			District:       field("district"),
			FullName:       field("full_name"),
			GivenName:      field("given_name"),
			FamilyName:     field("family_name"),
			AdditionalName: field("additional_name"),
			CandidateSlug:  field("candidate_slug"),
			ContestSlug:    field("contest_slug"),
			Party:          field("party"),
			PrimaryParty:   field("primary_party"),
			ReportingLevel: field("reporting_level"),
			Jurisdiction:   field("jurisdiction"),
			CountyOCDID:    field("county_ocd_id"),
			Winner:         field("winner"),
			WriteIn:        field("write_in"),
		}

		if rr.Votes, err = parseCount(field("votes")); err != nil {
			return nil, fmt.Errorf("line %d: votes: %w", line, err)
		}
		if rr.TotalVotes, err = parseCount(field("total_votes")); err != nil {
			return nil, fmt.Errorf("line %d: total_votes: %w", line, err)
		}

		if rr.ContestSlug == "" {
			rr.ContestSlug = util.Slugify(strings.TrimSpace(rr.Office + " " + rr.District))
		}
		if rr.CandidateSlug == "" {
			name := rr.FullName
			if name == "" {
				name = strings.TrimSpace(rr.GivenName + " " + rr.FamilyName)
			}
			rr.CandidateSlug = util.Slugify(name)
		}

		out = append(out, rr)
	}

	return out, nil
}

func parseCount(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	value = strings.ReplaceAll(value, ",", "")
	return strconv.Atoi(value)
}

func parseBool(value string) bool {
	switch strings.ToLower(value) {
	case "1", "true", "y", "yes":
		return true
	}
	return false
}
