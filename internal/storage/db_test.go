package storage

import (
	"path/filepath"
	"testing"

	"elexmd/internal"
	"elexmd/internal/util"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "elections.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestUpsertOfficesIdempotent(t *testing.T) {
	db := openTestDB(t)

	offices := []internal.Office{
		{State: "MD", Name: "Governor"},
		{State: "MD", Name: "State Senate", District: "12"},
	}
	if err := db.UpsertOffices(offices); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertOffices(offices); err != nil {
		t.Fatal(err)
	}

	office, err := db.GetOffice("MD", "State Senate", "12")
	if err != nil {
		t.Fatal(err)
	}
	if office == nil || office.District != "12" {
		t.Fatalf("office: %+v", office)
	}
	if missing, err := db.GetOffice("MD", "State Senate", "13"); err != nil || missing != nil {
		t.Fatalf("expected no row, got %+v err %v", missing, err)
	}
}

func TestGetContestByFieldsNullAware(t *testing.T) {
	db := openTestDB(t)

	if err := db.UpsertOffices([]internal.Office{{State: "MD", Name: "Governor"}}); err != nil {
		t.Fatal(err)
	}
	office, err := db.GetOffice("MD", "Governor", "")
	if err != nil || office == nil {
		t.Fatalf("office seed failed: %v", err)
	}

	withPrimary := internal.Contest{
		Source: "a.csv", ElectionID: "md-2002-09-10-primary", State: "MD",
		StartDate: "2002-09-10", EndDate: "2002-09-10", ElectionType: "primary",
		PrimaryType: util.StringPtr("closed"), ResultType: "certified",
		OfficeID: office.ID, Created: "2026-01-01T00:00:00Z", Updated: "2026-01-01T00:00:00Z",
	}
	general := internal.Contest{
		Source: "b.csv", ElectionID: "md-2002-11-05-general", State: "MD",
		StartDate: "2002-11-05", EndDate: "2002-11-05", ElectionType: "general",
		ResultType: "certified", OfficeID: office.ID,
		Created: "2026-01-01T00:00:00Z", Updated: "2026-01-01T00:00:00Z",
	}
	if err := db.InsertContests([]internal.Contest{withPrimary, general}); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetContestByFields(general)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.ElectionID != "md-2002-11-05-general" || got.PrimaryType != nil {
		t.Fatalf("contest: %+v", got)
	}

	got, err = db.GetContestByFields(withPrimary)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.PrimaryType == nil || *got.PrimaryType != "closed" {
		t.Fatalf("contest: %+v", got)
	}

	miss := general
	miss.ElectionType = "runoff"
	if got, err := db.GetContestByFields(miss); err != nil || got != nil {
		t.Fatalf("expected no match, got %+v err %v", got, err)
	}
}

func TestGetCandidateByFieldsNullAware(t *testing.T) {
	db := openTestDB(t)

	full := internal.Candidate{
		Source: "a.csv", ElectionID: "md-2004-11-02-general", State: "MD",
		FullName: "John Q. Public", GivenName: util.StringPtr("John"),
		FamilyName: util.StringPtr("Public"), AdditionalName: util.StringPtr("Q."),
		Suffix: util.StringPtr(""), ContestID: 1,
	}
	bare := internal.Candidate{
		Source: "a.csv", ElectionID: "md-2004-11-02-general", State: "MD",
		FullName: "Other Write-Ins", ContestID: 1,
		Flags: []string{internal.FlagAggregate},
	}
	if err := db.InsertCandidates([]internal.Candidate{full, bare}); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetCandidateByFields(bare)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.FullName != "Other Write-Ins" {
		t.Fatalf("candidate: %+v", got)
	}
	if len(got.Flags) != 1 || got.Flags[0] != internal.FlagAggregate {
		t.Fatalf("flags: %v", got.Flags)
	}

	got, err = db.GetCandidateByFields(full)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.GivenName == nil || *got.GivenName != "John" {
		t.Fatalf("candidate: %+v", got)
	}
}

func TestDeleteResultsByElectionIDs(t *testing.T) {
	db := openTestDB(t)

	results := []internal.Result{
		{Source: "a.csv", ElectionID: "md-2002-11-05-general", State: "MD", ReportingLevel: "county", CandidateID: 1, ContestID: 1, RawResultID: 1},
		{Source: "a.csv", ElectionID: "md-2002-11-05-general", State: "MD", ReportingLevel: "county", CandidateID: 2, ContestID: 1, RawResultID: 2},
		{Source: "b.csv", ElectionID: "md-2004-11-02-general", State: "MD", ReportingLevel: "county", CandidateID: 3, ContestID: 2, RawResultID: 3},
	}
	if err := db.InsertResults(results); err != nil {
		t.Fatal(err)
	}

	count, err := db.CountResultsByElectionIDs([]string{"md-2002-11-05-general", "md-2004-11-02-general"})
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Fatalf("count = %d", count)
	}

	if err := db.DeleteResultsByElectionIDs([]string{"md-2002-11-05-general"}); err != nil {
		t.Fatal(err)
	}
	count, err = db.CountResultsByElectionIDs([]string{"md-2002-11-05-general", "md-2004-11-02-general"})
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("count after delete = %d", count)
	}

	// Empty scope is a no-op, not an error.
	if err := db.DeleteResultsByElectionIDs(nil); err != nil {
		t.Fatal(err)
	}
}

func TestMetadata(t *testing.T) {
	db := openTestDB(t)

	if value, err := db.GetMetadata("fetch.last_run"); err != nil || value != nil {
		t.Fatalf("unset key: %v %v", value, err)
	}
	if err := db.SetMetadata("fetch.last_run", "2026-08-31T00:00:00Z"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetMetadata("fetch.last_run", "2026-08-31T01:00:00Z"); err != nil {
		t.Fatal(err)
	}
	value, err := db.GetMetadata("fetch.last_run")
	if err != nil {
		t.Fatal(err)
	}
	if value == nil || *value != "2026-08-31T01:00:00Z" {
		t.Fatalf("value: %v", value)
	}
}
