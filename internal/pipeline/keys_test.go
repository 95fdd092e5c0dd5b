package pipeline

import (
	"testing"

	"elexmd/internal"
)

func TestContestKeyStripsDistrictFromNonDistrictOffice(t *testing.T) {
	rr := internal.RawResult{
		ElectionID:  "md-2000-11-07-general",
		Office:      "President - Vice Pres",
		District:    "08",
		ContestSlug: "2000-president-08",
	}
	key := contestKey(rr)
	if key.Slug != "2000-president" {
		t.Fatalf("slug = %q, want %q", key.Slug, "2000-president")
	}
	if key.ElectionID != rr.ElectionID {
		t.Fatalf("election id = %q", key.ElectionID)
	}
}

func TestContestKeyKeepsDistrictForDistrictOffice(t *testing.T) {
	rr := internal.RawResult{
		ElectionID:  "md-2004-11-02-general",
		Office:      "Representative in Congress",
		District:    "08",
		ContestSlug: "us-house-of-representatives-08",
	}
	if key := contestKey(rr); key.Slug != "us-house-of-representatives-08" {
		t.Fatalf("district office slug should be untouched, got %q", key.Slug)
	}
}

func TestContestKeyNoDistrict(t *testing.T) {
	rr := internal.RawResult{
		ElectionID:  "md-2002-11-05-general",
		Office:      "Governor",
		ContestSlug: "governor",
	}
	if key := contestKey(rr); key.Slug != "governor" {
		t.Fatalf("slug = %q", key.Slug)
	}
}

func TestCandidateKey(t *testing.T) {
	rr := internal.RawResult{ElectionID: "md-2004-11-02-general", CandidateSlug: "john-smith"}
	key := candidateKey(rr)
	if key != (dedupKey{ElectionID: "md-2004-11-02-general", Slug: "john-smith"}) {
		t.Fatalf("unexpected key: %+v", key)
	}
}
