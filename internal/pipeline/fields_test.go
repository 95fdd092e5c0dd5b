package pipeline

import (
	"strings"
	"testing"

	"elexmd/internal"
)

func TestLegacyCandidateFieldsWriteIn(t *testing.T) {
	rr := internal.RawResult{
		Source:        "20021105__md__general__state_legislative.csv",
		ElectionID:    "md-2002-11-05-general",
		State:         "MD",
		EndDate:       "2002-11-05",
		GivenName:     "zz998",
		FamilyName:    "zz998",
		CandidateSlug: "zz998-zz998",
	}

	candidate, err := CandidateFields(rr)
	if err != nil {
		t.Fatal(err)
	}
	if candidate.FullName != "Other Write-Ins" {
		t.Fatalf("full name = %q", candidate.FullName)
	}
	if candidate.GivenName != nil || candidate.FamilyName != nil || candidate.AdditionalName != nil {
		t.Fatalf("write-in candidate should have no name parts: %+v", candidate)
	}
}

func TestLegacyCandidateFieldsNullAdditionalName(t *testing.T) {
	rr := internal.RawResult{
		ElectionID: "md-2002-11-05-general",
		State:      "MD",
		EndDate:    "2002-11-05",
		GivenName:  "Robert",
		FamilyName: "Ehrlich",
		// The 2002 files mark a null middle name with a literal \N.
		AdditionalName: `\N`,
	}

	candidate, err := CandidateFields(rr)
	if err != nil {
		t.Fatal(err)
	}
	if candidate.FullName != "Robert Ehrlich" {
		t.Fatalf("full name = %q", candidate.FullName)
	}
	if candidate.AdditionalName != nil {
		t.Fatalf("additional name should be unset, got %q", *candidate.AdditionalName)
	}
	if candidate.GivenName == nil || *candidate.GivenName != "Robert" {
		t.Fatalf("given name: %v", candidate.GivenName)
	}
	if candidate.FamilyName == nil || *candidate.FamilyName != "Ehrlich" {
		t.Fatalf("family name: %v", candidate.FamilyName)
	}
}

func TestLegacyCandidateFieldsWithAdditionalName(t *testing.T) {
	rr := internal.RawResult{
		ElectionID:     "md-2002-11-05-general",
		State:          "MD",
		EndDate:        "2002-11-05",
		GivenName:      "Kathleen",
		AdditionalName: "Kennedy",
		FamilyName:     "Townsend",
	}

	candidate, err := CandidateFields(rr)
	if err != nil {
		t.Fatal(err)
	}
	if candidate.FullName != "Kathleen Kennedy Townsend" {
		t.Fatalf("full name = %q", candidate.FullName)
	}
	if candidate.AdditionalName == nil || *candidate.AdditionalName != "Kennedy" {
		t.Fatalf("additional name: %v", candidate.AdditionalName)
	}
}

func TestModernCandidateFieldsParsesName(t *testing.T) {
	rr := internal.RawResult{
		ElectionID: "md-2004-11-02-general",
		State:      "MD",
		EndDate:    "2004-11-02",
		FullName:   "John Q. Public Jr.",
	}

	candidate, err := CandidateFields(rr)
	if err != nil {
		t.Fatal(err)
	}
	if candidate.FullName != "John Q. Public Jr." {
		t.Fatalf("full name = %q", candidate.FullName)
	}
	if candidate.GivenName == nil || *candidate.GivenName != "John" {
		t.Fatalf("given name: %v", candidate.GivenName)
	}
	if candidate.FamilyName == nil || *candidate.FamilyName != "Public" {
		t.Fatalf("family name: %v", candidate.FamilyName)
	}
	if candidate.AdditionalName == nil || *candidate.AdditionalName != "Q." {
		t.Fatalf("additional name: %v", candidate.AdditionalName)
	}
	if candidate.Suffix == nil || *candidate.Suffix != "Jr." {
		t.Fatalf("suffix: %v", candidate.Suffix)
	}
}

func TestModernCandidateFieldsAggregatePassthrough(t *testing.T) {
	rr := internal.RawResult{
		ElectionID: "md-2004-11-02-general",
		State:      "MD",
		EndDate:    "2004-11-02",
		FullName:   "Other Write-Ins",
	}

	candidate, err := CandidateFields(rr)
	if err != nil {
		t.Fatal(err)
	}
	if candidate.FullName != "Other Write-Ins" {
		t.Fatalf("full name = %q", candidate.FullName)
	}
	if candidate.GivenName != nil || candidate.FamilyName != nil {
		t.Fatalf("aggregate label should not be decomposed: %+v", candidate)
	}
}

func TestCandidateFieldsUnsupportedYear(t *testing.T) {
	rr := internal.RawResult{EndDate: "1998-11-03", CandidateSlug: "someone"}
	if _, err := CandidateFields(rr); err == nil {
		t.Fatal("expected error for pre-2002 year")
	} else if !strings.Contains(err.Error(), "unsupported election year") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseWinner(t *testing.T) {
	cases := []struct {
		winner string
		want   bool
	}{
		{winner: "Y", want: true},
		{winner: "1", want: true},
		{winner: "N", want: false},
		{winner: "0", want: false},
		{winner: "", want: false},
	}

	for _, tc := range cases {
		rr := internal.RawResult{Winner: tc.winner}
		if got := parseWinner(rr); got != tc.want {
			t.Fatalf("parseWinner(%q) = %v, want %v", tc.winner, got, tc.want)
		}
	}
}

func TestParseWriteIn(t *testing.T) {
	if !parseWriteIn(internal.RawResult{WriteIn: "Y"}) {
		t.Fatal("modern marker should be a write-in")
	}
	if !parseWriteIn(internal.RawResult{FamilyName: "zz998"}) {
		t.Fatal("legacy sentinel should be a write-in")
	}
	if parseWriteIn(internal.RawResult{WriteIn: "N", FamilyName: "Smith"}) {
		t.Fatal("plain row should not be a write-in")
	}
}
