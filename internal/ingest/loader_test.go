package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"elexmd/internal/storage"
)

const sampleCSV = `state,election_id,start_date,end_date,election_type,office,district,full_name,contest_slug,candidate_slug,party,reporting_level,jurisdiction,votes,total_votes,winner
MD,md-2004-11-02-general,2004-11-02,2004-11-02,general,President - Vice Pres,,George W. Bush,president,george-w-bush,REP,county,01,"1,024",2048,Y
MD,md-2004-11-02-general,2004-11-02,2004-11-02,general,President - Vice Pres,,John Kerry,,,DEM,county,01,512,2048,
`

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	db, err := storage.Open(filepath.Join(dir, "elections.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	path := filepath.Join(dir, "20041102__md__general__county.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	count, err := NewLoader(db).LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("loaded %d rows, want 2", count)
	}

	rows, err := db.FilterRawResults("MD", "2002-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("filtered %d rows, want 2", len(rows))
	}

	bush := rows[0]
	if bush.Source != "20041102__md__general__county.csv" {
		t.Fatalf("source = %q", bush.Source)
	}
	if bush.Votes != 1024 || bush.TotalVotes != 2048 {
		t.Fatalf("votes = %d/%d", bush.Votes, bush.TotalVotes)
	}
	if bush.Winner != "Y" {
		t.Fatalf("winner = %q", bush.Winner)
	}

	// Slugs derive from the name and office when the file lacks them.
	kerry := rows[1]
	if kerry.CandidateSlug != "john-kerry" {
		t.Fatalf("candidate slug = %q", kerry.CandidateSlug)
	}
	if kerry.ContestSlug != "president-vice-pres" {
		t.Fatalf("contest slug = %q", kerry.ContestSlug)
	}
}

func TestLoadFileMissingRequiredColumn(t *testing.T) {
	dir := t.TempDir()
	db, err := storage.Open(filepath.Join(dir, "elections.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	path := filepath.Join(dir, "bad.csv")
	if err := os.WriteFile(path, []byte("office,votes\nGovernor,10\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewLoader(db).LoadFile(path); err == nil {
		t.Fatal("expected error for missing required columns")
	}
}
