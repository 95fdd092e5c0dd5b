package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"elexmd/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS offices (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  state TEXT NOT NULL,
  name TEXT NOT NULL,
  district TEXT NOT NULL DEFAULT '',
  UNIQUE(state, name, district)
);

CREATE TABLE IF NOT EXISTS parties (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  abbrev TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS raw_results (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  state TEXT NOT NULL,
  electionId TEXT NOT NULL,
  source TEXT NOT NULL,
  startDate TEXT NOT NULL,
  endDate TEXT NOT NULL,
  electionType TEXT,
  primaryType TEXT,
  resultType TEXT,
  special INTEGER NOT NULL DEFAULT 0,
  office TEXT,
  district TEXT,
  fullName TEXT,
  givenName TEXT,
  familyName TEXT,
  additionalName TEXT,
  candidateSlug TEXT NOT NULL,
  contestSlug TEXT NOT NULL,
  party TEXT,
  primaryParty TEXT,
  reportingLevel TEXT NOT NULL,
  jurisdiction TEXT,
  countyOcdId TEXT,
  votes INTEGER NOT NULL DEFAULT 0,
  totalVotes INTEGER NOT NULL DEFAULT 0,
  voteBreakdowns TEXT NOT NULL DEFAULT '{}',
  winner TEXT,
  writeIn TEXT
);
CREATE INDEX IF NOT EXISTS idx_raw_results_scope ON raw_results(state, endDate);
CREATE INDEX IF NOT EXISTS idx_raw_results_election ON raw_results(electionId);

CREATE TABLE IF NOT EXISTS contests (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  source TEXT NOT NULL,
  electionId TEXT NOT NULL,
  state TEXT NOT NULL,
  startDate TEXT NOT NULL,
  endDate TEXT NOT NULL,
  electionType TEXT,
  primaryType TEXT,
  resultType TEXT,
  special INTEGER NOT NULL DEFAULT 0,
  officeId INTEGER NOT NULL,
  primaryPartyId INTEGER,
  created TEXT NOT NULL,
  updated TEXT NOT NULL,
  FOREIGN KEY(officeId) REFERENCES offices(id),
  FOREIGN KEY(primaryPartyId) REFERENCES parties(id)
);
CREATE INDEX IF NOT EXISTS idx_contests_election ON contests(electionId);

CREATE TABLE IF NOT EXISTS candidates (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  source TEXT NOT NULL,
  electionId TEXT NOT NULL,
  state TEXT NOT NULL,
  fullName TEXT NOT NULL,
  givenName TEXT,
  familyName TEXT,
  additionalName TEXT,
  suffix TEXT,
  contestId INTEGER NOT NULL,
  flags TEXT NOT NULL DEFAULT '[]',
  FOREIGN KEY(contestId) REFERENCES contests(id)
);
CREATE INDEX IF NOT EXISTS idx_candidates_election ON candidates(electionId);

CREATE TABLE IF NOT EXISTS results (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  source TEXT NOT NULL,
  electionId TEXT NOT NULL,
  state TEXT NOT NULL,
  reportingLevel TEXT NOT NULL,
  jurisdiction TEXT,
  votes INTEGER NOT NULL DEFAULT 0,
  totalVotes INTEGER NOT NULL DEFAULT 0,
  voteBreakdowns TEXT NOT NULL DEFAULT '{}',
  candidateId INTEGER NOT NULL,
  contestId INTEGER NOT NULL,
  rawResultId INTEGER NOT NULL,
  party TEXT,
  winner INTEGER NOT NULL DEFAULT 0,
  writeIn INTEGER NOT NULL DEFAULT 0,
  ocdId TEXT,
  FOREIGN KEY(candidateId) REFERENCES candidates(id),
  FOREIGN KEY(contestId) REFERENCES contests(id),
  FOREIGN KEY(rawResultId) REFERENCES raw_results(id)
);
CREATE INDEX IF NOT EXISTS idx_results_election ON results(electionId);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) UpsertOffices(offices []internal.Office) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO offices (state, name, district) VALUES (?, ?, ?)
ON CONFLICT(state, name, district) DO NOTHING
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, o := range offices {
		if _, err := stmt.Exec(o.State, o.Name, o.District); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) GetOffice(state, name, district string) (*internal.Office, error) {
	var o internal.Office
	err := d.conn.QueryRow(`
SELECT id, state, name, district FROM offices
WHERE state = ? AND name = ? AND district = ?
`, state, name, district).Scan(&o.ID, &o.State, &o.Name, &o.District)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (d *DB) UpsertParties(parties []internal.Party) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO parties (abbrev, name) VALUES (?, ?)
ON CONFLICT(abbrev) DO UPDATE SET name = excluded.name
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range parties {
		if _, err := stmt.Exec(p.Abbrev, p.Name); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) GetPartyByAbbrev(abbrev string) (*internal.Party, error) {
	var p internal.Party
	err := d.conn.QueryRow(`
SELECT id, abbrev, name FROM parties WHERE abbrev = ?
`, abbrev).Scan(&p.ID, &p.Abbrev, &p.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (d *DB) InsertRawResults(rows []internal.RawResult) (int, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO raw_results (
  state, electionId, source, startDate, endDate, electionType, primaryType,
  resultType, special, office, district, fullName, givenName, familyName,
  additionalName, candidateSlug, contestSlug, party, primaryParty,
  reportingLevel, jurisdiction, countyOcdId, votes, totalVotes,
  voteBreakdowns, winner, writeIn
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, rr := range rows {
		breakdownsJSON, _ := json.Marshal(rr.VoteBreakdowns)
		if _, err := stmt.Exec(
			rr.State, rr.ElectionID, rr.Source, rr.StartDate, rr.EndDate,
			rr.ElectionType, rr.PrimaryType, rr.ResultType, rr.Special,
			rr.Office, rr.District, rr.FullName, rr.GivenName, rr.FamilyName,
			rr.AdditionalName, rr.CandidateSlug, rr.ContestSlug, rr.Party,
			rr.PrimaryParty, rr.ReportingLevel, rr.Jurisdiction, rr.CountyOCDID,
			rr.Votes, rr.TotalVotes, string(breakdownsJSON), rr.Winner, rr.WriteIn,
		); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// FilterRawResults returns every raw row for the state with an
// election end date at or after cutoff, in insertion order.
func (d *DB) FilterRawResults(state, cutoff string) ([]internal.RawResult, error) {
	rows, err := d.conn.Query(`
SELECT id, state, electionId, source, startDate, endDate, electionType,
       primaryType, resultType, special, office, district, fullName,
       givenName, familyName, additionalName, candidateSlug, contestSlug,
       party, primaryParty, reportingLevel, jurisdiction, countyOcdId,
       votes, totalVotes, voteBreakdowns, winner, writeIn
FROM raw_results
WHERE state = ? AND endDate >= ?
ORDER BY id ASC
`, state, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RawResult
	for rows.Next() {
		var rr internal.RawResult
		var breakdownsJSON string
		if err := rows.Scan(
			&rr.ID, &rr.State, &rr.ElectionID, &rr.Source, &rr.StartDate,
			&rr.EndDate, &rr.ElectionType, &rr.PrimaryType, &rr.ResultType,
			&rr.Special, &rr.Office, &rr.District, &rr.FullName, &rr.GivenName,
			&rr.FamilyName, &rr.AdditionalName, &rr.CandidateSlug,
			&rr.ContestSlug, &rr.Party, &rr.PrimaryParty, &rr.ReportingLevel,
			&rr.Jurisdiction, &rr.CountyOCDID, &rr.Votes, &rr.TotalVotes,
			&breakdownsJSON, &rr.Winner, &rr.WriteIn,
		); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(breakdownsJSON), &rr.VoteBreakdowns)
		out = append(out, rr)
	}

	return out, rows.Err()
}

func (d *DB) DistinctElectionIDs(state, cutoff string) ([]string, error) {
	rows, err := d.conn.Query(`
SELECT DISTINCT electionId FROM raw_results
WHERE state = ? AND endDate >= ?
ORDER BY electionId ASC
`, state, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (d *DB) InsertContests(contests []internal.Contest) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO contests (
  source, electionId, state, startDate, endDate, electionType, primaryType,
  resultType, special, officeId, primaryPartyId, created, updated
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range contests {
		if _, err := stmt.Exec(
			c.Source, c.ElectionID, c.State, c.StartDate, c.EndDate,
			c.ElectionType, c.PrimaryType, c.ResultType, c.Special,
			c.OfficeID, c.PrimaryPartyID, c.Created, c.Updated,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetContestByFields looks a contest up by its full field set, source
// and timestamps excluded. Nullable columns match NULL-aware.
func (d *DB) GetContestByFields(c internal.Contest) (*internal.Contest, error) {
	var out internal.Contest
	err := d.conn.QueryRow(`
SELECT id, source, electionId, state, startDate, endDate, electionType,
       primaryType, resultType, special, officeId, primaryPartyId, created, updated
FROM contests
WHERE electionId = ? AND state = ? AND startDate = ? AND endDate = ?
  AND electionType = ? AND primaryType IS ? AND resultType = ?
  AND special = ? AND officeId = ? AND primaryPartyId IS ?
LIMIT 1
`, c.ElectionID, c.State, c.StartDate, c.EndDate, c.ElectionType,
		c.PrimaryType, c.ResultType, c.Special, c.OfficeID, c.PrimaryPartyID,
	).Scan(
		&out.ID, &out.Source, &out.ElectionID, &out.State, &out.StartDate,
		&out.EndDate, &out.ElectionType, &out.PrimaryType, &out.ResultType,
		&out.Special, &out.OfficeID, &out.PrimaryPartyID, &out.Created, &out.Updated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (d *DB) CountContests() (int, error) {
	return d.countRows(`SELECT COUNT(*) FROM contests`)
}

func (d *DB) InsertCandidates(candidates []internal.Candidate) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO candidates (
  source, electionId, state, fullName, givenName, familyName,
  additionalName, suffix, contestId, flags
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range candidates {
		flagsJSON, _ := json.Marshal(c.Flags)
		if c.Flags == nil {
			flagsJSON = []byte(`[]`)
		}
		if _, err := stmt.Exec(
			c.Source, c.ElectionID, c.State, c.FullName, c.GivenName,
			c.FamilyName, c.AdditionalName, c.Suffix, c.ContestID, string(flagsJSON),
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetCandidateByFields looks a candidate up by source, election and
// name parts, as the result pass re-derives them. Contest and flags
// are not part of the match.
func (d *DB) GetCandidateByFields(c internal.Candidate) (*internal.Candidate, error) {
	var out internal.Candidate
	var flagsJSON string
	err := d.conn.QueryRow(`
SELECT id, source, electionId, state, fullName, givenName, familyName,
       additionalName, suffix, contestId, flags
FROM candidates
WHERE source = ? AND electionId = ? AND state = ? AND fullName = ?
  AND givenName IS ? AND familyName IS ? AND additionalName IS ? AND suffix IS ?
LIMIT 1
`, c.Source, c.ElectionID, c.State, c.FullName,
		c.GivenName, c.FamilyName, c.AdditionalName, c.Suffix,
	).Scan(
		&out.ID, &out.Source, &out.ElectionID, &out.State, &out.FullName,
		&out.GivenName, &out.FamilyName, &out.AdditionalName, &out.Suffix,
		&out.ContestID, &flagsJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(flagsJSON), &out.Flags)
	return &out, nil
}

func (d *DB) CountCandidates() (int, error) {
	return d.countRows(`SELECT COUNT(*) FROM candidates`)
}

func (d *DB) InsertResults(results []internal.Result) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO results (
  source, electionId, state, reportingLevel, jurisdiction, votes,
  totalVotes, voteBreakdowns, candidateId, contestId, rawResultId,
  party, winner, writeIn, ocdId
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range results {
		breakdownsJSON, _ := json.Marshal(r.VoteBreakdowns)
		if _, err := stmt.Exec(
			r.Source, r.ElectionID, r.State, r.ReportingLevel, r.Jurisdiction,
			r.Votes, r.TotalVotes, string(breakdownsJSON), r.CandidateID,
			r.ContestID, r.RawResultID, r.Party, r.Winner, r.WriteIn, r.OCDID,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListCandidatesByElection(electionID string) ([]internal.Candidate, error) {
	rows, err := d.conn.Query(`
SELECT id, source, electionId, state, fullName, givenName, familyName,
       additionalName, suffix, contestId, flags
FROM candidates WHERE electionId = ? ORDER BY id ASC
`, electionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.Candidate
	for rows.Next() {
		var c internal.Candidate
		var flagsJSON string
		if err := rows.Scan(
			&c.ID, &c.Source, &c.ElectionID, &c.State, &c.FullName,
			&c.GivenName, &c.FamilyName, &c.AdditionalName, &c.Suffix,
			&c.ContestID, &flagsJSON,
		); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(flagsJSON), &c.Flags)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (d *DB) ListResultsByElection(electionID string) ([]internal.Result, error) {
	rows, err := d.conn.Query(`
SELECT id, source, electionId, state, reportingLevel, jurisdiction, votes,
       totalVotes, voteBreakdowns, candidateId, contestId, rawResultId,
       party, winner, writeIn, ocdId
FROM results WHERE electionId = ? ORDER BY id ASC
`, electionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.Result
	for rows.Next() {
		var r internal.Result
		var breakdownsJSON string
		if err := rows.Scan(
			&r.ID, &r.Source, &r.ElectionID, &r.State, &r.ReportingLevel,
			&r.Jurisdiction, &r.Votes, &r.TotalVotes, &breakdownsJSON,
			&r.CandidateID, &r.ContestID, &r.RawResultID, &r.Party,
			&r.Winner, &r.WriteIn, &r.OCDID,
		); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(breakdownsJSON), &r.VoteBreakdowns)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (d *DB) CountResultsByElectionIDs(electionIDs []string) (int, error) {
	if len(electionIDs) == 0 {
		return 0, nil
	}
	query := fmt.Sprintf(`SELECT COUNT(*) FROM results WHERE electionId IN (%s)`,
		placeholders(len(electionIDs)))
	return d.countRows(query, toAnySlice(electionIDs)...)
}

func (d *DB) DeleteResultsByElectionIDs(electionIDs []string) error {
	if len(electionIDs) == 0 {
		return nil
	}
	query := fmt.Sprintf(`DELETE FROM results WHERE electionId IN (%s)`,
		placeholders(len(electionIDs)))
	_, err := d.conn.Exec(query, toAnySlice(electionIDs)...)
	return err
}

func (d *DB) InsertRun(traceID string, timings map[string]float64, counts map[string]int) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`INSERT INTO runs (traceId, timingsJson, countsJson) VALUES (?, ?, ?)`,
		traceID, string(timingsJSON), string(countsJSON))
	return err
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func (d *DB) GetExportRows(electionID string) ([]internal.ResultExportRow, error) {
	rows, err := d.conn.Query(`
SELECT
  r.electionId,
  o.name,
  o.district,
  c.fullName,
  r.party,
  r.reportingLevel,
  r.jurisdiction,
  r.ocdId,
  r.votes,
  r.totalVotes,
  r.winner,
  r.writeIn
FROM results r
JOIN candidates c ON c.id = r.candidateId
JOIN contests ct ON ct.id = r.contestId
JOIN offices o ON o.id = ct.officeId
WHERE r.electionId = ?
ORDER BY o.name ASC, o.district ASC, r.jurisdiction ASC, c.fullName ASC
`, electionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ResultExportRow
	for rows.Next() {
		var row internal.ResultExportRow
		if err := rows.Scan(
			&row.ElectionID, &row.OfficeName, &row.OfficeDistrict,
			&row.CandidateName, &row.Party, &row.ReportingLevel,
			&row.Jurisdiction, &row.OCDID, &row.Votes, &row.TotalVotes,
			&row.Winner, &row.WriteIn,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}

	return out, rows.Err()
}

func (d *DB) countRows(query string, args ...any) (int, error) {
	var count int
	if err := d.conn.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func toAnySlice(values []string) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}
