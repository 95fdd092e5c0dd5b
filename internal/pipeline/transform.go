package pipeline

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"elexmd/internal"
	"elexmd/internal/config"
	"elexmd/internal/storage"
)

// Transformer converts raw results in the configured scope into
// canonical contests, candidates and results. The three passes are
// strictly ordered and single-threaded: each pass resolves entities
// the prior pass committed.
type Transformer struct {
	db       *storage.DB
	cfg      config.Config
	resolver *Resolver
}

func NewTransformer(db *storage.DB, cfg config.Config) *Transformer {
	return &Transformer{db: db, cfg: cfg, resolver: NewResolver(db)}
}

type RunCounts struct {
	Contests   int
	Candidates int
	Results    int
}

// Run executes the full transform: contests, then candidates, then
// results. Any resolution miss aborts the run with no partial
// continuation beyond writes already committed.
func (t *Transformer) Run() (RunCounts, error) {
	start := time.Now()
	var counts RunCounts
	var err error

	if counts.Contests, err = t.CreateUniqueContests(); err != nil {
		return counts, err
	}
	if counts.Candidates, err = t.CreateUniqueCandidates(); err != nil {
		return counts, err
	}
	if counts.Results, err = t.CreateUniqueResults(); err != nil {
		return counts, err
	}

	_ = t.db.InsertRun(uuid.NewString(),
		map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())},
		map[string]int{"contests": counts.Contests, "candidates": counts.Candidates, "results": counts.Results})

	return counts, nil
}

func (t *Transformer) rawResults() ([]internal.RawResult, error) {
	return t.db.FilterRawResults(t.cfg.State, t.cfg.TransformCutoff)
}

// CreateUniqueContests is pass 1: one contest per distinct contest
// key, committed in a single bulk insert.
func (t *Transformer) CreateUniqueContests() (int, error) {
	raws, err := t.rawResults()
	if err != nil {
		return 0, err
	}

	var contests []internal.Contest
	seen := map[dedupKey]struct{}{}

	for _, rr := range raws {
		key := contestKey(rr)
		if _, ok := seen[key]; ok {
			continue
		}
		fields, err := ContestFields(rr, t.resolver)
		if err != nil {
			return 0, err
		}
		now := time.Now().UTC().Format(time.RFC3339)
		fields.Created = now
		fields.Updated = now
		contests = append(contests, fields)
		seen[key] = struct{}{}
	}

	if err := t.db.InsertContests(contests); err != nil {
		return 0, err
	}

	fmt.Printf("Created %d contests.\n", len(contests))
	return len(contests), nil
}

// CreateUniqueCandidates is pass 2: one candidate per distinct
// candidate key, each owned by the contest pass 1 created for its
// rows.
func (t *Transformer) CreateUniqueCandidates() (int, error) {
	raws, err := t.rawResults()
	if err != nil {
		return 0, err
	}

	contestCache := map[dedupKey]internal.Contest{}
	var candidates []internal.Candidate
	seen := map[dedupKey]struct{}{}

	for _, rr := range raws {
		key := candidateKey(rr)
		if _, ok := seen[key]; ok {
			continue
		}
		fields, err := CandidateFields(rr)
		if err != nil {
			return 0, err
		}
		contest, err := t.cachedContest(rr, contestCache)
		if err != nil {
			return 0, err
		}
		fields.ContestID = contest.ID

		if strings.Contains(strings.ToLower(fields.FullName), "other") {
			if fields.FullName == aggregateLabel {
				fields.Flags = []string{internal.FlagAggregate}
			} else {
				// Expected to always be the aggregate label; surface
				// the rows that are not so we learn about them.
				log.Printf("warning: 'other' found in candidate name field value: %q", rr.FullName)
			}
		}

		candidates = append(candidates, fields)
		seen[key] = struct{}{}
	}

	if err := t.db.InsertCandidates(candidates); err != nil {
		return 0, err
	}

	fmt.Printf("Created %d candidates.\n", len(candidates))
	return len(candidates), nil
}

// CreateUniqueResults is pass 3: every previously loaded result in
// scope is deleted, then one result is created per raw row, flushed
// in batches to bound memory and write size.
func (t *Transformer) CreateUniqueResults() (int, error) {
	electionIDs, err := t.db.DistinctElectionIDs(t.cfg.State, t.cfg.TransformCutoff)
	if err != nil {
		return 0, err
	}

	prior, err := t.db.CountResultsByElectionIDs(electionIDs)
	if err != nil {
		return 0, err
	}
	fmt.Printf("\tDeleting %d previously loaded results\n", prior)
	if err := t.db.DeleteResultsByElectionIDs(electionIDs); err != nil {
		return 0, err
	}

	raws, err := t.rawResults()
	if err != nil {
		return 0, err
	}

	candidateCache := map[dedupKey]internal.Candidate{}
	batchSize := t.cfg.ResultBatchSize
	if batchSize <= 0 {
		batchSize = 1000
	}
	results := make([]internal.Result, 0, batchSize)
	numCreated := 0

	for _, rr := range raws {
		candidate, err := t.cachedCandidate(rr, candidateCache)
		if err != nil {
			return numCreated, err
		}

		result := internal.Result{
			Source:         rr.Source,
			ElectionID:     rr.ElectionID,
			State:          rr.State,
			ReportingLevel: rr.ReportingLevel,
			Jurisdiction:   StripLeadingZeros(rr.Jurisdiction),
			Votes:          rr.Votes,
			TotalVotes:     rr.TotalVotes,
			VoteBreakdowns: rr.VoteBreakdowns,
			CandidateID:    candidate.ID,
			ContestID:      candidate.ContestID,
			RawResultID:    rr.ID,
			Winner:         parseWinner(rr),
			WriteIn:        parseWriteIn(rr),
			OCDID:          OCDID(rr),
		}

		party, err := t.resolver.Party(rr.Party)
		if err != nil {
			return numCreated, err
		}
		if party != nil {
			abbrev := party.Abbrev
			result.Party = &abbrev
		}

		results = append(results, result)
		if len(results) >= batchSize {
			if err := t.db.InsertResults(results); err != nil {
				return numCreated, err
			}
			numCreated += len(results)
			results = results[:0]
		}
	}

	if len(results) > 0 {
		if err := t.db.InsertResults(results); err != nil {
			return numCreated, err
		}
		numCreated += len(results)
	}

	fmt.Printf("Created %d results.\n", numCreated)
	return numCreated, nil
}

// cachedContest resolves the contest owning a raw row, memoized per
// run by (election, contest slug). The lookup re-derives the contest
// field set and queries by it, which must land on the row pass 1
// created.
func (t *Transformer) cachedContest(rr internal.RawResult, cache map[dedupKey]internal.Contest) (internal.Contest, error) {
	key := dedupKey{ElectionID: rr.ElectionID, Slug: rr.ContestSlug}
	if contest, ok := cache[key]; ok {
		return contest, nil
	}

	fields, err := ContestFields(rr, t.resolver)
	if err != nil {
		return internal.Contest{}, err
	}
	contest, err := t.db.GetContestByFields(fields)
	if err != nil {
		return internal.Contest{}, err
	}
	if contest == nil {
		return internal.Contest{}, fmt.Errorf("no contest matching fields election=%s slug=%s officeId=%d", rr.ElectionID, rr.ContestSlug, fields.OfficeID)
	}

	cache[key] = *contest
	return *contest, nil
}

// cachedCandidate resolves the candidate owning a raw row, memoized
// per run by (election, candidate slug), looked up by the re-derived
// candidate field set.
func (t *Transformer) cachedCandidate(rr internal.RawResult, cache map[dedupKey]internal.Candidate) (internal.Candidate, error) {
	key := candidateKey(rr)
	if candidate, ok := cache[key]; ok {
		return candidate, nil
	}

	fields, err := CandidateFields(rr)
	if err != nil {
		return internal.Candidate{}, err
	}
	candidate, err := t.db.GetCandidateByFields(fields)
	if err != nil {
		return internal.Candidate{}, err
	}
	if candidate == nil {
		return internal.Candidate{}, fmt.Errorf("no candidate matching fields election=%s slug=%s fullName=%q", rr.ElectionID, rr.CandidateSlug, fields.FullName)
	}

	cache[key] = *candidate
	return *candidate, nil
}
