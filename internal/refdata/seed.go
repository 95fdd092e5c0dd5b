package refdata

import (
	"fmt"
	"time"

	"elexmd/internal"
	"elexmd/internal/storage"
)

// SeedService loads the built-in Office and Party catalogs into the
// store. The transform only ever reads these; seeding is upsert-style
// and safe to repeat.
type SeedService struct {
	db *storage.DB
}

func NewSeedService(db *storage.DB) *SeedService {
	return &SeedService{db: db}
}

type SeedResult struct {
	Offices int
	Parties int
}

func (s *SeedService) Seed(state string) (SeedResult, error) {
	offices := Offices(state)
	if err := s.db.UpsertOffices(offices); err != nil {
		return SeedResult{}, err
	}

	parties := Parties()
	if err := s.db.UpsertParties(parties); err != nil {
		return SeedResult{}, err
	}

	_ = s.db.SetMetadata("refdata.last_seed", time.Now().UTC().Format(time.RFC3339))
	return SeedResult{Offices: len(offices), Parties: len(parties)}, nil
}

// Offices returns the office catalog for a state: the national
// presidency, the statewide offices, and one office per district for
// the district-based bodies.
func Offices(state string) []internal.Office {
	offices := []internal.Office{
		{State: "US", Name: "President"},
		{State: state, Name: "Governor"},
		{State: state, Name: "Lieutenant Governor"},
		{State: state, Name: "Comptroller"},
		{State: state, Name: "Attorney General"},
		{State: state, Name: "U.S. Senate"},
	}

	for district := 1; district <= 8; district++ {
		offices = append(offices, internal.Office{
			State: state, Name: "U.S. House of Representatives", District: fmt.Sprintf("%d", district),
		})
	}
	for district := 1; district <= 47; district++ {
		offices = append(offices, internal.Office{
			State: state, Name: "State Senate", District: fmt.Sprintf("%d", district),
		})
		offices = append(offices, internal.Office{
			State: state, Name: "House of Delegates", District: fmt.Sprintf("%d", district),
		})
	}

	return offices
}

// Parties returns the canonical party catalog.
func Parties() []internal.Party {
	return []internal.Party{
		{Abbrev: "DEM", Name: "Democratic"},
		{Abbrev: "REP", Name: "Republican"},
		{Abbrev: "LIB", Name: "Libertarian"},
		{Abbrev: "GRN", Name: "Green"},
		{Abbrev: "CON", Name: "Constitution"},
		{Abbrev: "WCP", Name: "Working Class Party"},
		{Abbrev: "UNF", Name: "Unaffiliated"},
		{Abbrev: "NON", Name: "Nonpartisan"},
	}
}
