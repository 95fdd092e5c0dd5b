package pipeline

import (
	"fmt"

	"elexmd/internal"
	"elexmd/internal/storage"
)

// Resolver looks up Office and Party reference rows for raw results.
// Both caches hold static reference data and survive across transform
// runs; the resolver never creates reference rows.
type Resolver struct {
	db      *storage.DB
	offices map[string]internal.Office
	parties map[string]internal.Party
}

func NewResolver(db *storage.DB) *Resolver {
	return &Resolver{
		db:      db,
		offices: map[string]internal.Office{},
		parties: map[string]internal.Party{},
	}
}

// Office resolves the canonical office for a raw row. A missing
// office is an error: reference data is assumed complete, so a miss
// means bad input and the run must stop.
func (r *Resolver) Office(rr internal.RawResult) (internal.Office, error) {
	state := rr.State
	name := CleanOffice(rr.Office)
	district := ""

	// Presidential contests are filed under the national office.
	if name == "President" {
		state = "US"
	}
	if isDistrictOffice(name) {
		district = StripLeadingZeros(rr.District)
	}

	key := internal.OfficeKey(state, name, district)
	if office, ok := r.offices[key]; ok {
		return office, nil
	}

	office, err := r.db.GetOffice(state, name, district)
	if err != nil {
		return internal.Office{}, err
	}
	if office == nil {
		return internal.Office{}, fmt.Errorf("no office matching query state=%s name=%q district=%q", state, name, district)
	}
	if office.Key() != key {
		return internal.Office{}, fmt.Errorf("office key mismatch: looked up %q, store returned %q", key, office.Key())
	}

	r.offices[key] = *office
	return *office, nil
}

// Party resolves a raw party value to its canonical row. Empty values
// and values that clean to nothing resolve to nil without error; a
// cleaned abbreviation with no matching row is an error.
func (r *Resolver) Party(value string) (*internal.Party, error) {
	if value == "" {
		return nil, nil
	}

	abbrev := CleanParty(value)
	if abbrev == "" {
		return nil, nil
	}

	if party, ok := r.parties[abbrev]; ok {
		return &party, nil
	}

	party, err := r.db.GetPartyByAbbrev(abbrev)
	if err != nil {
		return nil, err
	}
	if party == nil {
		return nil, fmt.Errorf("no party with abbreviation %q", abbrev)
	}

	r.parties[abbrev] = *party
	return party, nil
}
