package util

import "strings"

// NameParts is a free-text person name split into its components.
type NameParts struct {
	Given  string
	Middle string
	Family string
	Suffix string
}

var nameSuffixes = map[string]string{
	"jr":   "Jr.",
	"jr.":  "Jr.",
	"sr":   "Sr.",
	"sr.":  "Sr.",
	"ii":   "II",
	"iii":  "III",
	"iv":   "IV",
	"v":    "V",
	"esq":  "Esq.",
	"esq.": "Esq.",
	"md":   "M.D.",
	"m.d.": "M.D.",
	"phd":  "Ph.D.",
}

var familyPrefixes = map[string]struct{}{
	"van": {}, "von": {}, "de": {}, "del": {}, "della": {},
	"di": {}, "da": {}, "la": {}, "le": {}, "mc": {}, "st.": {}, "st": {},
}

// ParseName decomposes a display name such as "John Q. Public Jr." or
// "Public, John Q." into given/middle/family/suffix parts. It is a
// heuristic splitter, not a full personal-name grammar.
func ParseName(full string) NameParts {
	var parts NameParts

	full = strings.TrimSpace(full)
	if full == "" {
		return parts
	}

	// "Family, Given Middle [Suffix]" form. A second comma usually
	// separates a suffix: "Public, John, Jr.".
	if i := strings.Index(full, ","); i >= 0 {
		family := strings.TrimSpace(full[:i])
		rest := strings.TrimSpace(full[i+1:])
		if j := strings.Index(rest, ","); j >= 0 {
			tail := strings.TrimSpace(rest[j+1:])
			if canonical, ok := nameSuffixes[strings.ToLower(tail)]; ok {
				parts.Suffix = canonical
			}
			rest = strings.TrimSpace(rest[:j])
		}
		parts.Family = family
		parts.Given, parts.Middle = splitGivenMiddle(strings.Fields(rest))
		return parts
	}

	tokens := strings.Fields(full)

	// Trailing suffix tokens come off first so the real family name
	// surfaces ("John Smith Jr." -> family Smith).
	var suffixes []string
	for len(tokens) > 1 {
		last := strings.ToLower(strings.TrimSuffix(tokens[len(tokens)-1], ","))
		canonical, ok := nameSuffixes[last]
		if !ok {
			break
		}
		suffixes = append([]string{canonical}, suffixes...)
		tokens = tokens[:len(tokens)-1]
	}
	parts.Suffix = strings.Join(suffixes, " ")

	switch len(tokens) {
	case 0:
		return parts
	case 1:
		parts.Given = tokens[0]
		return parts
	}

	family := []string{tokens[len(tokens)-1]}
	tokens = tokens[:len(tokens)-1]

	// Particles like "van" or "de" belong to the family name.
	for len(tokens) > 1 {
		if _, ok := familyPrefixes[strings.ToLower(tokens[len(tokens)-1])]; !ok {
			break
		}
		family = append([]string{tokens[len(tokens)-1]}, family...)
		tokens = tokens[:len(tokens)-1]
	}
	parts.Family = strings.Join(family, " ")
	parts.Given, parts.Middle = splitGivenMiddle(tokens)
	return parts
}

func splitGivenMiddle(tokens []string) (given, middle string) {
	if len(tokens) == 0 {
		return "", ""
	}
	return tokens[0], strings.Join(tokens[1:], " ")
}
