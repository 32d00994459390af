package usecase

import (
	"regexp"
	"strings"

	"github.com/shelfsafe/backend/internal/domain"
)

// Package-level compiled regex pattern for performance
var whitespaceRegex = regexp.MustCompile(`\s+`)

// allergenSynonyms maps a normalized allergen name to its known synonym and
// alternate INCI spellings. Synonyms are terminal: they are never expanded
// again, which keeps expansion idempotent.
var allergenSynonyms = map[string][]string{
	"amidoamine":            {"stearamidopropyl dimethylamine", "amidopropyl", "apd", "sapdm"},
	"propolis":              {"propolis extract", "bee glue", "cera propolis", "bee resin"},
	"benzophenone-3":        {"oxybenzone", "bp-3", "bp3", "benzophenone 3"},
	"benzophenone-4":        {"bp-4", "bp4", "benzophenone 4", "sulisobenzone"},
	"sorbitan sesquioleate": {"sso", "sorbitan sesqui oleate", "sorbitan sesqui-oleate"},
	"fragrance mix 1":       {"fragrance", "parfum", "perfume"},
	"fragrance mix 2":       {"fragrance", "parfum", "perfume"},
	"amerchol":              {"lanolin alcohol", "lanolin"},
}

// Cross-reactive ingredient families. A declared allergen that triggers a
// family puts every family member on the watchlist: sensitized users are
// commonly advised to avoid those too, even when not explicitly listed.
var (
	benzophenoneFamily = []string{"benzophenone-1", "benzophenone-2", "benzophenone-4", "sulisobenzone", "oxybenzone"}
	fragranceFamily    = []string{"fragrance", "parfum", "essential oil"}
)

var crossReactorFamilies = map[string][]string{
	"benzophenone-3":        benzophenoneFamily,
	"oxybenzone":            benzophenoneFamily,
	"fragrance mix 1":       fragranceFamily,
	"fragrance mix 2":       fragranceFamily,
	"amidoamine":            {"cocamidopropyl betaine", "capb"},
	"amerchol":              {"lanolin", "lanolin alcohol", "cholesterol"},
	"propolis":              {"propolis extract", "bee propolis", "cera propolis"},
	"sorbitan sesquioleate": {"sorbitan", "polysorbate"},
}

// AllergenSet is the normalized allergen vocabulary for one request, split in
// two tiers: declared terms (user input plus direct synonyms) and watchlist
// terms (cross-reactive family members). Immutable once built.
type AllergenSet struct {
	declared  []string
	watchlist []string
	seen      map[string]struct{}
}

// ExpandAllergens normalizes the user-supplied allergen names and expands them
// through the synonym table and cross-reactor families. Unknown terms pass
// through unexpanded. Duplicates and casing variants collapse.
//
// Expansion is idempotent over the combined term set: re-expanding All()
// yields the same terms.
func ExpandAllergens(inputs []string) *AllergenSet {
	set := &AllergenSet{seen: make(map[string]struct{})}

	for _, raw := range inputs {
		term := NormalizeTerm(raw)
		if term == "" {
			continue
		}
		set.addDeclared(term)
		for _, syn := range allergenSynonyms[term] {
			set.addDeclared(NormalizeTerm(syn))
		}
	}

	// Watchlist pass runs after all declared terms are known so a term the
	// user declared directly is never demoted to watchlist status.
	for _, term := range set.declared {
		family, ok := crossReactorFamilies[term]
		if !ok {
			continue
		}
		for _, member := range family {
			m := NormalizeTerm(member)
			set.addWatchlist(m)
			for _, syn := range allergenSynonyms[m] {
				set.addWatchlist(NormalizeTerm(syn))
			}
		}
	}

	return set
}

func (s *AllergenSet) addDeclared(term string) {
	if term == "" {
		return
	}
	if _, dup := s.seen[term]; dup {
		return
	}
	s.seen[term] = struct{}{}
	s.declared = append(s.declared, term)
}

func (s *AllergenSet) addWatchlist(term string) {
	if term == "" {
		return
	}
	if _, dup := s.seen[term]; dup {
		return
	}
	s.seen[term] = struct{}{}
	s.watchlist = append(s.watchlist, term)
}

// Declared returns the declared-tier terms in insertion order
func (s *AllergenSet) Declared() []string {
	return s.declared
}

// All returns every term in the set, declared tier first
func (s *AllergenSet) All() []string {
	all := make([]string, 0, len(s.declared)+len(s.watchlist))
	all = append(all, s.declared...)
	all = append(all, s.watchlist...)
	return all
}

// Empty reports whether the set contains no terms
func (s *AllergenSet) Empty() bool {
	return len(s.declared) == 0 && len(s.watchlist) == 0
}

// Match tests extracted ingredient text against the set via case-insensitive
// substring containment. Declared terms are checked before watchlist terms;
// the first match wins. Empty text never matches: absence of evidence is not
// evidence of absence.
func (s *AllergenSet) Match(text string) (domain.SafetyVerdict, string) {
	normalized := NormalizeTerm(text)
	if normalized == "" {
		return domain.VerdictSafe, ""
	}

	for _, term := range s.declared {
		if strings.Contains(normalized, term) {
			return domain.VerdictAllergenFound, term
		}
	}
	for _, term := range s.watchlist {
		if strings.Contains(normalized, term) {
			return domain.VerdictWatchlist, term
		}
	}

	return domain.VerdictSafe, ""
}

// NormalizeTerm lowercases a term and collapses internal whitespace
func NormalizeTerm(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(strings.ToLower(s), " "))
}
