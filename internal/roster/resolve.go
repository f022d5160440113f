// Package roster resolves scraped roll-call roster names against the
// member dimension.
//
// Vote rosters arrive as surnames or "LASTNAME, F." fragments in
// inconsistent casing and Unicode forms. Resolution is by normalized
// name: NFC normalization, case folding, honorific stripping, and
// whitespace collapse. Ambiguous names (two members sharing a
// normalized surname in one chamber) are left unresolved rather than
// guessed - an unresolved row keeps its empty member id and is counted
// as a data-quality warning upstream.
package roster

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/statehouse/rollcall/internal/model"
)

var honorifics = []string{
	"rep.", "rep ", "sen.", "sen ", "representative ", "senator ",
	"mr.", "mrs.", "ms.", "dr.",
}

// NormalizeName canonicalizes a person or organization name for
// matching: NFC, lowercase, honorifics stripped, punctuation-adjacent
// whitespace collapsed.
func NormalizeName(s string) string {
	s = strings.ToLower(norm.NFC.String(s))
	s = strings.Join(strings.Fields(s), " ")
	for _, h := range honorifics {
		s = strings.TrimPrefix(s, h)
	}
	s = strings.Trim(s, " ,.")
	return s
}

// Resolver maps normalized names to member ids within each chamber.
type Resolver struct {
	// chamber -> normalized name -> member id ("" when ambiguous)
	byChamber map[model.Chamber]map[string]string
	// normalized full-roster fallback ignoring chamber
	global map[string]string
}

// NewResolver indexes the member dimension by normalized full name and
// normalized surname. Colliding surnames within a chamber are marked
// ambiguous and never matched.
func NewResolver(members []model.MemberRow) *Resolver {
	r := &Resolver{
		byChamber: map[model.Chamber]map[string]string{},
		global:    map[string]string{},
	}
	add := func(m map[string]string, key, id string) {
		if key == "" {
			return
		}
		if existing, ok := m[key]; ok && existing != id {
			m[key] = "" // ambiguous
			return
		}
		m[key] = id
	}

	for _, m := range members {
		full := NormalizeName(m.Name)
		surname := surnameOf(full)

		cm, ok := r.byChamber[m.Chamber]
		if !ok {
			cm = map[string]string{}
			r.byChamber[m.Chamber] = cm
		}
		add(cm, full, m.MemberID)
		add(cm, surname, m.MemberID)
		add(r.global, full, m.MemberID)
		add(r.global, surname, m.MemberID)
	}
	return r
}

// Resolve returns the member id for a raw roster name, preferring a
// chamber-scoped match. Returns "" when the name is unknown or
// ambiguous.
func (r *Resolver) Resolve(rawName string, chamber model.Chamber) string {
	key := NormalizeName(rawName)
	if key == "" {
		return ""
	}
	if cm, ok := r.byChamber[chamber]; ok {
		if id, ok := cm[key]; ok {
			return id
		}
		if id, ok := cm[surnameOf(key)]; ok {
			return id
		}
	}
	if id, ok := r.global[key]; ok {
		return id
	}
	return ""
}

// ResolveCasts fills in member ids on vote cast rows that arrived with a
// raw name only. Returns the updated rows and the count left unresolved.
func (r *Resolver) ResolveCasts(casts []model.VoteCastRow, chamberByBill map[string]model.Chamber) ([]model.VoteCastRow, int) {
	out := make([]model.VoteCastRow, len(casts))
	unresolved := 0
	for i, c := range casts {
		if c.MemberID == "" && c.RawName != "" {
			c.MemberID = r.Resolve(c.RawName, chamberByBill[c.BillID])
		}
		if c.MemberID == "" {
			unresolved++
		}
		out[i] = c
	}
	return out, unresolved
}

// surnameOf extracts the surname from a normalized name. Handles both
// "last, first" and "first last" forms.
func surnameOf(name string) string {
	if i := strings.IndexByte(name, ','); i >= 0 {
		return strings.TrimSpace(name[:i])
	}
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
