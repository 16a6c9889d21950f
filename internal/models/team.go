package models

// CanonicalTeam is the single authoritative identity for a team. Canonical
// names are unique and form a closed set fixed at resolver construction.
type CanonicalTeam struct {
	Name string `json:"name"`
}

// Alias maps one raw source spelling to a canonical team. Many aliases map to
// one canonical team; collisions are resolved deterministically at load time.
type Alias struct {
	RawText    string   `json:"raw_text"`
	Canonical  string   `json:"canonical"`
	Source     string   `json:"source"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// ResolutionMethod identifies which strategy in the resolver chain produced a
// match. NonExistent means the name is a known non-top-division entity and was
// intentionally excluded, which is distinct from a data-quality failure.
type ResolutionMethod string

const (
	MethodCanonical      ResolutionMethod = "CANONICAL"
	MethodAlias          ResolutionMethod = "ALIAS"
	MethodNormalized     ResolutionMethod = "NORMALIZED"
	MethodMascotStripped ResolutionMethod = "MASCOT_STRIPPED"
	MethodNonExistent    ResolutionMethod = "NON_EXISTENT"
	MethodUnresolved     ResolutionMethod = "UNRESOLVED"
)

// Resolution is the structured outcome of a team name lookup. Resolution never
// guesses: Canonical is empty unless Method is one of the matching strategies.
type Resolution struct {
	RawName   string           `json:"raw_name"`
	Canonical string           `json:"canonical,omitempty"`
	Method    ResolutionMethod `json:"method"`
}

// Matched reports whether the resolver produced a canonical identity.
func (r Resolution) Matched() bool {
	switch r.Method {
	case MethodCanonical, MethodAlias, MethodNormalized, MethodMascotStripped:
		return r.Canonical != ""
	default:
		return false
	}
}

// Excluded reports whether the name was intentionally filtered as a
// non-member, as opposed to an unresolved data-quality miss.
func (r Resolution) Excluded() bool {
	return r.Method == MethodNonExistent
}
