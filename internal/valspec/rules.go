package valspec

// ValidationRules is the declarative, JSON-friendly form of a Spec, for
// callers (like the HTTP API) that cannot supply predicate functions
// directly.
type ValidationRules struct {
	RequiredFields []string           `json:"requiredFields"` // fields that must be present
	NumericFields  []string           `json:"numericFields"`  // fields that must be numeric
	MinValues      map[string]float64 `json:"minValues"`      // min allowed numeric values
	MaxValues      map[string]float64 `json:"maxValues"`      // optional max limits
	PatternFields  map[string]string  `json:"patternFields"`  // regex per string field
}

// FromRules compiles declarative rules into a Spec. Constraints that name the
// same field are combined, so e.g. a field can be both numeric and bounded.
func FromRules(rules ValidationRules) Spec {
	byField := make(map[string][]Predicate)

	add := func(field string, p Predicate) {
		byField[field] = append(byField[field], p)
	}

	for _, field := range rules.RequiredFields {
		// presence is implied by the field appearing in the spec at all
		add(field, func(interface{}) bool { return true })
	}
	for _, field := range rules.NumericFields {
		add(field, IsNumber)
	}
	for field, min := range rules.MinValues {
		add(field, Min(min))
	}
	for field, max := range rules.MaxValues {
		add(field, Max(max))
	}
	for field, pattern := range rules.PatternFields {
		add(field, Matches(pattern))
	}

	spec := make(Spec, len(byField))
	for field, preds := range byField {
		if len(preds) == 1 {
			spec[field] = preds[0]
		} else {
			spec[field] = And(preds...)
		}
	}
	return spec
}
