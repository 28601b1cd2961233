package valspec

// GenericRecord is a schema-agnostic map for a single raw item
type GenericRecord map[string]interface{}

// Rule is either a Predicate or a nested Spec. The interface is sealed so the
// evaluator only ever has to handle those two variants.
type Rule interface {
	rule()
}

// Predicate checks a single field value.
type Predicate func(v interface{}) bool

func (Predicate) rule() {}

// Spec maps field names to validation rules. A nested Spec validates a field
// whose value is itself an object (or a list of objects).
type Spec map[string]Rule

func (Spec) rule() {}

// Evaluate checks that the keys and values of a record match a specification.
// Every key named in the spec must be present in the record; a missing key
// makes the record invalid rather than being an error. When a rule meets a
// list value it is applied to every element and all of them must pass.
// Evaluation short-circuits on the first failing rule and has no side effects.
func Evaluate(spec Spec, record GenericRecord) bool {
	for key, rule := range spec {
		value, ok := record[key]
		if !ok {
			return false
		}
		if !evalRule(rule, value) {
			return false
		}
	}
	return true
}

func evalRule(rule Rule, value interface{}) bool {
	switch r := rule.(type) {
	case Predicate:
		if items, ok := value.([]interface{}); ok {
			for _, item := range items {
				if !apply(r, item) {
					return false
				}
			}
			return true
		}
		return apply(r, value)
	case Spec:
		switch v := value.(type) {
		case map[string]interface{}:
			return Evaluate(r, v)
		case []interface{}:
			for _, item := range v {
				nested, ok := item.(map[string]interface{})
				if !ok {
					return false
				}
				if !Evaluate(r, nested) {
					return false
				}
			}
			return true
		default:
			// nested rules only make sense against objects
			return false
		}
	default:
		return false
	}
}

// apply runs a predicate and treats a panic (e.g. a type assertion inside a
// caller-supplied predicate) as a plain validation failure.
func apply(p Predicate, v interface{}) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return p(v)
}

// Filter returns the records that pass the spec, preserving their relative
// order, together with the number of records dropped. Rejects are counted but
// not otherwise retained.
func Filter(spec Spec, records []GenericRecord) ([]GenericRecord, int) {
	kept := make([]GenericRecord, 0, len(records))
	dropped := 0
	for _, rec := range records {
		if Evaluate(spec, rec) {
			kept = append(kept, rec)
		} else {
			dropped++
		}
	}
	return kept, dropped
}
