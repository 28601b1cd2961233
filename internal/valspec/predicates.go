package valspec

import (
	"regexp"

	"go-etl-pipeline/pkg/utils"
)

// Predicates for values decoded from JSON, where encoding/json gives float64
// for every number.

// IsString accepts string values.
var IsString Predicate = func(v interface{}) bool {
	_, ok := v.(string)
	return ok
}

// IsNumber accepts any numeric value.
var IsNumber Predicate = func(v interface{}) bool {
	switch v.(type) {
	case float64, float32, int, int64:
		return true
	}
	return false
}

// IsInt accepts integers, including float64 values with no fractional part.
var IsInt Predicate = func(v interface{}) bool {
	switch n := v.(type) {
	case int, int64:
		return true
	case float64:
		return n == float64(int64(n))
	}
	return false
}

// IsBool accepts boolean values.
var IsBool Predicate = func(v interface{}) bool {
	_, ok := v.(bool)
	return ok
}

// Positive accepts numeric values strictly greater than zero.
var Positive Predicate = func(v interface{}) bool {
	return IsNumber(v) && utils.Numeric(v) > 0
}

// PositiveInt accepts integer values strictly greater than zero.
var PositiveInt Predicate = func(v interface{}) bool {
	return IsInt(v) && utils.Numeric(v) > 0
}

// Matches builds a predicate that accepts strings matching the pattern.
// An invalid pattern yields a predicate that rejects everything.
func Matches(pattern string) Predicate {
	re, err := regexp.Compile(pattern)
	return func(v interface{}) bool {
		if err != nil {
			return false
		}
		s, ok := v.(string)
		return ok && re.MatchString(s)
	}
}

// Min builds a predicate that accepts numeric values >= min.
func Min(min float64) Predicate {
	return func(v interface{}) bool {
		return IsNumber(v) && utils.Numeric(v) >= min
	}
}

// Max builds a predicate that accepts numeric values <= max.
func Max(max float64) Predicate {
	return func(v interface{}) bool {
		return IsNumber(v) && utils.Numeric(v) <= max
	}
}

// And combines predicates; all of them must pass.
func And(preds ...Predicate) Predicate {
	return func(v interface{}) bool {
		for _, p := range preds {
			if !apply(p, v) {
				return false
			}
		}
		return true
	}
}
