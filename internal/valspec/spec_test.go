package valspec

import (
	"reflect"
	"testing"
)

func userRecord() GenericRecord {
	return GenericRecord{
		"id":        float64(1),
		"firstName": "Terry",
		"age":       float64(38),
		"address": map[string]interface{}{
			"city":       "Phoenix",
			"postalCode": "85003",
		},
	}
}

func TestEvaluate(t *testing.T) {
	spec := Spec{
		"id":        IsInt,
		"firstName": IsString,
		"age":       PositiveInt,
		"address": Spec{
			"city":       IsString,
			"postalCode": Matches(`^[0-9]{5}`),
		},
	}

	t.Run("valid record passes", func(t *testing.T) {
		if !Evaluate(spec, userRecord()) {
			t.Error("Evaluate = false, want true")
		}
	})

	t.Run("missing field fails", func(t *testing.T) {
		rec := userRecord()
		delete(rec, "firstName")
		if Evaluate(spec, rec) {
			t.Error("Evaluate = true for record missing firstName, want false")
		}
	})

	t.Run("missing nested field fails", func(t *testing.T) {
		rec := userRecord()
		rec["address"] = map[string]interface{}{"city": "Phoenix"}
		if Evaluate(spec, rec) {
			t.Error("Evaluate = true for record missing postalCode, want false")
		}
	})

	t.Run("wrong type fails", func(t *testing.T) {
		rec := userRecord()
		rec["age"] = "thirty-eight"
		if Evaluate(spec, rec) {
			t.Error("Evaluate = true for string age, want false")
		}
	})

	t.Run("nested rule against scalar fails", func(t *testing.T) {
		rec := userRecord()
		rec["address"] = "221B Baker Street"
		if Evaluate(spec, rec) {
			t.Error("Evaluate = true for scalar address, want false")
		}
	})

	t.Run("panicking predicate counts as failure", func(t *testing.T) {
		hostile := Spec{
			"id": Predicate(func(v interface{}) bool {
				return v.(string) != "" // wrong assertion on purpose
			}),
		}
		if Evaluate(hostile, userRecord()) {
			t.Error("Evaluate = true despite panicking predicate, want false")
		}
	})

	t.Run("record may carry extra fields", func(t *testing.T) {
		rec := userRecord()
		rec["nickname"] = "T"
		if !Evaluate(spec, rec) {
			t.Error("Evaluate = false for record with extra field, want true")
		}
	})
}

func TestEvaluateLists(t *testing.T) {
	spec := Spec{
		"id": IsInt,
		"products": Spec{
			"id":       IsInt,
			"quantity": PositiveInt,
		},
	}

	cart := func(quantities ...float64) GenericRecord {
		items := make([]interface{}, len(quantities))
		for i, q := range quantities {
			items[i] = map[string]interface{}{"id": float64(i + 1), "quantity": q}
		}
		return GenericRecord{"id": float64(9), "products": items}
	}

	t.Run("every element must pass", func(t *testing.T) {
		if !Evaluate(spec, cart(1, 2, 3)) {
			t.Error("Evaluate = false for all-valid line items, want true")
		}
		if Evaluate(spec, cart(1, 0, 3)) {
			t.Error("Evaluate = true with a zero-quantity line item, want false")
		}
	})

	t.Run("predicate applies element-wise", func(t *testing.T) {
		listSpec := Spec{"tags": IsString}
		rec := GenericRecord{"tags": []interface{}{"a", "b"}}
		if !Evaluate(listSpec, rec) {
			t.Error("Evaluate = false for string list, want true")
		}
		rec["tags"] = []interface{}{"a", float64(3)}
		if Evaluate(listSpec, rec) {
			t.Error("Evaluate = true for mixed list, want false")
		}
	})
}

func TestFilter(t *testing.T) {
	spec := Spec{"price": Positive}
	records := []GenericRecord{
		{"price": float64(10), "n": float64(1)},
		{"price": float64(-1), "n": float64(2)},
		{"price": float64(30), "n": float64(3)},
		{"n": float64(4)}, // missing price
		{"price": float64(5), "n": float64(5)},
	}

	kept, dropped := Filter(spec, records)

	if dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}
	var order []float64
	for _, rec := range kept {
		order = append(order, rec["n"].(float64))
	}
	if !reflect.DeepEqual(order, []float64{1, 3, 5}) {
		t.Errorf("kept order = %v, want [1 3 5]", order)
	}

	// filtering its own output is a fixed point
	again, droppedAgain := Filter(spec, kept)
	if droppedAgain != 0 || !reflect.DeepEqual(again, kept) {
		t.Errorf("Filter not idempotent: dropped %d on second pass", droppedAgain)
	}
}

func TestFromRules(t *testing.T) {
	spec := FromRules(ValidationRules{
		RequiredFields: []string{"name"},
		NumericFields:  []string{"value"},
		MinValues:      map[string]float64{"value": 0},
		MaxValues:      map[string]float64{"value": 100},
		PatternFields:  map[string]string{"code": `^[A-Z]{3}$`},
	})

	cases := []struct {
		name string
		rec  GenericRecord
		want bool
	}{
		{"valid", GenericRecord{"name": "a", "value": float64(50), "code": "ABC"}, true},
		{"missing required", GenericRecord{"value": float64(50), "code": "ABC"}, false},
		{"non-numeric value", GenericRecord{"name": "a", "value": "x", "code": "ABC"}, false},
		{"value above max", GenericRecord{"name": "a", "value": float64(101), "code": "ABC"}, false},
		{"bad pattern", GenericRecord{"name": "a", "value": float64(50), "code": "abc"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Evaluate(spec, tc.rec); got != tc.want {
				t.Errorf("Evaluate = %v, want %v", got, tc.want)
			}
		})
	}
}
