package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-etl-pipeline/internal/model"
	"go-etl-pipeline/internal/valspec"
)

func product(price float64) valspec.GenericRecord {
	return valspec.GenericRecord{
		"id": float64(1), "title": "widget", "category": "beauty",
		"brand": "acme", "price": price,
	}
}

func TestSelectConfigRuleOverrides(t *testing.T) {
	spec := model.RunSpec{
		Resources: []string{"products"},
		Rules: map[string]valspec.ValidationRules{
			"products": {MinValues: map[string]float64{"price": 50}},
		},
	}

	resources, _, err := selectConfig(spec)
	require.NoError(t, err)
	require.Len(t, resources, 1)

	v := resources[0].Validation
	assert.False(t, valspec.Evaluate(v, product(10)), "override tightens the price floor")
	assert.True(t, valspec.Evaluate(v, product(80)))

	// fields the override does not name keep their catalog rules
	cheap := product(80)
	delete(cheap, "title")
	assert.False(t, valspec.Evaluate(v, cheap))
}

func TestSelectConfigRuleOverridesDoNotLeak(t *testing.T) {
	withRules := model.RunSpec{
		Rules: map[string]valspec.ValidationRules{
			"products": {MinValues: map[string]float64{"price": 1000}},
		},
	}
	_, _, err := selectConfig(withRules)
	require.NoError(t, err)

	// a later run without overrides sees the pristine catalog spec
	resources, _, err := selectConfig(model.RunSpec{})
	require.NoError(t, err)
	for _, res := range resources {
		if res.Name == "products" {
			assert.True(t, valspec.Evaluate(res.Validation, product(10)))
		}
	}
}

func TestSelectConfigUnknownRuleTarget(t *testing.T) {
	_, _, err := selectConfig(model.RunSpec{
		Rules: map[string]valspec.ValidationRules{
			"ghost": {RequiredFields: []string{"id"}},
		},
	})
	require.Error(t, err)
}

func TestSelectConfigSubset(t *testing.T) {
	resources, summaries, err := selectConfig(model.RunSpec{
		Resources: []string{"products", "carts"},
	})
	require.NoError(t, err)
	require.Len(t, resources, 2)

	// user_summary needs users, which was not selected; category_summary stays
	require.Len(t, summaries, 1)
	assert.Equal(t, "category_summary", summaries[0].Name)
}

func TestSelectConfigUnknownResource(t *testing.T) {
	_, _, err := selectConfig(model.RunSpec{Resources: []string{"nope"}})
	require.Error(t, err)
}
