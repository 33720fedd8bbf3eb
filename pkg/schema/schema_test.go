package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProduct() map[string]any {
	return map[string]any{
		"name":        "Laptop",
		"description": "High-performance laptop for developers",
		"price":       999.99,
		"category":    "/categories/1",
	}
}

func TestProduct_Valid(t *testing.T) {
	errs := Product.Validate(validProduct())
	assert.Nil(t, errs)
}

func TestProduct_NegativePrice(t *testing.T) {
	values := validProduct()
	values["price"] = -5.0

	errs := Product.Validate(values)

	require.Len(t, errs, 1)
	assert.Equal(t, "price", errs[0].Field)
	assert.Equal(t, "gt", errs[0].Tag)
	assert.Equal(t, "This value should be positive.", errs[0].Message)
}

func TestProduct_ZeroPriceIsBlank(t *testing.T) {
	values := validProduct()
	values["price"] = 0.0

	errs := Product.Validate(values)

	require.Len(t, errs, 1)
	assert.Equal(t, "required", errs[0].Tag)
}

func TestProduct_LengthLimits(t *testing.T) {
	values := validProduct()
	values["name"] = "A"
	values["description"] = "short"

	errs := Product.Validate(values)

	require.Len(t, errs, 2)
	// Порядок ошибок совпадает с порядком правил
	assert.Equal(t, "name", errs[0].Field)
	assert.Contains(t, errs[0].Message, "2 characters or more")
	assert.Equal(t, "description", errs[1].Field)
	assert.Contains(t, errs[1].Message, "10 characters or more")
}

func TestProduct_NameTooLong(t *testing.T) {
	values := validProduct()
	values["name"] = strings.Repeat("x", 256)

	errs := Product.Validate(values)

	require.Len(t, errs, 1)
	assert.Equal(t, "max", errs[0].Tag)
}

func TestProduct_MissingFields(t *testing.T) {
	errs := Product.Validate(map[string]any{})

	assert.Equal(t, []string{"name", "description", "price", "category"}, fieldsOf(errs))
	for _, fe := range errs {
		assert.Equal(t, "This value should not be blank.", fe.Message)
	}
}

func TestCategory_Validate(t *testing.T) {
	assert.Nil(t, Category.Validate(map[string]any{"name": "Electronics"}))

	errs := Category.Validate(map[string]any{"name": ""})
	require.Len(t, errs, 1)
	assert.Equal(t, map[string]string{"name": "This value should not be blank."}, errs.Map())
}

func TestFieldErrors_Error(t *testing.T) {
	errs := FieldErrors{
		{Field: "name", Message: "a"},
		{Field: "price", Message: "b"},
	}
	assert.Equal(t, "name: a\nprice: b", errs.Error())
}

func fieldsOf(errs FieldErrors) []string {
	out := make([]string, 0, len(errs))
	for _, fe := range errs {
		out = append(out, fe.Field)
	}
	return out
}

func TestRules_Fields(t *testing.T) {
	assert.Equal(t, []string{"name", "description", "price", "category"}, Product.Fields())
	assert.Equal(t, []string{"name"}, Category.Fields())
}
