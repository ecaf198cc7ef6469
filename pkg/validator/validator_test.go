package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type priceUpdate struct {
	Price *float64 `json:"price" validate:"required,gte=0"`
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	err := ValidateStruct(priceUpdate{})
	require.Error(t, err)

	failures, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, failures, 1)
	require.Equal(t, "price", failures[0].Field)
	require.Equal(t, "required", failures[0].Tag)
}

func TestValidateStructRejectsNegative(t *testing.T) {
	negative := -1.0
	err := ValidateStruct(priceUpdate{Price: &negative})
	require.Error(t, err)

	valid := 9.99
	require.NoError(t, ValidateStruct(priceUpdate{Price: &valid}))
}
