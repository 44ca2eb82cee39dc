package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateStruct(t *testing.T) {
	type payload struct {
		Email    string `validate:"required,email"`
		Capacity int    `validate:"gt=0"`
	}

	errs := ValidateStruct(payload{Email: "not-an-email", Capacity: 0})
	assert.Len(t, errs, 2)

	errs = ValidateStruct(payload{Email: "a@example.com", Capacity: 5})
	assert.Empty(t, errs)
}

func TestValidateStructOptionalFields(t *testing.T) {
	type payload struct {
		Email    *string `validate:"omitempty,email"`
		Capacity *int    `validate:"omitempty,gt=0"`
	}

	errs := ValidateStruct(payload{})
	assert.Empty(t, errs, "unset optional fields pass")

	bad := "not-an-email"
	zero := 0
	errs = ValidateStruct(payload{Email: &bad, Capacity: &zero})
	assert.Len(t, errs, 2)
}
