package validation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type sampleForm struct {
	Name  string  `json:"name" validate:"required,max=5"`
	Email string  `json:"email" validate:"required,email"`
	Price float64 `json:"price" validate:"gt=0"`
	Color string  `json:"color" validate:"omitempty,color"`
}

func init() {
	RegisterString("color", func(s string) bool { return s == "red" || s == "blue" })
}

func TestStruct(t *testing.T) {
	t.Run("Valid_ReturnsEmptyMap", func(t *testing.T) {
		errs := Struct(&sampleForm{Name: "pen", Email: "a@b.co", Price: 1, Color: "red"})
		require.NotNil(t, errs)
		require.Empty(t, errs)
	})

	t.Run("Invalid_KeysAreJSONNames", func(t *testing.T) {
		errs := Struct(&sampleForm{Name: "notebook", Email: "nope", Price: 0, Color: "green"})
		require.Equal(t, FieldErrors{
			"name":  "Must be at most 5 characters",
			"email": "Must be a valid email address",
			"price": "Must be greater than 0",
			"color": "Invalid value",
		}, errs)
	})

	t.Run("Missing_RequiredMessage", func(t *testing.T) {
		errs := Struct(&sampleForm{Price: 2})
		require.Equal(t, "This field is required", errs["name"])
		require.Equal(t, "This field is required", errs["email"])
	})
}
