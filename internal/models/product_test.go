package models

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campuscart/backend/internal/lifecycle"
)

func validProductForm() ProductForm {
	return ProductForm{
		Name:        "Lab gown",
		Description: "Size M",
		Price:       350,
		Quantity:    1,
		Category:    CategoryClothes,
		Condition:   ConditionPreLoved,
	}
}

func TestProductFormValidate(t *testing.T) {
	t.Run("Valid_NoErrors", func(t *testing.T) {
		f := validProductForm()
		require.Empty(t, f.Validate())
	})

	t.Run("StationeryCategory_Accepted", func(t *testing.T) {
		f := validProductForm()
		f.Category = CategoryStationery
		require.Empty(t, f.Validate())
	})

	t.Run("NonPositivePriceAndQuantity_Rejected", func(t *testing.T) {
		f := validProductForm()
		f.Price = 0
		f.Quantity = -1
		errs := f.Validate()
		require.Contains(t, errs, "price")
		require.Contains(t, errs, "quantity")
	})

	t.Run("UnknownEnums_Rejected", func(t *testing.T) {
		f := validProductForm()
		f.Category = "Vehicles"
		f.Condition = "Broken"
		f.Status = "Archived"
		errs := f.Validate()
		require.Equal(t, "Unknown category", errs["category"])
		require.Equal(t, "Unknown condition", errs["condition"])
		require.Equal(t, "Unknown status", errs["status"])
	})

	t.Run("MissingName_Rejected", func(t *testing.T) {
		f := validProductForm()
		f.Name = ""
		require.Equal(t, "This field is required", f.Validate()["name"])
	})
}

func TestProductFields(t *testing.T) {
	p := &Product{Name: "Lab gown", Description: "Size M", Price: 350, Quantity: 1, Category: CategoryClothes, Condition: ConditionPreLoved, Status: lifecycle.StatusApproved}
	f := validProductForm()

	require.False(t, f.Fields(false).Differs(p.Fields()))
	require.True(t, f.Fields(true).Differs(p.Fields()))
}

func TestUserFormValidate(t *testing.T) {
	t.Run("Valid_NoErrors", func(t *testing.T) {
		f := UserForm{Username: "juan_dc", FirstName: "Juan", LastName: "Dela Cruz", Email: "juan@cit.edu", Password: "secret1"}
		require.Empty(t, f.Validate())
	})

	t.Run("BadUsernameAndEmail_Rejected", func(t *testing.T) {
		f := UserForm{Username: "juan dc", FirstName: "Juan", LastName: "Dela Cruz", Email: "juan", Password: "123"}
		errs := f.Validate()
		require.Equal(t, "Only letters, digits and underscores are allowed", errs["username"])
		require.Equal(t, "Must be a valid email address", errs["email"])
		require.Equal(t, "Must be at least 6 characters", errs["password"])
	})

	t.Run("ChangePassword_SamePasswordRejected", func(t *testing.T) {
		r := ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "secret1"}
		require.Equal(t, "Must differ from the current value", r.Validate()["newPassword"])
	})
}

func TestConversationOther(t *testing.T) {
	m := &Message{Sender: "ana", Receiver: "ben"}
	require.Equal(t, "ben", m.Other("ana"))
	require.Equal(t, "ana", m.Other("ben"))
}
