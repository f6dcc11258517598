package models

import (
	"strings"
	"time"

	"github.com/campuscart/backend/internal/lifecycle"
	"github.com/campuscart/backend/internal/validation"
)

type Category string

const (
	CategoryFood        Category = "Food"
	CategoryClothes     Category = "Clothes"
	CategoryAccessories Category = "Accessories"
	CategoryStationery  Category = "Stationery or Arts and Crafts"
	CategoryMerchandise Category = "Merchandise"
	CategorySupplies    Category = "Supplies"
	CategoryElectronics Category = "Electronics"
	CategoryBeauty      Category = "Beauty"
	CategoryBooks       Category = "Books"
	CategoryOther       Category = "Other"
)

var Categories = []Category{
	CategoryFood, CategoryClothes, CategoryAccessories, CategoryStationery, CategoryMerchandise,
	CategorySupplies, CategoryElectronics, CategoryBeauty, CategoryBooks, CategoryOther,
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

type Condition string

const (
	ConditionBrandNew Condition = "Brand New"
	ConditionPreLoved Condition = "Pre-Loved"
	ConditionNone     Condition = "None"
)

func (c Condition) Valid() bool {
	return c == ConditionBrandNew || c == ConditionPreLoved || c == ConditionNone
}

func init() {
	validation.RegisterString("category", func(s string) bool { return Category(s).Valid() })
	validation.RegisterString("condition", func(s string) bool { return Condition(s).Valid() })
}

// Product is a listing posted by a seller.
type Product struct {
	Code           int              `json:"code"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Price          float64          `json:"price"`
	Quantity       int              `json:"quantity"`
	ImagePath      string           `json:"imagePath,omitempty"`
	ImageKey       string           `json:"-"`
	Category       Category         `json:"category"`
	Condition      Condition        `json:"condition"`
	Status         lifecycle.Status `json:"status"`
	Feedback       string           `json:"feedback,omitempty"`
	SellerUsername string           `json:"sellerUsername"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// Fields returns the stored values the status evaluator compares against.
func (p *Product) Fields() lifecycle.Fields {
	return lifecycle.Fields{
		Name:        p.Name,
		Description: p.Description,
		Quantity:    p.Quantity,
		Price:       p.Price,
		Category:    string(p.Category),
		Condition:   string(p.Condition),
	}
}

// ProductForm is the seller-facing form for creating and editing a listing.
type ProductForm struct {
	Name        string           `json:"name" validate:"required,max=120"`
	Description string           `json:"description" validate:"max=2000"`
	Price       float64          `json:"price" validate:"gt=0"`
	Quantity    int              `json:"quantity" validate:"gt=0"`
	Category    Category         `json:"category" validate:"required,category"`
	Condition   Condition        `json:"condition" validate:"required,condition"`
	Status      lifecycle.Status `json:"status,omitempty"`
}

func (f *ProductForm) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
}

func (f *ProductForm) Validate() map[string]string {
	errors := validation.Struct(f)
	if f.Status != "" {
		if _, err := lifecycle.ParseStatus(string(f.Status)); err != nil {
			errors["status"] = "Unknown status"
		}
	}
	return errors
}

// Fields returns the proposed values of an edit.
func (f *ProductForm) Fields(newImage bool) lifecycle.Fields {
	return lifecycle.Fields{
		Name:        f.Name,
		Description: f.Description,
		Quantity:    f.Quantity,
		Price:       f.Price,
		Category:    string(f.Category),
		Condition:   string(f.Condition),
		NewImage:    newImage,
	}
}

// ProductUpdateResult carries the saved listing and the message telling the
// seller what happened to its status.
type ProductUpdateResult struct {
	Product       *Product `json:"product"`
	Message       string   `json:"message"`
	StatusChanged bool     `json:"statusChanged"`
}

type ProductFilter struct {
	Category  Category
	Condition Condition
}

type ReviewRequest struct {
	ProductCode int `json:"productCode" validate:"gt=0"`
}

func (r *ReviewRequest) Validate() map[string]string {
	return validation.Struct(r)
}

type RejectRequest struct {
	ProductCode int    `json:"productCode" validate:"gt=0"`
	Feedback    string `json:"feedback" validate:"max=1000"`
}

func (r *RejectRequest) Validate() map[string]string {
	return validation.Struct(r)
}

type BulkDeleteResponse struct {
	DeletedCount int `json:"deletedCount"`
}

// Seller is the public view of the user behind a listing.
type Seller struct {
	Username     string `json:"username"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	ContactNo    string `json:"contactNo,omitempty"`
	ProfilePhoto string `json:"profilePhoto,omitempty"`
}
