package models

import "github.com/shopspring/decimal"

// Product is a catalog entry. A product must carry at least one feature.
type Product struct {
	ID           string    `json:"id,omitempty"`
	Name         string    `json:"name" validate:"required,max=200"`
	FamilyID     string    `json:"familyId" validate:"required"`
	Availability string    `json:"availability,omitempty"`
	Unit         string    `json:"unit" validate:"required"`
	Features     []Feature `json:"features" validate:"required,min=1,dive"`
	Images       []Image   `json:"images,omitempty"`
	Timestamps
}

// Feature is a priced variant of a product (size, thickness and finish
// combination). MaxRange must be >= MinRange when both are set; that rule is
// registered as a struct-level validation in internal/forms.
type Feature struct {
	Reference    string           `json:"reference" validate:"required"`
	MinRange     *float64         `json:"minRange,omitempty" validate:"omitempty,gte=0"`
	MaxRange     *float64         `json:"maxRange,omitempty" validate:"omitempty,gte=0"`
	Thickness    float64          `json:"thickness" validate:"gte=0"`
	Finish       string           `json:"finish,omitempty"`
	PricePerUnit *decimal.Decimal `json:"pricePerUnit,omitempty"`
	UnitSizes    []float64        `json:"unitSizes,omitempty" validate:"omitempty,dive,gt=0"`
}

// Image is a product picture; Position orders the gallery.
type Image struct {
	ID       string `json:"id,omitempty"`
	URL      string `json:"url"`
	Position int    `json:"position"`
}

// Family groups products under a representative image.
type Family struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name" validate:"required,max=120"`
	ImageURL string `json:"imageUrl,omitempty"`
}
