package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound        = errors.New("catalog item not found")
	ErrUnknownCategory = errors.New("unknown catalog category")
)

// Category names one of the static catalogs. Item ids are only unique within a category.
type Category string

const (
	CategoryProperty   Category = "property"
	CategoryElectronic Category = "electronic"
	CategoryVehicle    Category = "vehicle"
)

// Categories lists every catalog in display order.
var Categories = []Category{CategoryProperty, CategoryElectronic, CategoryVehicle}

func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "property", "properties":
		return CategoryProperty, nil
	case "electronic", "electronics":
		return CategoryElectronic, nil
	case "vehicle", "vehicles":
		return CategoryVehicle, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
}

// Plural is the catalog name used in URLs and search results.
func (c Category) Plural() string {
	switch c {
	case CategoryProperty:
		return "properties"
	case CategoryElectronic:
		return "electronics"
	case CategoryVehicle:
		return "vehicles"
	}
	return string(c)
}

// Key identifies an item across all catalogs.
type Key struct {
	Category Category `json:"category"`
	ID       int      `json:"id"`
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%d", k.Category, k.ID)
}

type Item struct {
	ID          int      `json:"id" yaml:"id"`
	Category    Category `json:"category" yaml:"-"`
	Title       string   `json:"title" yaml:"title"`
	Price       int64    `json:"price" yaml:"price"`
	Image       string   `json:"image" yaml:"image"`
	Featured    bool     `json:"isFeatured" yaml:"featured"`
	Description string   `json:"description,omitempty" yaml:"description"`

	// properties
	Location  string `json:"location,omitempty" yaml:"location"`
	Type      string `json:"type,omitempty" yaml:"type"`
	Bedrooms  int    `json:"bedrooms,omitempty" yaml:"bedrooms"`
	Bathrooms int    `json:"bathrooms,omitempty" yaml:"bathrooms"`
	Area      int    `json:"area,omitempty" yaml:"area"`

	// electronics and vehicles
	Brand  string   `json:"brand,omitempty" yaml:"brand"`
	Kind   string   `json:"kind,omitempty" yaml:"kind"`
	Specs  []string `json:"specs,omitempty" yaml:"specs"`
	Rating float64  `json:"rating,omitempty" yaml:"rating"`
}

func (it Item) Key() Key {
	return Key{Category: it.Category, ID: it.ID}
}

// Group is the value the category filter buttons match against:
// the property type for properties, the product kind otherwise.
func (it Item) Group() string {
	if it.Category == CategoryProperty {
		return it.Type
	}
	return it.Kind
}
