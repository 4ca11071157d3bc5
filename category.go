package emojimaker

import (
	"fmt"
	"strings"
)

// Category is one of the fixed facial feature slots of a composite.
type Category int

// The categories are declared in paint order: a layer of a later category
// is always drawn over the layers of the preceding ones.
const (
	Head Category = iota
	Eyes
	Eyebrows
	Mouth
	Details

	// NumCategories is the number of feature slots.
	NumCategories = int(Details) + 1
)

// Categories lists every category in paint order.
var Categories = [NumCategories]Category{Head, Eyes, Eyebrows, Mouth, Details}

var categoryKeys = [NumCategories]string{"head", "eyes", "eyebrows", "mouth", "details"}

var categoryTitles = [NumCategories]string{"Head", "Eyes", "Eyebrows", "Mouth", "Details"}

// Valid reports whether c is one of the declared categories.
func (c Category) Valid() bool {
	return c >= Head && c <= Details
}

// Key returns the lower case name used both as the URL query parameter
// and as the asset directory name of the category.
func (c Category) Key() string {
	if !c.Valid() {
		return ""
	}
	return categoryKeys[c]
}

// Title returns the human readable category name.
func (c Category) Title() string {
	if !c.Valid() {
		return ""
	}
	return categoryTitles[c]
}

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryTitles[c]
}

// ParseCategory maps a query key or directory name to its category.
func ParseCategory(s string) (Category, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, k := range categoryKeys {
		if k == key {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", s)
}
