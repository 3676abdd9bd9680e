package models

import (
	"strings"
	"unicode"
)

// Category is the spending category shared by cycle allocations and
// transactions. Values are whitespace-free so that free-form input such as
// "Dining Out" and "DiningOut" resolve to the same category.
type Category string

const (
	CategoryGroceries      Category = "Groceries"
	CategoryDiningOut      Category = "DiningOut"
	CategoryTransportation Category = "Transportation"
	CategoryUtilities      Category = "Utilities"
	CategoryHousing        Category = "Housing"
	CategoryEntertainment  Category = "Entertainment"
	CategoryShopping       Category = "Shopping"
	CategoryHealthcare     Category = "Healthcare"
	CategoryEducation      Category = "Education"
	CategoryTravel         Category = "Travel"
	CategoryMiscellaneous  Category = "Miscellaneous"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryGroceries,
	CategoryDiningOut,
	CategoryTransportation,
	CategoryUtilities,
	CategoryHousing,
	CategoryEntertainment,
	CategoryShopping,
	CategoryHealthcare,
	CategoryEducation,
	CategoryTravel,
	CategoryMiscellaneous,
}

// NormalizeCategoryName strips every whitespace rune from s.
func NormalizeCategoryName(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// ParseCategory resolves free-form input to a known category. Matching
// ignores whitespace and case.
func ParseCategory(s string) (Category, bool) {
	norm := NormalizeCategoryName(s)
	for _, c := range Categories {
		if strings.EqualFold(string(c), norm) {
			return c, true
		}
	}
	return "", false
}

// CategoryAmounts maps a category to a money amount. It is stored as a JSON
// column on budget cycles.
type CategoryAmounts map[Category]float64

// Get returns the amount for c, treating a missing key as zero.
func (a CategoryAmounts) Get(c Category) float64 {
	if a == nil {
		return 0
	}
	return a[c]
}
