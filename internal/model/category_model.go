package model

import "strings"

// Category is the productivity classification of a domain.
type Category string

const (
	CategoryProductive   Category = "productive"
	CategoryNeutral      Category = "neutral"
	CategoryUnproductive Category = "unproductive"
)

// ParseCategory accepts the wire spelling of a category, case-insensitive.
func ParseCategory(s string) (Category, bool) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryProductive:
		return CategoryProductive, true
	case CategoryNeutral:
		return CategoryNeutral, true
	case CategoryUnproductive:
		return CategoryUnproductive, true
	}
	return "", false
}

func (c Category) Valid() bool {
	_, ok := ParseCategory(string(c))
	return ok
}
