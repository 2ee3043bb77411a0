// Package query filters, searches and sorts technician listings for display.
package query

import (
	"math"
	"sort"
	"strings"
)

// SortOption selects the ordering applied after filtering
type SortOption string

const (
	SortNone       SortOption = ""
	SortRating     SortOption = "rating"
	SortExperience SortOption = "experience"
	SortPriceLow   SortOption = "price_low"
	SortPriceHigh  SortOption = "price_high"
)

// ParseSort maps a request value to a SortOption. Unknown values mean no sort.
func ParseSort(value string) SortOption {
	switch opt := SortOption(strings.TrimSpace(value)); opt {
	case SortRating, SortExperience, SortPriceLow, SortPriceHigh:
		return opt
	}
	return SortNone
}

// Listing is anything that can be shown in the technician directory
type Listing interface {
	ListingName() string
	ListingSkills() []string
	ListingLocation() string
	ListingRating() float64
	ListingExperience() int
	ListingHourlyRate() float64
}

// Criteria is the filter state of the directory. Empty fields do not filter.
type Criteria struct {
	SearchText string     `form:"search"`
	Skill      string     `form:"skill"`
	Location   string     `form:"location"`
	Sort       SortOption `form:"sort"`
}

// Compose returns the records matching c, ordered by c.Sort.
// The input slice is never modified; the result is always a new slice.
func Compose[T Listing](records []T, c Criteria) []T {
	search := strings.ToLower(strings.TrimSpace(c.SearchText))

	out := make([]T, 0, len(records))
	for _, r := range records {
		if c.Skill != "" && !hasSkill(r, c.Skill) {
			continue
		}
		if c.Location != "" && r.ListingLocation() != c.Location {
			continue
		}
		if search != "" && !matchesSearch(r, search) {
			continue
		}
		out = append(out, r)
	}

	if less := lessFunc(out, c.Sort); less != nil {
		sort.SliceStable(out, less)
	}
	return out
}

func hasSkill(r Listing, skill string) bool {
	for _, s := range r.ListingSkills() {
		if s == skill {
			return true
		}
	}
	return false
}

// matchesSearch expects needle to be lower-cased and trimmed
func matchesSearch(r Listing, needle string) bool {
	if strings.Contains(strings.ToLower(r.ListingName()), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(r.ListingLocation()), needle) {
		return true
	}
	for _, s := range r.ListingSkills() {
		if strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

func lessFunc[T Listing](items []T, opt SortOption) func(i, j int) bool {
	switch opt {
	case SortRating:
		return func(i, j int) bool {
			return rank(items[i].ListingRating()) > rank(items[j].ListingRating())
		}
	case SortExperience:
		return func(i, j int) bool {
			return items[i].ListingExperience() > items[j].ListingExperience()
		}
	case SortPriceLow:
		return func(i, j int) bool {
			return rank(items[i].ListingHourlyRate()) < rank(items[j].ListingHourlyRate())
		}
	case SortPriceHigh:
		return func(i, j int) bool {
			return rank(items[i].ListingHourlyRate()) > rank(items[j].ListingHourlyRate())
		}
	}
	return nil
}

// rank treats values that cannot be ordered as 0
func rank(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
