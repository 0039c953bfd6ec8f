package store

import (
	"math"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/meinhoongagan/findam/models"
)

// MaxSearchResults is the silent cap applied to every provider search.
const MaxSearchResults = 100

// ProviderPredicate is one condition over providers. Scope renders it for SQL
// stores and Match evaluates it in memory; the two must agree.
type ProviderPredicate struct {
	Name  string
	Scope func(*gorm.DB) *gorm.DB
	Match func(*models.Provider) bool
}

func ActiveOnly() ProviderPredicate {
	return ProviderPredicate{
		Name: "active",
		Scope: func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true)
		},
		Match: func(p *models.Provider) bool { return p.IsActive },
	}
}

func InCity(city string) ProviderPredicate {
	return ProviderPredicate{
		Name: "city",
		Scope: func(db *gorm.DB) *gorm.DB {
			return db.Where("city = ?", city)
		},
		Match: func(p *models.Provider) bool { return p.City == city },
	}
}

// TextMatches is a case-insensitive substring match on name or service type.
func TextMatches(term string) ProviderPredicate {
	pattern := "%" + escapeLike(term) + "%"
	lower := strings.ToLower(term)
	return ProviderPredicate{
		Name: "text",
		Scope: func(db *gorm.DB) *gorm.DB {
			return db.Where("(name ILIKE ? OR service_type ILIKE ?)", pattern, pattern)
		},
		Match: func(p *models.Provider) bool {
			return strings.Contains(strings.ToLower(p.Name), lower) ||
				strings.Contains(strings.ToLower(p.ServiceType), lower)
		},
	}
}

func ServesArea(area string) ProviderPredicate {
	return ProviderPredicate{
		Name: "area",
		Scope: func(db *gorm.DB) *gorm.DB {
			return db.Where("? = ANY(areas)", area)
		},
		Match: func(p *models.Provider) bool { return p.HasArea(area) },
	}
}

func InCategory(category string) ProviderPredicate {
	return ProviderPredicate{
		Name: "category",
		Scope: func(db *gorm.DB) *gorm.DB {
			return db.Where("service_type = ?", category)
		},
		Match: func(p *models.Provider) bool { return p.ServiceType == category },
	}
}

func MinRating(min float64) ProviderPredicate {
	return ProviderPredicate{
		Name: "min_rating",
		Scope: func(db *gorm.DB) *gorm.DB {
			return db.Where("rating_average >= ?", min)
		},
		Match: func(p *models.Provider) bool { return p.Rating.Average >= min },
	}
}

// ProviderFilter holds the optional, caller-supplied search filters.
// Zero values mean "absent".
type ProviderFilter struct {
	Text      string
	Area      string
	Category  string
	MinRating *float64
}

// ParseProviderFilter builds a filter from raw query values. Blank values and
// a minRating that is not a finite number are treated as absent.
func ParseProviderFilter(search, area, category, minRating string) ProviderFilter {
	f := ProviderFilter{
		Text:     strings.TrimSpace(search),
		Area:     strings.TrimSpace(area),
		Category: strings.TrimSpace(category),
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(minRating), 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		f.MinRating = &v
	}
	return f
}

// Predicates returns one predicate per supplied filter.
func (f ProviderFilter) Predicates() []ProviderPredicate {
	var preds []ProviderPredicate
	if f.Text != "" {
		preds = append(preds, TextMatches(f.Text))
	}
	if f.Area != "" {
		preds = append(preds, ServesArea(f.Area))
	}
	if f.Category != "" {
		preds = append(preds, InCategory(f.Category))
	}
	if f.MinRating != nil {
		preds = append(preds, MinRating(*f.MinRating))
	}
	return preds
}

// ProviderSearch is a complete search: the fixed base predicates for the
// deployment's city plus the caller's filters.
type ProviderSearch struct {
	City   string
	Filter ProviderFilter
	Limit  int
}

// Predicates always starts with ActiveOnly and InCity; filters can only narrow the result.
func (s ProviderSearch) Predicates() []ProviderPredicate {
	preds := []ProviderPredicate{ActiveOnly(), InCity(s.City)}
	return append(preds, s.Filter.Predicates()...)
}

func (s ProviderSearch) limit() int {
	if s.Limit <= 0 || s.Limit > MaxSearchResults {
		return MaxSearchResults
	}
	return s.Limit
}

func matchesAll(p *models.Provider, preds []ProviderPredicate) bool {
	for _, pred := range preds {
		if !pred.Match(p) {
			return false
		}
	}
	return true
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
