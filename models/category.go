package models

import "strings"

// CategoryOther is the sentinel a client sends when it supplies its own category text.
const CategoryOther = "Other"

// Categories is the fixed list offered by the registration form.
var Categories = []string{
	"Tailor",
	"Plumber",
	"Electrician",
	"Carpenter",
	"Mechanic",
	"Hair Stylist",
	"Painter",
	"Cleaner",
	"Caterer",
	"Photographer",
	"Generator Repairer",
}

// ServiceCategory is either one of Categories or a custom value.
type ServiceCategory struct {
	name   string
	custom bool
}

func FixedCategory(name string) (ServiceCategory, bool) {
	name = strings.TrimSpace(name)
	for _, c := range Categories {
		if strings.EqualFold(c, name) {
			return ServiceCategory{name: c}, true
		}
	}
	return ServiceCategory{}, false
}

func CustomCategory(name string) ServiceCategory {
	return ServiceCategory{name: strings.TrimSpace(name), custom: true}
}

// ResolveCategory turns the form's serviceType/customServiceType pair into a
// single category. "Other" takes the custom text; unknown values are kept as custom.
func ResolveCategory(serviceType, customServiceType string) ServiceCategory {
	serviceType = strings.TrimSpace(serviceType)
	if strings.EqualFold(serviceType, CategoryOther) {
		return CustomCategory(customServiceType)
	}
	if c, ok := FixedCategory(serviceType); ok {
		return c
	}
	return CustomCategory(serviceType)
}

func (c ServiceCategory) String() string { return c.name }

func (c ServiceCategory) IsCustom() bool { return c.custom }

func (c ServiceCategory) IsZero() bool { return c.name == "" }
