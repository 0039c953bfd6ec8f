package models

import "strings"

// Role is the account type chosen at signup.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleProvider Role = "provider"
)

// ParseRole normalises a requested role. Anything that is not a known role
// becomes RoleCustomer; unknown values are coerced, never rejected.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleProvider:
		return RoleProvider
	default:
		return RoleCustomer
	}
}

func (r Role) String() string { return string(r) }
