// Copyright (c) 2026 Mercata. All rights reserved.
// Author: platform@mercata.shop

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Unrestricted system access
	RoleAdmin UserRole = "admin"

	// Can manage storefront content and respond to account-compromise reports
	RoleSupport UserRole = "support"

	// Can manage their own shop listings
	RoleSeller UserRole = "seller"

	// Default role for standard registered customers
	RoleCustomer UserRole = "customer"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {

	// Linear scale (10-40) allows for future intermediate roles
	switch r {
	case RoleAdmin:
		return 40
	case RoleSupport:
		return 30
	case RoleSeller:
		return 20
	case RoleCustomer:
		return 10
	default:
		return 0
	}
}
