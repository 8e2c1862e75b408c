package model

import "sort"

// roleCategories maps each performing role to the service categories it may serve.
// Administrative roles are absent: they perform no services. A category that
// appears in no role's set is unconstrained and any active staff member may take it.
var roleCategories = map[StaffRole][]ServiceCategory{
	RoleHairStylist:      {CategoryHaircut, CategoryHair},
	RoleBeautician:       {CategoryFacial},
	RoleNailTechnician:   {CategoryManicure, CategoryNail},
	RoleMassageTherapist: {CategoryMassage},
}

// AssignmentDecision is the outcome of an eligibility evaluation.
type AssignmentDecision struct {
	Allowed      bool
	OverrideUsed bool
}

// IsEligible reports whether the role's allowed set directly contains the category.
func IsEligible(role StaffRole, category ServiceCategory) bool {
	for _, c := range roleCategories[role] {
		if c == category {
			return true
		}
	}
	return false
}

// HasStrictMapping reports whether the category is claimed by at least one role.
// Uncatalogued or legacy categories have no strict mapping and never block assignment.
func HasStrictMapping(category ServiceCategory) bool {
	if category == "" {
		return false
	}
	for _, cats := range roleCategories {
		for _, c := range cats {
			if c == category {
				return true
			}
		}
	}
	return false
}

// AllowedRoles returns the roles permitted for a strictly mapped category,
// sorted for stable error messages.
func AllowedRoles(category ServiceCategory) []StaffRole {
	var roles []StaffRole
	for role, cats := range roleCategories {
		for _, c := range cats {
			if c == category {
				roles = append(roles, role)
			}
		}
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}

// EvaluateAssignment decides whether a role may take a category. When direct
// eligibility fails but the category has no strict mapping, the assignment is
// still allowed and flagged as an override for audit.
func EvaluateAssignment(role StaffRole, category ServiceCategory) AssignmentDecision {
	if IsEligible(role, category) {
		return AssignmentDecision{Allowed: true}
	}
	if !HasStrictMapping(category) {
		return AssignmentDecision{Allowed: true, OverrideUsed: true}
	}
	return AssignmentDecision{Allowed: false}
}
