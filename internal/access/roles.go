// Package access implements the authorization core: role-hierarchy rules
// over named resources, identity-agnostic share links and the combined
// decision facade.
package access

import "github.com/Mahdisellami/Hrisa-MyWebsite/internal/database/models"

// roleRank defines the total order PUBLIC < EDITOR < ADMIN. Unknown roles
// rank below PUBLIC so a corrupt value never grants anything.
var roleRank = map[models.Role]int{
	models.RolePublic: 0,
	models.RoleEditor: 1,
	models.RoleAdmin:  2,
}

// HasPermission reports whether the actual role is at least as privileged
// as the required one.
func HasPermission(actual, required models.Role) bool {
	a, ok := roleRank[actual]
	if !ok {
		return false
	}
	r, ok := roleRank[required]
	if !ok {
		return false
	}
	return a >= r
}
