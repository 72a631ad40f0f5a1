package constants

// Role vocabulary carried in the JWT "role" claim.
const (
	RoleAdmin    = "admin"
	RoleBenevole = "benevole" // staff volunteer handling intake and billing
	RoleLecteur  = "lecteur"  // reader recording books
	RoleAveugle  = "aveugle"  // patron the orders are made for
)

// StaffRoles are allowed on every mutating route of the order / assignment /
// billing lifecycle.
var StaffRoles = []string{RoleAdmin, RoleBenevole}

func IsValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleBenevole, RoleLecteur, RoleAveugle:
		return true
	}
	return false
}
