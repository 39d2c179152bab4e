package workflow

// Role es el rol de un usuario del CRM. El conjunto es cerrado.
type Role string

// Roles válidos.
const (
	RoleSuperadmin Role = "superadmin"
	RoleDirector   Role = "director"
	RoleSalesman   Role = "salesman"
	RoleDesigner   Role = "designer"
	RoleProduction Role = "production"
	RolePurchase   Role = "purchase"
)

var knownRoles = map[Role]struct{}{
	RoleSuperadmin: {},
	RoleDirector:   {},
	RoleSalesman:   {},
	RoleDesigner:   {},
	RoleProduction: {},
	RolePurchase:   {},
}

// ParseRole convierte el claim del token o el campo del usuario en un Role.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	_, ok := knownRoles[r]
	return r, ok
}

// Valid informa si el rol pertenece al conjunto cerrado.
func (r Role) Valid() bool {
	_, ok := knownRoles[r]
	return ok
}

// IsElevated: superadmin y director actúan como cualquier rol a efectos de gestión.
func (r Role) IsElevated() bool {
	return r == RoleSuperadmin || r == RoleDirector
}

// CanDragAny: roles con permiso de mover cualquier tarjeta a cualquier columna.
func (r Role) CanDragAny() bool {
	return r == RoleSalesman || r.IsElevated()
}

// IsWorker: roles que reciben trabajo y lo devuelven al vendedor al terminar.
func (r Role) IsWorker() bool {
	return r == RoleDesigner || r == RoleProduction || r == RolePurchase
}

func (r Role) String() string { return string(r) }
