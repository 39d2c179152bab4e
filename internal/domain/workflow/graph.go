package workflow

// defaultStatusesByRole: estados que cada rol posee por defecto en el flujo normal.
// superadmin y director no aparecen: siempre reciben AllStatuses().
var defaultStatusesByRole = map[Role][]Status{
	RoleSalesman:   orderedStatuses[:],
	RoleDesigner:   {StatusDesign},
	RoleProduction: {StatusReadyForProduction, StatusInProduction, StatusProductionComplete, StatusHotdip},
	RolePurchase:   {StatusPurchaseWaiting},
}

// rolesByStatus se mantiene a mano: BOQ y ReadyForDispatch son estados de salida del
// vendedor a los que llegan los roles operativos, no estados de entrada de esos roles.
var rolesByStatus = map[Status][]Role{
	StatusEnquiry:            {RoleSalesman},
	StatusDesign:             {RoleDesigner},
	StatusBOQ:                {RoleSalesman},
	StatusReadyForProduction: {RoleProduction},
	StatusPurchaseWaiting:    {RolePurchase},
	StatusInProduction:       {RoleProduction},
	StatusProductionComplete: {RoleProduction},
	StatusHotdip:             {RoleProduction},
	StatusReadyForDispatch:   {RoleSalesman},
	StatusDispatched:         {RoleSalesman},
}

// returnStatusByRole: columna a la que un rol operativo arrastra la tarjeta para
// decir "terminé, vuelve al vendedor que la creó".
var returnStatusByRole = map[Role]Status{
	RoleDesigner:   StatusBOQ,
	RoleProduction: StatusReadyForDispatch,
	RolePurchase:   StatusReadyForProduction,
}

// StatusesForRole devuelve los estados sobre los que actúa el rol.
// Si override no está vacío reemplaza al valor por defecto (filtrado a estados válidos y
// en orden canónico). superadmin y director reciben siempre los 10 estados.
// Un rol desconocido devuelve un conjunto vacío. No modifica override.
func StatusesForRole(role Role, override []Status) []Status {
	if role.IsElevated() {
		return AllStatuses()
	}
	def, ok := defaultStatusesByRole[role]
	if !ok {
		return []Status{}
	}
	if len(override) > 0 {
		return sortCanonical(override)
	}
	out := make([]Status, len(def))
	copy(out, def)
	return out
}

// RolesAllowedFor devuelve los roles que pueden ser asignados a una solicitud en el estado.
// Estado desconocido: conjunto vacío.
func RolesAllowedFor(status Status) []Role {
	roles, ok := rolesByStatus[status]
	if !ok {
		return []Role{}
	}
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}

// RoleAllowedFor informa si el rol figura en RolesAllowedFor(status).
func RoleAllowedFor(status Status, role Role) bool {
	for _, r := range rolesByStatus[status] {
		if r == role {
			return true
		}
	}
	return false
}

// ReturnStatusFor devuelve el estado de devolución del rol operativo.
func ReturnStatusFor(role Role) (Status, bool) {
	s, ok := returnStatusByRole[role]
	return s, ok
}

// Contains informa si status está en la lista.
func Contains(list []Status, status Status) bool {
	for _, s := range list {
		if s == status {
			return true
		}
	}
	return false
}
