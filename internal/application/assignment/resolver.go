// Package assignment selecciona los candidatos a responsable de una solicitud cuando
// cambia de estado. Es lógica pura: la llamada al backend la hace el controlador de
// transiciones.
//
// Esta es la única fuente de filtrado de candidatos. La lista por estado que ofrece el
// backend (getUsersByStatus) no se consume para no tener dos filtros que diverjan.
package assignment

import (
	"github.com/jhoicas/solarcrm-api/internal/domain"
	"github.com/jhoicas/solarcrm-api/internal/domain/entity"
	"github.com/jhoicas/solarcrm-api/internal/domain/workflow"
)

// EligibleAssignees filtra users a los que tienen un rol permitido para status, en el
// orden recibido. superadmin y director pueden entregar trabajo a cualquiera: para ellos
// todos los usuarios activos son elegibles. Los usuarios inactivos nunca lo son.
func EligibleAssignees(status workflow.Status, users []entity.User, actorRole workflow.Role) []entity.User {
	out := make([]entity.User, 0, len(users))
	for _, u := range users {
		if !u.Active {
			continue
		}
		if actorRole.IsElevated() || workflow.RoleAllowedFor(status, u.Role) {
			out = append(out, u)
		}
	}
	return out
}

// DefaultAssignee devuelve el primer usuario con rol permitido para status o, si no hay
// ninguno, fallback (normalmente el responsable actual: una solicitud nunca se queda sin
// dueño). El desempate es el orden de la lista; no hay balanceo de carga.
func DefaultAssignee(status workflow.Status, users []entity.User, fallback entity.User) entity.User {
	// El filtro por rol se aplica aunque el actor sea elevado: "cualquiera" no es un
	// buen valor por defecto.
	eligible := EligibleAssignees(status, users, "")
	if len(eligible) == 0 {
		return fallback
	}
	return eligible[0]
}

// ResolveAssignee respeta la elección explícita del actor si es elegible; sin elección
// aplica DefaultAssignee.
func ResolveAssignee(status workflow.Status, users []entity.User, actorRole workflow.Role, requestedID string, fallback entity.User) (entity.User, error) {
	if requestedID == "" {
		return DefaultAssignee(status, users, fallback), nil
	}
	for _, u := range EligibleAssignees(status, users, actorRole) {
		if u.ID == requestedID {
			return u, nil
		}
	}
	return entity.User{}, domain.ErrIneligibleAssignee
}

// FindUser busca por ID en la lista; ok=false si no está.
func FindUser(users []entity.User, id string) (entity.User, bool) {
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return entity.User{}, false
}
