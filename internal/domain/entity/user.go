package entity

import "github.com/jhoicas/solarcrm-api/internal/domain/workflow"

// User representa un usuario del CRM tal como lo entrega el backend.
type User struct {
	ID             string
	Name           string
	Email          string
	Role           workflow.Role
	WorkflowStatus []workflow.Status // override por usuario; vacío = valores por defecto del rol
	Active         bool
}

// Session es el usuario autenticado con sus estados resueltos una sola vez.
// ResolvedStatuses no se recalcula en cada llamada: se fija al abrir la sesión.
type Session struct {
	User             User
	ResolvedStatuses []workflow.Status
}

// NewSession resuelve override vs. valores por defecto del rol.
func NewSession(u User) Session {
	return Session{
		User:             u,
		ResolvedStatuses: workflow.StatusesForRole(u.Role, u.WorkflowStatus),
	}
}

// Role atajo para s.User.Role.
func (s Session) Role() workflow.Role { return s.User.Role }

// UserID atajo para s.User.ID.
func (s Session) UserID() string { return s.User.ID }

// CanAct informa si el estado está dentro de los estados resueltos de la sesión.
func (s Session) CanAct(status workflow.Status) bool {
	return workflow.Contains(s.ResolvedStatuses, status)
}
