package dto

// UserResponse salida de un usuario del directorio.
type UserResponse struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Role           string   `json:"role"`
	WorkflowStatus []string `json:"workflow_status,omitempty"`
	Active         bool     `json:"active"`
}

// SessionResponse usuario autenticado con sus estados resueltos.
type SessionResponse struct {
	User             UserResponse `json:"user"`
	ResolvedStatuses []string     `json:"resolved_statuses"`
}
