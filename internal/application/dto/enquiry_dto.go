package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// EnquiryResponse salida de una solicitud del tablero.
type EnquiryResponse struct {
	ID                    string          `json:"id"`
	Status                string          `json:"status"`
	CurrentAssignedPerson string          `json:"current_assigned_person"`
	EnquiryBy             string          `json:"enquiry_by"`
	OrderNumber           string          `json:"order_number,omitempty"`
	ClientName            string          `json:"client_name,omitempty"`
	Material              string          `json:"material,omitempty"`
	Amount                decimal.Decimal `json:"amount"`
	ProductionStarted     bool            `json:"production_started"`
	Version               int64           `json:"version"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// MoveRequest entrada de un drag-and-drop (columna origen y destino).
type MoveRequest struct {
	From string `json:"from"`
	To   string `json:"to" validate:"required"`
}

// StatusFormRequest entrada del formulario de cambio de estado.
type StatusFormRequest struct {
	Status     string `json:"status" validate:"required"`
	AssigneeID string `json:"assignee_id"`
	Note       string `json:"note" validate:"omitempty,max=500"`
}

// AssignRequest entrada del selector de responsable (sin cambio de estado).
type AssignRequest struct {
	AssigneeID string `json:"assignee_id" validate:"required"`
}

// MoveResponse resultado de un movimiento: noop, blanket, within_role, return o assign.
type MoveResponse struct {
	Result  string           `json:"result"`
	Enquiry *EnquiryResponse `json:"enquiry,omitempty"`
}

// CandidateDTO usuario elegible como responsable.
type CandidateDTO struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	Default bool   `json:"default"`
}

// TransitionRecordDTO entrada de la bitácora.
type TransitionRecordDTO struct {
	ID         string          `json:"id"`
	FromStatus string          `json:"from_status"`
	ToStatus   string          `json:"to_status"`
	ActorID    string          `json:"actor_id"`
	ActorRole  string          `json:"actor_role"`
	AssigneeID string          `json:"assignee_id"`
	Kind       string          `json:"kind"`
	Note       string          `json:"note,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredAt time.Time       `json:"occurred_at"`
}
