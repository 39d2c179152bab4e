package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/solarcrm-api/internal/domain/workflow"
)

// TransitionRecord es una entrada de la bitácora de movimientos hechos desde el tablero.
type TransitionRecord struct {
	ID         string
	EnquiryID  string
	FromStatus workflow.Status
	ToStatus   workflow.Status
	ActorID    string
	ActorRole  workflow.Role
	AssigneeID string
	Kind       string // workflow.MoveKind.String() o "assign"
	Note       string
	Amount     decimal.Decimal
	OccurredAt time.Time
}
