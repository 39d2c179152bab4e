package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/solarcrm-api/internal/domain/workflow"
)

// Enquiry es la solicitud de un cliente que recorre el pipeline de fabricación.
// El backend es su dueño; aquí solo se guarda la última instantánea recibida.
type Enquiry struct {
	ID                    string
	Status                workflow.Status
	CurrentAssignedPerson string // ID del usuario responsable (siempre uno)
	EnquiryBy             string // ID del vendedor que la creó (inmutable)
	OrderNumber           string
	ClientName            string
	Material              string
	Amount                decimal.Decimal
	ProductionWorkflowID  string
	ProductionStarted     bool
	Version               int64 // contador monótono del servidor; 0 = desconocido
	UpdatedAt             time.Time
}

// WorkflowKey devuelve el identificador del sub-flujo de producción. Si el backend
// todavía no asignó uno, el sub-flujo se identifica por la propia solicitud.
func (e *Enquiry) WorkflowKey() string {
	if e.ProductionWorkflowID != "" {
		return e.ProductionWorkflowID
	}
	return e.ID
}

// NewerThan informa si e debe reemplazar a other en la colección local.
// Gana la versión mayor; sin versión se compara UpdatedAt; empate = última escritura.
func (e *Enquiry) NewerThan(other *Enquiry) bool {
	if other == nil {
		return true
	}
	if e.Version > 0 && other.Version > 0 {
		return e.Version >= other.Version
	}
	if !e.UpdatedAt.IsZero() && !other.UpdatedAt.IsZero() {
		return !e.UpdatedAt.Before(other.UpdatedAt)
	}
	return true
}

// Clone copia la instantánea para entregarla fuera del store.
func (e *Enquiry) Clone() *Enquiry {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}
