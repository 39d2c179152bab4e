package crmapi

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/solarcrm-api/internal/domain/entity"
	"github.com/jhoicas/solarcrm-api/internal/domain/workflow"
)

// ── Formato JSON del backend ──────────────────────────────────────────────────

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// EnquiryJSON solicitud tal como la serializa el backend (camelCase).
type EnquiryJSON struct {
	ID                    string          `json:"id"`
	Status                string          `json:"status"`
	CurrentAssignedPerson string          `json:"currentAssignedPerson"`
	EnquiryBy             string          `json:"enquiryBy"`
	OrderNumber           string          `json:"orderNumber,omitempty"`
	ClientName            string          `json:"clientName,omitempty"`
	Material              string          `json:"material,omitempty"`
	Amount                decimal.Decimal `json:"amount"`
	ProductionWorkflowID  string          `json:"productionWorkflowId,omitempty"`
	ProductionStarted     bool            `json:"productionStarted"`
	Version               int64           `json:"version"`
	UpdatedAt             *time.Time      `json:"updatedAt,omitempty"`
}

type userJSON struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Role           string   `json:"role"`
	WorkflowStatus []string `json:"workflowStatus"`
	Active         *bool    `json:"active"`
}

type statusRequest struct {
	Status     string `json:"status"`
	AssignedTo string `json:"assignedTo"`
	Note       string `json:"note,omitempty"`
}

type assignRequest struct {
	AssignedTo string `json:"assignedTo"`
}

type completeResponse struct {
	Enquiry *EnquiryJSON `json:"enquiry"`
}

// ToEntity convierte la solicitud del backend. Un estado desconocido se conserva tal cual:
// el tablero no lo muestra en ninguna columna.
func (j *EnquiryJSON) ToEntity() *entity.Enquiry {
	e := &entity.Enquiry{
		ID:                    j.ID,
		Status:                workflow.Status(j.Status),
		CurrentAssignedPerson: j.CurrentAssignedPerson,
		EnquiryBy:             j.EnquiryBy,
		OrderNumber:           j.OrderNumber,
		ClientName:            j.ClientName,
		Material:              j.Material,
		Amount:                j.Amount,
		ProductionWorkflowID:  j.ProductionWorkflowID,
		ProductionStarted:     j.ProductionStarted,
		Version:               j.Version,
	}
	if j.UpdatedAt != nil {
		e.UpdatedAt = j.UpdatedAt.UTC()
	}
	return e
}

// DecodeEnquiry parsea una solicitud completa; exige ID.
func DecodeEnquiry(raw []byte) (*entity.Enquiry, error) {
	var j EnquiryJSON
	if err := json.Unmarshal(raw, &j); err != nil {
		return nil, fmt.Errorf("CRM: deserializar solicitud: %w", err)
	}
	if j.ID == "" {
		return nil, fmt.Errorf("CRM: solicitud sin id")
	}
	return j.ToEntity(), nil
}

func (j *userJSON) toEntity() entity.User {
	statuses := make([]workflow.Status, 0, len(j.WorkflowStatus))
	for _, s := range j.WorkflowStatus {
		statuses = append(statuses, workflow.Status(s))
	}
	active := true
	if j.Active != nil {
		active = *j.Active
	}
	return entity.User{
		ID:             j.ID,
		Name:           j.Name,
		Email:          j.Email,
		Role:           workflow.Role(j.Role),
		WorkflowStatus: statuses,
		Active:         active,
	}
}
