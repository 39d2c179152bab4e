package dto

import (
	"github.com/jhoicas/solarcrm-api/internal/domain/entity"
	"github.com/jhoicas/solarcrm-api/internal/domain/workflow"
)

// FromEnquiry convierte la entidad en su salida HTTP.
func FromEnquiry(e *entity.Enquiry) *EnquiryResponse {
	if e == nil {
		return nil
	}
	return &EnquiryResponse{
		ID:                    e.ID,
		Status:                e.Status.String(),
		CurrentAssignedPerson: e.CurrentAssignedPerson,
		EnquiryBy:             e.EnquiryBy,
		OrderNumber:           e.OrderNumber,
		ClientName:            e.ClientName,
		Material:              e.Material,
		Amount:                e.Amount,
		ProductionStarted:     e.ProductionStarted,
		Version:               e.Version,
		UpdatedAt:             e.UpdatedAt,
	}
}

// FromSession convierte la sesión en su salida HTTP.
func FromSession(s entity.Session) SessionResponse {
	return SessionResponse{
		User:             FromUser(s.User),
		ResolvedStatuses: statusStrings(s.ResolvedStatuses),
	}
}

// FromUser convierte el usuario en su salida HTTP.
func FromUser(u entity.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role.String(),
		WorkflowStatus: statusStrings(u.WorkflowStatus),
		Active:         u.Active,
	}
}

// FromTransitionRecord convierte la entrada de bitácora en su salida HTTP.
func FromTransitionRecord(r *entity.TransitionRecord) TransitionRecordDTO {
	return TransitionRecordDTO{
		ID:         r.ID,
		FromStatus: r.FromStatus.String(),
		ToStatus:   r.ToStatus.String(),
		ActorID:    r.ActorID,
		ActorRole:  r.ActorRole.String(),
		AssigneeID: r.AssigneeID,
		Kind:       r.Kind,
		Note:       r.Note,
		Amount:     r.Amount,
		OccurredAt: r.OccurredAt,
	}
}

func statusStrings(in []workflow.Status) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = s.String()
	}
	return out
}
