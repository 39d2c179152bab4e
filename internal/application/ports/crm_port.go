package ports

import (
	"context"

	"github.com/jhoicas/solarcrm-api/internal/domain/entity"
	"github.com/jhoicas/solarcrm-api/internal/domain/workflow"
)

// EnquiryGateway define el puerto de salida hacia el backend REST del CRM.
// El backend es la fuente de verdad: cada llamada que muta devuelve la instantánea
// que el llamador debe guardar, sin asumir valores calculados localmente.
type EnquiryGateway interface {
	// UpdateEnquiryStatus es la única llamada que cambia estado y responsable a la vez.
	UpdateEnquiryStatus(ctx context.Context, enquiryID string, status workflow.Status, assigneeID, note string) (*entity.Enquiry, error)
	// AssignEnquiry cambia el responsable sin tocar el estado.
	AssignEnquiry(ctx context.Context, enquiryID, assigneeID string) (*entity.Enquiry, error)
	// StartProductionWorkflow inicia el sub-flujo de producción.
	StartProductionWorkflow(ctx context.Context, workflowID string) error
	// CompleteProductionWorkflow cierra el sub-flujo; el backend mueve la solicitud a
	// ReadyForDispatch y la reasigna al vendedor original.
	CompleteProductionWorkflow(ctx context.Context, workflowID string) (*entity.Enquiry, error)
	ListEnquiries(ctx context.Context) ([]*entity.Enquiry, error)
}

// UserDirectory define el puerto de lectura de usuarios del backend.
type UserDirectory interface {
	// ListUsers devuelve todos los usuarios en el orden del backend; ese orden decide
	// el responsable por defecto.
	ListUsers(ctx context.Context) ([]entity.User, error)
	GetUser(ctx context.Context, id string) (*entity.User, error)
}
