// Package portstest ofrece dobles en memoria de los puertos del backend CRM para tests.
package portstest

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/solarcrm-api/internal/application/ports"
	"github.com/jhoicas/solarcrm-api/internal/domain"
	"github.com/jhoicas/solarcrm-api/internal/domain/entity"
	"github.com/jhoicas/solarcrm-api/internal/domain/workflow"
)

var (
	_ ports.EnquiryGateway = (*Gateway)(nil)
	_ ports.UserDirectory  = (*Gateway)(nil)
)

// Nombres de método registrados en Calls.
const (
	MethodUpdateStatus       = "UpdateEnquiryStatus"
	MethodAssign             = "AssignEnquiry"
	MethodStartProduction    = "StartProductionWorkflow"
	MethodCompleteProduction = "CompleteProductionWorkflow"
)

// Call registra una llamada mutante recibida.
type Call struct {
	Method     string
	EnquiryID  string
	WorkflowID string
	Status     workflow.Status
	AssigneeID string
	Note       string
}

// Gateway simula el backend: guarda solicitudes, incrementa Version en cada mutación y
// registra las llamadas para verificar conteos.
type Gateway struct {
	mu        sync.Mutex
	enquiries map[string]*entity.Enquiry
	users     []entity.User
	calls     []Call

	// Err, si no es nil, hace fallar todas las llamadas mutantes.
	Err error
	// ListErr, si no es nil, hace fallar ListEnquiries/ListUsers/GetUser.
	ListErr error
}

// NewGateway construye el doble con solicitudes y usuarios iniciales.
func NewGateway(users []entity.User, enquiries ...*entity.Enquiry) *Gateway {
	g := &Gateway{enquiries: make(map[string]*entity.Enquiry), users: users}
	for _, e := range enquiries {
		g.enquiries[e.ID] = e.Clone()
	}
	return g
}

// Calls devuelve una copia de las llamadas mutantes registradas.
func (g *Gateway) Calls() []Call {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Call(nil), g.calls...)
}

// Count número de llamadas al método indicado.
func (g *Gateway) Count(method string) int {
	n := 0
	for _, c := range g.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Enquiry devuelve el estado del lado "servidor".
func (g *Gateway) Enquiry(id string) *entity.Enquiry {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.enquiries[id].Clone()
}

func (g *Gateway) record(c Call) {
	g.calls = append(g.calls, c)
}

func (g *Gateway) UpdateEnquiryStatus(_ context.Context, enquiryID string, status workflow.Status, assigneeID, note string) (*entity.Enquiry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record(Call{Method: MethodUpdateStatus, EnquiryID: enquiryID, Status: status, AssigneeID: assigneeID, Note: note})
	if g.Err != nil {
		return nil, g.Err
	}
	e, ok := g.enquiries[enquiryID]
	if !ok {
		return nil, fmt.Errorf("%w: enquiry %s no existe", domain.ErrBackend, enquiryID)
	}
	if assigneeID == "" {
		return nil, fmt.Errorf("%w: assignedTo requerido", domain.ErrBackend)
	}
	e.Status = status
	e.CurrentAssignedPerson = assigneeID
	e.Version++
	return e.Clone(), nil
}

func (g *Gateway) AssignEnquiry(_ context.Context, enquiryID, assigneeID string) (*entity.Enquiry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record(Call{Method: MethodAssign, EnquiryID: enquiryID, AssigneeID: assigneeID})
	if g.Err != nil {
		return nil, g.Err
	}
	e, ok := g.enquiries[enquiryID]
	if !ok {
		return nil, fmt.Errorf("%w: enquiry %s no existe", domain.ErrBackend, enquiryID)
	}
	e.CurrentAssignedPerson = assigneeID
	e.Version++
	return e.Clone(), nil
}

func (g *Gateway) StartProductionWorkflow(_ context.Context, workflowID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record(Call{Method: MethodStartProduction, WorkflowID: workflowID})
	if g.Err != nil {
		return g.Err
	}
	e := g.byWorkflow(workflowID)
	if e == nil {
		return fmt.Errorf("%w: workflow %s no existe", domain.ErrBackend, workflowID)
	}
	e.ProductionStarted = true
	e.Version++
	return nil
}

func (g *Gateway) CompleteProductionWorkflow(_ context.Context, workflowID string) (*entity.Enquiry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record(Call{Method: MethodCompleteProduction, WorkflowID: workflowID})
	if g.Err != nil {
		return nil, g.Err
	}
	e := g.byWorkflow(workflowID)
	if e == nil {
		return nil, fmt.Errorf("%w: workflow %s no existe", domain.ErrBackend, workflowID)
	}
	e.Status = workflow.StatusReadyForDispatch
	e.CurrentAssignedPerson = e.EnquiryBy
	e.Version++
	return e.Clone(), nil
}

func (g *Gateway) byWorkflow(workflowID string) *entity.Enquiry {
	for _, e := range g.enquiries {
		if e.WorkflowKey() == workflowID {
			return e
		}
	}
	return nil
}

func (g *Gateway) ListEnquiries(context.Context) ([]*entity.Enquiry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ListErr != nil {
		return nil, g.ListErr
	}
	out := make([]*entity.Enquiry, 0, len(g.enquiries))
	for _, e := range g.enquiries {
		out = append(out, e.Clone())
	}
	return out, nil
}

func (g *Gateway) ListUsers(context.Context) ([]entity.User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ListErr != nil {
		return nil, g.ListErr
	}
	return append([]entity.User(nil), g.users...), nil
}

func (g *Gateway) GetUser(_ context.Context, id string) (*entity.User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ListErr != nil {
		return nil, g.ListErr
	}
	for _, u := range g.users {
		if u.ID == id {
			c := u
			return &c, nil
		}
	}
	return nil, domain.ErrUserNotFound
}
