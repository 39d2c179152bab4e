// Package transition convierte la intención del tablero ("mover esta tarjeta a la
// columna X") en un cambio de estado validado contra el backend del CRM y reconcilia la
// respuesta en el tablero local.
package transition

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/solarcrm-api/internal/application/assignment"
	"github.com/jhoicas/solarcrm-api/internal/application/board"
	"github.com/jhoicas/solarcrm-api/internal/application/dto"
	"github.com/jhoicas/solarcrm-api/internal/application/ports"
	"github.com/jhoicas/solarcrm-api/internal/domain"
	"github.com/jhoicas/solarcrm-api/internal/domain/entity"
	"github.com/jhoicas/solarcrm-api/internal/domain/repository"
	"github.com/jhoicas/solarcrm-api/internal/domain/workflow"
)

// ReturnNote es la nota de sistema que acompaña la devolución al vendedor.
const ReturnNote = "Task returned to salesperson."

// KindAssign identifica en la bitácora una reasignación sin cambio de estado.
const KindAssign = "assign"

const defaultHistoryLimit = 50

// DragEnd es el fin de un drag-and-drop: columna origen y destino.
type DragEnd struct {
	EnquiryID string
	From      string
	To        string
}

// StatusForm es el envío del formulario de cambio de estado.
type StatusForm struct {
	EnquiryID  string
	To         string
	AssigneeID string // vacío = responsable por defecto
	Note       string
}

// Outcome resultado de un movimiento. Enquiry es la instantánea devuelta por el backend
// (nil en un no-op).
type Outcome struct {
	Kind    workflow.MoveKind
	Enquiry *entity.Enquiry
}

// Controller es la única autoridad que ejecuta transiciones.
type Controller struct {
	store   *board.Store
	gateway ports.EnquiryGateway
	users   ports.UserDirectory
	journal repository.TransitionRepository // nil = bitácora deshabilitada
	log     zerolog.Logger
	locks   *keyedMutex
	now     func() time.Time
}

// NewController construye el controlador. journal puede ser nil.
func NewController(
	store *board.Store,
	gateway ports.EnquiryGateway,
	users ports.UserDirectory,
	journal repository.TransitionRepository,
	log zerolog.Logger,
) *Controller {
	return &Controller{
		store:   store,
		gateway: gateway,
		users:   users,
		journal: journal,
		log:     log.With().Str("component", "transition").Logger(),
		locks:   newKeyedMutex(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// HandleDragEnd procesa el fin de un drag-and-drop.
func (c *Controller) HandleDragEnd(ctx context.Context, s entity.Session, in DragEnd) (Outcome, error) {
	// 1. Origen y destino iguales: nada que hacer.
	if in.From != "" && in.From == in.To {
		return Outcome{Kind: workflow.MoveNoop}, nil
	}

	unlock := c.locks.Lock(in.EnquiryID)
	defer unlock()

	// 2. Solicitud y estado destino.
	e, to, err := c.resolve(in.EnquiryID, in.To)
	if err != nil {
		return Outcome{}, err
	}
	if in.From != "" {
		from, ok := workflow.ParseStatus(in.From)
		if !ok {
			return Outcome{}, fmt.Errorf("%w: origen %q", domain.ErrInvalidStatus, in.From)
		}
		if from != e.Status {
			return Outcome{}, fmt.Errorf("%w: la tarjeta ya no está en %s (estado actual %s)", domain.ErrInvalidInput, from, e.Status)
		}
	}
	return c.execute(ctx, s, e, to, "", "")
}

// SubmitStatus procesa el formulario de cambio de estado: misma tabla de transiciones,
// con responsable y nota explícitos.
func (c *Controller) SubmitStatus(ctx context.Context, s entity.Session, in StatusForm) (Outcome, error) {
	unlock := c.locks.Lock(in.EnquiryID)
	defer unlock()

	e, to, err := c.resolve(in.EnquiryID, in.To)
	if err != nil {
		return Outcome{}, err
	}
	return c.execute(ctx, s, e, to, strings.TrimSpace(in.AssigneeID), strings.TrimSpace(in.Note))
}

// ReturnToSalesperson devuelve la solicitud al vendedor moviéndola al estado de
// devolución del rol del actor.
func (c *Controller) ReturnToSalesperson(ctx context.Context, s entity.Session, enquiryID string) (Outcome, error) {
	ret, ok := workflow.ReturnStatusFor(s.Role())
	if !ok {
		return Outcome{}, fmt.Errorf("%w: el rol %s no devuelve tareas", domain.ErrPermissionDenied, s.Role())
	}

	unlock := c.locks.Lock(enquiryID)
	defer unlock()

	e, err := c.lookup(enquiryID)
	if err != nil {
		return Outcome{}, err
	}
	return c.execute(ctx, s, e, ret, "", "")
}

// Assign cambia el responsable sin cambiar el estado. Solo vendedor, director y
// superadmin; el nuevo responsable debe ser elegible para el estado actual.
func (c *Controller) Assign(ctx context.Context, s entity.Session, enquiryID, assigneeID string) (*entity.Enquiry, error) {
	assigneeID = strings.TrimSpace(assigneeID)
	if assigneeID == "" {
		return nil, fmt.Errorf("%w: assignee_id requerido", domain.ErrInvalidInput)
	}
	if !s.Role().CanDragAny() {
		return nil, fmt.Errorf("%w: el rol %s no reasigna solicitudes", domain.ErrPermissionDenied, s.Role())
	}

	unlock := c.locks.Lock(enquiryID)
	defer unlock()

	e, err := c.lookup(enquiryID)
	if err != nil {
		return nil, err
	}
	if e.CurrentAssignedPerson == assigneeID {
		return e, nil
	}

	users, err := c.listUsers(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := assignment.ResolveAssignee(e.Status, users, s.Role(), assigneeID, entity.User{}); err != nil {
		return nil, err
	}

	updated, err := c.gateway.AssignEnquiry(ctx, e.ID, assigneeID)
	if err != nil {
		return nil, fmt.Errorf("transition: reasignar %s: %w", e.ID, err)
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: respuesta sin solicitud", domain.ErrBackend)
	}
	c.store.Apply(updated)
	c.record(ctx, s, e, updated, KindAssign, "")
	return updated, nil
}

// Candidates lista los usuarios que el actor puede elegir como responsable al mover la
// solicitud a status (vacío = estado actual) y marca el que recibiría la tarjeta sin
// elección explícita. Sale de la misma tabla de transiciones que el movimiento: una
// devolución solo ofrece al creador y un movimiento dentro del rol marca al propio actor.
// Sin status (o igual al actual) es la lista de reasignación, con el responsable actual
// marcado.
func (c *Controller) Candidates(ctx context.Context, s entity.Session, enquiryID, status string) ([]dto.CandidateDTO, error) {
	e, err := c.visible(s, enquiryID)
	if err != nil {
		return nil, err
	}
	target := e.Status
	if status != "" {
		st, ok := workflow.ParseStatus(status)
		if !ok {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
		}
		target = st
	}

	users, err := c.listUsers(ctx)
	if err != nil {
		return nil, err
	}

	plan := planFor(s, e, target)

	var (
		eligible []entity.User
		def      string
	)
	switch {
	case plan.Kind == workflow.MoveNoop:
		if !s.Role().CanDragAny() {
			return []dto.CandidateDTO{}, nil
		}
		eligible = assignment.EligibleAssignees(target, users, s.Role())
		def = e.CurrentAssignedPerson
	case plan.Kind == workflow.MoveRejected:
		return nil, fmt.Errorf("%w: %s no puede mover %s de %s a %s",
			domain.ErrPermissionDenied, s.Role(), e.ID, e.Status, target)
	case plan.Assignee == workflow.AssignCreator:
		creator, ok := assignment.FindUser(users, e.EnquiryBy)
		if !ok {
			creator = entity.User{ID: e.EnquiryBy}
		}
		eligible = []entity.User{creator}
		def = creator.ID
	case plan.Assignee == workflow.AssignSelf:
		eligible = assignment.EligibleAssignees(target, users, s.Role())
		if _, ok := assignment.FindUser(eligible, s.UserID()); !ok {
			eligible = append([]entity.User{s.User}, eligible...)
		}
		def = s.UserID()
	default:
		eligible = assignment.EligibleAssignees(target, users, s.Role())
		def = assignment.DefaultAssignee(target, users, fallbackFor(e, users)).ID
	}

	out := make([]dto.CandidateDTO, 0, len(eligible))
	for _, u := range eligible {
		out = append(out, dto.CandidateDTO{
			ID:      u.ID,
			Name:    u.Name,
			Role:    u.Role.String(),
			Default: u.ID == def,
		})
	}
	return out, nil
}

// History devuelve la bitácora de la solicitud, más reciente primero. Sin bitácora
// configurada devuelve una lista vacía.
func (c *Controller) History(ctx context.Context, s entity.Session, enquiryID string, limit int) ([]dto.TransitionRecordDTO, error) {
	if _, err := c.visible(s, enquiryID); err != nil {
		return nil, err
	}
	if c.journal == nil {
		return []dto.TransitionRecordDTO{}, nil
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	recs, err := c.journal.ListByEnquiry(ctx, enquiryID, limit)
	if err != nil {
		return nil, fmt.Errorf("transition: bitácora %s: %w", enquiryID, err)
	}
	out := make([]dto.TransitionRecordDTO, 0, len(recs))
	for _, r := range recs {
		out = append(out, dto.FromTransitionRecord(r))
	}
	return out, nil
}

// visible busca la solicitud y la oculta (ErrNotFound) si la sesión no la ve en el tablero.
func (c *Controller) visible(s entity.Session, enquiryID string) (*entity.Enquiry, error) {
	e, err := c.lookup(enquiryID)
	if err != nil {
		return nil, err
	}
	if !board.Visible(s, e) {
		return nil, fmt.Errorf("%w: solicitud %s", domain.ErrNotFound, enquiryID)
	}
	return e, nil
}

func (c *Controller) resolve(enquiryID, rawTo string) (*entity.Enquiry, workflow.Status, error) {
	e, err := c.lookup(enquiryID)
	if err != nil {
		return nil, "", err
	}
	to, ok := workflow.ParseStatus(rawTo)
	if !ok {
		return nil, "", fmt.Errorf("%w: destino %q", domain.ErrInvalidStatus, rawTo)
	}
	return e, to, nil
}

func (c *Controller) lookup(enquiryID string) (*entity.Enquiry, error) {
	e, ok := c.store.Get(enquiryID)
	if !ok {
		return nil, fmt.Errorf("%w: solicitud %s", domain.ErrNotFound, enquiryID)
	}
	return e, nil
}

func (c *Controller) listUsers(ctx context.Context) ([]entity.User, error) {
	users, err := c.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("transition: listar usuarios: %w", err)
	}
	return users, nil
}

// execute aplica la tabla de transiciones y hace como máximo una llamada de cambio de
// estado. El store solo se toca con la respuesta del backend.
func (c *Controller) execute(ctx context.Context, s entity.Session, e *entity.Enquiry, to workflow.Status, requestedID, note string) (Outcome, error) {
	plan := planFor(s, e, to)

	switch plan.Kind {
	case workflow.MoveNoop:
		return Outcome{Kind: workflow.MoveNoop}, nil
	case workflow.MoveRejected:
		return Outcome{Kind: workflow.MoveRejected}, fmt.Errorf("%w: %s no puede mover %s de %s a %s",
			domain.ErrPermissionDenied, s.Role(), e.ID, e.Status, to)
	}

	// 3a. Cierre del sub-flujo de producción: el backend cambia estado y responsable.
	if plan.Effect == workflow.EffectCompleteProduction {
		updated, err := c.gateway.CompleteProductionWorkflow(ctx, e.WorkflowKey())
		if err != nil {
			return Outcome{}, fmt.Errorf("transition: completar producción %s: %w", e.ID, err)
		}
		return c.commit(ctx, s, e, updated, plan.Kind, ReturnNote)
	}

	assigneeID, err := c.assignee(ctx, s, e, to, plan.Assignee, requestedID)
	if err != nil {
		return Outcome{}, err
	}
	if plan.Kind == workflow.MoveReturn {
		note = ReturnNote
	}

	// 4. Entrada a InProduction: primero se inicia el sub-flujo.
	if plan.Effect == workflow.EffectStartProduction {
		if err := c.gateway.StartProductionWorkflow(ctx, e.WorkflowKey()); err != nil {
			return Outcome{}, fmt.Errorf("transition: iniciar producción %s: %w", e.ID, err)
		}
	}

	updated, err := c.gateway.UpdateEnquiryStatus(ctx, e.ID, to, assigneeID, note)
	if err != nil {
		return Outcome{}, fmt.Errorf("transition: cambiar estado %s: %w", e.ID, err)
	}
	return c.commit(ctx, s, e, updated, plan.Kind, note)
}

// planFor consulta la tabla de transiciones para el actor y la solicitud.
func planFor(s entity.Session, e *entity.Enquiry, to workflow.Status) workflow.Plan {
	return workflow.PlanMove(workflow.MoveInput{
		Role:              s.Role(),
		RoleStatuses:      s.ResolvedStatuses,
		Owns:              e.CurrentAssignedPerson == s.UserID(),
		From:              e.Status,
		To:                to,
		ProductionStarted: e.ProductionStarted,
	})
}

func (c *Controller) assignee(ctx context.Context, s entity.Session, e *entity.Enquiry, to workflow.Status, rule workflow.AssigneeRule, requestedID string) (string, error) {
	switch rule {
	case workflow.AssignCreator:
		return e.EnquiryBy, nil
	case workflow.AssignSelf:
		if requestedID == "" || requestedID == s.UserID() {
			return s.UserID(), nil
		}
	}

	users, err := c.listUsers(ctx)
	if err != nil {
		return "", err
	}
	u, err := assignment.ResolveAssignee(to, users, s.Role(), requestedID, fallbackFor(e, users))
	if err != nil {
		return "", err
	}
	// Sin candidatos ni responsable actual el ID queda vacío y el backend rechaza.
	return u.ID, nil
}

// fallbackFor es el responsable actual, aunque ya no figure en el directorio.
func fallbackFor(e *entity.Enquiry, users []entity.User) entity.User {
	if u, ok := assignment.FindUser(users, e.CurrentAssignedPerson); ok {
		return u
	}
	return entity.User{ID: e.CurrentAssignedPerson}
}

func (c *Controller) commit(ctx context.Context, s entity.Session, before, updated *entity.Enquiry, kind workflow.MoveKind, note string) (Outcome, error) {
	if updated == nil {
		return Outcome{}, fmt.Errorf("%w: respuesta sin solicitud", domain.ErrBackend)
	}
	if !c.store.Apply(updated) {
		c.log.Debug().Str("enquiry_id", updated.ID).Int64("version", updated.Version).
			Msg("respuesta más antigua que el tablero; se conserva la versión local")
	}
	c.record(ctx, s, before, updated, kind.String(), note)
	return Outcome{Kind: kind, Enquiry: updated}, nil
}

// record escribe la bitácora. Un fallo no revierte la transición: el backend ya la aplicó.
func (c *Controller) record(ctx context.Context, s entity.Session, before, after *entity.Enquiry, kind, note string) {
	if c.journal == nil {
		return
	}
	rec := &entity.TransitionRecord{
		EnquiryID:  after.ID,
		FromStatus: before.Status,
		ToStatus:   after.Status,
		ActorID:    s.UserID(),
		ActorRole:  s.Role(),
		AssigneeID: after.CurrentAssignedPerson,
		Kind:       kind,
		Note:       note,
		Amount:     after.Amount,
		OccurredAt: c.now(),
	}
	if err := c.journal.Append(ctx, rec); err != nil {
		c.log.Warn().Err(err).Str("enquiry_id", after.ID).Str("kind", kind).Msg("no se pudo registrar la transición")
	}
}
