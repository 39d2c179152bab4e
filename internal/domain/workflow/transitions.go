package workflow

import "fmt"

// MoveKind clasifica un movimiento de tarjeta según el rol del actor.
type MoveKind int

const (
	MoveRejected   MoveKind = iota // el actor no puede hacer el movimiento
	MoveNoop                       // origen y destino iguales
	MoveBlanket                    // vendedor/director/superadmin: cualquier estado a cualquier estado
	MoveWithinRole                 // rol operativo dentro de sus propios estados
	MoveReturn                     // rol operativo devuelve la tarea al vendedor
)

var moveKindNames = map[MoveKind]string{
	MoveRejected:   "rejected",
	MoveNoop:       "noop",
	MoveBlanket:    "blanket",
	MoveWithinRole: "within_role",
	MoveReturn:     "return",
}

func (k MoveKind) String() string {
	if n, ok := moveKindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("MoveKind(%d)", int(k))
}

// AssigneeRule indica de dónde sale el nuevo responsable.
type AssigneeRule int

const (
	AssignNone    AssigneeRule = iota
	AssignDefault              // resolver de asignación sobre el estado destino
	AssignSelf                 // el propio actor
	AssignCreator              // quien creó la solicitud (enquiryBy)
)

// Effect es la llamada adicional al backend que exige el movimiento.
type Effect int

const (
	EffectNone               Effect = iota
	EffectStartProduction           // iniciar el sub-flujo de producción antes del cambio de estado
	EffectCompleteProduction        // cerrar el sub-flujo; el backend cambia estado y responsable
)

// effectsOnEntry: efecto al entrar a un estado dentro del propio sub-flujo del rol.
var effectsOnEntry = map[Role]map[Status]Effect{
	RoleProduction: {StatusInProduction: EffectStartProduction},
}

// effectsOnReturn: efecto al devolver la tarea. Producción no emite un cambio de estado
// genérico: CompleteProduction ya hace la transición y la reasignación.
var effectsOnReturn = map[Role]Effect{
	RoleProduction: EffectCompleteProduction,
}

// MoveInput describe un movimiento solicitado.
type MoveInput struct {
	Role              Role
	RoleStatuses      []Status // estados resueltos de la sesión del actor
	Owns              bool     // el actor es el responsable actual
	From              Status
	To                Status
	ProductionStarted bool
}

// Plan es la decisión de la tabla de transiciones.
type Plan struct {
	Kind     MoveKind
	Assignee AssigneeRule
	Effect   Effect
}

// Allowed informa si el movimiento debe ejecutarse contra el backend.
func (p Plan) Allowed() bool {
	return p.Kind == MoveBlanket || p.Kind == MoveWithinRole || p.Kind == MoveReturn
}

// PlanMove aplica la tabla rol × estado. Nunca falla: lo no permitido es MoveRejected.
func PlanMove(in MoveInput) Plan {
	if in.From == in.To {
		return Plan{Kind: MoveNoop}
	}
	if !in.To.Valid() || !in.Role.Valid() {
		return Plan{Kind: MoveRejected}
	}

	if in.Role.IsWorker() && in.Owns {
		if ret, ok := returnStatusByRole[in.Role]; ok && in.To == ret {
			return Plan{Kind: MoveReturn, Assignee: AssignCreator, Effect: effectsOnReturn[in.Role]}
		}
		// Solo dentro del propio sub-flujo: origen y destino en los estados del rol.
		if Contains(in.RoleStatuses, in.From) && Contains(in.RoleStatuses, in.To) {
			eff := effectsOnEntry[in.Role][in.To]
			if eff == EffectStartProduction && in.ProductionStarted {
				eff = EffectNone
			}
			return Plan{Kind: MoveWithinRole, Assignee: AssignSelf, Effect: eff}
		}
	}

	if in.Role.CanDragAny() {
		return Plan{Kind: MoveBlanket, Assignee: AssignDefault}
	}
	return Plan{Kind: MoveRejected}
}
