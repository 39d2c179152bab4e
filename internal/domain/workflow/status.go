// Package workflow contiene el grafo de estados de una solicitud (enquiry) a lo largo
// del proceso de fabricación de estructuras solares: estados, roles y la tabla de
// transiciones. Es un paquete hoja, sin dependencias externas ni estado.
package workflow

// Status es una etapa del pipeline de fabricación. El valor en el cable es el
// identificador tal cual ("ReadyForProduction").
type Status string

// Estados del pipeline en orden canónico.
const (
	StatusEnquiry            Status = "Enquiry"
	StatusDesign             Status = "Design"
	StatusBOQ                Status = "BOQ"
	StatusReadyForProduction Status = "ReadyForProduction"
	StatusPurchaseWaiting    Status = "PurchaseWaiting"
	StatusInProduction       Status = "InProduction"
	StatusProductionComplete Status = "ProductionComplete"
	StatusHotdip             Status = "Hotdip"
	StatusReadyForDispatch   Status = "ReadyForDispatch"
	StatusDispatched         Status = "Dispatched"
)

var orderedStatuses = [...]Status{
	StatusEnquiry,
	StatusDesign,
	StatusBOQ,
	StatusReadyForProduction,
	StatusPurchaseWaiting,
	StatusInProduction,
	StatusProductionComplete,
	StatusHotdip,
	StatusReadyForDispatch,
	StatusDispatched,
}

var statusIndex = func() map[Status]int {
	m := make(map[Status]int, len(orderedStatuses))
	for i, s := range orderedStatuses {
		m[s] = i
	}
	return m
}()

// AllStatuses devuelve la lista canónica de los 10 estados. Cada llamada entrega una
// copia nueva: el llamador puede modificarla sin afectar al grafo.
func AllStatuses() []Status {
	out := make([]Status, len(orderedStatuses))
	copy(out, orderedStatuses[:])
	return out
}

// ParseStatus convierte el valor recibido (formulario, JSON, evento WS) en un Status.
// ok=false si no corresponde a ninguna etapa.
func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	_, ok := statusIndex[st]
	return st, ok
}

// Valid informa si el estado pertenece al pipeline.
func (s Status) Valid() bool {
	_, ok := statusIndex[s]
	return ok
}

// Index devuelve la posición canónica del estado, o -1 si no es válido.
func (s Status) Index() int {
	if i, ok := statusIndex[s]; ok {
		return i
	}
	return -1
}

// Terminal informa si el estado es el final del pipeline; ningún rol espera ser
// dueño de la solicitud después de Dispatched.
func (s Status) Terminal() bool { return s == StatusDispatched }

func (s Status) String() string { return string(s) }

// sortCanonical filtra los estados inválidos y duplicados y los ordena según el pipeline.
func sortCanonical(in []Status) []Status {
	seen := make([]bool, len(orderedStatuses))
	for _, s := range in {
		if i := s.Index(); i >= 0 {
			seen[i] = true
		}
	}
	out := make([]Status, 0, len(in))
	for i, ok := range seen {
		if ok {
			out = append(out, orderedStatuses[i])
		}
	}
	return out
}
