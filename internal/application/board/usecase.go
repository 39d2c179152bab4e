package board

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/solarcrm-api/internal/application/dto"
	"github.com/jhoicas/solarcrm-api/internal/application/ports"
	"github.com/jhoicas/solarcrm-api/internal/domain/entity"
	"github.com/jhoicas/solarcrm-api/internal/domain/workflow"
)

// UseCase arma el tablero Kanban a partir del store según el rol del usuario.
type UseCase struct {
	store   *Store
	gateway ports.EnquiryGateway
}

// NewUseCase construye el caso de uso.
func NewUseCase(store *Store, gateway ports.EnquiryGateway) *UseCase {
	return &UseCase{store: store, gateway: gateway}
}

// Load trae todas las solicitudes del backend y las aplica al store.
// Devuelve cuántas reemplazaron a la instantánea local.
func (uc *UseCase) Load(ctx context.Context) (int, error) {
	list, err := uc.gateway.ListEnquiries(ctx)
	if err != nil {
		return 0, fmt.Errorf("board: cargar solicitudes: %w", err)
	}
	applied := 0
	for _, e := range list {
		if uc.store.Apply(e) {
			applied++
		}
	}
	return applied, nil
}

// Visible decide si la sesión ve la tarjeta:
//   - superadmin/director: todas.
//   - vendedor: las que creó o tiene asignadas.
//   - roles operativos: solo las asignadas a ellos.
func Visible(s entity.Session, e *entity.Enquiry) bool {
	switch {
	case s.Role().IsElevated():
		return true
	case s.Role() == workflow.RoleSalesman:
		return e.EnquiryBy == s.UserID() || e.CurrentAssignedPerson == s.UserID()
	case s.Role().IsWorker():
		return e.CurrentAssignedPerson == s.UserID()
	default:
		return false
	}
}

// View devuelve las columnas de la sesión (sus estados resueltos, en orden canónico)
// con las tarjetas visibles. Las tarjetas en estados fuera de las columnas no se muestran.
func (uc *UseCase) View(s entity.Session) dto.BoardResponse {
	columns := make([]dto.BoardColumnDTO, len(s.ResolvedStatuses))
	pos := make(map[workflow.Status]int, len(s.ResolvedStatuses))
	for i, st := range s.ResolvedStatuses {
		columns[i] = dto.BoardColumnDTO{Status: st.String(), Cards: []dto.EnquiryResponse{}}
		pos[st] = i
	}
	for _, e := range uc.store.List() {
		i, ok := pos[e.Status]
		if !ok || !Visible(s, e) {
			continue
		}
		columns[i].Cards = append(columns[i].Cards, *dto.FromEnquiry(e))
	}
	return dto.BoardResponse{Role: s.Role().String(), Columns: columns}
}

// Summary calcula cantidad y monto por columna visible. Cada columna se suma en su
// propia goroutine; el resultado se ordena por la posición de la columna. Los montos se
// redondean a 2 decimales solo al presentarlos: el total general sale de las sumas exactas.
func (uc *UseCase) Summary(s entity.Session) dto.BoardSummaryDTO {
	view := uc.View(s)
	cols := make([]dto.ColumnSummaryDTO, len(view.Columns))
	exact := make([]decimal.Decimal, len(view.Columns))

	var wg sync.WaitGroup
	for i := range view.Columns {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			total := decimal.Zero
			for _, c := range view.Columns[i].Cards {
				total = total.Add(c.Amount)
			}
			exact[i] = total
			cols[i] = dto.ColumnSummaryDTO{
				Status: view.Columns[i].Status,
				Count:  len(view.Columns[i].Cards),
				Amount: total.Round(2),
			}
		}(i)
	}
	wg.Wait()

	out := dto.BoardSummaryDTO{Columns: cols}
	total := decimal.Zero
	for i, c := range cols {
		out.TotalCount += c.Count
		total = total.Add(exact[i])
	}
	out.TotalAmount = total.Round(2)
	return out
}
