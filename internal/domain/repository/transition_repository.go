package repository

import (
	"context"

	"github.com/jhoicas/solarcrm-api/internal/domain/entity"
)

// TransitionRepository define el puerto de persistencia de la bitácora de transiciones (DIP).
// Es de solo inserción: las entradas no se editan ni se borran.
type TransitionRepository interface {
	Append(ctx context.Context, rec *entity.TransitionRecord) error
	// ListByEnquiry devuelve las entradas de la solicitud, más recientes primero.
	ListByEnquiry(ctx context.Context, enquiryID string, limit int) ([]*entity.TransitionRecord, error)
}
