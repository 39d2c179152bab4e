package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/solarcrm-api/internal/domain"
	"github.com/jhoicas/solarcrm-api/internal/domain/entity"
	"github.com/jhoicas/solarcrm-api/internal/domain/repository"
	"github.com/jhoicas/solarcrm-api/internal/domain/workflow"
)

var _ repository.TransitionRepository = (*TransitionRepo)(nil)

// TransitionRepo bitácora de transiciones sobre PostgreSQL.
type TransitionRepo struct {
	q Querier
}

// NewTransitionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransitionRepository(q Querier) *TransitionRepo {
	return &TransitionRepo{q: q}
}

// Append inserta la entrada; asigna ID y fecha si vienen vacíos.
func (r *TransitionRepo) Append(ctx context.Context, rec *entity.TransitionRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = time.Now().UTC()
	}
	query := `
		INSERT INTO enquiry_transitions (id, enquiry_id, from_status, to_status, actor_id, actor_role, assignee_id, kind, note, amount, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		rec.ID, rec.EnquiryID, rec.FromStatus.String(), rec.ToStatus.String(),
		rec.ActorID, rec.ActorRole.String(), rec.AssigneeID, rec.Kind, rec.Note,
		rec.Amount, rec.OccurredAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: transición %s duplicada", domain.ErrInvalidInput, rec.ID)
		}
		return fmt.Errorf("append transition: %w", err)
	}
	return nil
}

// ListByEnquiry devuelve las entradas de la solicitud, más recientes primero.
func (r *TransitionRepo) ListByEnquiry(ctx context.Context, enquiryID string, limit int) ([]*entity.TransitionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, enquiry_id, from_status, to_status, actor_id, actor_role, assignee_id, kind, note, amount, occurred_at
		FROM enquiry_transitions
		WHERE enquiry_id = $1
		ORDER BY occurred_at DESC, id
		LIMIT $2`
	rows, err := r.q.Query(ctx, query, enquiryID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transitions: %w", err)
	}
	defer rows.Close()

	var list []*entity.TransitionRecord
	for rows.Next() {
		var (
			rec            entity.TransitionRecord
			from, to, role string
		)
		if err := rows.Scan(
			&rec.ID, &rec.EnquiryID, &from, &to, &rec.ActorID, &role,
			&rec.AssigneeID, &rec.Kind, &rec.Note, &rec.Amount, &rec.OccurredAt,
		); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		rec.FromStatus = workflow.Status(from)
		rec.ToStatus = workflow.Status(to)
		rec.ActorRole = workflow.Role(role)
		list = append(list, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}
	return list, nil
}
