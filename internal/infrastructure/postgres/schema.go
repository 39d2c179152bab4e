package postgres

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS enquiry_transitions (
	id          UUID PRIMARY KEY,
	enquiry_id  TEXT          NOT NULL,
	from_status TEXT          NOT NULL,
	to_status   TEXT          NOT NULL,
	actor_id    TEXT          NOT NULL,
	actor_role  TEXT          NOT NULL,
	assignee_id TEXT          NOT NULL DEFAULT '',
	kind        TEXT          NOT NULL,
	note        TEXT          NOT NULL DEFAULT '',
	amount      NUMERIC(18,2) NOT NULL DEFAULT 0,
	occurred_at TIMESTAMPTZ   NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_enquiry_transitions_enquiry
	ON enquiry_transitions (enquiry_id, occurred_at DESC);
`

// EnsureSchema crea la tabla de la bitácora si no existe. Es idempotente.
func EnsureSchema(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, schema); err != nil {
		return fmt.Errorf("crear esquema de bitácora: %w", err)
	}
	return nil
}
