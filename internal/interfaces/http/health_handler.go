package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/solarcrm-api/internal/application/board"
	"github.com/jhoicas/solarcrm-api/internal/application/dto"
)

// HealthDeps datos que expone GET /health.
type HealthDeps struct {
	Service        string
	Store          *board.Store
	JournalEnabled bool
	// Realtime es nil si no hay canal WebSocket configurado.
	Realtime func() dto.RealtimeStatus
}

// Health godoc
// @Summary      Estado del servicio
// @Tags         health
// @Produce      json
// @Success      200  {object}  dto.HealthResponse
// @Router       /health [get]
func Health(deps HealthDeps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		out := dto.HealthResponse{
			Status:         "ok",
			Service:        deps.Service,
			Enquiries:      deps.Store.Len(),
			JournalEnabled: deps.JournalEnabled,
		}
		if deps.Realtime != nil {
			rt := deps.Realtime()
			out.Realtime = &rt
			if !rt.Connected {
				out.Status = "degraded"
			}
		}
		return c.JSON(out)
	}
}
