package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/solarcrm-api/internal/application/board"
	"github.com/jhoicas/solarcrm-api/internal/application/dto"
)

// BoardHandler expone el tablero Kanban del usuario autenticado.
type BoardHandler struct {
	uc    *board.UseCase
	store *board.Store
}

// NewBoardHandler construye el handler.
func NewBoardHandler(uc *board.UseCase, store *board.Store) *BoardHandler {
	return &BoardHandler{uc: uc, store: store}
}

// View godoc
// @Summary      Tablero Kanban del usuario
// @Description  Columnas = estados resueltos de la sesión; tarjetas visibles según el rol.
// @Tags         board
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.BoardResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/board [get]
func (h *BoardHandler) View(c *fiber.Ctx) error {
	s, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(h.uc.View(s))
}

// Summary godoc
// @Summary      Totales por columna
// @Tags         board
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.BoardSummaryDTO
// @Router       /api/board/summary [get]
func (h *BoardHandler) Summary(c *fiber.Ctx) error {
	s, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(h.uc.Summary(s))
}

// Reload godoc
// @Summary      Recargar el tablero desde el backend (superadmin/director)
// @Tags         board
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReloadResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/board/reload [post]
func (h *BoardHandler) Reload(c *fiber.Ctx) error {
	n, err := h.uc.Load(requestContext(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ReloadResponse{Applied: n, Total: h.store.Len()})
}
