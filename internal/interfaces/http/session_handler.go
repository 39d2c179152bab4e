package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/solarcrm-api/internal/application/dto"
)

// Me godoc
// @Summary      Sesión del usuario autenticado
// @Description  Usuario del backend y sus estados resueltos (override o valores del rol).
// @Tags         session
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SessionResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/me [get]
func Me(c *fiber.Ctx) error {
	s, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromSession(s))
}
