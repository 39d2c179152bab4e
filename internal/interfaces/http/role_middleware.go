package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/solarcrm-api/internal/application/dto"
	"github.com/jhoicas/solarcrm-api/internal/application/ports"
	"github.com/jhoicas/solarcrm-api/internal/domain"
	"github.com/jhoicas/solarcrm-api/internal/domain/entity"
	"github.com/jhoicas/solarcrm-api/internal/domain/workflow"
)

// LocalSession key de la sesión resuelta.
const LocalSession = "session"

// sessionResolver es el contrato mínimo del middleware; lo implementa *session.Resolver.
type sessionResolver interface {
	Resolve(ctx context.Context, userID string, role workflow.Role) (entity.Session, error)
}

// RequireRole deja pasar solo los roles indicados. Debe usarse DESPUÉS de AuthMiddleware.
func RequireRole(roles ...workflow.Role) fiber.Handler {
	allowed := make(map[workflow.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "rol no encontrado en el token"})
		}
		if _, ok := allowed[role]; !ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "el rol '" + role.String() + "' no tiene acceso a este recurso",
			})
		}
		return c.Next()
	}
}

// SessionMiddleware resuelve la sesión (usuario del backend + estados resueltos) una vez
// por petición y la deja en c.Locals. Debe usarse DESPUÉS de AuthMiddleware.
func SessionMiddleware(resolver sessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := resolver.Resolve(requestContext(c), GetUserID(c), GetRole(c))
		if err != nil {
			return writeError(c, err)
		}
		c.Locals(LocalSession, s)
		return c.Next()
	}
}

// GetSession devuelve la sesión resuelta por SessionMiddleware.
func GetSession(c *fiber.Ctx) (entity.Session, bool) {
	s, ok := c.Locals(LocalSession).(entity.Session)
	return s, ok
}

// requestContext contexto de la petición con el token del usuario para el backend.
func requestContext(c *fiber.Ctx) context.Context {
	return ports.WithBearerToken(c.UserContext(), GetToken(c))
}

func currentSession(c *fiber.Ctx) (entity.Session, error) {
	s, ok := GetSession(c)
	if !ok {
		return entity.Session{}, domain.ErrUnauthorized
	}
	return s, nil
}
