package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrInvalidStatus      = errors.New("estado de flujo no reconocido")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrPermissionDenied   = errors.New("el rol no puede realizar esta transición")
	ErrIneligibleAssignee = errors.New("el usuario no puede ser asignado en este estado")
	ErrBackend            = errors.New("el backend del CRM rechazó la operación")
)
