package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/solarcrm-api/internal/application/dto"
	"github.com/jhoicas/solarcrm-api/internal/application/transition"
)

// EnquiryHandler maneja los movimientos de tarjetas del tablero.
type EnquiryHandler struct {
	ctrl *transition.Controller
}

// NewEnquiryHandler construye el handler.
func NewEnquiryHandler(ctrl *transition.Controller) *EnquiryHandler {
	return &EnquiryHandler{ctrl: ctrl}
}

func moveResponse(out transition.Outcome) dto.MoveResponse {
	return dto.MoveResponse{Result: out.Kind.String(), Enquiry: dto.FromEnquiry(out.Enquiry)}
}

// Move godoc
// @Summary      Fin de drag-and-drop
// @Description  Mueve la tarjeta de la columna from a la columna to según el rol del usuario.
// @Tags         enquiries
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string           true  "ID de la solicitud"
// @Param        body  body  dto.MoveRequest  true  "Columnas origen y destino"
// @Success      200   {object}  dto.MoveResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/enquiries/{id}/move [post]
func (h *EnquiryHandler) Move(c *fiber.Ctx) error {
	s, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.MoveRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.To == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to es requerido"})
	}
	out, err := h.ctrl.HandleDragEnd(requestContext(c), s, transition.DragEnd{
		EnquiryID: c.Params("id"),
		From:      in.From,
		To:        in.To,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(moveResponse(out))
}

// SubmitStatus godoc
// @Summary      Formulario de cambio de estado
// @Tags         enquiries
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la solicitud"
// @Param        body  body  dto.StatusFormRequest  true  "Estado destino, responsable y nota"
// @Success      200   {object}  dto.MoveResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/enquiries/{id}/status [put]
func (h *EnquiryHandler) SubmitStatus(c *fiber.Ctx) error {
	s, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.StatusFormRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "status es requerido"})
	}
	if len(in.Note) > 500 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "note admite hasta 500 caracteres"})
	}
	out, err := h.ctrl.SubmitStatus(requestContext(c), s, transition.StatusForm{
		EnquiryID:  c.Params("id"),
		To:         in.Status,
		AssigneeID: in.AssigneeID,
		Note:       in.Note,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(moveResponse(out))
}

// Assign godoc
// @Summary      Reasignar sin cambiar el estado
// @Tags         enquiries
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID de la solicitud"
// @Param        body  body  dto.AssignRequest  true  "Nuevo responsable"
// @Success      200   {object}  dto.MoveResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/enquiries/{id}/assign [put]
func (h *EnquiryHandler) Assign(c *fiber.Ctx) error {
	s, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.AssignRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	e, err := h.ctrl.Assign(requestContext(c), s, c.Params("id"), in.AssigneeID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MoveResponse{Result: transition.KindAssign, Enquiry: dto.FromEnquiry(e)})
}

// Return godoc
// @Summary      Devolver la tarea al vendedor
// @Tags         enquiries
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.MoveResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/enquiries/{id}/return [post]
func (h *EnquiryHandler) Return(c *fiber.Ctx) error {
	s, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.ctrl.ReturnToSalesperson(requestContext(c), s, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(moveResponse(out))
}

// Candidates godoc
// @Summary      Responsables elegibles
// @Tags         enquiries
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID de la solicitud"
// @Param        status  query  string  false  "Estado destino (por defecto el actual)"
// @Success      200     {array}   dto.CandidateDTO
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      403     {object}  dto.ErrorResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/enquiries/{id}/candidates [get]
func (h *EnquiryHandler) Candidates(c *fiber.Ctx) error {
	s, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.ctrl.Candidates(requestContext(c), s, c.Params("id"), c.Query("status"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// History godoc
// @Summary      Bitácora de movimientos
// @Tags         enquiries
// @Security     Bearer
// @Produce      json
// @Param        id     path   string  true   "ID de la solicitud"
// @Param        limit  query  int     false  "Límite"  default(50)
// @Success      200    {array}   dto.TransitionRecordDTO
// @Failure      404    {object}  dto.ErrorResponse
// @Router       /api/enquiries/{id}/history [get]
func (h *EnquiryHandler) History(c *fiber.Ctx) error {
	s, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}
	limit := c.QueryInt("limit", 50)
	if limit > 200 {
		limit = 200
	}
	out, err := h.ctrl.History(requestContext(c), s, c.Params("id"), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
