package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/solarcrm-api/internal/application/board"
	"github.com/jhoicas/solarcrm-api/internal/application/transition"
	"github.com/jhoicas/solarcrm-api/internal/domain/workflow"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Board      *board.UseCase
	Store      *board.Store
	Controller *transition.Controller
	Sessions   sessionResolver
	JWTSecret  string
}

// Router registra las rutas de la API. Todas requieren Bearer Token y sesión resuelta.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret), SessionMiddleware(deps.Sessions))

	api.Get("/me", Me)

	boardHandler := NewBoardHandler(deps.Board, deps.Store)
	boardGroup := api.Group("/board")
	boardGroup.Get("/", boardHandler.View)
	boardGroup.Get("/summary", boardHandler.Summary)
	boardGroup.Post("/reload", RequireRole(workflow.RoleSuperadmin, workflow.RoleDirector), boardHandler.Reload)

	enquiryHandler := NewEnquiryHandler(deps.Controller)
	enquiries := api.Group("/enquiries")
	enquiries.Post("/:id/move", enquiryHandler.Move)
	enquiries.Put("/:id/status", enquiryHandler.SubmitStatus)
	enquiries.Put("/:id/assign", enquiryHandler.Assign)
	enquiries.Post("/:id/return", enquiryHandler.Return)
	enquiries.Get("/:id/candidates", enquiryHandler.Candidates)
	enquiries.Get("/:id/history", enquiryHandler.History)
}
